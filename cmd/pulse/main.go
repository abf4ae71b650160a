package main

import (
	"os"

	"github.com/grovetools/pulse/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
