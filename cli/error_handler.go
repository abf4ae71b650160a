package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/pulse/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message tailored to the error code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	pulseErr, _ := errors.As(err)

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "❌ Configuration not found: %v\n", pulseErr.Details["path"])
		fmt.Fprintf(h.Out, "Create pulse.yml or pass --config.\n")

	case errors.ErrCodeConfigInvalid:
		fmt.Fprintf(h.Out, "❌ %s\n", pulseErr.Message)
		fmt.Fprintf(h.Out, "Run 'pulse config schema' to see the accepted fields.\n")

	case errors.ErrCodeMissingCredentials:
		fmt.Fprintf(h.Out, "❌ Reporting is disabled: no %v configured.\n", pulseErr.Details["field"])
		fmt.Fprintf(h.Out, "Set it in pulse.yml or export PULSE_TOKEN / PULSE_TARGET.\n")

	case errors.ErrCodeEditorUnavailable:
		fmt.Fprintf(h.Out, "❌ Cannot reach Neovim at %q.\n", pulseErr.Details["address"])
		fmt.Fprintf(h.Out, "Run pulse from a Neovim terminal or set editor.address.\n")

	case errors.ErrCodeNoActiveDocument:
		fmt.Fprintf(h.Out, "❌ The editor has no file open.\n")

	case errors.ErrCodeCommandNotFound:
		fmt.Fprintf(h.Out, "❌ Required command not found. Make sure git is installed.\n")

	case errors.ErrCodeDaemonRunning:
		fmt.Fprintf(h.Out, "❌ pulse is already running (PID %v). Use 'pulse stop' first.\n", pulseErr.Details["pid"])

	default:
		fmt.Fprintf(h.Out, "❌ Error: %v\n", err)
	}

	if h.Verbose && pulseErr != nil {
		fmt.Fprintf(h.Out, "\nError details:\n%s\n", pulseErr.ToJSON())
	}
	return err
}
