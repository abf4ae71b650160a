// Command schema-generator writes the JSON Schema for pulse.yml, including
// the logging extension, to schema/definitions/pulse.schema.json.
package main

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/pulse/config"
	"github.com/grovetools/pulse/logging"
	"github.com/invopop/jsonschema"
)

func main() {
	baseBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	var base map[string]interface{}
	if err := json.Unmarshal(baseBytes, &base); err != nil {
		log.Fatalf("Error parsing base schema: %v", err)
	}

	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		DoNotReference:            true,
		FieldNameTag:              "yaml",
	}
	loggingSchema := r.Reflect(&logging.Config{})
	loggingSchema.Version = ""
	loggingSchema.Description = "Logging settings for pulse components."
	loggingSchema.Required = nil

	props, ok := base["properties"].(map[string]interface{})
	if !ok {
		props = make(map[string]interface{})
		base["properties"] = props
	}
	props["logging"] = loggingSchema

	data, err := json.MarshalIndent(base, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	outputDir := "schema/definitions"
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	outputPath := filepath.Join(outputDir, "pulse.schema.json")
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", outputPath)
}
