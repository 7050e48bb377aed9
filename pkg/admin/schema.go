package admin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// addRouteSchemaJSON describes the shape of an add-route body. Value ranges
// are checked by route.Validate so clients get its messages.
const addRouteSchemaJSON = `{
  "type": "object",
  "required": ["method", "path"],
  "properties": {
    "method":   {"type": "string"},
    "path":     {"type": "string"},
    "status":   {"type": "integer"},
    "delayMs":  {"type": "integer", "minimum": 0},
    "delay_ms": {"type": "integer", "minimum": 0},
    "response": true
  }
}`

var addRouteSchema = mustCompileSchema("add-route.json", addRouteSchemaJSON)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("admin: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("admin: compile schema %s: %v", name, err))
	}
	return schema
}

// validateBody checks a decoded JSON document against schema and returns a
// client-facing description of the first violation.
func validateBody(schema *jsonschema.Schema, doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return errors.New(describeSchemaError(verr))
}

// describeSchemaError follows the first chain of causes to the leaf error.
func describeSchemaError(err *jsonschema.ValidationError) string {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	field := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
	if field == "" {
		return "Invalid request body: " + err.Message
	}
	return fmt.Sprintf("Invalid request body: %s: %s", field, err.Message)
}
