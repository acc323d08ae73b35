package questionbank

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON string

const schemaName = "questionbank.schema.json"

var (
	schemaPrinter = message.NewPrinter(language.English)
	bankSchema    = mustCompileSchema(schemaJSON)
)

// SchemaError lists every schema violation found in a question bank document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "question bank schema: " + strings.Join(e.Problems, "; ")
}

func mustCompileSchema(raw string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("parse embedded %s: %v", schemaName, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, doc); err != nil {
		panic(fmt.Sprintf("add %s resource: %v", schemaName, err))
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		panic(fmt.Sprintf("compile %s: %v", schemaName, err))
	}
	return schema
}

// validateDocument checks a YAML-decoded document and returns one line per violation.
func validateDocument(instance any) []string {
	err := bankSchema.Validate(instance)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var problems []string
	collectSchemaErrors(ve, &problems)
	return problems
}

func collectSchemaErrors(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, problems)
	}
}
