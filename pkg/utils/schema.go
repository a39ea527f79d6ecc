// Package utils holds helpers shared by the engine and the market data packages.
package utils

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
)

// SchemaVersion is the JSON schema draft every generated schema declares.
const SchemaVersion = "http://json-schema.org/draft-07/schema#"

const optionalPkgPath = "github.com/moznion/go-optional"

var timeType = reflect.TypeOf(time.Time{})

// Schema reflects the JSON schema of v with every definition inlined, so the properties
// sit at the top level. optional.Option fields are described by their element type.
func Schema(v any, title, description string) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		Mapper:         optionMapper,
	}

	schema := reflector.Reflect(v)
	schema.Version = SchemaVersion
	schema.Title = title
	schema.Description = description

	return schema
}

// SchemaJSON returns Schema encoded as indented JSON.
func SchemaJSON(v any, title, description string) (string, error) {
	data, err := json.MarshalIndent(Schema(v, title, description), "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// optionMapper describes optional.Option[T] as T instead of the slice it is built on.
func optionMapper(t reflect.Type) *jsonschema.Schema {
	if t.Kind() != reflect.Slice || t.PkgPath() != optionalPkgPath || !strings.HasPrefix(t.Name(), "Option[") {
		return nil
	}

	elem := t.Elem()
	if elem == timeType {
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	}

	switch elem.Kind() {
	case reflect.String:
		return &jsonschema.Schema{Type: "string"}
	case reflect.Bool:
		return &jsonschema.Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &jsonschema.Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &jsonschema.Schema{Type: "number"}
	default:
		return nil
	}
}
