package layout

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Schema reflects a JSON Schema for the persisted layout Document, for
// editors and validators that consume the layout format.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: false,
		DoNotReference:             true,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Document{}))
	if schema == nil {
		return nil
	}
	schema.Version = jsonschema.Version
	schema.Title = "Venue Layout"
	schema.Description = "Persisted venue geometry: walls, entrances, exits, and attractors."
	return schema
}
