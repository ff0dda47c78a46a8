package metadata

import (
	"reflect"
)

// Metadata is a field type that can be easily detected by aliasql.
// Used as an embedded type on a model struct, and certain metadata can be added as struct tags.
// Currently supported tags:
//   tablename
type Metadata struct{}

var metadataType = reflect.TypeOf(Metadata{})

// IsMetadataField reports whether the struct field is the aliasql metadata marker
func IsMetadataField(field reflect.StructField) bool {
	return field.Type == metadataType
}
