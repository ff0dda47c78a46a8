/*
Package decoding is used to default to jsoniter for its decoder
*/
package decoding

import (
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/skuid/aliasql/metadata"
)

// Config specifies options for the aliasql decoder
type Config struct {
	TagKey string
	// ColumnTagKey names the struct tag whose column option is used as the
	// JSON name of fields that carry no TagKey tag.
	ColumnTagKey string
}

var metadataType = reflect.TypeOf(metadata.Metadata{})

// JsonIter Extension that lets model fields be read by their column names
type aliasqlExtension struct {
	jsoniter.DummyExtension
	config *Config
}

func (extension *aliasqlExtension) UpdateStructDescriptor(structDescriptor *jsoniter.StructDescriptor) {
	for _, binding := range structDescriptor.Fields {
		field := binding.Field
		if field.Type().Type1() == metadataType {
			binding.FromNames = []string{}
			binding.ToNames = []string{}
			continue
		}

		if _, hasTag := field.Tag().Lookup(extension.config.TagKey); hasTag {
			continue
		}

		column := columnName(field.Tag().Get(extension.config.ColumnTagKey))
		if column == "" {
			// Untagged fields are not serialized at all
			binding.FromNames = []string{}
			binding.ToNames = []string{}
			continue
		}
		binding.FromNames = []string{column}
		binding.ToNames = []string{column}
	}
}

func columnName(tag string) string {
	for _, option := range strings.Split(tag, ",") {
		if strings.HasPrefix(option, "column=") {
			return strings.TrimPrefix(option, "column=")
		}
	}
	return ""
}

// GetDecoder returns a decoder that implements the standard encoding/json api
func GetDecoder(config *Config) jsoniter.API {
	if config == nil {
		config = &Config{}
	}
	if config.TagKey == "" {
		config.TagKey = "json"
	}
	if config.ColumnTagKey == "" {
		config.ColumnTagKey = "aliasql"
	}
	api := jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
		TagKey:                 config.TagKey,
	}.Froze()
	api.RegisterExtension(&aliasqlExtension{
		config: config,
	})
	return api
}
