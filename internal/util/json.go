// Package util holds small encoding helpers shared by the config schema and the orchestrator channel.
package util

import (
	"encoding/json"

	"go.arcalot.io/lang"
)

// JSONEncode returns the JSON form of a value that is known to be encodable, such as a schema default. It panics
// otherwise.
func JSONEncode(value any) string {
	return string(lang.Must2(json.Marshal(value)))
}

// FlattenJSON turns a decoded JSON object into a string map. Strings are kept as they are, every other value is
// replaced by its JSON form so nested objects and numbers survive unchanged.
func FlattenJSON(object map[string]any) map[string]string {
	result := make(map[string]string, len(object))
	for key, value := range object {
		if s, ok := value.(string); ok {
			result[key] = s
			continue
		}
		result[key] = JSONEncode(value)
	}
	return result
}
