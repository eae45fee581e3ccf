package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Persisted field names shared by the stat, graph and snapshot resources.
const (
	FieldID           = "id"
	FieldTitle        = "title"
	FieldQueryName    = "query_name"
	FieldColumnsOrder = "columns_order"
	FieldJSONResults  = "json_results"
	FieldFilters      = "filters"
	FieldSorting      = "sorting"
	FieldGridState    = "grid_state"
	FieldConfig       = "config"
)

// Resource is a raw API object keyed by member name. Members stay as raw JSON
// until a Field is requested so the encoded/decoded distinction survives.
type Resource map[string]json.RawMessage

// ParseResource decodes a JSON object into a Resource.
func ParseResource(data []byte) (Resource, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("payload: resource is empty")
	}
	var res Resource
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil, fmt.Errorf("payload: decode resource: %w", err)
	}
	return res, nil
}

// ParseResourceList decodes a JSON array of objects.
func ParseResourceList(data []byte) ([]Resource, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var list []Resource
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("payload: decode resource list: %w", err)
	}
	return list, nil
}

// ResourceFromMap builds a Resource from already decoded values, such as a
// YAML fixture. Strings stay strings so they are still treated as Encoded.
func ResourceFromMap(values map[string]any) (Resource, error) {
	res := make(Resource, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("payload: encode member %q: %w", key, err)
		}
		res[key] = raw
	}
	return res, nil
}

// Field returns the tagged union for the named member.
func (r Resource) Field(name string) Field {
	if r == nil {
		return Absent()
	}
	raw, ok := r[name]
	if !ok {
		return Absent()
	}
	return FieldFromJSON(raw)
}

// ID returns the resource identifier as a string, whether it was persisted as
// a number or a string.
func (r Resource) ID() string {
	return stringValue(r.Field(FieldID).Raw())
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
