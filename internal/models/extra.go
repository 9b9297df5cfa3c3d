package models

import (
	"encoding/json"
	"reflect"
	"strings"
)

// marshalWithExtra encodes v and merges extra keys that v does not already define.
func marshalWithExtra(v interface{}, extra map[string]interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, taken := m[k]; !taken {
			m[k] = val
		}
	}
	return json.Marshal(m)
}

// DecodeWithExtra unmarshals body into v (a struct pointer) and returns the
// top-level keys v has no json field for, minus the dropped keys.
func DecodeWithExtra(body []byte, v interface{}, drop ...string) (map[string]interface{}, error) {
	if err := json.Unmarshal(body, v); err != nil {
		return nil, err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(body, &all); err != nil {
		return nil, err
	}
	known := jsonFieldNames(v)
	for _, d := range drop {
		known[d] = true
	}
	extra := map[string]interface{}{}
	for k, val := range all {
		if !known[k] && !strings.HasPrefix(k, "$") {
			extra[k] = val
		}
	}
	return extra, nil
}

// Fields decodes a JSON object into a field map for $set updates,
// removing protected keys and operator-looking keys.
func Fields(body []byte, protected ...string) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	for _, p := range protected {
		delete(m, p)
	}
	for k := range m {
		if strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			delete(m, k)
		}
	}
	return m, nil
}

func jsonFieldNames(v interface{}) map[string]bool {
	out := map[string]bool{}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return out
	}
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if name != "" && name != "-" {
			out[name] = true
		}
	}
	return out
}
