package fields

import (
	"github.com/bytedance/sonic"
)

// asMap renders the document with empty sentinels (zero numbers, empty
// strings) omitted, so key presence alone marks a field as provided.
func asMap(d Details) map[string]any {
	raw, err := sonic.Marshal(d)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func provided(m map[string]any, name string) bool {
	v, okKey := m[name]
	if !okKey || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case float64:
		// numeric 0 counts as "not yet provided"; legitimate values for
		// every numeric field here have a minimum of 1
		return t != 0
	}
	return true
}

// Completed returns the subset of required fields the document has values
// for, in the order given. It never mutates its input and repeated calls on
// the same document yield the same result.
func Completed(d Details, required []string) []string {
	m := asMap(d)
	var out []string
	for _, name := range required {
		if provided(m, name) {
			out = append(out, name)
		}
	}
	return out
}

// Pending returns required minus completed, in the order given.
func Pending(d Details, required []string) []string {
	m := asMap(d)
	var out []string
	for _, name := range required {
		if !provided(m, name) {
			out = append(out, name)
		}
	}
	return out
}

// Satisfied reports whether every required field has a value.
func Satisfied(d Details, required []string) bool {
	return len(Pending(d, required)) == 0
}
