package chain

import (
	"fmt"
	"reflect"
)

// FieldLayer exposes the exported fields of a fixed-schema struct as a
// read-only Layer[string, any]. Field names are the keys; a `chain:"name"`
// tag overrides the key and `chain:"-"` hides the field.
type FieldLayer struct {
	value  reflect.Value
	fields map[string]int
	keys   []string
}

// NewFieldLayer reflects over record, which must be a struct or a pointer
// to one. Passing a pointer keeps later mutations of the struct visible
// through the layer; passing by value snapshots it.
func NewFieldLayer(record any) (*FieldLayer, error) {
	value := reflect.ValueOf(record)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("chain: field layer requires a struct, got nil pointer")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("chain: field layer requires a struct, got %T", record)
	}

	t := value.Type()
	fields := make(map[string]int, t.NumField())
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("chain"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields[name] = i
		keys = append(keys, name)
	}
	return &FieldLayer{value: value, fields: fields, keys: keys}, nil
}

func (l *FieldLayer) Contains(key string) bool {
	_, ok := l.fields[key]
	return ok
}

func (l *FieldLayer) Get(key string) (any, bool) {
	index, ok := l.fields[key]
	if !ok {
		return nil, false
	}
	return l.value.Field(index).Interface(), true
}

// Keys returns the field keys in declaration order.
func (l *FieldLayer) Keys() []string {
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out
}
