package settings

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

type recordField struct {
	key   string
	index int
}

// recordFields maps every JSON key of Record to its struct field.
var recordFields = func() []recordField {
	t := reflect.TypeFor[Record]()
	fields := make([]recordField, 0, t.NumField())
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("json")
		key, _, _ := strings.Cut(tag, ",")
		if key == "" || key == "-" {
			continue
		}
		fields = append(fields, recordField{key: key, index: i})
	}
	return fields
}()

// Keys returns the recognized settings keys in declaration order.
func Keys() []string {
	keys := make([]string, len(recordFields))
	for i, f := range recordFields {
		keys[i] = f.key
	}
	return keys
}

// merge overlays raw onto dst. Unknown keys are ignored and values that
// cannot be decoded or coerced to the field type leave the field untouched.
func merge(dst *Record, raw map[string]json.RawMessage) {
	v := reflect.ValueOf(dst).Elem()
	for _, f := range recordFields {
		msg, ok := raw[f.key]
		if !ok {
			continue
		}
		field := v.Field(f.index)
		if val, ok := decodeValue(msg, field.Type()); ok {
			field.Set(val)
		}
	}
}

func decodeValue(msg json.RawMessage, typ reflect.Type) (reflect.Value, bool) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return reflect.Value{}, false
	}

	ptr := reflect.New(typ)
	if err := json.Unmarshal(msg, ptr.Interface()); err == nil {
		return ptr.Elem(), true
	}

	var scalar any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&scalar); err != nil {
		return reflect.Value{}, false
	}
	return coerce(scalar, typ)
}

// coerce converts scalars written by older builds, such as a numeric quality
// or a string-encoded boolean, into the declared field type.
func coerce(v any, typ reflect.Type) (reflect.Value, bool) {
	switch typ.Kind() {
	case reflect.String:
		if n, ok := v.(json.Number); ok {
			return reflect.ValueOf(n.String()).Convert(typ), true
		}
	case reflect.Bool:
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return reflect.ValueOf(b).Convert(typ), true
			}
		}
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil && (i == 0 || i == 1) {
				return reflect.ValueOf(i == 1).Convert(typ), true
			}
		}
	case reflect.Int:
		switch x := v.(type) {
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
				return reflect.ValueOf(i).Convert(typ), true
			}
		case json.Number:
			if f, err := x.Float64(); err == nil && f == float64(int(f)) {
				return reflect.ValueOf(int(f)).Convert(typ), true
			}
		}
	}
	return reflect.Value{}, false
}
