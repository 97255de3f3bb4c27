package fincalc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonObject writes the fields of a JSON object in the order they are added.
// The first error sticks and is returned by MarshalJSON.
type jsonObject struct {
	buf bytes.Buffer
	err error
}

// Field adds key with the JSON encoding of value.
func (o *jsonObject) Field(key string, value any) *jsonObject {
	return o.FieldIf(true, key, value)
}

// FieldIf adds key only when ok.
func (o *jsonObject) FieldIf(ok bool, key string, value any) *jsonObject {
	if o.err != nil || !ok {
		return o
	}
	b, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("cannot encode %q: %w", key, err)
		return o
	}
	o.comma()
	k, _ := json.Marshal(key)
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(b)
	return o
}

// Merge adds the fields of v, which must encode as a JSON object.
func (o *jsonObject) Merge(v any) *jsonObject {
	if o.err != nil {
		return o
	}
	b, err := json.Marshal(v)
	if err != nil {
		o.err = fmt.Errorf("cannot encode %T: %w", v, err)
		return o
	}
	b = bytes.TrimSpace(b)
	if len(b) < 2 || b[0] != '{' || b[len(b)-1] != '}' {
		o.err = fmt.Errorf("cannot merge %T: not a JSON object", v)
		return o
	}
	if inner := bytes.TrimSpace(b[1 : len(b)-1]); len(inner) > 0 {
		o.comma()
		o.buf.Write(inner)
	}
	return o
}

func (o *jsonObject) comma() {
	if o.buf.Len() > 0 {
		o.buf.WriteByte(',')
	}
}

func (o *jsonObject) MarshalJSON() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	out := make([]byte, 0, o.buf.Len()+2)
	out = append(out, '{')
	out = append(out, o.buf.Bytes()...)
	return append(out, '}'), nil
}
