// Package recordjson renders decoded records and schemas as JSON. Output is
// deterministic: fields appear in copybook declaration order, so serialized
// records and schemas can be compared byte-for-byte against golden copies.
package recordjson

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/bearlytools/copybook"
)

// MarshalRecord marshals one decoded (possibly hierarchical) record.
func MarshalRecord(r *copybook.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := MarshalRecordWriter(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalRecordWriter marshals one record to w.
func MarshalRecordWriter(w io.Writer, r *copybook.Record) error {
	// Copybooks can declare the same name more than once (REDEFINES
	// variants), so duplicate keys must be legal here.
	enc := jsontext.NewEncoder(w, jsontext.AllowDuplicateNames(true))
	return writeRecord(enc, r)
}

func writeRecord(enc *jsontext.Encoder, r *copybook.Record) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, f := range r.Fields {
		if err := enc.WriteToken(jsontext.String(f.Name)); err != nil {
			return err
		}
		if err := writeValue(enc, f.Value); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

func writeValue(enc *jsontext.Encoder, v copybook.Value) error {
	switch v.Kind {
	case copybook.KindNull:
		return enc.WriteToken(jsontext.Null)
	case copybook.KindText:
		return enc.WriteToken(jsontext.String(v.Text))
	case copybook.KindInteger:
		return enc.WriteToken(jsontext.Int(v.Int))
	case copybook.KindDecimal:
		// decimal.String renders a canonical JSON number.
		return enc.WriteValue(jsontext.Value(v.Dec.String()))
	case copybook.KindGroup:
		return writeRecord(enc, v.Group)
	case copybook.KindArray:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, e := range v.List {
			if err := writeValue(enc, e); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	}
	return fmt.Errorf("recordjson: unknown value kind %v", v.Kind)
}

// MarshalSchema marshals a schema description.
func MarshalSchema(s copybook.Schema) ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := writeSchema(enc, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSchema(enc *jsontext.Encoder, s copybook.Schema) error {
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, d := range s {
		if err := writeDescr(enc, d); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndArray)
}

func writeDescr(enc *jsontext.Encoder, d *copybook.FieldDescr) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	put := func(name string, tok jsontext.Token) error {
		if err := enc.WriteToken(jsontext.String(name)); err != nil {
			return err
		}
		return enc.WriteToken(tok)
	}
	if err := put("name", jsontext.String(d.Name)); err != nil {
		return err
	}
	if err := put("kind", jsontext.String(kindName(d.Kind))); err != nil {
		return err
	}
	if d.Kind != copybook.KindArray && d.Kind != copybook.KindGroup {
		if err := put("length", jsontext.Int(int64(d.Length))); err != nil {
			return err
		}
	}
	if d.Digits > 0 {
		if err := put("digits", jsontext.Int(int64(d.Digits))); err != nil {
			return err
		}
		if err := put("scale", jsontext.Int(int64(d.Scale))); err != nil {
			return err
		}
		if err := put("signed", jsontext.Bool(d.Signed)); err != nil {
			return err
		}
	}
	if d.Kind == copybook.KindArray {
		if d.MaxOccurs > 0 {
			if err := put("min_occurs", jsontext.Int(int64(d.MinOccurs))); err != nil {
				return err
			}
			if err := put("max_occurs", jsontext.Int(int64(d.MaxOccurs))); err != nil {
				return err
			}
		}
		if err := enc.WriteToken(jsontext.String("elem")); err != nil {
			return err
		}
		if err := writeDescr(enc, d.Elem); err != nil {
			return err
		}
	}
	if d.SelfReferential {
		if err := put("self_referential", jsontext.Bool(true)); err != nil {
			return err
		}
	}
	if len(d.Mapping) > 0 {
		if err := enc.WriteToken(jsontext.String("fields")); err != nil {
			return err
		}
		if err := writeSchema(enc, d.Mapping); err != nil {
			return err
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

func kindName(k copybook.Kind) string {
	switch k {
	case copybook.KindText:
		return "text"
	case copybook.KindInteger:
		return "integer"
	case copybook.KindDecimal:
		return "decimal"
	case copybook.KindGroup:
		return "group"
	case copybook.KindArray:
		return "array"
	default:
		return "null"
	}
}
