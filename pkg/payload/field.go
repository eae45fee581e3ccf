package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies which branch of the Field union is populated.
type Kind int

const (
	// KindAbsent marks a missing or null value.
	KindAbsent Kind = iota
	// KindEncoded marks a string that may hold a serialised JSON document.
	KindEncoded
	// KindDecoded marks an already structured value.
	KindDecoded
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindEncoded:
		return "encoded"
	case KindDecoded:
		return "decoded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is the tagged union used for every persisted field.
type Field struct {
	kind    Kind
	encoded string
	decoded any
}

// Absent returns the empty Field.
func Absent() Field {
	return Field{kind: KindAbsent}
}

// Encoded wraps a string that may contain serialised JSON.
func Encoded(raw string) Field {
	return Field{kind: KindEncoded, encoded: raw}
}

// Decoded wraps an already structured value. A nil value yields Absent.
func Decoded(value any) Field {
	if value == nil {
		return Absent()
	}
	return Field{kind: KindDecoded, decoded: value}
}

// FieldOf classifies an arbitrary Go value: nil is Absent, strings are
// Encoded and everything else is Decoded.
func FieldOf(value any) Field {
	switch v := value.(type) {
	case nil:
		return Absent()
	case string:
		return Encoded(v)
	case Field:
		return v
	default:
		return Decoded(v)
	}
}

// FieldFromJSON classifies a raw JSON member. Missing members and JSON null are
// Absent, JSON strings are Encoded and any other JSON value is Decoded.
// Malformed JSON is kept as an Encoded string of the raw bytes.
func FieldFromJSON(raw json.RawMessage) Field {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Absent()
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return Encoded(s)
		}
		return Encoded(string(trimmed))
	}
	value, err := decodeJSON(trimmed)
	if err != nil {
		return Encoded(string(trimmed))
	}
	return Decoded(value)
}

// Kind reports the populated branch.
func (f Field) Kind() Kind {
	return f.kind
}

// IsAbsent reports whether the field is missing or null.
func (f Field) IsAbsent() bool {
	return f.kind == KindAbsent
}

// Raw returns the value as received: the string for Encoded fields, the
// structure for Decoded fields and nil for Absent ones.
func (f Field) Raw() any {
	switch f.kind {
	case KindEncoded:
		return f.encoded
	case KindDecoded:
		return f.decoded
	default:
		return nil
	}
}

// Decode resolves the field and reports whether an Encoded string failed to
// decode. On failure the original string is returned alongside the error.
func (f Field) Decode() (any, error) {
	switch f.kind {
	case KindAbsent:
		return nil, nil
	case KindDecoded:
		return f.decoded, nil
	}
	value, err := decodeJSON([]byte(f.encoded))
	if err != nil {
		return f.encoded, err
	}
	return value, nil
}

// Value resolves the field leniently: decode failures return the original
// string unchanged.
func (f Field) Value() any {
	value, _ := f.Decode()
	return value
}

// ParseField is the lenient normalization function applied to every persisted
// field. nil stays nil, strings are decoded as JSON when possible and returned
// unchanged otherwise, structured values are returned as-is. Applying it to an
// already decoded value or to a non-JSON string is a no-op.
func ParseField(raw any) any {
	return FieldOf(raw).Value()
}

var errTrailingData = errors.New("payload: trailing data after JSON value")

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("payload: decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return value, nil
}
