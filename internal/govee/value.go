package govee

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// A Value is the state.value of a capability. Depending on the device model it is a
// raw number, a numeric string, or an object holding the number under some key. The
// union keeps object members in document order: coercion falls back to the first
// numeric member when none of the well-known keys are present.
type Value struct {
	kind    valueKind
	number  float64
	text    string
	members []member
}

type valueKind int

const (
	valueAbsent valueKind = iota
	valueNumber
	valueString
	valueObject
	valueOther
)

type member struct {
	key   string
	value Value
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeValue(dec)
	if err != nil {
		return fmt.Errorf("capability value: %w", err)
	}
	*v = parsed
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{kind: valueOther}, nil
		}
		return Value{kind: valueNumber, number: f}, nil
	case string:
		return Value{kind: valueString, text: t}, nil
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return skipCompound(dec)
		}
	}
	// bool or null
	return Value{kind: valueOther}, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	v := Value{kind: valueObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("unexpected object key %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		v.members = append(v.members, member{key: key, value: val})
	}
	// consume closing brace
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// skipCompound consumes the remainder of an array (or nested object) and discards it.
func skipCompound(dec *json.Decoder) (Value, error) {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[', '{':
				depth++
			case ']', '}':
				depth--
			}
		}
	}
	return Value{kind: valueOther}, nil
}

// candidateKeys are tried in order before falling back to the first numeric member.
var candidateKeys = []string{"current", "value", "temperature", "humidity"}

// Float coerces the value to a number. Object values are searched by candidate key
// first, then by document order; only scalar members (numbers and numeric strings)
// qualify.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.number, true
	case valueString:
		f, err := strconv.ParseFloat(v.text, 64)
		return f, err == nil
	case valueObject:
		for _, key := range candidateKeys {
			for _, m := range v.members {
				if m.key != key {
					continue
				}
				if f, ok := m.value.scalarFloat(); ok {
					return f, true
				}
				break
			}
		}
		for _, m := range v.members {
			if f, ok := m.value.scalarFloat(); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// scalarFloat coerces numbers and numeric strings only; nested objects do not qualify.
func (v Value) scalarFloat() (float64, bool) {
	switch v.kind {
	case valueNumber:
		return v.number, true
	case valueString:
		f, err := strconv.ParseFloat(v.text, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// A Capability is one (type, instance) tuple of a capability state response.
type Capability struct {
	Type     string          `json:"type"`
	Instance string          `json:"instance"`
	State    CapabilityState `json:"state"`
}

type CapabilityState struct {
	Value Value `json:"value"`
}

type Capabilities []Capability

// Find returns the coerced value of the first capability whose instance or type
// contains keyword (case-insensitive), or nil if no capability matches or its value
// cannot be coerced.
func (c Capabilities) Find(keyword string) *float64 {
	keyword = strings.ToLower(keyword)
	for _, capability := range c {
		if !strings.Contains(strings.ToLower(capability.Instance), keyword) &&
			!strings.Contains(strings.ToLower(capability.Type), keyword) {
			continue
		}
		if f, ok := capability.State.Value.Float(); ok {
			return &f
		}
		return nil
	}
	return nil
}
