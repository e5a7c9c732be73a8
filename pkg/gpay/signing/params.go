package signing

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Params is the set of fields covered by a signature. Iteration order is
// irrelevant; Canonicalize imposes one.
type Params map[string]Value

// Canonicalize renders p as key=value pairs sorted by key and joined with '&'.
// Keys and values are written raw, without URL encoding.
func Canonicalize(p Params) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(p[k].String())
	}
	return sb.String()
}

// Canonical is shorthand for Canonicalize(p)
func (p Params) Canonical() string {
	return Canonicalize(p)
}

// Clone returns a shallow copy of p
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Native returns p as a map of native Go values
func (p Params) Native() map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// MarshalJSON encodes p as a JSON object keeping each value's type
func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Native())
}

// ParseObject decodes a JSON object of scalars into Params
func ParseObject(data []byte) (Params, error) {
	var raw map[string]interface{}
	if err := decodeJSON(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected a JSON object")
	}
	return FromMap(raw)
}

// FromMap converts decoded JSON fields into Params. Every value must be a scalar.
func FromMap(m map[string]interface{}) (Params, error) {
	out := make(Params, len(m))
	for k, raw := range m {
		v, err := FromJSON(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", k)
		}
		out[k] = v
	}
	return out, nil
}

// Select builds Params from exactly the named fields of m. A field missing
// from m is included as Null so that it still takes part in the signature.
func Select(m map[string]interface{}, fields []string) (Params, error) {
	out := make(Params, len(fields))
	for _, k := range fields {
		v, err := FromJSON(m[k])
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", k)
		}
		out[k] = v
	}
	return out, nil
}

func decodeJSON(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode json")
	}
	return nil
}
