package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// Format identifies an external runtime input format.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// Decode binds external JSON/YAML/TOML text into the runtime value model
// per spec §6's binding table: null, boolean, integer, decimal, string,
// array, and object (string keys, duplicates rejected). On the JSON path
// an integer literal (no '.', 'e' or 'E') that does not fit int64 is an
// error; Decimal has no magnitude bound in any format.
func Decode(format Format, data []byte) (V, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		v, err := decodeJSONValue(dec)
		if err != nil {
			return V{}, oops.In("value").With("format", "json").Hint("invalid JSON").Wrap(err)
		}
		return v, nil
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return V{}, oops.In("value").With("format", "yaml").Hint("invalid YAML").Wrap(err)
		}
		return fromAny(normalizeYAML(raw))
	case FormatTOML:
		var raw any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return V{}, oops.In("value").With("format", "toml").Hint("invalid TOML").Wrap(err)
		}
		return fromAny(raw)
	default:
		return V{}, oops.In("value").Errorf("unknown input format %d", format)
	}
}

// decodeJSONValue walks JSON tokens directly (rather than unmarshalling
// into map[string]any) so that duplicate object keys can be rejected per
// spec §6; encoding/json's map decoding silently keeps the last value.
func decodeJSONValue(dec *json.Decoder) (V, error) {
	tok, err := dec.Token()
	if err != nil {
		return V{}, err
	}
	return jsonTokenToValue(dec, tok)
}

func jsonTokenToValue(dec *json.Decoder, tok json.Token) (V, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		if !strings.ContainsAny(t.String(), ".eE") {
			return V{}, oops.In("value").With("literal", t.String()).Hint("integer out of range").Errorf("integer literal does not fit in 64 bits")
		}
		f, err := t.Float64()
		if err != nil {
			return V{}, oops.In("value").With("literal", t.String()).Hint("number out of range").Wrap(err)
		}
		return Decimal(f), nil
	case json.Delim:
		switch t {
		case '[':
			var items []V
			for dec.More() {
				elemTok, err := dec.Token()
				if err != nil {
					return V{}, err
				}
				v, err := jsonTokenToValue(dec, elemTok)
				if err != nil {
					return V{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return V{}, err
			}
			return List(items), nil
		case '{':
			var fields []Field
			seen := make(map[string]struct{})
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return V{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return V{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				if _, dup := seen[key]; dup {
					return V{}, fmt.Errorf("duplicate object key %q", key)
				}
				seen[key] = struct{}{}
				valTok, err := dec.Token()
				if err != nil {
					return V{}, err
				}
				v, err := jsonTokenToValue(dec, valTok)
				if err != nil {
					return V{}, err
				}
				fields = append(fields, Field{Name: key, Value: v})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return V{}, err
			}
			return Object(fields), nil
		default:
			return V{}, fmt.Errorf("unexpected JSON delimiter %q", t)
		}
	default:
		return V{}, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

// normalizeYAML recursively rewrites map[string]interface{} keys that
// yaml.v3 sometimes decodes as map[interface{}]interface{} in nested
// structures back into string-keyed maps.
func normalizeYAML(in any) any {
	switch t := in.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = normalizeYAML(v)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[fmt.Sprintf("%v", k)] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = normalizeYAML(v)
		}
		return out
	default:
		return t
	}
}

func fromAny(in any) (V, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int64:
		return Int(t), nil
	case int:
		return Int(int64(t)), nil
	case float64:
		// No magnitude bound here: a float64 reaching this case is always
		// Decimal, never Integer (the int64/int cases above already claim
		// every value a YAML/TOML decoder resolved as an integer literal
		// that fits in 64 bits). The JSON path checks integer range
		// separately, in jsonTokenToValue.
		return Decimal(t), nil
	case string:
		return Str(t), nil
	case []byte:
		return Octets(t), nil
	case []any:
		items := make([]V, len(t))
		for i, e := range t {
			v, err := fromAny(e)
			if err != nil {
				return V{}, err
			}
			items[i] = v
		}
		return List(items), nil
	case map[string]any:
		fields := make([]Field, 0, len(t))
		for k, e := range t {
			v, err := fromAny(e)
			if err != nil {
				return V{}, err
			}
			fields = append(fields, Field{Name: k, Value: v})
		}
		return Object(fields), nil
	default:
		return V{}, fmt.Errorf("unsupported decoded type %T", in)
	}
}
