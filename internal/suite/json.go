package suite

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	reflect "github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
)

func unmarshalJSONUseNumber(b []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(b))
	decoder.UseNumber()
	return decoder.Decode(v)
}

func decodeJSONNumberRecursive(v any) (any, error) {
	switch vv := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(vv))
		for key, value := range vv {
			var err error
			m[key], err = decodeJSONNumberRecursive(value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return m, nil

	case []any:
		s := make([]any, len(vv))
		for i, value := range vv {
			var err error
			s[i], err = decodeJSONNumberRecursive(value)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return s, nil

	case json.Number:
		return decodeJSONNumber(vv)

	default:
		return v, nil
	}
}

func decodeJSONNumber(n json.Number) (any, error) {
	if i := strings.IndexByte(n.String(), '.'); i == -1 {
		if n, err := n.Int64(); errors.Is(err, strconv.ErrSyntax) {
			// retry parse as float64
		} else {
			return n, err
		}
	}
	return n.Float64()
}

func decodeSuiteDef(raw any) (*suiteDef, error) {
	var def suiteDef
	if err := mapstructure.Decode(raw, &def); err != nil {
		return nil, fmt.Errorf("mapstructure.Decode: %w", err)
	}
	return &def, nil
}

// normalizeExpected converts any numeric expected value to float64 by
// reflect-kind dispatch, so int64/float64 values coming out of the
// JSON number decoding (and plain Go numbers in tests) are accepted alike.
func normalizeExpected(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f := float64(rv.Int())
		return &f, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f := float64(rv.Uint())
		return &f, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return &f, nil
	default:
		return nil, fmt.Errorf("expected value must be a number but got %T", v)
	}
}
