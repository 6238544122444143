package model

import "github.com/go-viper/mapstructure/v2"

// Decode maps a raw document onto a typed model. Numeric fields are coerced
// weakly because the store returns int64 or float64 depending on how a
// document was written.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(data)
}

// Int coerces a raw document value to int64, defaulting to 0.
func Int(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// Str coerces a raw document value to string, defaulting to "".
func Str(v any) string {
	s, _ := v.(string)
	return s
}
