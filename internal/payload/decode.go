// Package payload decodes loosely typed JSON request bodies into strategy inputs.
//
// Clients send numbers both as JSON numbers and as strings ("uid": "42"), so decoding
// is weakly typed. Empty strings are never coerced to zero, booleans are never coerced
// at all, and field names must match exactly.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/rtcmint/internal/core"
)

// InvalidJSONMessage is returned for bodies that are not a single JSON object.
const InvalidJSONMessage = "Invalid JSON body"

// Parse decodes raw as a single JSON object. Numbers are kept as json.Number.
func Parse(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, &core.Error{Kind: core.KindClientInput, Message: InvalidJSONMessage, Err: err}
	}
	if m == nil {
		return nil, &core.Error{Kind: core.KindClientInput, Message: InvalidJSONMessage, Err: errors.New("body is null")}
	}
	// ensure there's no extra data
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &core.Error{Kind: core.KindClientInput, Message: InvalidJSONMessage, Err: errors.New("extra data in request body")}
	}
	return m, nil
}

// Decode maps the payload onto dst, a pointer to a struct with mapstructure tags.
func Decode(m map[string]any, dst any) error {
	dec, err := newDecoder(dst)
	if err != nil {
		return core.Internal("cannot create payload decoder", err)
	}
	if err := dec.Decode(m); err != nil {
		return core.ClientInput(flatten(err))
	}
	return nil
}

// Int64 coerces a single field value to an integer.
func Int64(field string, v any) (int64, error) {
	var out int64
	dec, err := newDecoder(&out)
	if err != nil {
		return 0, core.Internal("cannot create payload decoder", err)
	}
	if err := dec.Decode(v); err != nil {
		return 0, core.ClientInput(field + " must be an integer")
	}
	return out, nil
}

// String coerces a single field value to a string. Objects and lists are rejected.
func String(field string, v any) (string, error) {
	switch v.(type) {
	case map[string]any, []any:
		return "", core.ClientInput(field + " must be a string")
	}
	var out string
	dec, err := newDecoder(&out)
	if err != nil {
		return "", core.Internal("cannot create payload decoder", err)
	}
	if err := dec.Decode(v); err != nil {
		return "", core.ClientInput(field + " must be a string")
	}
	return out, nil
}

// RequiredString coerces a field to a string and rejects absent or empty values.
func RequiredString(field string, v any) (string, error) {
	if !Present(v) {
		return "", core.Required(field)
	}
	s, err := String(field, v)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", core.Required(field)
	}
	return s, nil
}

// Present reports whether the field was supplied. JSON null counts as absent.
func Present(v any) bool {
	return v != nil
}

func newDecoder(dst any) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(rejectBools, decimalNumbers),
		WeaklyTypedInput: true,
		MatchName:        exactName,
		Result:           dst,
	})
}

func exactName(mapKey, fieldName string) bool {
	return mapKey == fieldName
}

// rejectBools stops weak typing from turning true/false into 1/0 or "1"/"0".
func rejectBools(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Bool {
		return data, nil
	}
	for to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Bool, reflect.Interface:
		return data, nil
	}
	return nil, fmt.Errorf("%v is not a %s", data, to.Kind())
}

// decimalNumbers parses numeric strings in base 10 and never turns "" into 0.
func decimalNumbers(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	for to.Kind() == reflect.Ptr {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s := strings.TrimSpace(reflect.ValueOf(data).String())
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", s)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		s := strings.TrimSpace(reflect.ValueOf(data).String())
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", s)
		}
		return f, nil
	}
	return data, nil
}

func flatten(err error) string {
	var merr *mapstructure.Error
	if errors.As(err, &merr) {
		return "invalid payload: " + strings.Join(merr.Errors, "; ")
	}
	return fmt.Sprintf("invalid payload: %s", strings.ReplaceAll(err.Error(), "\n", " "))
}
