package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/rtcmint/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "object", raw: `{"a": 1}`},
		{name: "empty object", raw: `{}`},
		{name: "empty body", raw: ``, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "array", raw: `[1,2]`, wantErr: true},
		{name: "truncated", raw: `{"a": `, wantErr: true},
		{name: "trailing data", raw: `{"a": 1} {"b": 2}`, wantErr: true},
		{name: "trailing whitespace", raw: "{\"a\": 1}\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, core.KindClientInput, core.KindOf(err))
				var e *core.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, InvalidJSONMessage, e.Message)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestParse_KeepsNumbers(t *testing.T) {
	m, err := Parse([]byte(`{"uid": 4294967295}`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("4294967295"), m["uid"])
}

func TestInt64(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int64
		wantErr bool
	}{
		{name: "json number", in: json.Number("42"), want: 42},
		{name: "zero", in: json.Number("0"), want: 0},
		{name: "numeric string", in: "42", want: 42},
		{name: "padded string", in: " 7 ", want: 7},
		{name: "leading zero stays decimal", in: "010", want: 10},
		{name: "float64", in: float64(12), want: 12},
		{name: "negative", in: "-3", want: -3},
		{name: "empty string", in: "", wantErr: true},
		{name: "word", in: "abc", wantErr: true},
		{name: "fraction", in: json.Number("1.5"), wantErr: true},
		{name: "object", in: map[string]any{}, wantErr: true},
		{name: "true", in: true, wantErr: true},
		{name: "false", in: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Int64("uid", tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "uid must be an integer", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	got, err := String("role", "subscriber")
	require.NoError(t, err)
	assert.Equal(t, "subscriber", got)

	got, err = String("role", json.Number("5"))
	require.NoError(t, err)
	assert.Equal(t, "5", got)

	_, err = String("role", []any{"a"})
	assert.EqualError(t, err, "role must be a string")

	_, err = String("role", true)
	assert.EqualError(t, err, "role must be a string")
}

func TestDecode(t *testing.T) {
	type target struct {
		Name  string `mapstructure:"name"`
		Count *int64 `mapstructure:"count"`
		Extra any    `mapstructure:"extra"`
	}

	var got target
	require.NoError(t, Decode(map[string]any{"name": "n", "count": "3", "extra": []any{"x"}}, &got))
	assert.Equal(t, "n", got.Name)
	require.NotNil(t, got.Count)
	assert.Equal(t, int64(3), *got.Count)
	assert.Equal(t, []any{"x"}, got.Extra)

	var absent target
	require.NoError(t, Decode(map[string]any{"name": "n"}, &absent))
	assert.Nil(t, absent.Count, "absent fields stay nil")

	var folded target
	require.NoError(t, Decode(map[string]any{"NAME": "n", "Count": "3"}, &folded))
	assert.Empty(t, folded.Name, "keys are case sensitive")
	assert.Nil(t, folded.Count)

	var flag target
	require.NoError(t, Decode(map[string]any{"extra": true}, &flag))
	assert.Equal(t, true, flag.Extra, "untyped fields keep booleans")
	assert.Error(t, Decode(map[string]any{"count": true}, &target{}))
	assert.Error(t, Decode(map[string]any{"name": false}, &target{}))

	err := Decode(map[string]any{"count": "x"}, &target{})
	require.Error(t, err)
	assert.Equal(t, core.KindClientInput, core.KindOf(err))
	assert.Contains(t, err.Error(), "invalid payload")
}
