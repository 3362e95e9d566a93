package secrets

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/rtcmint/internal/core"
)

func TestBundle_Require(t *testing.T) {
	b := Load(MapResolver{
		AgoraAppID:          "app",
		AgoraAppCertificate: "",
	}, Names()...)

	s, err := b.Require(AgoraAppID)
	require.NoError(t, err)
	assert.Equal(t, "app", s.Value())

	_, err = b.Require(AgoraAppCertificate)
	require.Error(t, err)
	assert.Equal(t, core.KindConfiguration, core.KindOf(err))
	assert.Equal(t, "AGORA_APP_CERTIFICATE is not configured", err.Error())

	assert.Equal(t, []string{AgoraAppID}, b.Present())
}

func TestBundle_NilIsEmpty(t *testing.T) {
	var b *Bundle
	_, err := b.Require(ZoomSDKKey)
	assert.Equal(t, core.KindConfiguration, core.KindOf(err))
	assert.Empty(t, b.Present())
}

func TestSecret_Redacts(t *testing.T) {
	s := Secret("hunter2")
	assert.Equal(t, redacted, fmt.Sprint(s))
	assert.Equal(t, redacted, fmt.Sprintf("%#v", s))

	out, err := json.Marshal(map[string]Secret{"k": s})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.Equal(t, "hunter2", s.Value())
}

func TestEnvResolver(t *testing.T) {
	t.Setenv("RTCMINT_TEST_SET", "value")
	t.Setenv("RTCMINT_TEST_EMPTY", "  ")

	v, ok := EnvResolver{}.Lookup("RTCMINT_TEST_SET")
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = EnvResolver{}.Lookup("RTCMINT_TEST_EMPTY")
	assert.False(t, ok, "blank values must not count as configured")

	_, ok = EnvResolver{}.Lookup("RTCMINT_TEST_UNSET_SURELY")
	assert.False(t, ok)
}

func TestViperResolver(t *testing.T) {
	t.Setenv(TwilioAPIKey, "SKxxx")

	v := viper.New()
	v.Set("secrets.zoom_sdk_key", "from-file")
	r := NewViperResolver(v, Names()...)

	got, ok := r.Lookup(TwilioAPIKey)
	assert.True(t, ok)
	assert.Equal(t, "SKxxx", got)

	got, ok = r.Lookup(ZoomSDKKey)
	assert.True(t, ok)
	assert.Equal(t, "from-file", got)

	_, ok = r.Lookup(ZoomSDKSecret)
	assert.False(t, ok)
}
