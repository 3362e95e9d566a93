package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/rtcmint/internal/providers/agora"
	"github.com/darmiel/rtcmint/internal/providers/zoom"
	"github.com/darmiel/rtcmint/internal/secrets"
)

func TestBuildPayload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"channelName":"demo","uid":1}`), 0o644))

	got, err := buildPayload("@"+file, []string{"uid=42", "role=subscriber"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"channelName": "demo",
		"uid":         "42",
		"role":        "subscriber",
	}, got)

	got, err = buildPayload(`{"expireTime":60}`, nil)
	require.NoError(t, err)
	assert.Equal(t, json.Number("60"), got["expireTime"])

	for _, tc := range []struct {
		data string
		set  []string
	}{
		{data: `[1,2]`},
		{data: `null`},
		{data: "@" + filepath.Join(t.TempDir(), "missing.json")},
		{set: []string{"novalue"}},
		{set: []string{"=x"}},
	} {
		_, err := buildPayload(tc.data, tc.set)
		assert.Error(t, err, "%+v", tc)
	}
}

func TestInspectAgora(t *testing.T) {
	cert := "5cfd2fd1755d40ecb72977518be15d3b"
	token, err := (&agora.AccessToken{
		AppID:          "970ca35de60c44645bbae8a215061b33",
		AppCertificate: []byte(cert),
		ChannelName:    "demo",
		UID:            "42",
		Salt:           1,
		TS:             uint32(time.Now().Add(time.Hour).Unix()),
		Privileges:     agora.RoleSubscriber.Privileges(uint32(time.Now().Add(time.Hour).Unix())),
	}).Build()
	require.NoError(t, err)

	tokenInspectChannel, tokenInspectUID = "demo", 42
	t.Cleanup(func() { tokenInspectChannel, tokenInspectUID = "", 0 })

	var buf bytes.Buffer
	bundle := secrets.Load(secrets.MapResolver{secrets.AgoraAppCertificate: cert}, secrets.Names()...)
	require.NoError(t, inspectAgora(&buf, token, bundle))

	out := buf.String()
	assert.Contains(t, out, "970ca35de60c44645bbae8a215061b33")
	assert.Contains(t, out, "join_channel")
	assert.NotContains(t, out, "publish_audio")
	assert.Contains(t, out, "valid")
	assert.NotContains(t, out, "invalid")
}

func TestInspectJWT(t *testing.T) {
	cred, err := zoom.Issue(map[string]any{
		"sessionName":  "demo",
		"userIdentity": "alice",
	}, secrets.Load(secrets.MapResolver{
		secrets.ZoomSDKKey:    "zoom-key",
		secrets.ZoomSDKSecret: "zoom-secret",
	}, secrets.Names()...), time.Now)
	require.NoError(t, err)

	var buf bytes.Buffer
	wrong := secrets.Load(secrets.MapResolver{secrets.ZoomSDKSecret: "other"}, secrets.Names()...)
	require.NoError(t, inspectJWT(&buf, cred.Token, wrong))

	out := buf.String()
	assert.Contains(t, out, "zoom")
	assert.Contains(t, out, "tpc")
	assert.Contains(t, out, "zoom-key")
	assert.Contains(t, out, "invalid")

	assert.Error(t, inspectJWT(&buf, "not-a-token", nil))
}
