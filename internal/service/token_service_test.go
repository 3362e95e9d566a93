package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/providers/agora"
	"github.com/darmiel/rtcmint/internal/secrets"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func newTestService() *TokenService {
	bundle := secrets.Load(secrets.MapResolver{
		secrets.AgoraAppID:          "970ca35de60c44645bbae8a215061b33",
		secrets.AgoraAppCertificate: "5cfd2fd1755d40ecb72977518be15d3b",
		secrets.TwilioAccountSID:    "ACtest",
		secrets.TwilioAPIKey:        "SKtest",
		secrets.TwilioAPISecret:     "twilio-secret",
		secrets.ZoomSDKKey:          "zoom-key",
		secrets.ZoomSDKSecret:       "zoom-secret",
	}, secrets.Names()...)
	return NewTokenService(bundle, WithClock(func() time.Time { return fixedNow }))
}

// explodingReader fails the test when the body is read.
type explodingReader struct{ t *testing.T }

func (r explodingReader) Read([]byte) (int, error) {
	r.t.Fatal("body must not be read")
	return 0, nil
}

func TestIssue_UnknownProviderSkipsBody(t *testing.T) {
	svc := newTestService()
	_, err := svc.Issue(context.Background(), "foo-token", explodingReader{t})
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	var e *core.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Unsupported provider", e.Message)
}

func TestIssue(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		body     string
		wantKind core.Kind
		wantMsg  string
	}{
		{name: "agora", provider: "agora", body: `{"channelName":"c","uid":0}`},
		{name: "legacy route", provider: "agora-token", body: `{"channelName":"c","uid":"7"}`},
		{name: "twilio", provider: "twilio", body: `{"identity":"alice"}`},
		{name: "zoom", provider: "zoom", body: `{"sessionName":"s","userIdentity":"u"}`},
		{name: "malformed json", provider: "zoom", body: `{"sessionName":`, wantKind: core.KindClientInput, wantMsg: "Invalid JSON body"},
		{name: "array body", provider: "twilio", body: `[]`, wantKind: core.KindClientInput, wantMsg: "Invalid JSON body"},
		{name: "missing field", provider: "twilio", body: `{}`, wantKind: core.KindClientInput, wantMsg: "identity is required"},
		{name: "missing uid", provider: "agora", body: `{"channelName":"c"}`, wantKind: core.KindClientInput, wantMsg: "uid is required"},
		{name: "invalid zoom role", provider: "zoom", body: `{"sessionName":"s","userIdentity":"u","role":3}`, wantKind: core.KindClientInput, wantMsg: "role must be 0 (attendee) or 1 (host)"},
	}

	svc := newTestService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred, err := svc.Issue(context.Background(), tt.provider, strings.NewReader(tt.body))
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, core.KindOf(err))
				var e *core.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.wantMsg, e.Message)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cred.Token)
			assert.True(t, cred.ExpiresAt.After(fixedNow))
		})
	}
}

func TestIssue_BodyTooLarge(t *testing.T) {
	svc := newTestService()
	body := `{"identity":"` + strings.Repeat("a", MaxPayloadBytes) + `"}`
	_, err := svc.Issue(context.Background(), "twilio", strings.NewReader(body))
	require.Error(t, err)
	assert.Equal(t, core.KindClientInput, core.KindOf(err))
}

func TestIssue_MisconfiguredProvider(t *testing.T) {
	svc := NewTokenService(secrets.Load(secrets.MapResolver{}, secrets.Names()...))
	_, err := svc.Issue(context.Background(), "twilio", strings.NewReader(`{"identity":"a"}`))
	require.Error(t, err)
	assert.Equal(t, core.KindConfiguration, core.KindOf(err))
	assert.Equal(t, "TWILIO_ACCOUNT_SID is not configured", err.Error())
}

func TestStrategyFor_CoversAllProviders(t *testing.T) {
	for _, id := range core.Providers() {
		s, err := StrategyFor(id)
		require.NoError(t, err, id)
		assert.NotNil(t, s)
	}
	_, err := StrategyFor("matrix")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestIssue_ConcurrentRequestsDoNotInterfere(t *testing.T) {
	svc := newTestService()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, 3*n)

	for i := 0; i < n; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			channel := fmt.Sprintf("room-%d", i)
			cred, err := svc.Issue(context.Background(), "agora",
				strings.NewReader(fmt.Sprintf(`{"channelName":%q,"uid":%d}`, channel, i+1)))
			if err != nil {
				errs <- err
				return
			}
			d, err := agora.Decode(cred.Token)
			if err != nil {
				errs <- err
				return
			}
			if !d.Verify([]byte("5cfd2fd1755d40ecb72977518be15d3b"), channel, fmt.Sprint(i+1)) {
				errs <- fmt.Errorf("agora token %d bound to the wrong channel or uid", i)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			identity := fmt.Sprintf("user-%d", i)
			cred, err := svc.Issue(context.Background(), "twilio",
				strings.NewReader(fmt.Sprintf(`{"identity":%q}`, identity)))
			if err != nil {
				errs <- err
				return
			}
			claims := jwt.MapClaims{}
			if _, _, err := jwt.NewParser().ParseUnverified(cred.Token, claims); err != nil {
				errs <- err
				return
			}
			if got := claims["grants"].(map[string]any)["identity"]; got != identity {
				errs <- fmt.Errorf("twilio token %d has identity %v", i, got)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("session-%d", i)
			cred, err := svc.Issue(context.Background(), "zoom",
				strings.NewReader(fmt.Sprintf(`{"sessionName":%q,"userIdentity":"u"}`, session)))
			if err != nil {
				errs <- err
				return
			}
			if cred.Metadata["sessionName"] != session {
				errs <- fmt.Errorf("zoom credential %d echoed session %v", i, cred.Metadata["sessionName"])
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
