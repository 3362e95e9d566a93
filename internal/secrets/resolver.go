package secrets

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Names of the secrets consumed by the provider strategies.
const (
	AgoraAppID          = "AGORA_APP_ID"
	AgoraAppCertificate = "AGORA_APP_CERTIFICATE"

	TwilioAccountSID = "TWILIO_ACCOUNT_SID"
	TwilioAPIKey     = "TWILIO_API_KEY"
	TwilioAPISecret  = "TWILIO_API_SECRET"

	ZoomSDKKey    = "ZOOM_SDK_KEY"
	ZoomSDKSecret = "ZOOM_SDK_SECRET"
)

// Names returns every secret name known to the service.
func Names() []string {
	return []string{
		AgoraAppID, AgoraAppCertificate,
		TwilioAccountSID, TwilioAPIKey, TwilioAPISecret,
		ZoomSDKKey, ZoomSDKSecret,
	}
}

// Resolver looks up a named secret. An empty value must be reported as not found.
type Resolver interface {
	Lookup(name string) (string, bool)
}

// EnvResolver reads secrets straight from the process environment.
type EnvResolver struct{}

func (EnvResolver) Lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ViperResolver reads secrets through viper, so they can come from the
// environment (using the plain secret name, e.g. AGORA_APP_ID) or from the
// "secrets" section of the CLI config file (e.g. secrets.agora_app_id).
type ViperResolver struct {
	v *viper.Viper
}

func NewViperResolver(v *viper.Viper, names ...string) *ViperResolver {
	for _, name := range names {
		_ = v.BindEnv(viperKey(name), name)
	}
	return &ViperResolver{v: v}
}

func (r *ViperResolver) Lookup(name string) (string, bool) {
	key := viperKey(name)
	if !r.v.IsSet(key) {
		return "", false
	}
	val := r.v.GetString(key)
	if strings.TrimSpace(val) == "" {
		return "", false
	}
	return val, true
}

func viperKey(name string) string {
	return "secrets." + strings.ToLower(name)
}

// MapResolver is a static Resolver, mostly useful in tests and for the local CLI.
type MapResolver map[string]string

func (m MapResolver) Lookup(name string) (string, bool) {
	v, ok := m[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
