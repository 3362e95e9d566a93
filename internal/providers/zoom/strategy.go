// Package zoom issues Zoom Video SDK session tokens.
package zoom

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/payload"
	"github.com/darmiel/rtcmint/internal/secrets"
)

const (
	DefaultExpiration    = 24 * time.Hour
	DefaultGeoRegions    = "CN"
	DefaultWebRtcMode    = 1
	DefaultRecordingFlag = 0

	// claimsVersion is the fixed protocol version of the Video SDK token.
	claimsVersion = 1
)

const (
	RoleAttendee = 0
	RoleHost     = 1
)

// Request is the issuance payload.
type Request struct {
	SessionName            any `mapstructure:"sessionName"`
	UserIdentity           any `mapstructure:"userIdentity"`
	Role                   any `mapstructure:"role"`
	SessionKey             any `mapstructure:"sessionKey"`
	VideoWebRtcMode        any `mapstructure:"videoWebRtcMode"`
	AudioWebRtcMode        any `mapstructure:"audioWebRtcMode"`
	ExpirationSeconds      any `mapstructure:"expirationSeconds"`
	GeoRegions             any `mapstructure:"geoRegions"`
	CloudRecordingOption   any `mapstructure:"cloudRecordingOption"`
	CloudRecordingElection any `mapstructure:"cloudRecordingElection"`
	TelemetryTrackingID    any `mapstructure:"telemetryTrackingId"`

	// SDKKey and SDKSecret override the configured credentials.
	SDKKey    any `mapstructure:"sdkKey"`
	SDKSecret any `mapstructure:"sdkSecret"`
}

// Issue validates the payload and signs a Video SDK JWT.
func Issue(m map[string]any, bundle *secrets.Bundle, now core.Clock) (*core.Credential, error) {
	var req Request
	if err := payload.Decode(m, &req); err != nil {
		return nil, err
	}

	sessionName, err := payload.RequiredString("sessionName", req.SessionName)
	if err != nil {
		return nil, err
	}
	userIdentity, err := payload.RequiredString("userIdentity", req.UserIdentity)
	if err != nil {
		return nil, err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	sdkKey, err := credential(req.SDKKey, "sdkKey", bundle, secrets.ZoomSDKKey)
	if err != nil {
		return nil, err
	}
	sdkSecret, err := credential(req.SDKSecret, "sdkSecret", bundle, secrets.ZoomSDKSecret)
	if err != nil {
		return nil, err
	}

	expiration, err := intOr(req.ExpirationSeconds, "expirationSeconds", int64(DefaultExpiration/time.Second))
	if err != nil {
		return nil, err
	}
	if expiration <= 0 {
		return nil, core.ClientInput("expirationSeconds must be a positive number of seconds")
	}
	videoMode, err := intOr(req.VideoWebRtcMode, "videoWebRtcMode", DefaultWebRtcMode)
	if err != nil {
		return nil, err
	}
	audioMode, err := intOr(req.AudioWebRtcMode, "audioWebRtcMode", DefaultWebRtcMode)
	if err != nil {
		return nil, err
	}
	recordingOption, err := intOr(req.CloudRecordingOption, "cloudRecordingOption", DefaultRecordingFlag)
	if err != nil {
		return nil, err
	}
	recordingElection, err := intOr(req.CloudRecordingElection, "cloudRecordingElection", DefaultRecordingFlag)
	if err != nil {
		return nil, err
	}
	geoRegions, err := parseGeoRegions(req.GeoRegions)
	if err != nil {
		return nil, err
	}
	sessionKey, hasSessionKey, err := optionalString(req.SessionKey, "sessionKey")
	if err != nil {
		return nil, err
	}
	telemetryID, hasTelemetryID, err := optionalString(req.TelemetryTrackingID, "telemetryTrackingId")
	if err != nil {
		return nil, err
	}

	issuedAt := now().Unix()
	expiresAt := issuedAt + expiration

	claims := (&claimSet{}).
		set("app_key", sdkKey).
		set("role_type", role).
		set("tpc", sessionName).
		set("version", claimsVersion).
		set("iat", issuedAt).
		set("exp", expiresAt).
		set("user_identity", userIdentity).
		setOptional("session_key", sessionKey, hasSessionKey).
		set("geo_regions", geoRegions).
		set("cloud_recording_option", recordingOption).
		set("cloud_recording_election", recordingElection).
		setOptional("telemetry_tracking_id", telemetryID, hasTelemetryID).
		set("video_webrtc_mode", videoMode).
		set("audio_webrtc_mode", audioMode)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.MapClaims()).SignedString([]byte(sdkSecret))
	if err != nil {
		return nil, core.Internal("signing zoom token failed", err)
	}

	return &core.Credential{
		Provider:  core.ProviderZoom,
		Token:     signed,
		ExpiresAt: time.Unix(expiresAt, 0),
		Metadata: map[string]any{
			"expiresAt":    expiresAt,
			"userIdentity": userIdentity,
			"sessionName":  sessionName,
			"role":         role,
		},
	}, nil
}

func parseRole(v any) (int64, error) {
	if !payload.Present(v) {
		return RoleAttendee, nil
	}
	role, err := payload.Int64("role", v)
	if err != nil || (role != RoleAttendee && role != RoleHost) {
		return 0, core.ClientInput("role must be 0 (attendee) or 1 (host)")
	}
	return role, nil
}

// credential prefers the payload override and falls back to the configured secret.
func credential(override any, field string, bundle *secrets.Bundle, name string) (string, error) {
	if payload.Present(override) {
		s, err := payload.String(field, override)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
	}
	secret, err := bundle.Require(name)
	if err != nil {
		return "", err
	}
	return secret.Value(), nil
}

func intOr(v any, field string, def int64) (int64, error) {
	if !payload.Present(v) {
		return def, nil
	}
	return payload.Int64(field, v)
}

func optionalString(v any, field string) (string, bool, error) {
	if !payload.Present(v) {
		return "", false, nil
	}
	s, err := payload.String(field, v)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// parseGeoRegions accepts a comma separated string or a list of regions.
func parseGeoRegions(v any) (string, error) {
	switch regions := v.(type) {
	case nil:
		return DefaultGeoRegions, nil
	case []any:
		parts := make([]string, 0, len(regions))
		for _, r := range regions {
			s, err := payload.String("geoRegions", r)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return payload.String("geoRegions", v)
	}
}
