// Package twilio issues Twilio Programmable Video access tokens.
package twilio

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/payload"
	"github.com/darmiel/rtcmint/internal/secrets"
)

const (
	DefaultExpireTime = 24 * time.Hour

	// ContentType marks the JWT as a Twilio access token.
	ContentType = "twilio-fpa;v=1"
)

// Request is the issuance payload.
type Request struct {
	Identity   any `mapstructure:"identity"`
	ExpireTime any `mapstructure:"expireTime"`
	// Room optionally restricts the video grant to a single room.
	Room any `mapstructure:"room"`
}

// Grants is the "grants" claim of a Twilio access token.
type Grants struct {
	Identity string     `json:"identity"`
	Video    VideoGrant `json:"video"`
}

type VideoGrant struct {
	Room string `json:"room,omitempty"`
}

// Claims of a Twilio access token.
type Claims struct {
	jwt.RegisteredClaims
	Grants Grants `json:"grants"`
}

// Issue validates the payload and signs a video access token with the API secret.
func Issue(m map[string]any, bundle *secrets.Bundle, now core.Clock) (*core.Credential, error) {
	var req Request
	if err := payload.Decode(m, &req); err != nil {
		return nil, err
	}

	identity, err := payload.RequiredString("identity", req.Identity)
	if err != nil {
		return nil, err
	}

	ttl := DefaultExpireTime
	if payload.Present(req.ExpireTime) {
		secs, err := payload.Int64("expireTime", req.ExpireTime)
		if err != nil {
			return nil, err
		}
		if secs <= 0 {
			return nil, core.ClientInput("expireTime must be a positive number of seconds")
		}
		ttl = time.Duration(secs) * time.Second
	}

	var room string
	if payload.Present(req.Room) {
		if room, err = payload.String("room", req.Room); err != nil {
			return nil, err
		}
	}

	accountSID, err := bundle.Require(secrets.TwilioAccountSID)
	if err != nil {
		return nil, err
	}
	apiKey, err := bundle.Require(secrets.TwilioAPIKey)
	if err != nil {
		return nil, err
	}
	apiSecret, err := bundle.Require(secrets.TwilioAPISecret)
	if err != nil {
		return nil, err
	}

	issuedAt := now().Truncate(time.Second)
	exp := issuedAt.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", apiKey.Value(), issuedAt.Unix()),
			Issuer:    apiKey.Value(),
			Subject:   accountSID.Value(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Grants: Grants{
			Identity: identity,
			Video:    VideoGrant{Room: room},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = ContentType

	signed, err := token.SignedString(apiSecret.Bytes())
	if err != nil {
		return nil, core.Internal("signing twilio token failed", err)
	}

	return &core.Credential{
		Provider:  core.ProviderTwilio,
		Token:     signed,
		ExpiresAt: exp,
	}, nil
}
