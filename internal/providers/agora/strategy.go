// Package agora issues Agora RTC access tokens ("006" format) bound to a channel and uid.
package agora

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/payload"
	"github.com/darmiel/rtcmint/internal/secrets"
)

const (
	DefaultExpireTime = 24 * time.Hour

	// messageTTL is how long the signed message itself stays valid,
	// independent of the privilege expiry.
	messageTTL = 24 * time.Hour
)

// Role selects the privileges bound into the token.
type Role int

const (
	RolePublisher  Role = 1
	RoleSubscriber Role = 2
)

// ParseRole maps the request role to a Role. Only the literal "subscriber"
// selects the subscriber scope, everything else is treated as publisher.
func ParseRole(s string) Role {
	if s == "subscriber" {
		return RoleSubscriber
	}
	return RolePublisher
}

func (r Role) String() string {
	if r == RoleSubscriber {
		return "subscriber"
	}
	return "publisher"
}

// Privileges returns the privileges of the role, each expiring at expireTS.
func (r Role) Privileges(expireTS uint32) map[Privilege]uint32 {
	p := map[Privilege]uint32{
		PrivilegeJoinChannel: expireTS,
	}
	if r == RolePublisher {
		p[PrivilegePublishAudioStream] = expireTS
		p[PrivilegePublishVideoStream] = expireTS
		p[PrivilegePublishDataStream] = expireTS
	}
	return p
}

// Request is the issuance payload.
type Request struct {
	ChannelName any `mapstructure:"channelName"`
	UID         any `mapstructure:"uid"`
	Role        any `mapstructure:"role"`
	ExpireTime  any `mapstructure:"expireTime"`
}

// Issue validates the payload and mints a token with a random salt.
func Issue(m map[string]any, bundle *secrets.Bundle, now core.Clock) (*core.Credential, error) {
	return issue(m, bundle, now, randomSalt())
}

func issue(m map[string]any, bundle *secrets.Bundle, now core.Clock, salt uint32) (*core.Credential, error) {
	var req Request
	if err := payload.Decode(m, &req); err != nil {
		return nil, err
	}

	channel, err := payload.RequiredString("channelName", req.ChannelName)
	if err != nil {
		return nil, err
	}

	// uid 0 is valid, only an absent uid is rejected
	if !payload.Present(req.UID) {
		return nil, core.Required("uid")
	}
	uid, err := payload.Int64("uid", req.UID)
	if err != nil {
		return nil, err
	}
	if uid < 0 || uid > math.MaxUint32 {
		return nil, core.ClientInput("uid must be an unsigned 32-bit integer")
	}

	role := RolePublisher
	if payload.Present(req.Role) {
		s, err := payload.String("role", req.Role)
		if err != nil {
			return nil, err
		}
		role = ParseRole(s)
	}

	expire := int64(DefaultExpireTime / time.Second)
	if payload.Present(req.ExpireTime) {
		if expire, err = payload.Int64("expireTime", req.ExpireTime); err != nil {
			return nil, err
		}
		if expire <= 0 {
			return nil, core.ClientInput("expireTime must be a positive number of seconds")
		}
	}

	appID, err := bundle.Require(secrets.AgoraAppID)
	if err != nil {
		return nil, err
	}
	// the App ID is stored in plain text with no length prefix, see Decode
	if len(appID.Value()) != AppIDLength {
		return nil, core.Configuration(fmt.Sprintf("%s must be a %d character App ID", secrets.AgoraAppID, AppIDLength))
	}
	cert, err := bundle.Require(secrets.AgoraAppCertificate)
	if err != nil {
		return nil, err
	}

	issuedAt := now()
	privilegeExpire := issuedAt.Unix() + expire
	if privilegeExpire > math.MaxUint32 {
		return nil, core.ClientInput("expireTime is too large")
	}

	tok := &AccessToken{
		AppID:          appID.Value(),
		AppCertificate: cert.Bytes(),
		ChannelName:    channel,
		UID:            UIDString(uint32(uid)),
		Salt:           salt,
		TS:             uint32(issuedAt.Add(messageTTL).Unix()),
		Privileges:     role.Privileges(uint32(privilegeExpire)),
	}
	signed, err := tok.Build()
	if err != nil {
		return nil, core.Internal("signing agora token failed", err)
	}

	return &core.Credential{
		Provider:  core.ProviderAgora,
		Token:     signed,
		ExpiresAt: time.Unix(privilegeExpire, 0),
		Metadata: map[string]any{
			"appId": appID.Value(),
		},
	}, nil
}

// UIDString is the account form of a numeric uid. Agora encodes uid 0 as "".
func UIDString(uid uint32) string {
	if uid == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(uid), 10)
}

func randomSalt() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return uint32(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint32(b[:])
}
