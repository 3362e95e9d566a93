package agora

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"sort"
	"strconv"
)

// Version is the token format prefix produced by Build.
const Version = "006"

// AppIDLength is the length of an Agora App ID. Decode relies on it to split the
// plain-text App ID from the encoded content.
const AppIDLength = 32

// Privilege is an RTC privilege bound into the token.
type Privilege uint16

const (
	PrivilegeJoinChannel        Privilege = 1
	PrivilegePublishAudioStream Privilege = 2
	PrivilegePublishVideoStream Privilege = 3
	PrivilegePublishDataStream  Privilege = 4
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeJoinChannel:
		return "join_channel"
	case PrivilegePublishAudioStream:
		return "publish_audio"
	case PrivilegePublishVideoStream:
		return "publish_video"
	case PrivilegePublishDataStream:
		return "publish_data"
	default:
		return "privilege(" + strconv.Itoa(int(p)) + ")"
	}
}

// AccessToken binds an App ID, channel and uid to a set of expiring privileges.
type AccessToken struct {
	AppID          string
	AppCertificate []byte
	ChannelName    string
	// UID is the account string; uid 0 is encoded as "".
	UID string

	Salt uint32
	// TS is the message timestamp, not the privilege expiry.
	TS         uint32
	Privileges map[Privilege]uint32
}

// Build serializes and signs the token.
func (t *AccessToken) Build() (string, error) {
	var msg bytes.Buffer
	packUint32(&msg, t.Salt)
	packUint32(&msg, t.TS)
	packPrivileges(&msg, t.Privileges)

	sig := sign(t.AppCertificate, t.AppID, t.ChannelName, t.UID, msg.Bytes())

	var content bytes.Buffer
	if err := packBytes(&content, sig); err != nil {
		return "", err
	}
	packUint32(&content, crc32.ChecksumIEEE([]byte(t.ChannelName)))
	packUint32(&content, crc32.ChecksumIEEE([]byte(t.UID)))
	if err := packBytes(&content, msg.Bytes()); err != nil {
		return "", err
	}

	return Version + t.AppID + base64.StdEncoding.EncodeToString(content.Bytes()), nil
}

func sign(cert []byte, appID, channel, uid string, msg []byte) []byte {
	mac := hmac.New(sha256.New, cert)
	mac.Write([]byte(appID))
	mac.Write([]byte(channel))
	mac.Write([]byte(uid))
	mac.Write(msg)
	return mac.Sum(nil)
}

// Decoded is the parsed form of a "006" token.
type Decoded struct {
	AppID      string               `json:"app_id"`
	Signature  []byte               `json:"signature"`
	CRCChannel uint32               `json:"crc_channel"`
	CRCUID     uint32               `json:"crc_uid"`
	Salt       uint32               `json:"salt"`
	TS         uint32               `json:"ts"`
	Privileges map[Privilege]uint32 `json:"privileges"`

	message []byte
}

var ErrMalformedToken = errors.New("malformed agora token")

// Decode parses a token produced by Build. It does not verify the signature.
func Decode(token string) (*Decoded, error) {
	if len(token) <= len(Version)+AppIDLength || token[:len(Version)] != Version {
		return nil, fmt.Errorf("%w: missing %s prefix or app id", ErrMalformedToken, Version)
	}
	appID := token[len(Version) : len(Version)+AppIDLength]
	raw, err := base64.StdEncoding.DecodeString(token[len(Version)+AppIDLength:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	r := bytes.NewReader(raw)
	d := &Decoded{AppID: appID}
	if d.Signature, err = unpackBytes(r); err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}
	if d.CRCChannel, err = unpackUint32(r); err != nil {
		return nil, fmt.Errorf("%w: channel crc: %v", ErrMalformedToken, err)
	}
	if d.CRCUID, err = unpackUint32(r); err != nil {
		return nil, fmt.Errorf("%w: uid crc: %v", ErrMalformedToken, err)
	}
	if d.message, err = unpackBytes(r); err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrMalformedToken, err)
	}

	m := bytes.NewReader(d.message)
	if d.Salt, err = unpackUint32(m); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedToken, err)
	}
	if d.TS, err = unpackUint32(m); err != nil {
		return nil, fmt.Errorf("%w: ts: %v", ErrMalformedToken, err)
	}
	if d.Privileges, err = unpackPrivileges(m); err != nil {
		return nil, fmt.Errorf("%w: privileges: %v", ErrMalformedToken, err)
	}
	return d, nil
}

// Verify checks the signature and the channel/uid checksums against the expected values.
func (d *Decoded) Verify(cert []byte, channel, uid string) bool {
	if d.CRCChannel != crc32.ChecksumIEEE([]byte(channel)) || d.CRCUID != crc32.ChecksumIEEE([]byte(uid)) {
		return false
	}
	return hmac.Equal(d.Signature, sign(cert, d.AppID, channel, uid, d.message))
}

// all integers are little endian, strings and byte slices are prefixed with a uint16 length.

func packUint16(w *bytes.Buffer, v uint16) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

func packUint32(w *bytes.Buffer, v uint32) {
	_ = binary.Write(w, binary.LittleEndian, v)
}

func packBytes(w *bytes.Buffer, b []byte) error {
	if len(b) > 0xFFFF {
		return fmt.Errorf("field of %d bytes exceeds uint16 length prefix", len(b))
	}
	packUint16(w, uint16(len(b)))
	w.Write(b)
	return nil
}

func packPrivileges(w *bytes.Buffer, privileges map[Privilege]uint32) {
	keys := make([]Privilege, 0, len(privileges))
	for k := range privileges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	packUint16(w, uint16(len(keys)))
	for _, k := range keys {
		packUint16(w, uint16(k))
		packUint32(w, privileges[k])
	}
}

func unpackUint16(r io.Reader) (v uint16, err error) {
	err = binary.Read(r, binary.LittleEndian, &v)
	return
}

func unpackUint32(r io.Reader) (v uint32, err error) {
	err = binary.Read(r, binary.LittleEndian, &v)
	return
}

func unpackBytes(r io.Reader) ([]byte, error) {
	n, err := unpackUint16(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func unpackPrivileges(r io.Reader) (map[Privilege]uint32, error) {
	n, err := unpackUint16(r)
	if err != nil {
		return nil, err
	}
	privileges := make(map[Privilege]uint32, n)
	for i := uint16(0); i < n; i++ {
		k, err := unpackUint16(r)
		if err != nil {
			return nil, err
		}
		v, err := unpackUint32(r)
		if err != nil {
			return nil, err
		}
		privileges[Privilege(k)] = v
	}
	return privileges, nil
}
