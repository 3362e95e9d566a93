package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/darmiel/rtcmint/internal/fingerprint"
	"github.com/darmiel/rtcmint/internal/providers/agora"
	"github.com/darmiel/rtcmint/internal/providers/twilio"
	"github.com/darmiel/rtcmint/internal/secrets"
)

var (
	tokenInspectVerify  bool
	tokenInspectChannel string
	tokenInspectUID     uint32
)

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect <token|->",
	Short: "Decode a token and show its claims",
	Long: `Decodes an Agora "006" token or a Twilio / Zoom JWT and prints its contents.

With --verify the signature is checked against the locally configured secret
(AGORA_APP_CERTIFICATE, TWILIO_API_SECRET or ZOOM_SDK_SECRET). Agora tokens also
need --channel and --uid for verification.`,
	Example: `  rtcmint token issue zoom -d '{"sessionName":"s","userIdentity":"u"}' | jq -r .token | rtcmint token inspect -
  rtcmint token inspect --verify --channel demo --uid 42 006970ca...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readArg(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}

		var bundle *secrets.Bundle
		if tokenInspectVerify {
			bundle = f.LoadSecrets()
		}

		if strings.HasPrefix(token, agora.Version) {
			return inspectAgora(cmd.OutOrStdout(), token, bundle)
		}
		return inspectJWT(cmd.OutOrStdout(), token, bundle)
	},
}

func inspectAgora(w io.Writer, token string, bundle *secrets.Bundle) error {
	d, err := agora.Decode(token)
	if err != nil {
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Format", "agora " + agora.Version})
	t.AppendRow(table.Row{"App ID", d.AppID})
	t.AppendRow(table.Row{"Salt", d.Salt})
	t.AppendRow(table.Row{"Message TS", formatUnix(int64(d.TS))})
	t.AppendRow(table.Row{"CRC channel", fmt.Sprintf("%08x", d.CRCChannel)})
	t.AppendRow(table.Row{"CRC uid", fmt.Sprintf("%08x", d.CRCUID)})

	privileges := make([]agora.Privilege, 0, len(d.Privileges))
	for p := range d.Privileges {
		privileges = append(privileges, p)
	}
	sort.Slice(privileges, func(i, j int) bool { return privileges[i] < privileges[j] })
	for _, p := range privileges {
		t.AppendRow(table.Row{"Privilege", fmt.Sprintf("%s until %s", bold(p), formatUnix(int64(d.Privileges[p])))})
	}
	t.AppendRow(table.Row{"Fingerprint", faint(fingerprint.Calculate(fingerprint.SHA256Type, token))})

	if bundle != nil {
		cert, err := bundle.Require(secrets.AgoraAppCertificate)
		if err != nil {
			return err
		}
		ok := d.Verify(cert.Bytes(), tokenInspectChannel, agora.UIDString(tokenInspectUID))
		t.AppendRow(table.Row{"Signature", verdict(ok)})
	}
	t.Render()
	return nil
}

func inspectJWT(w io.Writer, token string, bundle *secrets.Bundle) error {
	claims := jwt.MapClaims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return fmt.Errorf("token is neither an agora token nor a JWT: %w", err)
	}

	provider := "zoom"
	secretName := secrets.ZoomSDKSecret
	fpType := fingerprint.SHA256Type
	if cty, _ := parsed.Header["cty"].(string); cty == twilio.ContentType {
		provider = "twilio"
		secretName = secrets.TwilioAPISecret
		fpType = fingerprint.JTIType
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Claim", "Value"})
	t.AppendRow(table.Row{"Provider", bold(provider)})
	for _, k := range sortedKeys(parsed.Header) {
		t.AppendRow(table.Row{faint("header." + k), parsed.Header[k]})
	}
	for _, k := range sortedKeys(claims) {
		v := claims[k]
		if k == "iat" || k == "exp" || k == "nbf" {
			if n, ok := v.(float64); ok {
				v = formatUnix(int64(n))
			}
		}
		t.AppendRow(table.Row{k, v})
	}
	t.AppendRow(table.Row{"Fingerprint", faint(fingerprint.Calculate(fpType, token))})

	if bundle != nil {
		secret, err := bundle.Require(secretName)
		if err != nil {
			return err
		}
		_, err = jwt.Parse(token, func(*jwt.Token) (any, error) {
			return secret.Bytes(), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		switch {
		case err == nil:
			t.AppendRow(table.Row{"Signature", verdict(true)})
		case errors.Is(err, jwt.ErrTokenExpired):
			t.AppendRow(table.Row{"Signature", green("valid") + " " + red("(expired)")})
		default:
			t.AppendRow(table.Row{"Signature", verdict(false)})
		}
	}
	t.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
	return t
}

func verdict(ok bool) string {
	if ok {
		return green("valid")
	}
	return red("invalid")
}

func formatUnix(sec int64) string {
	ts := time.Unix(sec, 0)
	return fmt.Sprintf("%s %s", ts.UTC().Format(time.RFC3339), faint("("+time.Until(ts).Round(time.Second).String()+")"))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)

	tokenInspectCmd.Flags().BoolVar(&tokenInspectVerify, "verify", false, "Verify the signature with the local secret")
	tokenInspectCmd.Flags().StringVar(&tokenInspectChannel, "channel", "", "Agora channel name (for --verify)")
	tokenInspectCmd.Flags().Uint32Var(&tokenInspectUID, "uid", 0, "Agora uid (for --verify)")
}
