package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/darmiel/rtcmint/internal/core"
	payloadpkg "github.com/darmiel/rtcmint/internal/payload"
	"github.com/darmiel/rtcmint/internal/service"
)

var (
	tokenIssueData string
	tokenIssueSet  []string
)

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue <provider>",
	Short: "Issue a token for a provider",
	Long: fmt.Sprintf(`Issues a token for one of the supported providers (%s).

Without --server the token is minted locally using the secrets from the
environment; with --server the request is sent to a running rtcmint server.`,
		strings.Join(providerNames(), ", ")),
	Example: `  # Agora publisher token
  rtcmint token issue agora --set channelName=demo --set uid=42

  # Zoom host token from a JSON payload
  rtcmint token issue zoom -d '{"sessionName":"demo","userIdentity":"alice","role":1}'

  # Payload from a file, issued by a remote server
  rtcmint token issue twilio -d @payload.json --server localhost:8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := buildPayload(tokenIssueData, tokenIssueSet)
		if err != nil {
			return err
		}

		if f.Remote() {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			log.Debug().Msgf("Requesting %s token from %s...", args[0], f.RemoteAddr)
			resp, correlation, err := cli.IssueToken(cmd.Context(), args[0], payload)
			if err != nil {
				return logError(err, correlation, "token issuance failed")
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}

		id, err := core.ParseProviderID(args[0])
		if err != nil {
			return err
		}
		svc := f.GetLocalService(cmd.Context())
		cred, err := svc.IssuePayload(cmd.Context(), service.IssueRequest{Provider: id, Payload: payload})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), cred.Body())
	},
}

// buildPayload merges a JSON document (inline or @file) with key=value pairs.
// Values from --set are strings; the strategies coerce numeric strings.
func buildPayload(data string, set []string) (map[string]any, error) {
	payload := map[string]any{}
	if data != "" {
		raw := []byte(data)
		if strings.HasPrefix(data, "@") {
			var err error
			if raw, err = os.ReadFile(data[1:]); err != nil {
				return nil, fmt.Errorf("reading payload file: %w", err)
			}
		}
		parsed, err := payloadpkg.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing payload: %w", err)
		}
		payload = parsed
	}
	for _, kv := range set {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		payload[k] = v
	}
	return payload, nil
}

func providerNames() []string {
	var names []string
	for _, id := range core.Providers() {
		names = append(names, id.String())
	}
	return names
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	bindPayloadFlags(tokenIssueCmd.Flags())
}

func bindPayloadFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&tokenIssueData, "data", "d", "", "JSON payload, or @file to read it from a file")
	flags.StringArrayVar(&tokenIssueSet, "set", nil, "Payload field as key=value (repeatable)")
}
