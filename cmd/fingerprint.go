package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/darmiel/rtcmint/internal/core"
	"github.com/darmiel/rtcmint/internal/fingerprint"
)

var (
	fingerprintType     string
	fingerprintProvider string
	fingerprintRaw      bool
)

var fingerprintCmd = &cobra.Command{
	Use:     "fingerprint [token]",
	Aliases: []string{"fp"},
	Short:   `Calculate the fingerprint of a token`,
	Long: `Calculates the fingerprint rtcmint logs for an issued token in the 'fingerprint' field.

Different providers use different algorithms:
- agora:  SHA256 -> Base64
- twilio: jti claim of the JWT
- zoom:   SHA256 -> Base64`,
	Example: `  # Fingerprint of a twilio token, as it appears in the logs
  rtcmint fingerprint --provider twilio eyJ...

  # Fingerprint of a token from stdin
  echo "006..." | rtcmint fp -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readArg(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("token cannot be empty")
		}

		typ := fingerprintType
		var fp string
		if fingerprintProvider != "" {
			id, err := core.ParseProviderID(fingerprintProvider)
			if err != nil {
				return err
			}
			typ = id.String()
			fp = fingerprint.ForProvider(id, token)
		} else {
			fp = fingerprint.Calculate(typ, token)
		}

		out := cmd.OutOrStdout()
		if fingerprintRaw {
			_, _ = fmt.Fprintln(out, fp)
		} else {
			_, _ = fmt.Fprintln(out, "Type:       ", typ)
			_, _ = fmt.Fprintln(out, "Fingerprint:", fp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().StringVar(&fingerprintType, "type", fingerprint.SHA256Type,
		fmt.Sprintf("Fingerprint type (one of: %s)", strings.Join(fingerprint.Types(), ", ")))
	fingerprintCmd.Flags().StringVar(&fingerprintProvider, "provider", "",
		"Use the fingerprint type of a provider (overrides --type)")
	fingerprintCmd.Flags().BoolVarP(&fingerprintRaw, "raw", "r", false,
		"Output only the fingerprint value without additional text")
}
