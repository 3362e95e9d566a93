package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/rtcmint/internal/assets"
	"github.com/darmiel/rtcmint/internal/config"
	"github.com/darmiel/rtcmint/internal/secrets"
)

var configValidateStores bool

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and the provider secrets",
	Long: `Parses and validates the server configuration given with --config and lists
which provider secrets resolve. Secret values are never printed.

With --stores the asset stores are also opened, so missing directories or
unreachable buckets are reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return err
		}
		if configValidateStores {
			if _, err := cfg.Assets.BuildServer(cmd.Context()); err != nil {
				log.Error().Err(err).Msg("Asset stores are not usable.")
				return err
			}
		}

		printConfig(cmd.OutOrStdout(), cfg, f.LoadSecrets())
		log.Info().Msg("Configuration is valid.")
		return nil
	},
}

func printConfig(w io.Writer, cfg *config.Config, bundle *secrets.Bundle) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRow(table.Row{"server.addr", cfg.Server.Addr})
	t.AppendRow(table.Row{"server.read_header_timeout", cfg.Server.ReadHeaderTimeout})
	t.AppendRow(table.Row{"server.shutdown_timeout", cfg.Server.ShutdownTimeout})
	t.AppendRow(table.Row{"assets.cache_control", cfg.Assets.CacheControl})
	t.AppendRow(table.Row{"assets." + assets.ClassWasm, describeStore(cfg.Assets.Wasm)})
	t.AppendRow(table.Row{"assets." + assets.ClassVideo, describeStore(cfg.Assets.Video)})
	t.AppendSeparator()

	present := map[string]bool{}
	for _, name := range bundle.Present() {
		present[name] = true
	}
	for _, name := range secrets.Names() {
		state := red("missing")
		if present[name] {
			state = green("set")
		}
		t.AppendRow(table.Row{name, state})
	}
	t.Render()
}

func describeStore(s *config.StoreConfig) string {
	if s == nil {
		return faint("(disabled)")
	}
	switch s.Type {
	case config.StoreTypeDir:
		return "dir " + truncate(s.Dir, 60)
	case config.StoreTypeS3:
		desc := fmt.Sprintf("s3://%s/%s", s.Bucket, s.Prefix)
		if s.Endpoint != "" {
			desc += " " + faint("via "+s.Endpoint)
		}
		return truncate(desc, 80)
	}
	return s.Type
}

func init() {
	configCmd.AddCommand(configValidateCmd)

	configValidateCmd.Flags().BoolVar(&configValidateStores, "stores", false, "Also open the asset stores")
}
