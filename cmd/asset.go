package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Interact with served assets",
}

var (
	assetFetchRange  string
	assetFetchOutput string
)

var assetFetchCmd = &cobra.Command{
	Use:   "fetch <class> <filename>",
	Short: "Download an asset (or a byte range of it) from a server",
	Example: `  rtcmint asset fetch video intro.mp4 --server localhost:8080 -o intro.mp4
  rtcmint asset fetch wasm video_sdk.wasm --range bytes=0-1023 --server localhost:8080 > head.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		asset, err := cli.FetchAsset(cmd.Context(), args[0], args[1], assetFetchRange)
		if err != nil {
			return err
		}
		defer func() { _ = asset.Body.Close() }()

		out := cmd.OutOrStdout()
		if assetFetchOutput != "" && assetFetchOutput != "-" {
			file, err := os.Create(assetFetchOutput)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer func() { _ = file.Close() }()
			out = file
		}

		n, err := io.Copy(out, asset.Body)
		if err != nil {
			return logError(err, asset.CorrelationID, "download aborted")
		}

		ev := log.Info().
			Int("status", asset.StatusCode).
			Str("content_type", asset.ContentType).
			Int64("bytes", n)
		if asset.ContentRange != "" {
			ev = ev.Str("content_range", asset.ContentRange)
		}
		ev.Msg("Asset fetched")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(assetCmd)
	assetCmd.AddCommand(assetFetchCmd)

	assetFetchCmd.Flags().StringVar(&assetFetchRange, "range", "", "Range header, e.g. bytes=0-1023")
	assetFetchCmd.Flags().StringVarP(&assetFetchOutput, "output", "o", "", "Write to file instead of stdout")
}
