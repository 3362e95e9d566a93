package buildinfo

var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

type Info struct {
	About        string   `json:"about,omitempty"`
	Service      string   `json:"service,omitempty"`
	Version      string   `json:"version,omitempty"`
	CommitHash   string   `json:"commit_hash,omitempty"`
	Providers    []string `json:"providers,omitempty"`
	AssetClasses []string `json:"asset_classes,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/darmiel/rtcmint",
		Service:    "rtcmint",
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is sent by pkg/client and the CLI.
func UserAgent() string {
	return "rtcmint/" + Version
}
