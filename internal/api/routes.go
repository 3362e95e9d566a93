package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"

	IssueTokenRoute = "/tokens/{provider}"
	// LegacyIssueTokenRoute is kept for callers using the `<provider>-token` paths.
	LegacyIssueTokenRoute = "/api/{provider}"

	// filename spans the rest of the path so "../x.mp4" is rejected by validation.
	AssetRoute = "/assets/{class}/{filename:.+}"
)
