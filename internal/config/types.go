package config

// Config holds all configuration for the application.
type Config struct {
	DBName      string
	Port        string
	Turso       TursoConfig
	Analytics   AnalyticsConfig
	Slack       SlackConfig
	ProjectID   string
	CORSOrigins []string
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// AnalyticsConfig points at the hosted Postgres database that owns the
// aggregation procedures. An empty URL disables the analytics endpoints.
type AnalyticsConfig struct {
	DatabaseURL string
}
