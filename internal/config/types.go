package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string        `env:"DB_NAME" envDefault:"courtside.db"`
	Port      string        `env:"PORT" envDefault:"8080"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	TimerTick time.Duration `env:"TIMER_TICK" envDefault:"1s"`
	ProjectID string        `env:"GCP_PROJECT"`
	Slack     SlackConfig
	Turso     TursoConfig
}

type SlackConfig struct {
	Token         string `env:"SLACK_BOT_TOKEN"`
	ChannelID     string `env:"SLACK_CHANNEL_ID"`
	SigningSecret string `env:"SLACK_SIGNING_SECRET"`
}

type TursoConfig struct {
	PrimaryURL string `env:"TURSO_PRIMARY_URL"`
	AuthToken  string `env:"TURSO_AUTH_TOKEN"`
}

// SlackEnabled reports whether notifications can be posted for real.
func (c Config) SlackEnabled() bool {
	return c.Slack.Token != "" && c.Slack.ChannelID != ""
}
