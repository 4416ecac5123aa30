// Package config defines the application configuration and its loader.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// SMTPConfig contains the outbound email settings. The email channel is
// considered configured only when Host and From are both set.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     validate:"omitempty,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"     validate:"omitempty,email"`
}

// Configured reports whether the email channel can be used.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// TelegramConfig contains the Telegram bot settings. The telegram channel
// is considered configured only when BotToken is set.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// Configured reports whether the Telegram channel can be used.
func (c TelegramConfig) Configured() bool {
	return c.BotToken != ""
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount        int `mapstructure:"worker_count"         validate:"omitempty,gt=0"`
	QueueSize          int `mapstructure:"queue_size"           validate:"omitempty,gt=0"`
	SendTimeoutSeconds int `mapstructure:"send_timeout_seconds" validate:"omitempty,gt=0"`
}
