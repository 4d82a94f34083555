package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Auth     AuthConfig     `mapstructure:"auth"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Avatar   AvatarConfig   `mapstructure:"avatar"`
	LogMode  string         `mapstructure:"log_mode"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

type AuthConfig struct {
	JWTSecretKey   string        `mapstructure:"jwt_secret_key"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type OpenAIConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	AssistantID  string        `mapstructure:"assistant_id"`
	BaseURL      string        `mapstructure:"base_url"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

type RedisConfig struct {
	Addr    string `mapstructure:"addr"`
	Channel string `mapstructure:"channel"`
}

type AvatarConfig struct {
	FontPath string `mapstructure:"font_path"`
}

// Load reads configuration from the environment. Every key has a default
// so a bare process comes up against local services; secrets have no
// default and must be supplied.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_mode", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "chatdeck")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("auth.jwt_secret_key", "")
	v.SetDefault("auth.access_token_ttl", time.Hour)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.assistant_id", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.poll_interval", time.Second)
	v.SetDefault("openai.run_timeout", 2*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.channel", "artifact-parts")
	v.SetDefault("avatar.font_path", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.OpenAI.PollInterval <= 0 {
		cfg.OpenAI.PollInterval = time.Second
	}
	if cfg.OpenAI.RunTimeout <= 0 {
		cfg.OpenAI.RunTimeout = 2 * time.Minute
	}
	return &cfg, nil
}
