package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env  string
		Name string
	} `mapstructure:"app"`

	HTTP struct {
		Addr           string
		AllowedOrigins string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`

	Database struct {
		URL string
	} `mapstructure:"database"`

	Redis struct {
		Addr      string
		LookupTTL time.Duration `mapstructure:"lookup_ttl"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers string
		GroupID string `mapstructure:"group_id"`
		Workers int
	} `mapstructure:"kafka"`

	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`

	Upload struct {
		Dir string
	} `mapstructure:"upload"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Console struct {
		APIURL string `mapstructure:"api_url"`
		Token  string
	} `mapstructure:"console"`

	Policy struct {
		ForceWHTCertificate bool `mapstructure:"force_wht_certificate"`
	} `mapstructure:"policy"`
}

var defaults = map[string]any{
	"app.env":                      "prod",
	"app.name":                     "procurement-console",
	"http.addr":                    ":8080",
	"http.allowed_origins":         "",
	"database.url":                 "",
	"redis.addr":                   "",
	"redis.lookup_ttl":             "5m",
	"kafka.brokers":                "",
	"kafka.group_id":               "procurement-console",
	"kafka.workers":                4,
	"auth.jwt_secret":              "",
	"upload.dir":                   "",
	"metrics.enabled":              true,
	"console.api_url":              "http://localhost:8080",
	"console.token":                "",
	"policy.force_wht_certificate": true,
}

// Load reads .env, then the optional YAML file at path, then PO_-prefixed
// environment variables (PO_HTTP_ADDR overrides http.addr). DATABASE_URL and
// JWT_SECRET are honoured as fallbacks.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("PO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "PO_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("auth.jwt_secret", "PO_AUTH_JWT_SECRET", "JWT_SECRET")

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// KafkaBrokers splits the comma-separated broker list.
func (c Config) KafkaBrokers() []string {
	return splitCSV(c.Kafka.Brokers)
}

// RequireServer checks the settings the HTTP server cannot start without.
func (c Config) RequireServer() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is not set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is not set"))
	}
	return errors.Join(errs...)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
