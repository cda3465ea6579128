package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	GoogleAPIKey = "google.api.key"
	HTTPTimeout  = "http.timeout"
	ServerHost   = "server.host"
	ServerPort   = "server.port"
	ServerPrefix = "server.prefix"

	EnvPrefix = "PLACESMAP"
	DirName   = "$HOME/.placesmap"
)

type Config struct {
	APIKey  string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
	Host    string
	Port    int    `validate:"min=1,max=65535"`
	Prefix  string `validate:"startswith=/,endswith=/"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(HTTPTimeout, 15*time.Second)
	v.SetDefault(ServerHost, "localhost")
	v.SetDefault(ServerPort, 8080)
	v.SetDefault(ServerPrefix, "/api/")
}

// New returns a viper instance that reads "config" from dir (or DirName when
// dir is empty) and lets PLACESMAP_* environment variables override any key,
// e.g. PLACESMAP_GOOGLE_API_KEY.
func New(dir string) *viper.Viper {
	if dir == "" {
		dir = DirName
	}
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the config file if there is one and validates the result. A
// missing file is fine as long as the environment supplies the key.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		APIKey:  strings.TrimSpace(v.GetString(GoogleAPIKey)),
		Timeout: v.GetDuration(HTTPTimeout),
		Host:    v.GetString(ServerHost),
		Port:    v.GetInt(ServerPort),
		Prefix:  v.GetString(ServerPrefix),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
