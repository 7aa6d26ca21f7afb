package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const envPrefix = "STOREFRONT"

const (
	baseURLKey        = "api.base_url"
	requestTimeoutKey = "api.request_timeout_seconds"
	loginPathKey      = "api.login_path"
	appNameKey        = "app.name"
	envKey            = "app.env"
	dataFolderKey     = "storage.data_folder"
	passphraseKey     = "storage.credential_passphrase"
)

// ViperConfig reads configuration from an optional storefront.yaml file
// with environment variable overrides (STOREFRONT_API_BASE_URL etc).
type ViperConfig struct {
	v *viper.Viper
}

var _ Config = (*ViperConfig)(nil)

func newViperConfig() *ViperConfig {
	v := viper.New()

	v.SetDefault(baseURLKey, "http://localhost:8000/api")
	v.SetDefault(requestTimeoutKey, 30)
	v.SetDefault(loginPathKey, "/auth/login")
	v.SetDefault(appNameKey, "Storefront")
	v.SetDefault(envKey, "DEV")
	v.SetDefault(dataFolderKey, "./data")
	v.SetDefault(passphraseKey, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("storefront")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("config file found but could not be read, using defaults and environment")
		}
	}

	return &ViperConfig{v: v}
}

func (c *ViperConfig) GetAppName() string {
	return c.v.GetString(appNameKey)
}

func (c *ViperConfig) GetEnv() string {
	env := c.v.GetString(envKey)
	if env == "" {
		return "DEV"
	}
	return env
}

func (c *ViperConfig) GetBaseURL() string {
	return strings.TrimSuffix(c.v.GetString(baseURLKey), "/")
}

func (c *ViperConfig) GetRequestTimeout() time.Duration {
	seconds := c.v.GetInt(requestTimeoutKey)
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// GetLoginPath returns the path a caller should direct the user to
// when the session cannot be silently recovered.
func (c *ViperConfig) GetLoginPath() string {
	return c.v.GetString(loginPathKey)
}

func (c *ViperConfig) GetDataFolder() string {
	return c.v.GetString(dataFolderKey)
}

func (c *ViperConfig) GetCredentialPassphrase() string {
	return c.v.GetString(passphraseKey)
}

// String renders the non-secret configuration for startup logging.
func (c *ViperConfig) String() string {
	return fmt.Sprintf("base_url=%s env=%s data_folder=%s", c.GetBaseURL(), c.GetEnv(), c.GetDataFolder())
}
