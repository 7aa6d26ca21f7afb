package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetLoginPath() string
}

type StorageConfig interface {
	GetDataFolder() string
	GetCredentialPassphrase() string
}

func New() Config {
	return newViperConfig()
}
