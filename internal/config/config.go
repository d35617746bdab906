package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Media    MediaConfig    `envPrefix:"MEDIA_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
}

type ServerConfig struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	CORSPattern string `env:"CORS_PATTERN" envDefault:"^https?://localhost(:\\d+)?$"`
}

type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envDefault:"localhost:27017"`
	Database string   `env:"DATABASE" envDefault:"chatterbox"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Direct   bool     `env:"DIRECT" envDefault:"true"`
}

type MediaConfig struct {
	Region     string `env:"REGION" envDefault:"ap-southeast-1"`
	Bucket     string `env:"BUCKET,required"`
	PublicHost string `env:"PUBLIC_HOST"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
