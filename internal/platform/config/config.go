package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server struct {
		Port         string        `envconfig:"SERVER_PORT" default:"3333"`
		ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
		WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	}
	Postgres struct {
		MaxConns          int32         `envconfig:"PGX_MAX_CONNS" default:"20"`
		MinConns          int32         `envconfig:"PGX_MIN_CONNS" default:"5"`
		MaxConnLifetime   time.Duration `envconfig:"PGX_MAX_CONN_LIFETIME" default:"30m"`
		MaxConnIdleTime   time.Duration `envconfig:"PGX_MAX_CONN_IDLE_TIME" default:"5m"`
		HealthCheckPeriod time.Duration `envconfig:"PGX_HEALTH_CHECK_PERIOD" default:"1m"`
		ConnectTimeout    time.Duration `envconfig:"PGX_CONNECT_TIMEOUT" default:"5s"`
	}
	Database struct {
		Host     string `envconfig:"DB_HOST" required:"true"`
		Port     int    `envconfig:"DB_PORT" required:"true"`
		User     string `envconfig:"DB_USER" required:"true"`
		Password string `envconfig:"DB_PASSWORD" required:"true"`
		Name     string `envconfig:"DB_NAME" required:"true"`
		SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	}
	Redis struct {
		Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
		Password    string        `envconfig:"REDIS_PASSWORD" default:""`
		DB          int           `envconfig:"REDIS_DB" default:"0"`
		DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	}
	Auth struct {
		JWTSecret        string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
		PasswordPepper   string        `envconfig:"AUTH_PASSWORD_PEPPER" required:"true"`
		AccessTokenTTL   time.Duration `envconfig:"AUTH_ACCESS_TOKEN_TTL" default:"15m"`
		RefreshTokenTTL  time.Duration `envconfig:"AUTH_REFRESH_TOKEN_TTL" default:"168h"`
		LoginMaxAttempts int           `envconfig:"AUTH_LOGIN_MAX_ATTEMPTS" default:"5"`
		LoginWindow      time.Duration `envconfig:"AUTH_LOGIN_WINDOW" default:"10m"`
	}
	OTP struct {
		CodeTTL       time.Duration `envconfig:"OTP_CODE_TTL" default:"5m"`
		MaxAttempts   int           `envconfig:"OTP_MAX_ATTEMPTS" default:"3"`
		AttemptWindow time.Duration `envconfig:"OTP_ATTEMPT_WINDOW" default:"10m"`
	}
	Cache struct {
		PageTTL time.Duration `envconfig:"CACHE_PAGE_TTL" default:"5m"`
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("error loading .env file: %s", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config from environment: %w", err)
	}
	return &cfg, nil
}
