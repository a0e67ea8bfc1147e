// Package config loads SServer settings from the environment.
//
// Variables are read with the SSERVER_ prefix. Load first reads any .env files it is given
// (values already in the environment win) and then parses the environment into a Config.
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//		log.Fatal(err)
//	}
//	logger, err := config.NewLogger(cfg)
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Prefix is prepended to every variable name.
const Prefix = "SSERVER_"

// Config holds the process settings.
type Config struct {
	Addr           string `env:"ADDR" envDefault:":3000"`
	Workers        int    `env:"WORKERS" envDefault:"4"`
	ReadBufferSize int    `env:"READ_BUFFER" envDefault:"30720"`
	StaticDir      string `env:"STATIC_DIR"`

	TLSCert string `env:"TLS_CERT"`
	TLSKey  string `env:"TLS_KEY"`

	AdminAddr       string        `env:"ADMIN_ADDR" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"sserver"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads the given .env files, skipping missing ones, and parses the environment.
func Load(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: Prefix})
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%sWORKERS must not be negative, got %d", Prefix, cfg.Workers)
	}
	if cfg.ReadBufferSize <= 0 {
		return nil, fmt.Errorf("%sREAD_BUFFER must be positive, got %d", Prefix, cfg.ReadBufferSize)
	}
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("%sTLS_CERT and %sTLS_KEY must be set together", Prefix, Prefix)
	}
	return &cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(files ...string) *Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// TLSEnabled reports whether a certificate and key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// LoadTLS loads the configured key pair into a DefaultTLSConfig.
func (c *Config) LoadTLS() (*tls.Config, error) {
	if !c.TLSEnabled() {
		return nil, errors.New("tls: certificate and key are not configured")
	}
	cert, err := tls.LoadX509KeyPair(c.TLSCert, c.TLSKey)
	if err != nil {
		return nil, fmt.Errorf("tls: load key pair: %w", err)
	}
	tc := DefaultTLSConfig()
	tc.Certificates = []tls.Certificate{cert}
	return tc, nil
}

// DefaultTLSConfig returns a TLS 1.2+ configuration restricted to ECDHE AEAD cipher suites.
func DefaultTLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
		},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
}

// NewLogger builds the process logger: the production config by default, the
// development config when LogDevelopment is set, at LogLevel.
func NewLogger(c *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
