package server

import (
	"errors"
	"time"
)

// VersionInfo contains build-time version information.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

type Config struct {
	ListenAddr string
	// VersionPrefix is the URL prefix the dataset routers mount under
	// ("/v1"). Configurable via API_VERSION_PREFIX.
	VersionPrefix     string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	VersionInfo       VersionInfo
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
}

func (cfg *Config) Validate() error {
	if cfg.ListenAddr == "" {
		return errors.New("listen addr is required")
	}
	if cfg.VersionPrefix == "" {
		cfg.VersionPrefix = "/v1"
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	return nil
}
