// Package config resolves the site configuration with viper: defaults < config file < SIRAH_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/swdunlop/portable-html-go/store"
)

// Option describes one configuration key, its default and its meaning.
type Option struct {
	Key     string
	Default any
	Comment string
}

// Options returns every configuration key understood by the site.
func Options() []Option {
	return []Option{
		{Key: "http_addr", Default: ":8080", Comment: "HTTP listen address; ignored when tls.domains is set"},
		{Key: "log.level", Default: "info", Comment: "Minimum log level: trace, debug, info, warn, error"},
		{Key: "log.format", Default: "console", Comment: "Log format: console or json"},

		{Key: "store.project_id", Default: "00ycpx1i", Comment: "Content store project ID"},
		{Key: "store.dataset", Default: "production", Comment: "Content store dataset"},
		{Key: "store.api_version", Default: "2023-01-01", Comment: "Content store API version date"},
		{Key: "store.use_cdn", Default: false, Comment: "Query the cached API edge instead of the live API"},
		{Key: "store.token", Default: "", Comment: "Bearer token for private datasets"},
		{Key: "store.timeout", Default: "30s", Comment: "Timeout for one content store query"},

		{Key: "snapshots.driver", Default: "sqlite", Comment: "Snapshot cache driver: sqlite, mysql, or empty to disable"},
		{Key: "snapshots.dsn", Default: defaultSnapshotPath(), Comment: "Snapshot cache DSN; a file path for sqlite, a DSN or mysql:// URL for mysql"},

		{Key: "render.sanitize", Default: true, Comment: "Sanitize rendered article content before serving it"},
		{Key: "site.name", Default: "موقع إسلامي", Comment: "Site name appended to page titles"},

		{Key: "tls.domains", Default: []string{}, Comment: "Domains to serve over HTTPS with automatic certificates"},
		{Key: "tls.email", Default: "", Comment: "Contact email for the certificate authority"},
	}
}

// Load resolves configuration into v.  When path is empty, config.{yaml,toml,json} is searched for in the XDG config
// directory and the working directory; a missing file is not an error.
func Load(v *viper.Viper, path string) error {
	for _, o := range Options() {
		v.SetDefault(o.Key, o.Default)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sirah"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("sirah")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Allow a comma-separated env override for tls.domains.
	if s, ok := os.LookupEnv("SIRAH_TLS_DOMAINS"); ok {
		v.Set("tls.domains", splitList(s))
	}
	return nil
}

// Check reports every problem with the configuration at once.
func Check(v *viper.Viper) error {
	var errs []error
	if v.GetString("store.dataset") == "" {
		errs = append(errs, errors.New("store.dataset is required"))
	}
	if v.GetString("store.project_id") == "" {
		errs = append(errs, errors.New("store.project_id is required"))
	}
	if d, err := time.ParseDuration(v.GetString("store.timeout")); err != nil || d <= 0 {
		errs = append(errs, errors.New("store.timeout must be a positive duration"))
	}
	switch v.GetString("snapshots.driver") {
	case "":
	case "sqlite", "mysql":
		if v.GetString("snapshots.dsn") == "" {
			errs = append(errs, errors.New("snapshots.dsn is required when snapshots.driver is set"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshots.driver %q is not sqlite or mysql", v.GetString("snapshots.driver")))
	}
	switch v.GetString("log.format") {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not console or json", v.GetString("log.format")))
	}
	if len(v.GetStringSlice("tls.domains")) == 0 && v.GetString("http_addr") == "" {
		errs = append(errs, errors.New("http_addr is required without tls.domains"))
	}
	return errors.Join(errs...)
}

// Store converts the store.* keys into a client configuration.
func Store(v *viper.Viper) store.Config {
	timeout, _ := time.ParseDuration(v.GetString("store.timeout"))
	return store.Config{
		ProjectID:  v.GetString("store.project_id"),
		Dataset:    v.GetString("store.dataset"),
		APIVersion: v.GetString("store.api_version"),
		UseCDN:     v.GetBool("store.use_cdn"),
		Token:      v.GetString("store.token"),
		Timeout:    timeout,
	}
}

func defaultSnapshotPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sirah", "snapshots.db")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
