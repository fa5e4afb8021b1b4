package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v := viper.New()
	require.NoError(t, Load(v, ""))
	require.NoError(t, Check(v))

	assert.Equal(t, ":8080", v.GetString("http_addr"))
	assert.True(t, v.GetBool("render.sanitize"))

	cfg := Store(v)
	assert.Equal(t, "00ycpx1i", cfg.ProjectID)
	assert.Equal(t, "production", cfg.Dataset)
	assert.Equal(t, "2023-01-01", cfg.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sirah.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"http_addr: 127.0.0.1:9000",
		"store:",
		"  dataset: staging",
		"  use_cdn: true",
		"render:",
		"  sanitize: false",
	}, "\n")), 0o600))
	t.Setenv("SIRAH_STORE_DATASET", "preview")
	t.Setenv("SIRAH_TLS_DOMAINS", "example.org, www.example.org")

	v := viper.New()
	require.NoError(t, Load(v, path))
	require.NoError(t, Check(v))

	assert.Equal(t, "127.0.0.1:9000", v.GetString("http_addr"))
	assert.False(t, v.GetBool("render.sanitize"))
	assert.Equal(t, []string{"example.org", "www.example.org"}, v.GetStringSlice("tls.domains"))
	cfg := Store(v)
	assert.Equal(t, "preview", cfg.Dataset)
	assert.True(t, cfg.UseCDN)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	v := viper.New()
	assert.Error(t, Load(v, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestCheckReportsEveryProblem(t *testing.T) {
	v := viper.New()
	v.Set("store.dataset", "")
	v.Set("store.project_id", "")
	v.Set("store.timeout", "soon")
	v.Set("snapshots.driver", "postgres")
	v.Set("log.format", "xml")
	v.Set("http_addr", "")

	err := Check(v)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"store.dataset is required",
		"store.project_id is required",
		"store.timeout must be a positive duration",
		`snapshots.driver "postgres"`,
		`log.format "xml"`,
		"http_addr is required",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestOptionsHaveComments(t *testing.T) {
	seen := map[string]bool{}
	for _, o := range Options() {
		assert.NotEmpty(t, o.Comment, o.Key)
		assert.False(t, seen[o.Key], "duplicate key %v", o.Key)
		seen[o.Key] = true
	}
}
