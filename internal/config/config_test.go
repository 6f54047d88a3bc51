package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/adrg/xdg"

	cfg "github.com/NamanBalaji/mcfetch/internal/config"
	"github.com/NamanBalaji/mcfetch/internal/source"
)

func withTempConfigHome(t *testing.T) (restore func(), dir string, file string) {
	t.Helper()
	orig := xdg.ConfigHome
	dir = t.TempDir()
	xdg.ConfigHome = dir
	restore = func() { xdg.ConfigHome = orig }
	file = filepath.Join(dir, "mcfetch", "config.yaml")
	return
}

func TestGetConfig_Table(t *testing.T) {
	restore, _, cfgFile := withTempConfigHome(t)
	defer restore()

	if err := os.MkdirAll(filepath.Dir(cfgFile), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}

	def := cfg.DefaultConfig()

	tests := []struct {
		name      string
		preWrite  bool
		contents  string
		env       map[string]string
		expectErr bool
		check     func(t *testing.T, got *cfg.Config, def cfg.Config)
	}{
		{
			name:     "missing_file_returns_defaults",
			preWrite: false,
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if !reflect.DeepEqual(*got, def) {
					t.Fatalf("expected defaults\nwant: %#v\ngot:  %#v", def, *got)
				}
			},
		},
		{
			name:     "empty_file_returns_defaults",
			preWrite: true,
			contents: "",
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if !reflect.DeepEqual(*got, def) {
					t.Fatalf("expected defaults\nwant: %#v\ngot:  %#v", def, *got)
				}
			},
		},
		{
			name:      "invalid_yaml_returns_error",
			preWrite:  true,
			contents:  ": not yaml",
			expectErr: true,
		},
		{
			name:     "partial_override_and_fallback",
			preWrite: true,
			contents: `
logLevel: debug
download:
  threadPoolSize: 16
  strategy: mirror
  retryDelay: 2s
`,
			check: func(t *testing.T, got *cfg.Config, def cfg.Config) {
				if got.LogLevel != "debug" {
					t.Fatalf("want logLevel=debug got %q", got.LogLevel)
				}
				if got.Download.ThreadPoolSize != 16 {
					t.Fatalf("want threadPoolSize=16 got %d", got.Download.ThreadPoolSize)
				}
				if got.Download.Strategy != source.MirrorOnly {
					t.Fatalf("want strategy=mirror got %s", got.Download.Strategy)
				}
				if got.Download.RetryDelay != 2*time.Second {
					t.Fatalf("want retryDelay=2s got %s", got.Download.RetryDelay)
				}
				if got.Download.MaxRetries != def.Download.MaxRetries {
					t.Fatalf("want maxRetries default %d got %d", def.Download.MaxRetries, got.Download.MaxRetries)
				}
				if got.Download.LargeFileThreshold != def.Download.LargeFileThreshold {
					t.Fatalf("want largeFileThreshold default %d got %d", def.Download.LargeFileThreshold, got.Download.LargeFileThreshold)
				}
				if got.DataDir != def.DataDir {
					t.Fatalf("want dataDir default %q got %q", def.DataDir, got.DataDir)
				}
			},
		},
		{
			name:     "explicit_zero_retries_is_kept",
			preWrite: true,
			contents: "download:\n  maxRetries: 0\n",
			check: func(t *testing.T, got *cfg.Config, _ cfg.Config) {
				if got.Download.MaxRetries != 0 {
					t.Fatalf("want maxRetries=0 got %d", got.Download.MaxRetries)
				}
			},
		},
		{
			name:     "environment_overrides_file",
			preWrite: true,
			contents: "download:\n  maxRetries: 7\n",
			env: map[string]string{
				"MCFETCH_DOWNLOAD_MAX_RETRIES": "5",
				"MCFETCH_DOWNLOAD_STRATEGY":    "official",
				"MCFETCH_LOG_LEVEL":            "warn",
			},
			check: func(t *testing.T, got *cfg.Config, _ cfg.Config) {
				if got.Download.MaxRetries != 5 {
					t.Fatalf("want maxRetries=5 from env got %d", got.Download.MaxRetries)
				}
				if got.Download.Strategy != source.OfficialOnly {
					t.Fatalf("want strategy=official from env got %s", got.Download.Strategy)
				}
				if got.LogLevel != "warn" {
					t.Fatalf("want logLevel=warn from env got %q", got.LogLevel)
				}
			},
		},
		{
			name:      "unknown_strategy_returns_error",
			preWrite:  true,
			contents:  "download:\n  strategy: fastest\n",
			expectErr: true,
		},
		{
			name:      "invalid_pool_size_returns_error",
			preWrite:  true,
			contents:  "download:\n  threadPoolSize: 0\n",
			expectErr: true,
		},
		{
			name:      "invalid_log_level_returns_error",
			preWrite:  true,
			contents:  "logLevel: loud\n",
			expectErr: true,
		},
		{
			name:      "invalid_env_value_returns_error",
			env:       map[string]string{"MCFETCH_DOWNLOAD_READ_TIMEOUT": "soon"},
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// clean start each subtest
			_ = os.Remove(cfgFile)
			if tc.preWrite {
				if err := os.WriteFile(cfgFile, []byte(tc.contents), 0o600); err != nil {
					t.Fatalf("write test config: %v", err)
				}
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			got, err := cfg.GetConfig()
			if tc.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetConfig error: %v", err)
			}
			tc.check(t, got, def)
		})
	}
}

func TestDefaultDownloadConfig(t *testing.T) {
	d := cfg.DefaultDownloadConfig()

	if d.ThreadPoolSize != 64 || d.LargeFileChunks != 8 || d.MaxRetries != 3 {
		t.Fatalf("unexpected defaults: %#v", d)
	}
	if d.LargeFileThreshold != 10*1024*1024 {
		t.Fatalf("want 10MiB threshold got %d", d.LargeFileThreshold)
	}
	if d.Strategy != source.Hybrid {
		t.Fatalf("want hybrid strategy got %s", d.Strategy)
	}
	if d.ConnectTimeoutDuration() != 30*time.Second || d.ReadTimeoutDuration() != 60*time.Second {
		t.Fatalf("unexpected timeouts: connect %s read %s", d.ConnectTimeoutDuration(), d.ReadTimeoutDuration())
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	d.LargeFileChunks = 0
	if err := d.Validate(); err == nil {
		t.Fatalf("expected error for zero chunks")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := cfg.DefaultConfig()
	want.LogFile = "/tmp/mcfetch.log"
	want.Download.Strategy = source.OfficialOnly
	want.Download.RetryDelay = 250 * time.Millisecond

	if err := cfg.Save(&want, path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := cfg.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("round trip mismatch\nwant: %#v\ngot:  %#v", want, *got)
	}
}
