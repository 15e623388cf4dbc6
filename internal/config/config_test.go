package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

const minimalSource = `source:
  host: localhost
  port: 5432
  user: fleet
  database: rentfleet
`

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		yamlContent      string
		skipFileCreation bool
		wantConfig       *Config
		wantErr          bool
	}{
		{
			name:        "minimal_config",
			yamlContent: minimalSource,
			wantConfig: &Config{
				Source: &DatabaseConfig{Host: "localhost", Port: 5432, User: "fleet", Database: "rentfleet"},
			},
		},
		{
			name: "full_config",
			yamlContent: minimalSource + `  sslMode: disable
  maxConns: 8
sink:
  type: sqlite
  sqlite:
    path: /var/lib/fleet-sync/documents.db
jobs:
  assets:
    shards: 20
    batchSize: 1000
    concurrency: 4
    retries: 2
    interval: 30m
    photoBaseUrl: https://cdn.example.com/photos/
  users:
    shards: 5
  companies:
    tenantId: "77"
  workOrders:
    batchSize: 200
telemetry:
  enabled: true
  endpoint: otel:4318
  tracing:
    enabled: true
    sampling: 0.5
`,
			wantConfig: &Config{
				Source: &DatabaseConfig{
					Host: "localhost", Port: 5432, User: "fleet", Database: "rentfleet",
					SSLMode: "disable", MaxConns: 8,
				},
				Sink: SinkConfig{
					Type:   SinkTypeSQLite,
					SQLite: &SQLiteConfig{Path: "/var/lib/fleet-sync/documents.db"},
				},
				Jobs: JobsConfig{
					Assets: &AssetsJobConfig{
						JobConfig: JobConfig{
							Shards: 20, BatchSize: 1000, Concurrency: 4, Retries: 2, Interval: "30m",
						},
						PhotoBaseURL: "https://cdn.example.com/photos/",
					},
					Users:      &JobConfig{Shards: 5},
					Companies:  &CompaniesJobConfig{TenantID: "77"},
					WorkOrders: &JobConfig{BatchSize: 200},
				},
				Telemetry: &telemetry.Config{
					Enabled:  true,
					Endpoint: "otel:4318",
					Tracing:  &telemetry.TracingConfig{Enabled: true, Sampling: 0.5},
				},
			},
		},
		{
			name:        "invalid_yaml",
			yamlContent: `source: [invalid yaml`,
			wantErr:     true,
		},
		{
			name:        "missing_source",
			yamlContent: "sink:\n  type: memory\n",
			wantErr:     true,
		},
		{
			name:             "file_not_found",
			skipFileCreation: true,
			wantErr:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")

			if tt.skipFileCreation {
				configPath = filepath.Join(tmpDir, "non-existent.yaml")
			} else {
				err := os.WriteFile(configPath, []byte(tt.yamlContent), 0600)
				require.NoError(t, err)
			}

			config, err := LoadConfig(WithConfigPath(configPath))

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantConfig, config)
		})
	}
}

func TestLoadConfig_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "memory_sink", yaml: minimalSource + "sink:\n  type: memory\n"},
		{name: "postgres_sink_falls_back_to_source", yaml: minimalSource + "sink:\n  type: postgres\n"},
		{
			name:    "source_missing_fields",
			yaml:    "source:\n  host: localhost\n",
			wantErr: "source.port is required",
		},
		{
			name:    "unknown_sink",
			yaml:    minimalSource + "sink:\n  type: mongo\n",
			wantErr: "sink.type must be one of",
		},
		{
			name:    "sqlite_without_path",
			yaml:    minimalSource + "sink:\n  type: sqlite\n",
			wantErr: "sink.sqlite.path is required",
		},
		{
			name:    "invalid_sink_postgres",
			yaml:    minimalSource + "sink:\n  postgres:\n    host: docs\n",
			wantErr: "sink.postgres.port is required",
		},
		{
			name:    "negative_shards",
			yaml:    minimalSource + "jobs:\n  users:\n    shards: -1\n",
			wantErr: "jobs.users.shards must not be negative",
		},
		{
			name:    "bad_interval",
			yaml:    minimalSource + "jobs:\n  assets:\n    interval: soon\n",
			wantErr: "jobs.assets.interval",
		},
		{
			name:    "negative_interval",
			yaml:    minimalSource + "jobs:\n  companies:\n    interval: -5m\n",
			wantErr: "interval must not be negative",
		},
		{
			name:    "delimiter_in_companies_tenant",
			yaml:    minimalSource + "jobs:\n  companies:\n    tenantId: \"18|54\"\n",
			wantErr: "must not contain '|'",
		},
		{
			name:    "bad_connection_lifetime",
			yaml:    minimalSource + "  connMaxLifetime: forever\n",
			wantErr: "source.connMaxLifetime",
		},
		{
			name:    "bad_telemetry_sampling",
			yaml:    minimalSource + "telemetry:\n  enabled: true\n  tracing:\n    enabled: true\n    sampling: 2\n",
			wantErr: "telemetry: tracing: sampling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetSinkType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SinkTypePostgres, (&Config{}).GetSinkType())
	assert.Equal(t, SinkTypeMemory, (&Config{Sink: SinkConfig{Type: SinkTypeMemory}}).GetSinkType())
}

func TestGetSinkDatabase(t *testing.T) {
	t.Parallel()

	source := &DatabaseConfig{Host: "source"}
	sink := &DatabaseConfig{Host: "sink"}

	assert.Same(t, source, (&Config{Source: source}).GetSinkDatabase())
	assert.Same(t, sink, (&Config{Source: source, Sink: SinkConfig{Postgres: sink}}).GetSinkDatabase())
}

func TestJobConfigDefaults(t *testing.T) {
	t.Parallel()

	var nilJob *JobConfig
	assert.Equal(t, 1, nilJob.GetShards())
	assert.Equal(t, DefaultBatchSize, nilJob.GetBatchSize())
	assert.Equal(t, 1, nilJob.GetConcurrency())
	assert.Equal(t, 0, nilJob.GetRetries())
	interval, err := nilJob.GetInterval()
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, interval)

	job := &JobConfig{Shards: 20, BatchSize: 100, Concurrency: 4, Retries: 3, Interval: "0"}
	assert.Equal(t, 20, job.GetShards())
	assert.Equal(t, 100, job.GetBatchSize())
	assert.Equal(t, 4, job.GetConcurrency())
	assert.Equal(t, 3, job.GetRetries())
	interval, err = job.GetInterval()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), interval)
}

func TestJobsConfigAccessors(t *testing.T) {
	t.Parallel()

	var empty JobsConfig
	assert.Nil(t, empty.AssetsJob())
	assert.Nil(t, empty.CompaniesJob())
	assert.Equal(t, "", empty.GetPhotoBaseURL())
	assert.Equal(t, DefaultCompaniesTenantID, empty.GetCompaniesTenantID())

	jobs := JobsConfig{
		Assets:    &AssetsJobConfig{JobConfig: JobConfig{Shards: 3}, PhotoBaseURL: "https://cdn/"},
		Companies: &CompaniesJobConfig{TenantID: "42"},
	}
	assert.Equal(t, 3, jobs.AssetsJob().GetShards())
	assert.NotNil(t, jobs.CompaniesJob())
	assert.Equal(t, "https://cdn/", jobs.GetPhotoBaseURL())
	assert.Equal(t, "42", jobs.GetCompaniesTenantID())
}

func TestWithConfigPath(t *testing.T) {
	t.Parallel()

	t.Run("empty_path", func(t *testing.T) {
		t.Parallel()
		err := WithConfigPath("")(&loaderConfig{})
		require.Error(t, err)
	})

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()
		err := WithConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))(&loaderConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to evaluate symlinks")
	})

	t.Run("symlink_resolved", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		target := filepath.Join(dir, "real.yaml")
		require.NoError(t, os.WriteFile(target, []byte(minimalSource), 0600))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(target, link))

		lc := &loaderConfig{}
		require.NoError(t, WithConfigPath(link)(lc))

		want, err := filepath.EvalSymlinks(target)
		require.NoError(t, err)
		assert.Equal(t, want, lc.path)
	})
}

func TestDatabaseConfigGetPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		missingFile  bool
		wantPassword string
		errMsg       string
	}{
		{name: "password_from_file", content: "mypassword", wantPassword: "mypassword"},
		{name: "password_from_file_with_whitespace", content: "  mypassword\n\t", wantPassword: "mypassword"},
		{name: "password_file_not_found", missingFile: true, errMsg: "failed to read password from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			passwordFile := filepath.Join(t.TempDir(), "password.txt")
			if !tt.missingFile {
				require.NoError(t, os.WriteFile(passwordFile, []byte(tt.content), 0600))
			}
			cfg := &DatabaseConfig{PasswordFile: passwordFile}

			password, err := cfg.GetPassword()
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPassword, password)
		})
	}
}

//nolint:paralleltest // mutates process environment
func TestDatabaseConfigGetPassword_Env(t *testing.T) {
	t.Setenv(PasswordEnvVar, "from-env")

	password, err := (&DatabaseConfig{}).GetPassword()
	require.NoError(t, err)
	assert.Equal(t, "from-env", password)

	t.Setenv(PasswordEnvVar, "")
	_, err = (&DatabaseConfig{}).GetPassword()
	require.Error(t, err)
	assert.Contains(t, err.Error(), PasswordEnvVar)
}

func TestDatabaseConfigGetConnectionString(t *testing.T) {
	t.Parallel()

	passwordFile := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(passwordFile, []byte("p@ss:word/1"), 0600))

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default_ssl_mode",
			cfg:  DatabaseConfig{Host: "db", Port: 5432, User: "fleet", Database: "rentfleet"},
			want: "postgres://fleet:p%40ss%3Aword%2F1@db:5432/rentfleet?sslmode=require",
		},
		{
			name: "explicit_ssl_mode",
			cfg:  DatabaseConfig{Host: "db", Port: 6543, User: "fleet", Database: "docs", SSLMode: "disable"},
			want: "postgres://fleet:p%40ss%3Aword%2F1@db:6543/docs?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			cfg.PasswordFile = passwordFile
			got, err := cfg.GetConnectionString()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
