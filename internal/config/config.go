// Package config provides configuration loading and management for fleet-sync.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rentfleet/fleet-sync/internal/telemetry"
)

const (
	// SinkTypePostgres stores documents in a PostgreSQL JSONB table
	SinkTypePostgres = "postgres"

	// SinkTypeSQLite stores documents in an embedded SQLite file
	SinkTypeSQLite = "sqlite"

	// SinkTypeMemory keeps documents in process memory
	SinkTypeMemory = "memory"
)

const (
	// DefaultBatchSize is the page size used when a job does not set one
	DefaultBatchSize = 500

	// DefaultInterval is how often the coordinator runs a global job
	DefaultInterval = time.Hour

	// DefaultCompaniesTenantID owns every company document
	DefaultCompaniesTenantID = "1854"

	// EnvPrefix is the prefix of the environment variables read by fleet-sync
	EnvPrefix = "FLEET_SYNC"

	// PasswordEnvVar is read when no passwordFile is configured
	PasswordEnvVar = "FLEET_SYNC_DATABASE_PASSWORD"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks first; EvalSymlinks also cleans the path.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// Source is the relational database the jobs read from
	Source *DatabaseConfig `yaml:"source"`

	// Sink selects the document store
	Sink SinkConfig `yaml:"sink"`

	Jobs JobsConfig `yaml:"jobs"`

	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SinkConfig defines where documents are written
type SinkConfig struct {
	// Type is one of postgres, sqlite or memory. Defaults to postgres.
	Type string `yaml:"type,omitempty"`

	// Postgres is the document store database. When unset the source
	// database is used.
	Postgres *DatabaseConfig `yaml:"postgres,omitempty"`

	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
}

// SQLiteConfig defines the embedded document store file
type SQLiteConfig struct {
	// Path is the database file; ":memory:" is accepted
	Path string `yaml:"path"`
}

// JobsConfig holds the settings of every sync job
type JobsConfig struct {
	Assets     *AssetsJobConfig    `yaml:"assets,omitempty"`
	Users      *JobConfig          `yaml:"users,omitempty"`
	Companies  *CompaniesJobConfig `yaml:"companies,omitempty"`
	WorkOrders *JobConfig          `yaml:"workOrders,omitempty"`
}

// JobConfig holds the settings shared by all jobs
type JobConfig struct {
	// Shards is the number of modulo partitions of the source table
	Shards int `yaml:"shards,omitempty"`

	// BatchSize is the number of rows per page
	BatchSize int `yaml:"batchSize,omitempty"`

	// Concurrency is the number of shards processed at once
	Concurrency int `yaml:"concurrency,omitempty"`

	// Retries is how many times a failed shard is re-run
	Retries int `yaml:"retries,omitempty"`

	// Interval is the coordinator schedule (e.g. "30m"). "0" disables
	// scheduling for the job.
	Interval string `yaml:"interval,omitempty"`
}

// AssetsJobConfig adds the asset photo CDN prefix
type AssetsJobConfig struct {
	JobConfig `yaml:",inline"`

	// PhotoBaseURL is prefixed onto stored photo filenames
	PhotoBaseURL string `yaml:"photoBaseUrl,omitempty"`
}

// CompaniesJobConfig adds the tenant that owns company documents
type CompaniesJobConfig struct {
	JobConfig `yaml:",inline"`

	TenantID string `yaml:"tenantId,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxConns is the maximum size of the connection pool
	MaxConns int32 `yaml:"maxConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from FLEET_SYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(PasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", PasswordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

func (d *DatabaseConfig) validate(prefix string) error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("%s.host is required", prefix))
	}
	if d.Port <= 0 {
		errs = append(errs, fmt.Errorf("%s.port is required", prefix))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("%s.user is required", prefix))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("%s.database is required", prefix))
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			errs = append(errs, fmt.Errorf("%s.connMaxLifetime: %w", prefix, err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML configuration
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// GetSinkType returns the sink type, using postgres if not specified
func (c *Config) GetSinkType() string {
	if c.Sink.Type == "" {
		return SinkTypePostgres
	}
	return c.Sink.Type
}

// GetSinkDatabase returns the document store database, falling back to the source
func (c *Config) GetSinkDatabase() *DatabaseConfig {
	if c.Sink.Postgres != nil {
		return c.Sink.Postgres
	}
	return c.Source
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
	}

	var errs []error

	if c.Source == nil {
		errs = append(errs, fmt.Errorf("source is required"))
	} else if err := c.Source.validate("source"); err != nil {
		errs = append(errs, err)
	}

	switch c.GetSinkType() {
	case SinkTypePostgres:
		if c.Sink.Postgres != nil {
			if err := c.Sink.Postgres.validate("sink.postgres"); err != nil {
				errs = append(errs, err)
			}
		}
	case SinkTypeSQLite:
		if c.Sink.SQLite == nil || c.Sink.SQLite.Path == "" {
			errs = append(errs, fmt.Errorf("sink.sqlite.path is required for sqlite sink"))
		}
	case SinkTypeMemory:
	default:
		errs = append(errs, fmt.Errorf("sink.type must be one of %s, %s, %s, got %q",
			SinkTypePostgres, SinkTypeSQLite, SinkTypeMemory, c.Sink.Type))
	}

	jobs := map[string]*JobConfig{
		"assets":     c.Jobs.AssetsJob(),
		"users":      c.Jobs.Users,
		"companies":  c.Jobs.CompaniesJob(),
		"workOrders": c.Jobs.WorkOrders,
	}
	for name, job := range jobs {
		if err := job.validate("jobs." + name); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Jobs.Companies != nil && strings.Contains(c.Jobs.Companies.TenantID, "|") {
		errs = append(errs, fmt.Errorf("jobs.companies.tenantId must not contain '|'"))
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AssetsJob returns the shared settings of the assets job, or nil
func (j *JobsConfig) AssetsJob() *JobConfig {
	if j.Assets == nil {
		return nil
	}
	return &j.Assets.JobConfig
}

// CompaniesJob returns the shared settings of the companies job, or nil
func (j *JobsConfig) CompaniesJob() *JobConfig {
	if j.Companies == nil {
		return nil
	}
	return &j.Companies.JobConfig
}

// GetPhotoBaseURL returns the asset photo prefix
func (j *JobsConfig) GetPhotoBaseURL() string {
	if j.Assets == nil {
		return ""
	}
	return j.Assets.PhotoBaseURL
}

// GetCompaniesTenantID returns the tenant that owns company documents
func (j *JobsConfig) GetCompaniesTenantID() string {
	if j.Companies == nil || j.Companies.TenantID == "" {
		return DefaultCompaniesTenantID
	}
	return j.Companies.TenantID
}

func (j *JobConfig) validate(prefix string) error {
	if j == nil {
		return nil
	}

	var errs []error
	if j.Shards < 0 {
		errs = append(errs, fmt.Errorf("%s.shards must not be negative", prefix))
	}
	if j.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("%s.batchSize must not be negative", prefix))
	}
	if j.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%s.concurrency must not be negative", prefix))
	}
	if j.Retries < 0 {
		errs = append(errs, fmt.Errorf("%s.retries must not be negative", prefix))
	}
	if _, err := j.GetInterval(); err != nil {
		errs = append(errs, fmt.Errorf("%s.interval: %w", prefix, err))
	}
	return errors.Join(errs...)
}

// GetShards returns the shard count, using 1 if not specified
func (j *JobConfig) GetShards() int {
	if j == nil || j.Shards == 0 {
		return 1
	}
	return j.Shards
}

// GetBatchSize returns the page size, using DefaultBatchSize if not specified
func (j *JobConfig) GetBatchSize() int {
	if j == nil || j.BatchSize == 0 {
		return DefaultBatchSize
	}
	return j.BatchSize
}

// GetConcurrency returns the shard concurrency, using 1 if not specified
func (j *JobConfig) GetConcurrency() int {
	if j == nil || j.Concurrency == 0 {
		return 1
	}
	return j.Concurrency
}

// GetRetries returns the number of whole-shard retries
func (j *JobConfig) GetRetries() int {
	if j == nil {
		return 0
	}
	return j.Retries
}

// GetInterval parses the schedule interval, using DefaultInterval if not specified
func (j *JobConfig) GetInterval() (time.Duration, error) {
	if j == nil || j.Interval == "" {
		return DefaultInterval, nil
	}
	d, err := time.ParseDuration(j.Interval)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("interval must not be negative: %s", j.Interval)
	}
	return d, nil
}
