package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/lazyroute/internal/errors"
	"github.com/vango-dev/lazyroute/pkg/routetable"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "lazyroute.json"

	// DefaultPort is the default API server port.
	DefaultPort = 8080

	// DefaultHost is the default API server host.
	DefaultHost = "localhost"

	// DefaultBundleDir is the default manifest directory, relative to the
	// configuration file.
	DefaultBundleDir = "bundles"

	// DefaultMaxRedirects is the default redirect chain limit.
	DefaultMaxRedirects = 16
)

// Bundle sources.
const (
	SourceDir = "dir"
	SourceS3  = "s3"
)

// Scroll stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config represents the complete lazyroute.json configuration.
type Config struct {
	// Name is the application name.
	Name string `json:"name,omitempty"`

	// Routes is the root route table.
	Routes []routetable.Config `json:"routes"`

	// Bundles configures where lazy bundles are fetched from.
	Bundles BundlesConfig `json:"bundles,omitempty"`

	// Scroll configures scroll restoration.
	Scroll ScrollConfig `json:"scroll,omitempty"`

	// Navigation configures the controller.
	Navigation NavigationConfig `json:"navigation,omitempty"`

	// Server configures the HTTP API.
	Server ServerConfig `json:"server,omitempty"`

	// Log configures logging.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BundlesConfig selects and configures the bundle source.
type BundlesConfig struct {
	// Source is "dir" or "s3".
	Source string `json:"source,omitempty"`

	// Dir holds "<id>.json" manifests for the dir source.
	Dir string `json:"dir,omitempty"`

	// S3 configures the s3 source.
	S3 S3Config `json:"s3,omitempty"`

	// FetchTimeout bounds each fetch (e.g., "10s"). Empty means no limit.
	FetchTimeout string `json:"fetchTimeout,omitempty"`
}

// S3Config locates manifests in a bucket.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// ScrollConfig configures scroll restoration.
type ScrollConfig struct {
	// RestorePosition restores offsets on back/forward navigation.
	RestorePosition bool `json:"restorePosition,omitempty"`

	// AnchorScrolling scrolls to "#fragment" targets.
	AnchorScrolling bool `json:"anchorScrolling,omitempty"`

	// Store is "memory" or "redis".
	Store string `json:"store,omitempty"`

	// Redis configures the redis store.
	Redis RedisConfig `json:"redis,omitempty"`
}

// RedisConfig configures the redis scroll store.
type RedisConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	Key      string `json:"key,omitempty"`

	// TTL expires recorded offsets (e.g., "24h"). Empty keeps them forever.
	TTL string `json:"ttl,omitempty"`
}

// NavigationConfig configures the controller.
type NavigationConfig struct {
	// MaxRedirects caps redirect chains.
	MaxRedirects int `json:"maxRedirects,omitempty"`

	// Timeout bounds each navigation started through the HTTP API
	// (e.g., "30s"). Empty means the request alone bounds it.
	Timeout string `json:"timeout,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// DisableMetrics hides the /metrics endpoint.
	DisableMetrics bool `json:"disableMetrics,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for lazyroute.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigFile).
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or pass its path with --config")
		}
		return nil, errors.New(errors.CodeConfigFile).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		re := errors.FromError(err, errors.CodeConfigFile)
		if re.Location == nil {
			if line, col, ok := syntaxPosition(data, err); ok {
				re.WithLocation(path, line, col)
			}
		}
		return nil, re
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a configuration document and applies defaults.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.New(errors.CodeConfigFile).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON").
			Wrap(err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// syntaxPosition maps a decoding error's byte offset to a 1-based line and
// column.
func syntaxPosition(data []byte, err error) (line, col int, ok bool) {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0, 0, false
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col, true
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Bundles.Source == "" {
		c.Bundles.Source = SourceDir
	}
	if c.Bundles.Dir == "" {
		c.Bundles.Dir = DefaultBundleDir
	}
	if c.Scroll.Store == "" {
		c.Scroll.Store = StoreMemory
	}
	if c.Navigation.MaxRedirects == 0 {
		c.Navigation.MaxRedirects = DefaultMaxRedirects
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid, including the route table.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New(errors.CodeConfigFile).WithPath(c.configPath).WithDetail(detail)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port must be between 0 and 65535")
	}
	if c.Navigation.MaxRedirects < 0 {
		return invalid("navigation.maxRedirects must not be negative")
	}

	switch c.Bundles.Source {
	case SourceDir:
	case SourceS3:
		if c.Bundles.S3.Bucket == "" {
			return invalid("bundles.s3.bucket is required for the s3 source")
		}
	default:
		return invalid("bundles.source must be \"dir\" or \"s3\", got " + strconv.Quote(c.Bundles.Source))
	}
	if _, err := c.FetchTimeout(); err != nil {
		return invalid("bundles.fetchTimeout: " + err.Error())
	}
	if _, err := c.NavigateTimeout(); err != nil {
		return invalid("navigation.timeout: " + err.Error())
	}

	switch c.Scroll.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Scroll.Redis.Addr == "" {
			return invalid("scroll.redis.addr is required for the redis store")
		}
	default:
		return invalid("scroll.store must be \"memory\" or \"redis\", got " + strconv.Quote(c.Scroll.Store))
	}
	if _, err := c.RedisTTL(); err != nil {
		return invalid("scroll.redis.ttl: " + err.Error())
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level must be debug, info, warn or error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format must be \"text\" or \"json\"")
	}

	if len(c.Routes) == 0 {
		return invalid("routes must not be empty")
	}
	_, err := c.Table()
	return err
}

// Table builds the root route table.
func (c *Config) Table() (*routetable.Table, error) {
	return routetable.Build(c.Routes)
}

// BundleDir returns the manifest directory, resolved against the config
// file's directory when relative.
func (c *Config) BundleDir() string {
	if filepath.IsAbs(c.Bundles.Dir) || c.configPath == "" {
		return c.Bundles.Dir
	}
	return filepath.Join(c.Dir(), c.Bundles.Dir)
}

// FetchTimeout parses bundles.fetchTimeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	return parseDuration(c.Bundles.FetchTimeout)
}

// NavigateTimeout parses navigation.timeout.
func (c *Config) NavigateTimeout() (time.Duration, error) {
	return parseDuration(c.Navigation.Timeout)
}

// RedisTTL parses scroll.redis.ttl.
func (c *Config) RedisTTL() (time.Duration, error) {
	return parseDuration(c.Scroll.Redis.TTL)
}

// Address returns the host:port the API server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, stderrors.New("duration must not be negative")
	}
	return d, nil
}
