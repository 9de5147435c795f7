// Package config loads the settings of a cosfs filesystem from YAML and
// the environment.
//
// A configuration file looks like:
//
//	endpoint: cos.ap-guangzhou.myqcloud.com
//	bucket: examplebucket-1250000000
//	region: ap-guangzhou
//	root: data/
//	partSize: 8388608
//	cache:
//	  size: 256
//	  ttl: 30s
//
// Environment variables override the file:
//
//	COS_ENDPOINT       endpoint
//	COS_BUCKET         bucket
//	COS_REGION         region
//	COS_SECRET_ID      secretId
//	COS_SECRET_KEY     secretKey
//	COS_SESSION_TOKEN  sessionToken
//	COS_ROOT           root
//
// COSFS_CONFIG names the file when none is given to [Load].
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"lesiw.io/cosfs"
	"lesiw.io/cosfs/miniostore"
)

// EnvConfig names the configuration file when [Load] is given none.
const EnvConfig = "COSFS_CONFIG"

// ErrInvalid is returned by [Config.Validate].
var ErrInvalid = errors.New("invalid config")

// Config holds the settings of one filesystem.
type Config struct {
	Endpoint     string `yaml:"endpoint"`
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region,omitempty"`
	Root         string `yaml:"root,omitempty"`
	SecretID     string `yaml:"secretId,omitempty"`
	SecretKey    string `yaml:"secretKey,omitempty"`
	SessionToken string `yaml:"sessionToken,omitempty"`

	// Insecure disables TLS.
	Insecure bool `yaml:"insecure,omitempty"`
	// PathStyle addresses the bucket in the URL path instead of the host.
	PathStyle bool `yaml:"pathStyle,omitempty"`

	BlockSize int64       `yaml:"blockSize"`
	PartSize  int64       `yaml:"partSize"`
	MaxParts  int         `yaml:"maxParts"`
	PageSize  int         `yaml:"pageSize"`
	Cache     CacheConfig `yaml:"cache"`
}

// CacheConfig controls the listing cache. A zero Size disables it.
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Default returns a Config with the default thresholds and no store.
func Default() Config {
	return Config{
		BlockSize: cosfs.DefaultBlockSize,
		PartSize:  cosfs.DefaultPartSize,
		MaxParts:  cosfs.DefaultMaxParts,
		PageSize:  cosfs.DefaultPageSize,
		Cache:     CacheConfig{TTL: time.Minute},
	}
}

// Load reads the configuration file at path over [Default], then applies
// environment overrides.
//
// If path is empty, Load reads the file named by COSFS_CONFIG, if any.
// Unknown fields are an error. Load does not validate the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	vars := []struct {
		name string
		dst  *string
	}{
		{"COS_ENDPOINT", &cfg.Endpoint},
		{"COS_BUCKET", &cfg.Bucket},
		{"COS_REGION", &cfg.Region},
		{"COS_SECRET_ID", &cfg.SecretID},
		{"COS_SECRET_KEY", &cfg.SecretKey},
		{"COS_SESSION_TOKEN", &cfg.SessionToken},
		{"COS_ROOT", &cfg.Root},
	}
	for _, v := range vars {
		if s, ok := os.LookupEnv(v.name); ok {
			*v.dst = s
		}
	}
}

// Validate reports whether c describes a usable filesystem.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, fmt.Errorf("%w: missing endpoint", ErrInvalid))
	}
	if c.Bucket == "" {
		errs = append(errs, fmt.Errorf("%w: missing bucket", ErrInvalid))
	}
	if (c.SecretID == "") != (c.SecretKey == "") {
		errs = append(errs, fmt.Errorf(
			"%w: secret id and secret key must be set together", ErrInvalid,
		))
	}
	sizes := []struct {
		name string
		n    int64
	}{
		{"blockSize", c.BlockSize},
		{"partSize", c.PartSize},
		{"maxParts", int64(c.MaxParts)},
		{"pageSize", int64(c.PageSize)},
	}
	for _, s := range sizes {
		if s.n <= 0 {
			errs = append(errs,
				fmt.Errorf("%w: %s must be positive, got %d",
					ErrInvalid, s.name, s.n))
		}
	}
	if c.MaxParts > cosfs.DefaultMaxParts {
		errs = append(errs, fmt.Errorf("%w: maxParts %d exceeds %d",
			ErrInvalid, c.MaxParts, cosfs.DefaultMaxParts))
	}
	if c.PageSize > cosfs.DefaultPageSize {
		errs = append(errs, fmt.Errorf("%w: pageSize %d exceeds %d",
			ErrInvalid, c.PageSize, cosfs.DefaultPageSize))
	}
	if c.Cache.Size < 0 || c.Cache.Size > 0 && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf(
			"%w: cache needs a non-negative size and a positive ttl",
			ErrInvalid,
		))
	}
	return errors.Join(errs...)
}

// StoreOptions returns the options for a [miniostore.Client].
func (c Config) StoreOptions() miniostore.Options {
	return miniostore.Options{
		Endpoint:     c.Endpoint,
		Bucket:       c.Bucket,
		Region:       c.Region,
		SecretID:     c.SecretID,
		SecretKey:    c.SecretKey,
		SessionToken: c.SessionToken,
		Insecure:     c.Insecure,
		PathStyle:    c.PathStyle,
	}
}

// FSOptions returns the options for [cosfs.New].
func (c Config) FSOptions() []cosfs.Option {
	opts := []cosfs.Option{
		cosfs.WithRoot(c.Root),
		cosfs.WithBlockSize(c.BlockSize),
		cosfs.WithPartSize(c.PartSize),
		cosfs.WithMaxParts(c.MaxParts),
		cosfs.WithPageSize(c.PageSize),
	}
	if c.Cache.Size > 0 {
		opts = append(opts,
			cosfs.WithListingCache(c.Cache.Size, c.Cache.TTL))
	}
	return opts
}
