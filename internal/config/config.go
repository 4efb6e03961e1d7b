// Package config loads bayesbench settings from defaults, an optional YAML
// file and BAYESBENCH_* environment variables.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
)

// EnvPrefix prefixes every environment override, e.g. BAYESBENCH_SERVER_PORT.
const EnvPrefix = "BAYESBENCH"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`
	CORS     CORSConfig      `mapstructure:"cors"`
	Model    ModelConfig     `mapstructure:"model"`
	DataDir  string          `mapstructure:"data_dir"`
	Datasets []DatasetConfig `mapstructure:"datasets"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	Backend string `mapstructure:"backend"`
}

// LoggerConfig converts the section into a pkg/log Config writing to out.
func (l LogConfig) LoggerConfig(out io.Writer) log.Config {
	return log.Config{Backend: l.Backend, Level: l.Level, Format: l.Format, Output: out}
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ModelConfig holds the GaussianNB hyperparameters used for every dataset.
type ModelConfig struct {
	VarSmoothing      float64 `mapstructure:"var_smoothing"`
	ParallelThreshold int     `mapstructure:"parallel_threshold"`
}

// DatasetConfig describes one CSV dataset served by the API.
type DatasetConfig struct {
	Name        string `mapstructure:"name"`
	Path        string `mapstructure:"path"`
	Header      bool   `mapstructure:"header"`
	LabelColumn int    `mapstructure:"label_column"`
}

// ResolvePath joins relative dataset paths onto dataDir.
func (d DatasetConfig) ResolvePath(dataDir string) string {
	if filepath.IsAbs(d.Path) || dataDir == "" {
		return d.Path
	}
	return filepath.Join(dataDir, d.Path)
}

// reservedNames cannot be dataset names because the legacy report route is
// registered as "/<name>" next to them.
var reservedNames = map[string]bool{
	"health":  true,
	"ready":   true,
	"metrics": true,
	"api":     true,
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.backend", log.BackendSlog)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("model.var_smoothing", 0.0)
	v.SetDefault("model.parallel_threshold", 1000)

	v.SetDefault("data_dir", ".")
	v.SetDefault("datasets", []map[string]interface{}{
		{"name": "iris", "path": "iris.csv", "header": true, "label_column": -1},
		{"name": "banknote", "path": "banknote_authentication.csv", "header": true, "label_column": -1},
	})
}

// Load reads the configuration. path may be empty, in which case
// BAYESBENCH_CONFIG is consulted; without either only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		err = multierr.Append(err, errors.NewValidationError("server.port", "must be in 1..65535", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		err = multierr.Append(err, errors.NewValidationError("server.mode", "must be debug, release or test", c.Server.Mode))
	}
	if c.Server.ShutdownTimeout < 0 {
		err = multierr.Append(err, errors.NewValidationError("server.shutdown_timeout", "must not be negative", c.Server.ShutdownTimeout))
	}

	if _, lerr := log.ParseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, errors.NewValidationError("log.level", lerr.Error(), c.Log.Level))
	}
	switch c.Log.Backend {
	case log.BackendSlog, log.BackendZerolog, log.BackendZap:
	default:
		err = multierr.Append(err, errors.NewValidationError("log.backend", "must be slog, zerolog or zap", c.Log.Backend))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, errors.NewValidationError("log.format", "must be json or console", c.Log.Format))
	}

	if c.Model.VarSmoothing < 0 {
		err = multierr.Append(err, errors.NewValidationError("model.var_smoothing", "must not be negative", c.Model.VarSmoothing))
	}
	if c.Model.ParallelThreshold < 0 {
		err = multierr.Append(err, errors.NewValidationError("model.parallel_threshold", "must not be negative", c.Model.ParallelThreshold))
	}

	if len(c.Datasets) == 0 {
		err = multierr.Append(err, errors.NewValidationError("datasets", "at least one dataset is required", 0))
	}
	seen := make(map[string]bool, len(c.Datasets))
	for i, d := range c.Datasets {
		key := fmt.Sprintf("datasets[%d]", i)
		switch {
		case d.Name == "":
			err = multierr.Append(err, errors.NewValidationError(key+".name", "must not be empty", d.Name))
		case reservedNames[d.Name] || strings.ContainsAny(d.Name, "/?#"):
			err = multierr.Append(err, errors.NewValidationError(key+".name", "reserved or not usable as a route segment", d.Name))
		case seen[d.Name]:
			err = multierr.Append(err, errors.NewValidationError(key+".name", "duplicate dataset name", d.Name))
		}
		seen[d.Name] = true
		if d.Path == "" {
			err = multierr.Append(err, errors.NewValidationError(key+".path", "must not be empty", d.Path))
		}
	}
	return err
}
