package settings

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. SPOOLER_SPOOLER_CAPACITY.
const EnvPrefix = "SPOOLER"

// Defaults describe a small print shop: three slots, six jobs per
// client, files of 200..20000 characters, one to three seconds between
// submissions and 8000 characters printed per second.
var defaults = map[string]any{
	"spooler.backend":             BackendMemory,
	"spooler.capacity":            3,
	"spooler.clients":             1,
	"spooler.printers":            1,
	"spooler.requests_per_client": 6,
	"spooler.min_file_size":       200,
	"spooler.max_file_size":       20000,
	"spooler.min_pace":            time.Second,
	"spooler.max_pace":            3 * time.Second,
	"spooler.units_per_second":    8000,
	"spooler.drain":               true,
	"spooler.shutdown_timeout":    30 * time.Second,

	"spooler.mqueue.name":             "",
	"spooler.mqueue.max_message_size": 1024,
	"spooler.mqueue.poll_interval":    100 * time.Millisecond,

	"logger.log_level":     "info",
	"logger.file_log_name": "",
	"logger.max_backups":   3,
	"logger.max_age":       28,
	"logger.max_size":      100,
	"logger.compress":      false,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewViper returns a viper instance with defaults and environment overrides
// registered. Callers may bind flags and set a config file before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file configured on v, decodes everything
// into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
