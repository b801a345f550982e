package settings

import "time"

// Config is the root configuration of the spooler.
type Config struct {
	Spooler Spooler `mapstructure:"spooler"`
	Logger  Logger  `mapstructure:"logger"`
}

// Backend names accepted by Spooler.Backend.
const (
	BackendMemory = "memory" // monitor ring buffer
	BackendChan   = "chan"   // buffered Go channel
	BackendMQueue = "mqueue" // POSIX message queue
)

// Spooler is the configuration of the job queue and of the actors around it.
type Spooler struct {
	Backend  string `mapstructure:"backend" validate:"required,oneof=memory chan mqueue"`
	Capacity int    `mapstructure:"capacity" validate:"gt=0"`

	Clients  int `mapstructure:"clients" validate:"gt=0"`  // producers
	Printers int `mapstructure:"printers" validate:"gt=0"` // consumers

	RequestsPerClient int `mapstructure:"requests_per_client" validate:"gt=0"`
	MinFileSize       int `mapstructure:"min_file_size" validate:"gt=0"`
	MaxFileSize       int `mapstructure:"max_file_size" validate:"gtefield=MinFileSize"`

	MinPace time.Duration `mapstructure:"min_pace" validate:"gte=0"`
	MaxPace time.Duration `mapstructure:"max_pace" validate:"gtefield=MinPace"`

	// UnitsPerSecond maps a request size to print time: size/UnitsPerSecond seconds.
	UnitsPerSecond int `mapstructure:"units_per_second" validate:"gt=0"`

	// Drain makes shutdown wait until every submitted request was printed.
	Drain           bool          `mapstructure:"drain"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	MQueue MQueue `mapstructure:"mqueue"`
}

// MQueue is the configuration of the POSIX message queue backend.
type MQueue struct {
	// Name of the kernel queue ("/name"). Empty picks a unique name per run.
	Name           string        `mapstructure:"name" validate:"omitempty,startswith=/,max=256"`
	MaxMessageSize int           `mapstructure:"max_message_size" validate:"gte=64"`
	PollInterval   time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge      int    `mapstructure:"max_age" validate:"gte=0"`
	MaxSize     int    `mapstructure:"max_size" validate:"gte=0"`
	Compress    bool   `mapstructure:"compress"`
}
