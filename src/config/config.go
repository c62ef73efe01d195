package config

import (
	"net"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/b2slc/slowcontrol/src/common"
	"github.com/magiconair/properties"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the
	// configuration database.
	DefaultBadgerFile = "config_db"

	// DefaultLogFile is the name of the rotated log file when only a log
	// directory is given.
	DefaultLogFile = "daemon.log"
)

// Default configuration values.
const (
	DefaultLogLevel    = "debug"
	DefaultNSMHost     = "127.0.0.1"
	DefaultNSMPort     = 8120
	DefaultTimeout     = 5 * time.Second
	DefaultConfigName  = "default"
	DefaultMQTTTopic   = "slc/state"
	DefaultHVChannels  = 4
	DefaultLogMaxSize  = 10
	DefaultLogMaxFiles = 5
)

// NSMConfig locates the hub and names the local node.
type NSMConfig struct {
	// Host is the address of the hub.
	Host string `mapstructure:"host"`

	// Port is the TCP port of the hub.
	Port int `mapstructure:"port"`

	// NodeName is the unique name this daemon registers with.
	NodeName string `mapstructure:"nodename"`
}

// LogConfig ...
type LogConfig struct {
	// Level determines the chattiness of the log output.
	Level string `mapstructure:"level"`

	// File is the path of an optional JSON log file, rotated by size.
	File string `mapstructure:"file"`

	// MaxSize is the size in megabytes at which the log file is rotated.
	MaxSize int `mapstructure:"maxsize"`

	// MaxFiles is the number of rotated files kept.
	MaxFiles int `mapstructure:"maxfiles"`
}

// DBConfig locates the configuration database.
type DBConfig struct {
	// Dir is the directory of the badger database. Empty means in-memory.
	Dir string `mapstructure:"dir"`

	// Config is the configuration name used by LOAD and CONFIGURE when the
	// request does not name one.
	Config string `mapstructure:"config"`
}

// ServiceConfig ...
type ServiceConfig struct {
	// Listen is the address:port of the optional HTTP status service.
	Listen string `mapstructure:"listen"`

	// MaxConns bounds the number of simultaneous HTTP connections.
	MaxConns int `mapstructure:"maxconns"`
}

// MQTTConfig configures the optional state publisher.
type MQTTConfig struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
}

// HVConfig holds the keys of the high-voltage controller.
type HVConfig struct {
	Channels int `mapstructure:"channels"`
}

// TempConfig holds the keys of the temperature monitor.
type TempConfig struct {
	// Sensors is a comma-separated list of sensor keys to publish. Empty
	// publishes every sensor found on the host.
	Sensors string `mapstructure:"sensors"`

	// Alarm is the initial alarm threshold in degrees Celsius. 0 disables
	// the alarm.
	Alarm float64 `mapstructure:"alarm"`
}

// Config contains all the configuration properties of a slow-control daemon.
type Config struct {
	NSM NSMConfig `mapstructure:"nsm"`

	// TimeoutSec is the interval, in seconds, between two calls of the
	// callback timeout hook. Non-positive values mean DefaultTimeout.
	TimeoutSec float64 `mapstructure:"timeout"`

	// DataDir is the top-level directory for daemon data (node table of the
	// hub, default database location).
	DataDir string `mapstructure:"datadir"`

	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Service ServiceConfig `mapstructure:"service"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	HV      HVConfig      `mapstructure:"hv"`
	Temp    TempConfig    `mapstructure:"temp"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		NSM: NSMConfig{
			Host: DefaultNSMHost,
			Port: DefaultNSMPort,
		},
		DataDir: DefaultDataDir(),
		Log: LogConfig{
			Level:    DefaultLogLevel,
			MaxSize:  DefaultLogMaxSize,
			MaxFiles: DefaultLogMaxFiles,
		},
		DB: DBConfig{
			Config: DefaultConfigName,
		},
		MQTT: MQTTConfig{
			Topic: DefaultMQTTTopic,
		},
		HV: HVConfig{
			Channels: DefaultHVChannels,
		},
	}
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.DataDir = ""
	config.logger = common.NewTestLogger(t, level)
	return config
}

// Load reads a configuration file. Files ending in .conf or .properties use
// the "key: value" properties format; every other extension supported by
// viper is read by viper. Missing keys keep their default values.
func Load(path string) (*Config, error) {
	return LoadViper(viper.New(), path)
}

// LoadViper reads a configuration file into v, which may already carry bound
// command-line flags. Flags that were set on the command line take precedence
// over the file.
func LoadViper(v *viper.Viper, path string) (*Config, error) {
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ReadFile reads the keys of a configuration file into v. Files ending in
// .conf, .properties or .cfg are parsed as properties and their keys set as
// defaults, so that flags bound to v keep precedence. Other files are read
// by viper.
func ReadFile(v *viper.Viper, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".conf", ".properties", ".cfg":
		p, err := properties.LoadFile(path, properties.UTF8)
		if err != nil {
			return common.NewError(common.ConfigErr, "load "+path, err)
		}
		for _, k := range p.Keys() {
			v.SetDefault(k, p.MustGetString(k))
		}
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return common.NewError(common.ConfigErr, "load "+path, err)
		}
	}
	return nil
}

// FromViper unmarshals the keys of v on top of the default configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	config := NewDefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, common.NewError(common.ConfigErr, "unmarshal", err)
	}
	return config, nil
}

// Validate checks the keys every daemon needs.
func (c *Config) Validate() error {
	if c.NSM.NodeName == "" {
		return common.Errorf(common.ConfigErr, "validate", "nsm.nodename is not set")
	}
	if c.NSM.Port <= 0 || c.NSM.Port > 65535 {
		return common.Errorf(common.ConfigErr, "validate", "invalid nsm.port %d", c.NSM.Port)
	}
	return nil
}

// Timeout returns the interval between two calls of the timeout hook.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return DefaultTimeout
	}
	return time.Duration(c.TimeoutSec * float64(time.Second))
}

// HubAddr returns the host:port of the hub.
func (c *Config) HubAddr() string {
	return net.JoinHostPort(c.NSM.Host, strconv.Itoa(c.NSM.Port))
}

// DatabaseDir returns the directory of the configuration database, or "" to
// use an in-memory database.
func (c *Config) DatabaseDir() string {
	return c.DB.Dir
}

// SensorList splits Temp.Sensors.
func (c *Config) SensorList() []string {
	var res []string
	for _, s := range strings.Split(c.Temp.Sensors, ",") {
		if s = strings.TrimSpace(s); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// Logger returns a formatted logrus Entry, with prefix set to the node name.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.Log.Level)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.Log.File != "" {
			c.logger.AddHook(c.fileHook())
		}
	}
	prefix := c.NSM.NodeName
	if prefix == "" {
		prefix = "slc"
	}
	return c.logger.WithField("prefix", strings.ToLower(prefix))
}

// fileHook copies every entry, in JSON, into the rotated log file.
func (c *Config) fileHook() logrus.Hook {
	path := c.Log.File
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultLogFile)
	}
	return lfshook.NewHook(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxFiles,
	}, &logrus.JSONFormatter{})
}

// DefaultDataDir return the default directory name for daemon data based on
// the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".SlowControl")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "SlowControl")
		} else {
			return filepath.Join(home, ".slowcontrol")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
