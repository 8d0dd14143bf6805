// Package config loads the validator's runtime configuration from flags,
// environment variables, and defaults, following the teacher's
// viper/pflag pattern (cmd/davinci-sequencer/config.go) trimmed to the
// fields this toolkit actually needs: where the ledger lives, which
// backend serves it, how verbosely it logs, and how often the validator
// runs its pass.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shieldledger/settlement/db"
	"github.com/shieldledger/settlement/log"
)

const (
	envPrefix = "SETTLEMENT"

	defaultDatadir       = ".settlement" // prefixed with the user's home directory
	defaultDBBackend     = db.TypePebble
	defaultLogLevel      = log.LogLevelInfo
	defaultLogOutput     = "stderr"
	defaultValidateEvery = 5 * time.Second
)

// Config is the validator's complete runtime configuration.
type Config struct {
	Datadir       string        `mapstructure:"datadir"`
	DBBackend     string        `mapstructure:"dbBackend"`
	Log           LogConfig     `mapstructure:"log"`
	ValidateEvery time.Duration `mapstructure:"validateEvery"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from command-line flags, SETTLEMENT_-prefixed
// environment variables, and the defaults above, in that order of
// precedence (flags win).
func Load(args []string) (*Config, error) {
	v := viper.New()
	fs := flag.NewFlagSet("validator", flag.ContinueOnError)

	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		userHomeDir = "."
	}
	defaultDatadirPath := filepath.Join(userHomeDir, defaultDatadir)

	v.SetDefault("datadir", defaultDatadirPath)
	v.SetDefault("dbBackend", defaultDBBackend)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("validateEvery", defaultValidateEvery)

	fs.StringP("datadir", "d", defaultDatadirPath, "data directory for the ledger database")
	fs.String("dbBackend", defaultDBBackend, fmt.Sprintf("ledger storage backend (%s, %s)", db.TypePebble, db.TypeInMemory))
	fs.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	fs.Duration("validateEvery", defaultValidateEvery, "interval between validation passes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: validator [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables are also available with the same name as flags,\n")
		fmt.Fprintf(os.Stderr, "  upper-cased and prefixed with %s_, with dots and dashes replaced by\n", envPrefix)
		fmt.Fprintf(os.Stderr, "  underscores. For example, %s_LOG_LEVEL or %s_DATADIR.\n", envPrefix, envPrefix)
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parsing flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.DBBackend {
	case db.TypePebble, db.TypeInMemory:
	default:
		return fmt.Errorf("config: invalid dbBackend %q, must be %s or %s", cfg.DBBackend, db.TypePebble, db.TypeInMemory)
	}
	if cfg.ValidateEvery <= 0 {
		return fmt.Errorf("config: validateEvery must be positive, got %s", cfg.ValidateEvery)
	}
	return nil
}
