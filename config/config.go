// Package config holds the settings of a query engine.  Settings come from
// a YAML file, command line flags or both, with flags applied last.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/zjit/service/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	BackendVM     = "vm"
	BackendSource = "source"
)

type Config struct {
	// Backend names what turns rendered units into executors.
	Backend string `yaml:"backend"`
	// MemoSize bounds the number of executors shared between units with
	// identical code.  Zero disables sharing.
	MemoSize         int           `yaml:"memo_size"`
	CheckConsistency bool          `yaml:"check_consistency"`
	Logger           logger.Config `yaml:"logger"`
}

func Default() Config {
	return Config{
		Backend:  BackendVM,
		MemoSize: 256,
		Logger: logger.Config{
			Level: zap.WarnLevel,
			Mode:  logger.FileModeAppend,
			Path:  "stderr",
		},
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	conf := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("%s: %w", path, err)
	}
	return conf, conf.Validate()
}

// Validate reports every problem with c, not just the first.
func (c Config) Validate() error {
	var err error
	switch c.Backend {
	case BackendVM, BackendSource:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.MemoSize < 0 {
		err = multierr.Append(err, errors.New("memo_size must not be negative"))
	}
	if c.Logger.Path == "" {
		err = multierr.Append(err, errors.New("logger path must be set"))
	}
	return err
}

// Flags binds a Config to a flag set.  A -config file is loaded when the
// flag is seen, so flags that follow it on the command line win.
type Flags struct {
	Config Config
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.Config = Default()
	fs.Func("config", "path of engine yaml config file", func(s string) error {
		conf, err := Load(s)
		if err != nil {
			return err
		}
		f.Config = conf
		return nil
	})
	fs.StringVar(&f.Config.Backend, "backend", f.Config.Backend, "executor backend (values: vm, source)")
	fs.IntVar(&f.Config.MemoSize, "memo", f.Config.MemoSize, "number of executors shared between identical units (0 disables)")
	fs.BoolVar(&f.Config.CheckConsistency, "check", false, "verify every cache publish")
}
