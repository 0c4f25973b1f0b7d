// Package logflags binds the logger settings of zjit to command line flags.
package logflags

import (
	"flag"

	"github.com/brimdata/zjit/service/logger"
	"go.uber.org/zap"
)

var names = []string{"log.devmode", "log.level", "log.path", "log.filemode"}

type Flags struct {
	Config logger.Config
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	f.Config.Level = zap.WarnLevel
	f.Config.Mode = logger.FileModeAppend
	fs.BoolVar(&f.Config.DevMode, "log.devmode", false, "development mode (dpanic level logs panic)")
	fs.Var(&f.Config.Level, "log.level", "logging level")
	fs.StringVar(&f.Config.Path, "log.path", "stderr", "where logs go (stderr, stdout, /dev/null or a file)")
	fs.Var(&f.Config.Mode, "log.filemode", "log file write mode (append, truncate, rotate)")
}

// Override returns the flag settings if changed reports that any log flag
// was given and base otherwise.  The flags form one unit so a file's
// settings never mix with those from the command line.
func (f *Flags) Override(base logger.Config, changed func(name string) bool) logger.Config {
	for _, name := range names {
		if changed(name) {
			return f.Config
		}
	}
	return base
}
