package logflags

import (
	"flag"
	"testing"

	"github.com/brimdata/zjit/service/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOverride(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-log.level", "debug"}))
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	base := logger.Config{Level: zap.ErrorLevel, Path: "/dev/null", Mode: logger.FileModeRotate}
	conf := f.Override(base, func(name string) bool { return set[name] })
	assert.Equal(t, zap.DebugLevel, conf.Level)
	assert.Equal(t, "stderr", conf.Path)
	assert.Equal(t, logger.FileModeAppend, conf.Mode)

	conf = f.Override(base, func(string) bool { return false })
	assert.Equal(t, base, conf)
}
