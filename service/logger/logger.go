// Package logger builds the zap loggers handed to the compiler, the cache
// and the command line tool.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	DevMode bool          `yaml:"devmode"`
	Level   zapcore.Level `yaml:"level"`
	Mode    FileMode      `yaml:"mode"`
	Path    string        `yaml:"path"`
}

func New(conf Config) (*zap.Logger, error) {
	core, err := NewCore(conf)
	if err != nil {
		return nil, err
	}
	opts := []zap.Option{zap.AddCaller()}
	if conf.DevMode {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

// NewCore writes JSON lines at conf.Level or above to the file named by
// conf.Path.
func NewCore(conf Config) (zapcore.Core, error) {
	w, err := OpenFile(conf.Path, conf.Mode)
	if err != nil {
		return nil, err
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, conf.Level), nil
}

func encoderConfig() zapcore.EncoderConfig {
	c := zap.NewProductionEncoderConfig()
	c.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncodeDuration = zapcore.StringDurationEncoder
	c.TimeKey = "ts"
	return c
}
