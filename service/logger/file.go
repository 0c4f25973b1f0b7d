package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileMode says how an existing log file is treated on open.
type FileMode string

const (
	FileModeAppend   FileMode = "append"
	FileModeTruncate FileMode = "truncate"
	// FileModeRotate hands the file to lumberjack, which rotates it by size.
	FileModeRotate FileMode = "rotate"
)

func (m *FileMode) Set(s string) error {
	switch mode := FileMode(s); mode {
	case "":
		*m = FileModeAppend
	case FileModeAppend, FileModeTruncate, FileModeRotate:
		*m = mode
	default:
		return fmt.Errorf("invalid file mode: %s", s)
	}
	return nil
}

func (m FileMode) String() string {
	return string(m)
}

func (m *FileMode) UnmarshalText(text []byte) error {
	return m.Set(string(text))
}

var sinks = map[string]zapcore.WriteSyncer{
	"":          zapcore.Lock(os.Stderr),
	"stderr":    zapcore.Lock(os.Stderr),
	"stdout":    zapcore.Lock(os.Stdout),
	"/dev/null": zapcore.AddSync(io.Discard),
}

// OpenFile returns a syncer for path.  The names stdout, stderr and
// /dev/null are special.
func OpenFile(path string, mode FileMode) (zapcore.WriteSyncer, error) {
	if w, ok := sinks[path]; ok {
		return w, nil
	}
	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case FileModeRotate:
		return rotate(path)
	case FileModeTruncate:
		flags |= os.O_TRUNC
	default:
		flags |= os.O_APPEND
	}
	return os.OpenFile(path, flags, 0644)
}

func rotate(path string) (zapcore.WriteSyncer, error) {
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, err
	}
	// lumberjack.Logger does its own locking.
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}), nil
}
