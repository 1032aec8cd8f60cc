package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/juju/loggo/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/authguard/authguard-terminal/pkg/models"
)

const logWriterName = "file"

// SetupLogging sends every authguard logger to a rotating file in the data
// directory. The TUI owns the terminal so nothing is logged to stderr. The
// returned closer flushes and releases the file.
func SetupLogging(dir string, cfg models.LogConfig) (io.Closer, error) {
	level, ok := loggo.ParseLevel(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}

	path := cfg.File
	if path == "" {
		path = models.DefaultConfig().Log.File
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 2,
		Compress:   true,
	}

	_, _ = loggo.RemoveWriter(loggo.DefaultWriterName)
	_, _ = loggo.RemoveWriter(logWriterName)
	if err := loggo.RegisterWriter(logWriterName, loggo.NewSimpleWriter(writer, loggo.DefaultFormatter)); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("registering log writer: %w", err)
	}
	if err := loggo.ConfigureLoggers(fmt.Sprintf("<root>=WARNING;authguard=%s", level)); err != nil {
		_ = writer.Close()
		return nil, err
	}
	return writer, nil
}
