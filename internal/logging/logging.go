// Package logging wires the process-wide logger shared by both services'
// cmd/ binaries: terminal output by default, or a rotating file when an
// operator points --log-file at a path.
package logging

import (
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the default logger. An empty path leaves output on the
// terminal; otherwise the log stream rotates through lumberjack, which
// handles size-based rotation, backup retention, and compression.
func Setup(path string) {
	if path == "" {
		return
	}
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	handler := log.NewTerminalHandler(writer, false)
	log.SetDefault(log.NewLogger(handler))
}
