package logger

import (
	"io"
	"log"
	"os"
)

type Logger struct {
	info  *log.Logger
	error *log.Logger
	warn  *log.Logger
}

func New() *Logger {
	return &Logger{
		info:  log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile),
		error: log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile),
		warn:  log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// NewWithWriter sends every level to w. The CLI points it at stderr so
// command output on stdout stays clean.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{
		info:  log.New(w, "INFO: ", log.Ldate|log.Ltime),
		error: log.New(w, "ERROR: ", log.Ldate|log.Ltime),
		warn:  log.New(w, "WARN: ", log.Ldate|log.Ltime),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.info.Printf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.error.Printf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.warn.Printf(format, v...)
}
