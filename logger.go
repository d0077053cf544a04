package nativeusers

import (
	"fmt"
	"log"
)

// Logger is the minimal logging capability the store depends on. The
// default implementation wraps the standard library's log package with
// the same "nativeusers: "-prefixed convention the teacher engine uses
// for its own log.Print calls.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Debugf(format string, args ...any) { log.Print("nativeusers: " + fmt.Sprintf(format, args...)) }
func (stdLogger) Infof(format string, args ...any)  { log.Print("nativeusers: " + fmt.Sprintf(format, args...)) }
func (stdLogger) Errorf(format string, args ...any) { log.Print("nativeusers: " + fmt.Sprintf(format, args...)) }

// NewStdLogger returns the default Logger, which writes through the
// standard library's log package.
func NewStdLogger() Logger { return stdLogger{} }

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
