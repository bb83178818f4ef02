package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

var (
	stdLogFlags      = log.LstdFlags | log.LUTC
	stdDebugLogFlags = log.LstdFlags | log.Lshortfile | log.LUTC
	outputCallDepth  = 2

	DebugLogger = log.New(os.Stderr, "DEBUG: ", stdDebugLogFlags)
	InfoLogger  = log.New(os.Stderr, "INFO: ", stdLogFlags)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", stdLogFlags)
	FatalLogger = log.New(os.Stderr, "FATAL: ", log.LstdFlags|log.Llongfile|log.LUTC)
)

// SetOutput redirects debug, info and error logs to w.
// Fatal logs always go to stderr.
func SetOutput(w io.Writer) {
	DebugLogger.SetOutput(w)
	InfoLogger.SetOutput(w)
	ErrorLogger.SetOutput(w)
}

// SuppressOutput discards all non-fatal logs if `suppress` is true.
// Used while testing.
func SuppressOutput(suppress bool) {
	if suppress {
		SetOutput(io.Discard)
	} else {
		SetOutput(os.Stderr)
	}
}

var debug uint32

// SetDebug enables Debugf output and adds file:line to info and error logs.
func SetDebug(val bool) {
	if val {
		atomic.StoreUint32(&debug, 1)
		InfoLogger.SetFlags(stdDebugLogFlags)
		ErrorLogger.SetFlags(stdDebugLogFlags)
	} else {
		atomic.StoreUint32(&debug, 0)
		InfoLogger.SetFlags(stdLogFlags)
		ErrorLogger.SetFlags(stdLogFlags)
	}
}

func IsDebug() bool {
	return atomic.LoadUint32(&debug) == 1
}

func Debugf(format string, args ...interface{}) {
	if !IsDebug() {
		return
	}
	output(DebugLogger, format, args...)
}

func Infof(format string, args ...interface{}) {
	output(InfoLogger, format, args...)
}

func Errorf(format string, args ...interface{}) {
	output(ErrorLogger, format, args...)
}

func Fatalf(format string, args ...interface{}) {
	output(FatalLogger, format, args...)
	os.Exit(1)
}

func output(l *log.Logger, format string, args ...interface{}) {
	// skip output() and the exported wrapper
	_ = l.Output(outputCallDepth+1, fmt.Sprintf(format, args...))
}
