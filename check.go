package hetmem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/LynnColeArt/hetmem/device"
)

// Severity selects what Check does with a failed runtime call.
type Severity int

const (
	// Continue logs the failure and lets execution proceed.
	Continue Severity = iota
	// Fatal logs the failure and returns a *FatalError that the caller
	// must unwind to Exit.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Continue:
		return "continue"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Process exit codes used by Exit.
const (
	ExitFatal   = 1 // a Fatal runtime failure
	ExitFailure = 2 // any other error reaching the boundary
)

// Diagnostic describes one failed runtime call.
type Diagnostic struct {
	File string
	Line int
	Code device.Status
	Call string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("device error at %s:%d code=%d(%s) %q", d.File, d.Line, int(d.Code), d.Code.Name(), d.Call)
}

// FatalError carries a Fatal diagnostic back to the program boundary.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string {
	return e.Diagnostic.String()
}

func (e *FatalError) Unwrap() error {
	return e.Diagnostic.Err
}

var (
	log  = logrus.New()
	exit = os.Exit
)

// SetLogger replaces the logger diagnostics and benchmark reports go to.
func SetLogger(l *logrus.Logger) {
	log = l
}

// Logger returns the diagnostics logger.
func Logger() *logrus.Logger {
	return log
}

// Check applies the severity policy to the result of a runtime call. call is
// the source text of the call, reported together with the location of the
// Check call. A nil err has no effect.
func Check(sev Severity, err error, call string) error {
	if err == nil {
		return nil
	}

	d := Diagnostic{
		Code: device.StatusOf(err),
		Call: call,
		Err:  err,
	}
	if _, file, line, ok := runtime.Caller(1); ok {
		d.File, d.Line = filepath.Base(file), line
	}

	entry := log.WithFields(logrus.Fields{
		"file":     d.File,
		"line":     d.Line,
		"code":     int(d.Code),
		"name":     d.Code.Name(),
		"call":     d.Call,
		"severity": sev.String(),
	}).WithError(err)

	if sev == Fatal {
		entry.Error("device runtime error")
		return &FatalError{Diagnostic: d}
	}
	entry.Warn("device runtime error")
	return nil
}

// Exit terminates the process if err is non-nil. A *FatalError exits with
// ExitFatal; its diagnostic has already been logged by Check. Anything else
// is logged and exits with ExitFailure.
func Exit(err error) {
	if err == nil {
		return
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		exit(ExitFatal)
		return
	}
	log.WithError(err).Error("aborting")
	exit(ExitFailure)
}
