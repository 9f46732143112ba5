// Package logging configures the process-wide leveled logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

const module = "retailpulse"

var log = logging.MustGetLogger(module)

// Logger returns the shared logger. Init should run first; before that the
// library default backend (stderr, DEBUG) is in effect.
func Logger() *logging.Logger { return log }

// Init routes log output to w (stderr when nil) at the given level name
// (DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL). An empty level means WARNING
// so that normal runs only show status lines on stdout.
func Init(w io.Writer, level string) error {
	if w == nil {
		w = os.Stderr
	}
	base := logging.NewLogBackend(w, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	formatted := logging.NewBackendFormatter(base, format)
	leveled := logging.AddModuleLevel(formatted)

	level = strings.ToUpper(strings.TrimSpace(level))
	if level == "" {
		level = "WARNING"
	}
	code, err := logging.LogLevel(level)
	if err != nil {
		return err
	}
	leveled.SetLevel(code, "")
	logging.SetBackend(leveled)
	return nil
}
