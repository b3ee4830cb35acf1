package testutil

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Importing testutil silences the standard logger unless tests run verbosely,
// in which case every level down to trace is shown.
func init() {
	logrus.SetLevel(logrus.TraceLevel)
	if !isVerbose() {
		logrus.StandardLogger().SetOutput(io.Discard)
	}
}

func isVerbose() bool {
	for _, arg := range os.Args {
		if arg == "-test.v=true" || arg == "-test.v" {
			return true
		}
	}
	return false
}

// DisableLogging discards standard logger output until reset is called.
func DisableLogging() (reset func()) {
	original := logrus.StandardLogger().Out
	logrus.StandardLogger().SetOutput(io.Discard)
	return func() {
		logrus.StandardLogger().SetOutput(original)
	}
}
