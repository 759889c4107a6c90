package model

import (
	"testing"

	"github.com/apex/log"
)

func TestDiscardLoggerWorksAsIntended(t *testing.T) {
	logger := DiscardLogger
	logger.Debug("foo")
	logger.Debugf("%s", "foo")
	logger.Info("foo")
	logger.Infof("%s", "foo")
	logger.Warn("foo")
	logger.Warnf("%s", "foo")
}

func TestValidLoggerOrDefault(t *testing.T) {
	t.Run("with nil logger", func(t *testing.T) {
		if ValidLoggerOrDefault(nil) != DiscardLogger {
			t.Fatal("expected DiscardLogger")
		}
	})

	t.Run("with apex/log logger", func(t *testing.T) {
		var logger Logger = log.Log
		if ValidLoggerOrDefault(logger) != logger {
			t.Fatal("expected the original logger")
		}
	})
}
