package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	if err := Init("warn"); err != nil {
		t.Fatal(err)
	}
	if Log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !Log.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn should be enabled")
	}
	if zap.L() != Log {
		t.Fatal("global logger not replaced")
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	if err := Init("loud"); err == nil {
		t.Fatal("unknown level should fail")
	}
	if Log != prev {
		t.Fatal("logger replaced on error")
	}
}
