package discordlog

import (
	"bytes"
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

func TestNewWithNilConfigUsesDefaults(t *testing.T) {
	l := New(nil)
	if l == nil {
		t.Fatal("expected New(nil) to fall back to DefaultConfig")
	}
}

func TestWithComponentWritesThroughSharedOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	base := New(&Config{Level: InfoLevel, Output: buf})
	child := base.WithComponent("gateway")

	child.Info("hello")
	if buf.Len() == 0 {
		t.Fatal("expected WithComponent's logger to still write through the shared output")
	}
}

func TestLogConnectionEventDoesNotPanic(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: InfoLevel, Output: buf})
	l.LogConnectionEvent("connect", model.Connected, map[string]interface{}{"attempt": 1})
	if buf.Len() == 0 {
		t.Fatal("expected a log line to be written")
	}
}

func TestGlobalReturnsSingleton(t *testing.T) {
	if Global() != Global() {
		t.Fatal("expected Global() to return the same instance across calls")
	}
}
