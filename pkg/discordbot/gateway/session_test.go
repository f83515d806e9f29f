package gateway

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

func TestAddReadyHandlerUnsubscribe(t *testing.T) {
	s := newTestSession()

	calls := 0
	unsubscribe := s.AddReadyHandler(func() { calls++ })

	if len(s.readyHandlers) != 1 {
		t.Fatalf("expected 1 registered handler, got %d", len(s.readyHandlers))
	}

	unsubscribe()

	for _, h := range s.readyHandlers {
		if h != nil {
			t.Fatal("expected the handler slot to be nil after unsubscribe")
		}
	}
}

func TestSendVoiceStateUpdateWithoutConnectionErrors(t *testing.T) {
	s := newTestSession()
	channelID := "c1"

	if err := s.SendVoiceStateUpdate("g1", &channelID); err == nil {
		t.Fatal("expected an error sending a voice state update with no connection")
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	s := newTestSession()

	quitCalls := 0
	s.AddQuitHandler(func() { quitCalls++ })

	s.Quit()
	s.Quit()

	if s.State() != model.Disconnected {
		t.Fatalf("expected state Disconnected after Quit, got %s", s.State())
	}
}
