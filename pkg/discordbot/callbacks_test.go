package discordbot

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

func TestCreatePrefixCommandHandlerIgnoresBotOwnMessages(t *testing.T) {
	called := false
	handler := CreatePrefixCommandHandler("!", "bot1", func(*model.Message, string) { called = true })

	handler(&model.Message{Content: "!ping", Author: &model.User{ID: "bot1"}})
	if called {
		t.Fatal("expected the handler to ignore the bot's own messages")
	}
}

func TestCreatePrefixCommandHandlerInvokesOnMatch(t *testing.T) {
	var gotArg string
	handler := CreatePrefixCommandHandler("!", "bot1", func(msg *model.Message, arg string) { gotArg = arg })

	handler(&model.Message{Content: "!ping foo", Author: &model.User{ID: "other"}})
	if gotArg != "ping foo" {
		t.Fatalf("expected arg %q, got %q", "ping foo", gotArg)
	}
}

func TestCreatePrefixCommandHandlerSkipsNonMatchingPrefix(t *testing.T) {
	called := false
	handler := CreatePrefixCommandHandler("!", "bot1", func(*model.Message, string) { called = true })

	handler(&model.Message{Content: "hello", Author: &model.User{ID: "other"}})
	if called {
		t.Fatal("expected the handler to skip messages without the prefix")
	}
}

func TestCreateReconnectPolicyHandlerRoutesByErrorKind(t *testing.T) {
	var retried, critical bool
	handler := CreateReconnectPolicyHandler(
		func(*boterror.BotError) { retried = true },
		func(*boterror.BotError) { critical = true },
	)

	handler(boterror.NewTransportError("timeout"))
	if !retried || critical {
		t.Fatalf("expected a transport error to route to the retryable callback only")
	}

	retried, critical = false, false
	handler(boterror.NewSessionError("invalid session"))
	if retried || !critical {
		t.Fatalf("expected a session error to route to the critical callback only")
	}
}

func TestSequentialMessageHandlersRunsInOrder(t *testing.T) {
	var order []int
	h := SequentialMessageHandlers(
		func(*model.Message) { order = append(order, 1) },
		func(*model.Message) { order = append(order, 2) },
	)
	h(&model.Message{})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected handlers to run in order, got %v", order)
	}
}
