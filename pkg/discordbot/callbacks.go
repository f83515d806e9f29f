package discordbot

import (
	"log"
	"strings"
	"time"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/gateway"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// Factory functions for common handlers, grounded in the teacher's
// Create*Handler pattern (handlers.go) but over Discord's own event
// shapes rather than a WebSocketResponse envelope.

// CreateLoggingMessageHandler logs every MESSAGE_CREATE it sees.
func CreateLoggingMessageHandler(verbose bool) gateway.MessageHandler {
	return func(msg *model.Message) {
		if verbose {
			log.Printf("message %s from %s in channel %s: %q", msg.ID, msg.Author.Username, msg.Channel.ID, msg.Content)
		} else {
			log.Printf("message received at %s", time.Now().Format(time.RFC3339))
		}
	}
}

// CreatePrefixCommandHandler invokes callback with the text following
// prefix when a message starts with it, ignoring the bot's own messages.
func CreatePrefixCommandHandler(prefix string, botUserID string, callback func(*model.Message, string)) gateway.MessageHandler {
	return func(msg *model.Message) {
		if msg.Author != nil && msg.Author.ID == botUserID {
			return
		}
		if !strings.HasPrefix(msg.Content, prefix) {
			return
		}
		callback(msg, strings.TrimSpace(strings.TrimPrefix(msg.Content, prefix)))
	}
}

// CreateErrorLoggingHandler logs every error passed through it.
func CreateErrorLoggingHandler(prefix string) gateway.ErrorHandler {
	return func(err *boterror.BotError) {
		if err != nil {
			log.Printf("%s error: %v (code=%s)", prefix, err.Error(), err.Code)
		}
	}
}

// CreateReconnectPolicyHandler routes an error to reconnect or fatal
// handling based on boterror's retryable/critical classification (spec
// §7: Transport retries, Session loss terminates).
func CreateReconnectPolicyHandler(onRetryable func(*boterror.BotError), onCritical func(*boterror.BotError)) gateway.ErrorHandler {
	return func(err *boterror.BotError) {
		switch {
		case boterror.IsCriticalError(err) && onCritical != nil:
			onCritical(err)
		case boterror.IsRetryableError(err) && onRetryable != nil:
			onRetryable(err)
		}
	}
}

// CreateVoiceStateLogger logs every voice state transition for a member.
func CreateVoiceStateLogger() gateway.VoiceStateHandler {
	return func(member *model.GuildMember) {
		if member.VoiceState == nil {
			log.Printf("member %s left voice", member.User.ID)
			return
		}
		log.Printf("member %s is now in voice channel %s", member.User.ID, member.VoiceState.Channel.ID)
	}
}

// CreateConditionalMessageHandler only forwards messages for which the
// predicate returns true, mirroring the teacher's CreateConditionalHandler
// shape.
func CreateConditionalMessageHandler(condition func(*model.Message) bool, handler gateway.MessageHandler) gateway.MessageHandler {
	return func(msg *model.Message) {
		if condition(msg) {
			handler(msg)
		}
	}
}

// CreateBufferedMessageHandler decouples a slow handler from the gateway
// reader goroutine with a bounded channel, dropping on overflow (spec
// §5: handlers must not block the reader).
func CreateBufferedMessageHandler(bufferSize int, handler gateway.MessageHandler) gateway.MessageHandler {
	msgChan := make(chan *model.Message, bufferSize)

	go func() {
		for msg := range msgChan {
			handler(msg)
		}
	}()

	return func(msg *model.Message) {
		select {
		case msgChan <- msg:
		default:
			log.Println("message handler buffer full, dropping message")
		}
	}
}

// ChainMessageHandlers and ChainErrorHandlers run every handler
// concurrently and non-blockingly, composability helpers grounded in
// the teacher's Chain*Handlers family.
func ChainMessageHandlers(handlers ...gateway.MessageHandler) gateway.MessageHandler {
	return func(msg *model.Message) {
		for _, h := range handlers {
			if h != nil {
				go h(msg)
			}
		}
	}
}

func ChainErrorHandlers(handlers ...gateway.ErrorHandler) gateway.ErrorHandler {
	return func(err *boterror.BotError) {
		for _, h := range handlers {
			if h != nil {
				go h(err)
			}
		}
	}
}

// SequentialMessageHandlers runs every handler in order on the calling
// goroutine, for when ordering between handlers matters.
func SequentialMessageHandlers(handlers ...gateway.MessageHandler) gateway.MessageHandler {
	return func(msg *model.Message) {
		for _, h := range handlers {
			if h != nil {
				h(msg)
			}
		}
	}
}
