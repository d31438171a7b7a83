// Package bot implements the message-exchange core: per-conversation
// histories, the completion pipeline, and the /start, /help and /new
// command handlers.
package bot

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/solacelabs/solace/internal/completion"
	"github.com/solacelabs/solace/internal/eventlog"
	"github.com/solacelabs/solace/internal/history"
	"github.com/solacelabs/solace/internal/session"
	"github.com/solacelabs/solace/internal/transport"
)

// EventKind is the closed set of inbound event kinds.
type EventKind int

const (
	EventText EventKind = iota
	EventStart
	EventHelp
	EventReset
)

// Classify maps inbound text onto an event kind. Commands may carry a
// "@BotName" suffix, which Telegram appends in group chats.
func Classify(text string) EventKind {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return EventText
	}
	cmd := fields[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	switch cmd {
	case "/start":
		return EventStart
	case "/help":
		return EventHelp
	case "/new":
		return EventReset
	default:
		return EventText
	}
}

// Sender delivers outbound text to a conversation.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Recorder appends structured events to the operational log.
type Recorder interface {
	Record(runID, eventType string, payload map[string]any) error
}

// Bot wires the session store, completion client and outbound sender into
// the per-message pipeline.
type Bot struct {
	store     *session.Store
	completer completion.Completer
	sender    Sender
	events    Recorder
}

// New creates a Bot. events may be nil to disable the event log.
func New(store *session.Store, completer completion.Completer, sender Sender, events Recorder) *Bot {
	return &Bot{
		store:     store,
		completer: completer,
		sender:    sender,
		events:    events,
	}
}

// HandleUpdate processes one inbound update to completion, producing exactly
// one outbound message. Callers must not run two updates for the same chat
// concurrently; Dispatcher enforces that.
func (b *Bot) HandleUpdate(ctx context.Context, u transport.Update) {
	if u.Message == nil || u.Message.Text == nil {
		return
	}
	text := *u.Message.Text
	chatID := u.Message.Chat.ID

	switch Classify(text) {
	case EventStart:
		b.handleStart(chatID)
	case EventHelp:
		b.handleHelp(chatID)
	case EventReset:
		b.handleReset(chatID)
	default:
		b.handleText(ctx, chatID, text)
	}
}

func (b *Bot) handleStart(chatID int64) {
	b.store.GetOrCreate(chatID)
	b.record("", eventlog.EventSessionStarted, map[string]any{"chat_id": chatID})
	b.send(chatID, welcomeText)
}

func (b *Bot) handleHelp(chatID int64) {
	b.send(chatID, helpText)
}

func (b *Bot) handleReset(chatID int64) {
	b.store.Reset(chatID)
	b.record("", eventlog.EventSessionReset, map[string]any{"chat_id": chatID})
	b.send(chatID, resetText)
}

// handleText runs the pipeline: load history, record the user turn, call
// the completion service, commit, reply. The store is committed exactly once
// per run; on completion failure the user turn is still kept and the fixed
// apology goes out instead of a reply.
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	runID := uuid.NewString()
	log.Printf("process chat_id=%d run=%s chars=%d", chatID, runID, len(text))
	b.record(runID, eventlog.EventMessageReceived, map[string]any{
		"chat_id": chatID,
		"chars":   len(text),
	})

	h := b.store.GetOrCreate(chatID)
	h = history.AppendAndBound(h, history.Turn{Role: history.RoleUser, Content: text})

	reply, err := b.completer.Complete(ctx, PersonaPrompt, h)
	if err != nil {
		log.Printf("completion error chat_id=%d run=%s: %v", chatID, runID, err)
		b.record(runID, eventlog.EventCompletionFailed, map[string]any{
			"chat_id": chatID,
			"error":   err.Error(),
		})
		b.send(chatID, apologyText)
		b.store.Replace(chatID, h)
		return
	}

	h = history.AppendAndBound(h, history.Turn{Role: history.RoleAssistant, Content: reply})
	b.store.Replace(chatID, h)
	b.send(chatID, reply)
	b.record(runID, eventlog.EventReplySent, map[string]any{
		"chat_id":     chatID,
		"history_len": len(h),
	})
}

func (b *Bot) send(chatID int64, text string) {
	if err := b.sender.SendMessage(chatID, text); err != nil {
		log.Printf("send error chat_id=%d: %v", chatID, err)
	}
}

func (b *Bot) record(runID, eventType string, payload map[string]any) {
	if b.events == nil {
		return
	}
	if err := b.events.Record(runID, eventType, payload); err != nil {
		log.Printf("eventlog error type=%s: %v", eventType, err)
	}
}
