package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/solacelabs/solace/internal/history"
	"github.com/solacelabs/solace/internal/session"
	"github.com/solacelabs/solace/internal/transport"
)

// scriptedCompleter returns canned replies (or a fixed error) and captures
// what it was asked.
type scriptedCompleter struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   []history.History
}

func (s *scriptedCompleter) Complete(_ context.Context, persona history.Turn, h history.History) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if persona.Role != history.RoleSystem {
		return "", fmt.Errorf("persona role %q is not system", persona.Role)
	}
	s.calls = append(s.calls, history.Clone(h))
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) == 0 {
		return "ok", nil
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingSender) SendMessage(chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (r *recordingSender) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentMessage, len(r.sent))
	copy(out, r.sent)
	return out
}

func textUpdate(id, chatID int64, text string) transport.Update {
	return transport.Update{
		UpdateID: id,
		Message:  &transport.Message{Chat: transport.Chat{ID: chatID}, Text: &text},
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want EventKind
	}{
		{"/start", EventStart},
		{"/start@SolaceBot", EventStart},
		{"/help", EventHelp},
		{"/new", EventReset},
		{"/new please", EventReset},
		{"/unknown", EventText},
		{"hello there", EventText},
		{"  ", EventText},
	}
	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestHandleText_FreshSession(t *testing.T) {
	store := session.NewStore()
	completer := &scriptedCompleter{replies: []string{"That sounds hard, tell me more"}}
	sender := &recordingSender{}
	b := New(store, completer, sender, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 10, "I feel anxious today"))

	h := store.GetOrCreate(10)
	if len(h) != 2 {
		t.Fatalf("expected 2 stored turns, got %d", len(h))
	}
	if h[0].Role != history.RoleUser || h[0].Content != "I feel anxious today" {
		t.Errorf("unexpected user turn: %+v", h[0])
	}
	if h[1].Role != history.RoleAssistant || h[1].Content != "That sounds hard, tell me more" {
		t.Errorf("unexpected assistant turn: %+v", h[1])
	}

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 outbound message, got %d", len(sent))
	}
	if sent[0].chatID != 10 || sent[0].text != "That sounds hard, tell me more" {
		t.Errorf("unexpected outbound: %+v", sent[0])
	}
}

func TestHandleText_PersonaNeverStored(t *testing.T) {
	store := session.NewStore()
	b := New(store, &scriptedCompleter{replies: []string{"r1", "r2"}}, &recordingSender{}, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 5, "first"))
	b.HandleUpdate(context.Background(), textUpdate(2, 5, "second"))

	for i, turn := range store.GetOrCreate(5) {
		if turn.Role == history.RoleSystem {
			t.Fatalf("system turn leaked into stored history at %d: %+v", i, turn)
		}
	}
}

func TestHandleText_FullHistoryEvictsTwoOldest(t *testing.T) {
	store := session.NewStore()
	var full history.History
	for i := 0; i < history.MaxContextMessages; i++ {
		role := history.RoleUser
		if i%2 == 1 {
			role = history.RoleAssistant
		}
		full = append(full, history.Turn{Role: role, Content: fmt.Sprintf("old%d", i)})
	}
	store.Replace(77, full)

	b := New(store, &scriptedCompleter{replies: []string{"a reply"}}, &recordingSender{}, nil)
	b.HandleUpdate(context.Background(), textUpdate(1, 77, "the 11th message"))

	h := store.GetOrCreate(77)
	if len(h) != history.MaxContextMessages {
		t.Fatalf("expected %d stored turns, got %d", history.MaxContextMessages, len(h))
	}
	if h[0].Content != "old2" {
		t.Errorf("expected first element old2 (two oldest dropped), got %q", h[0].Content)
	}
	if h[len(h)-1].Content != "a reply" {
		t.Errorf("expected reply last, got %q", h[len(h)-1].Content)
	}
}

func TestHandleText_CompletionFailure(t *testing.T) {
	store := session.NewStore()
	store.Replace(3, history.History{
		{Role: history.RoleUser, Content: "earlier"},
		{Role: history.RoleAssistant, Content: "earlier reply"},
	})
	completer := &scriptedCompleter{err: errors.New("connection timed out")}
	sender := &recordingSender{}
	b := New(store, completer, sender, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 3, "are you there?"))

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 outbound message, got %d", len(sent))
	}
	if sent[0].text != apologyText {
		t.Errorf("expected apology text, got %q", sent[0].text)
	}

	h := store.GetOrCreate(3)
	if len(h) != 3 {
		t.Fatalf("expected history to grow by exactly 1, got %d turns", len(h))
	}
	last := h[len(h)-1]
	if last.Role != history.RoleUser || last.Content != "are you there?" {
		t.Errorf("expected user turn persisted last, got %+v", last)
	}
	for _, turn := range h {
		if turn.Role == history.RoleAssistant && turn.Content == apologyText {
			t.Error("apology text must not be recorded as an assistant turn")
		}
	}
}

func TestHandleReset_ClearsHistory(t *testing.T) {
	store := session.NewStore()
	var h history.History
	for i := 0; i < 5; i++ {
		h = append(h, history.Turn{Role: history.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	store.Replace(9, h)

	sender := &recordingSender{}
	b := New(store, &scriptedCompleter{}, sender, nil)
	b.HandleUpdate(context.Background(), textUpdate(1, 9, "/new"))

	if got := store.GetOrCreate(9); len(got) != 0 {
		t.Fatalf("expected empty history after /new, got %d turns", len(got))
	}
	sent := sender.messages()
	if len(sent) != 1 || sent[0].text != resetText {
		t.Fatalf("expected reset confirmation, got %+v", sent)
	}
}

func TestHandleStart_CreatesSessionAndGreets(t *testing.T) {
	store := session.NewStore()
	sender := &recordingSender{}
	b := New(store, &scriptedCompleter{}, sender, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 4, "/start"))

	if store.Len() != 1 {
		t.Fatalf("expected session created on /start, got %d sessions", store.Len())
	}
	sent := sender.messages()
	if len(sent) != 1 || sent[0].text != welcomeText {
		t.Fatalf("expected welcome text, got %+v", sent)
	}
}

func TestHandleHelp_NoStateInteraction(t *testing.T) {
	store := session.NewStore()
	sender := &recordingSender{}
	b := New(store, &scriptedCompleter{}, sender, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 4, "/help"))

	if store.Len() != 0 {
		t.Fatalf("help must not touch the store, got %d sessions", store.Len())
	}
	sent := sender.messages()
	if len(sent) != 1 || sent[0].text != helpText {
		t.Fatalf("expected help text, got %+v", sent)
	}
}

func TestHandleUpdate_CompleterSeesUserTurn(t *testing.T) {
	store := session.NewStore()
	completer := &scriptedCompleter{replies: []string{"noted"}}
	b := New(store, completer, &recordingSender{}, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 6, "listen to this"))

	if len(completer.calls) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(completer.calls))
	}
	sent := completer.calls[0]
	if len(sent) != 1 || sent[0].Role != history.RoleUser || sent[0].Content != "listen to this" {
		t.Fatalf("completer did not receive the appended user turn: %+v", sent)
	}
}

func TestHandleText_EmptyTextFlowsThrough(t *testing.T) {
	store := session.NewStore()
	completer := &scriptedCompleter{replies: []string{"I'm listening"}}
	sender := &recordingSender{}
	b := New(store, completer, sender, nil)

	b.HandleUpdate(context.Background(), textUpdate(1, 11, ""))

	if len(completer.calls) != 1 {
		t.Fatalf("expected empty text to reach the completer, got %d calls", len(completer.calls))
	}
	h := store.GetOrCreate(11)
	if len(h) != 2 || h[0].Content != "" || h[0].Role != history.RoleUser {
		t.Fatalf("expected empty user turn recorded, got %+v", h)
	}
	sent := sender.messages()
	if len(sent) != 1 || sent[0].text != "I'm listening" {
		t.Fatalf("expected reply for empty text, got %+v", sent)
	}
}

func TestHandleUpdate_IgnoresNonText(t *testing.T) {
	store := session.NewStore()
	sender := &recordingSender{}
	b := New(store, &scriptedCompleter{}, sender, nil)

	b.HandleUpdate(context.Background(), transport.Update{UpdateID: 1})
	b.HandleUpdate(context.Background(), transport.Update{
		UpdateID: 2,
		Message:  &transport.Message{Chat: transport.Chat{ID: 8}},
	})

	if len(sender.messages()) != 0 {
		t.Fatalf("expected no outbound messages, got %+v", sender.messages())
	}
	if store.Len() != 0 {
		t.Fatalf("expected no sessions, got %d", store.Len())
	}
}
