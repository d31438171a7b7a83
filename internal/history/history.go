package history

// MaxContextMessages is the maximum number of turns kept per conversation.
const MaxContextMessages = 10

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single role-tagged message in a conversation.
type Turn struct {
	Role    Role
	Content string
}

// History is an ordered list of turns, oldest first. The system/persona turn
// is never part of a History; it is injected at request time.
type History []Turn

// AppendAndBound returns history with turn appended, trimmed from the front
// so that it never exceeds MaxContextMessages entries.
func AppendAndBound(h History, turn Turn) History {
	h = append(h, turn)
	if len(h) > MaxContextMessages {
		h = h[len(h)-MaxContextMessages:]
	}
	return h
}

// Clone returns an independent copy of h.
func Clone(h History) History {
	if h == nil {
		return nil
	}
	out := make(History, len(h))
	copy(out, h)
	return out
}
