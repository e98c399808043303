package interfaces

import "context"

// AIClient generates a free-form reply when no template rule matches.
// Any backend failure (missing credentials, timeout, malformed response)
// is returned as a plain error; callers decide how to degrade.
type AIClient interface {
	GenerateReply(ctx context.Context, system, user string) (string, error)
}

// Messenger delivers one outbound text message to a recipient.
type Messenger interface {
	SendMessage(ctx context.Context, to, content string) error
}

// Notifier pushes an operational alert to the operators' channel.
// Implementations must be safe to call with a nil-op backend.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
