package entities

// Message is one inbound WhatsApp text message delivered by the webhook.
// Messages are transient: each is classified and answered independently,
// nothing is persisted.
type Message struct {
	ID   string
	From string // sender phone number, opaque to us
	Text string
}

// Sources of a resolved response, in fallback-chain order.
const (
	SourceTemplate   = "template"
	SourceGenerative = "generative"
	SourceFallback   = "fallback"
)

// ResolvedResponse is the reply produced for one inbound message.
type ResolvedResponse struct {
	Text     string
	Source   string
	Category string // matched rule category, empty for generative replies
}
