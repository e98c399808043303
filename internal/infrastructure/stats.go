package infrastructure

import (
	"sync/atomic"
	"time"

	"resilient-wa-agent/internal/entities"
)

// Stats collects process-lifetime counters for the dashboard and the
// /stats endpoint. Counters are atomic so concurrent webhook deliveries
// need no locking; nothing is persisted across restarts.
type Stats struct {
	startedAt time.Time

	received          atomic.Int64
	templateReplies   atomic.Int64
	generativeReplies atomic.Int64
	fallbackReplies   atomic.Int64
	sendFailures      atomic.Int64
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

func (s *Stats) CountReceived() {
	s.received.Add(1)
}

func (s *Stats) CountReply(source string) {
	switch source {
	case entities.SourceTemplate:
		s.templateReplies.Add(1)
	case entities.SourceGenerative:
		s.generativeReplies.Add(1)
	case entities.SourceFallback:
		s.fallbackReplies.Add(1)
	}
}

func (s *Stats) CountSendFailure() {
	s.sendFailures.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	Received          int64  `json:"messages_received"`
	TemplateReplies   int64  `json:"template_replies"`
	GenerativeReplies int64  `json:"generative_replies"`
	FallbackReplies   int64  `json:"fallback_replies"`
	SendFailures      int64  `json:"send_failures"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Uptime:            time.Since(s.startedAt).Round(time.Second).String(),
		Received:          s.received.Load(),
		TemplateReplies:   s.templateReplies.Load(),
		GenerativeReplies: s.generativeReplies.Load(),
		FallbackReplies:   s.fallbackReplies.Load(),
		SendFailures:      s.sendFailures.Load(),
	}
}
