package mem

import (
	"context"
	"sync"
	"time"

	"github.com/corral-dev/corral-host-sdk/capability"
)

// Messaging is a loopback capability.Messaging double. Replies are queued
// per subject; Publish records messages for later inspection.
type Messaging struct {
	mu        sync.Mutex
	replies   map[string][]capability.BrokerMessage
	published []capability.BrokerMessage
}

// NewMessaging returns an empty loopback messaging provider.
func NewMessaging() *Messaging {
	return &Messaging{replies: make(map[string][]capability.BrokerMessage)}
}

var _ capability.Messaging = (*Messaging)(nil)

// QueueReply enqueues a reply to hand out for requests on subject.
func (m *Messaging) QueueReply(subject string, msg capability.BrokerMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[subject] = append(m.replies[subject], msg)
}

// Published returns a snapshot of all messages accepted by Publish.
func (m *Messaging) Published() []capability.BrokerMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]capability.BrokerMessage, len(m.published))
	copy(out, m.published)
	return out
}

func (m *Messaging) takeReplies(subject string, max int) []capability.BrokerMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	queued := m.replies[subject]
	if len(queued) == 0 {
		return nil
	}
	n := len(queued)
	if max > 0 && max < n {
		n = max
	}
	taken := queued[:n]
	m.replies[subject] = queued[n:]
	return taken
}

// Request implements capability.Messaging. With no queued reply it reports a
// timeout, like a broker with no responder would.
func (m *Messaging) Request(ctx context.Context, subject string, body []byte, timeout time.Duration) (capability.BrokerMessage, error) {
	_ = body
	if err := ctx.Err(); err != nil {
		return capability.BrokerMessage{}, err
	}
	taken := m.takeReplies(subject, 1)
	if len(taken) == 0 {
		return capability.BrokerMessage{}, &capability.TimeoutError{Op: "request", Elapsed: timeout.String()}
	}
	return taken[0], nil
}

// RequestMulti implements capability.Messaging, returning up to max queued
// replies. Fewer replies than max is not an error.
func (m *Messaging) RequestMulti(ctx context.Context, subject string, body []byte, timeout time.Duration, max uint32) ([]capability.BrokerMessage, error) {
	_ = body
	_ = timeout
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.takeReplies(subject, int(max)), nil
}

// Publish implements capability.Messaging.
func (m *Messaging) Publish(ctx context.Context, msg capability.BrokerMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, msg)
	return nil
}
