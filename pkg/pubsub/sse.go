package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ritzau/graphview/pkg/logging"
)

// ErrClosed is returned by a publisher after Close
var ErrClosed = errors.New("publisher is closed")

// subscriberQueue is how many events a subscriber may fall behind
const subscriberQueue = 64

// TopicConfig configures buffering behavior for a topic
type TopicConfig struct {
	BufferSize int  // events kept for late subscribers (0 = none)
	ReplayAll  bool // replay the whole buffer instead of only the last event

	// Latest makes a full subscriber queue drop its oldest event instead of
	// the new one. Frames use it: a slow browser skips to the newest frame.
	Latest bool
}

// topicState is everything the publisher knows about one topic
type topicState struct {
	config  TopicConfig
	version int
	buffer  []Event
	subs    map[*sseSubscription]struct{}
}

// SSEPublisher implements Publisher for Server-Sent Events clients
type SSEPublisher struct {
	mu     sync.RWMutex
	topics map[string]*topicState
	closed bool
}

// NewSSEPublisher creates a publisher with no configured topics
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{topics: make(map[string]*topicState)}
}

// topic returns the state of a topic, creating it. Callers hold mu.
func (p *SSEPublisher) topic(name string) *topicState {
	t, ok := p.topics[name]
	if !ok {
		t = &topicState{subs: make(map[*sseSubscription]struct{})}
		p.topics[name] = t
	}
	return t
}

// ConfigureTopic sets buffering configuration for a topic
func (p *SSEPublisher) ConfigureTopic(topic string, config TopicConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic(topic).config = config
}

// Subscribe opens a subscription that lasts until it is closed or ctx is
// done. Buffered events are queued before it is returned.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}

	t := p.topic(topic)
	sub := &sseSubscription{
		topic:     topic,
		events:    make(chan Event, subscriberQueue),
		publisher: p,
	}
	t.subs[sub] = struct{}{}

	replay := t.buffer
	if !t.config.ReplayAll && len(replay) > 1 {
		replay = replay[len(replay)-1:]
	}
	for _, ev := range replay {
		sub.deliver(ev, t.config.Latest)
	}
	if len(replay) > 0 {
		logging.Debug("replayed events to new subscriber", "topic", topic, "count", len(replay))
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish sends an event to all subscribers of a topic. It never blocks on
// a slow subscriber, so the loop goroutine may call it.
func (p *SSEPublisher) Publish(topic string, eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	t := p.topic(topic)
	t.version++
	ev := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: t.version,
	}

	if n := t.config.BufferSize; n > 0 {
		t.buffer = append(t.buffer, ev)
		if len(t.buffer) > n {
			t.buffer = t.buffer[len(t.buffer)-n:]
		}
	}

	for sub := range t.subs {
		sub.deliver(ev, t.config.Latest)
	}
	return nil
}

// Last returns the most recent buffered event of a topic
func (p *SSEPublisher) Last(topic string) (Event, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	t, ok := p.topics[topic]
	if !ok || len(t.buffer) == 0 {
		return Event{}, false
	}
	return t.buffer[len(t.buffer)-1], true
}

// Subscribers returns the number of open subscriptions to a topic
func (p *SSEPublisher) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if t, ok := p.topics[topic]; ok {
		return len(t.subs)
	}
	return 0
}

// Close ends every subscription. Their event channels are closed.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, t := range p.topics {
		for sub := range t.subs {
			sub.closed = true
			close(sub.events)
		}
		t.subs = nil
	}
	return nil
}

// sseSubscription implements Subscription. Its fields are guarded by the
// publisher's mutex.
type sseSubscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	closed    bool
}

// deliver queues ev without blocking. Callers hold the publisher's lock.
func (s *sseSubscription) deliver(ev Event, latest bool) {
	select {
	case s.events <- ev:
		return
	default:
	}

	if !latest {
		logging.Debug("subscriber behind, dropping event", "topic", s.topic, "version", ev.Version)
		return
	}
	// Only the publisher sends, and it holds the lock, so after one
	// receive there is room.
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *sseSubscription) Topic() string {
	return s.topic
}

func (s *sseSubscription) Events() <-chan Event {
	return s.events
}

// Close unsubscribes and closes the event channel. It is idempotent.
func (s *sseSubscription) Close() error {
	p := s.publisher
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if t, ok := p.topics[s.topic]; ok {
		delete(t.subs, s)
	}
	close(s.events)
	return nil
}

// WriteSSE writes one event as "id: {version}\ndata: {json}\n\n"
func WriteSSE(w io.Writer, event Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", event.Version, line)
	return err
}
