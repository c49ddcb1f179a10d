package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published by the viewer
const (
	// TopicFrames carries every redrawn frame (type "frame")
	TopicFrames = "frames"
	// TopicDrag carries drag session changes (type "start", "move", "end")
	TopicDrag = "drag"
	// TopicGraph carries document loads (type "loaded", "reloaded", "error")
	TopicGraph = "graph"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "frames", "drag")
	Type    string          `json:"type"`    // Event type (e.g., "frame", "start", "loaded")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// GraphStatus describes the outcome of loading a graph document
type GraphStatus struct {
	Source  string `json:"source"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Dropped int    `json:"dropped"`
	Pruned  int    `json:"pruned,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ConfigureTopics sets the buffering the viewer's topics need: a late
// subscriber gets the latest frame and graph status, but no stale drags.
// A subscriber that falls behind on frames skips ahead to the newest.
func ConfigureTopics(p *SSEPublisher) {
	p.ConfigureTopic(TopicFrames, TopicConfig{BufferSize: 1, Latest: true})
	p.ConfigureTopic(TopicGraph, TopicConfig{BufferSize: 1})
	p.ConfigureTopic(TopicDrag, TopicConfig{BufferSize: 0})
}
