package domain

import (
	"encoding/json"
	"fmt"
)

// Change event kinds carried on the indexing queue.
const (
	EventThread = "thread"
	EventPost   = "post"
)

// ChangeEvent is a thread change notification consumed from the durable
// queue. Delivery is at-least-once with no ordering guarantee, even for
// events of the same thread.
type ChangeEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"threadId"`
}

// Known reports whether the event kind affects thread indexing.
// Unknown kinds are discarded by the consumer, not rejected.
func (e ChangeEvent) Known() bool {
	return e.Type == EventThread || e.Type == EventPost
}

// ParseChangeEvent decodes a queue message payload.
func ParseChangeEvent(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("parse change event: %w", err)
	}
	if ev.ThreadID == "" {
		return ChangeEvent{}, fmt.Errorf("change event missing threadId")
	}
	return ev, nil
}
