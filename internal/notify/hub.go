package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	subscriberBuffer = 16
	keepAlivePeriod  = 25 * time.Second
)

// Hub routes notifications to Server-Sent Event subscribers by topic.
// A topic is a tool session id.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[chan Notification]struct{}
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[chan Notification]struct{})}
}

// Subscribe registers a subscriber on topic. The returned cancel func must
// be called once the subscriber goes away.
func (h *Hub) Subscribe(topic string) (<-chan Notification, func()) {
	ch := make(chan Notification, subscriberBuffer)
	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan Notification]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.topics[topic], ch)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers n to every subscriber of topic. Slow subscribers miss
// notifications instead of blocking the publisher.
func (h *Hub) Publish(topic string, n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- n:
		default:
		}
	}
}

// Close ends every subscription on topic. Streams served by ServeSSE
// send a final "closed" event and return.
func (h *Hub) Close(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		close(ch)
	}
	delete(h.topics, topic)
}

// Subscribers reports how many subscribers topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Notifier returns a Notifier publishing on topic.
func (h *Hub) Notifier(topic string) Notifier {
	return NotifierFunc(func(n Notification) { h.Publish(topic, n) })
}

// ServeSSE streams topic to w until the request context ends or the topic
// is closed.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := h.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlivePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case n, ok := <-ch:
			if !ok {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
