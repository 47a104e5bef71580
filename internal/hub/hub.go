package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mounirchebbi/beach-safety-app/internal/metrics"
)

// Event names delivered to subscribers.
const (
	EventEmergencyAlert       = "emergency_alert"
	EventAlertStatusChange    = "alert_status_change"
	EventNewEscalation        = "new_escalation"
	EventEscalationStatus     = "escalation_status_updated"
	EventNewSupportRequest    = "new_inter_center_support"
	EventSupportRequestStatus = "inter_center_support_status_updated"
	EventSafetyFlagUpdated    = "safety_flag_updated"
	EventWeatherUpdate        = "weather_update"
	EventEmergencyBroadcast   = "emergency_broadcast"
)

// OpsTopic is the global operations room. Center rooms are named by
// CenterTopic.
const OpsTopic = "ops"

func CenterTopic(centerID string) string { return "center:" + centerID }

// Event is the envelope delivered to subscribers.
type Event struct {
	Event     string `json:"event"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Sink receives a copy of every published event, e.g. for offline archive.
// Implementations must not block.
type Sink interface {
	Archive(topic string, evt Event)
}

const (
	topicQueueSize      = 256
	subscriberQueueSize = 64
)

// topic serializes delivery through a single dispatcher goroutine so
// subscribers observe events in publish order.
type topic struct {
	name    string
	mu      sync.RWMutex
	members map[*Subscriber]struct{}
	queue   chan Event
	done    chan struct{}
}

func (t *topic) dispatch(m *metrics.Metrics) {
	for {
		select {
		case evt := <-t.queue:
			t.mu.RLock()
			for sub := range t.members {
				select {
				case sub.ch <- evt:
				default:
					// Slow subscriber; delivery is fire-and-forget.
					if m != nil {
						m.EventsDropped.Inc()
					}
				}
			}
			t.mu.RUnlock()
		case <-t.done:
			return
		}
	}
}

// Subscriber is one live connection. It receives events for every topic it
// has joined on a single channel.
type Subscriber struct {
	ID     string
	ch     chan Event
	hub    *Hub
	mu     sync.Mutex
	topics map[string]*topic
	closed bool
}

// Events is the subscriber's delivery channel. Closed on Disconnect.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// Hub owns the topic registry. Construct once at process start and hand the
// reference to publishers; there is no ambient global.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]*topic
	sink    Sink
	metrics *metrics.Metrics
	closed  bool
}

func New(sink Sink, m *metrics.Metrics) *Hub {
	return &Hub{
		topics:  make(map[string]*topic),
		sink:    sink,
		metrics: m,
	}
}

func (h *Hub) getOrCreateTopic(name string) *topic {
	h.mu.RLock()
	t, ok := h.topics[name]
	h.mu.RUnlock()
	if ok {
		return t
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok = h.topics[name]; ok {
		return t
	}
	t = &topic{
		name:    name,
		members: make(map[*Subscriber]struct{}),
		queue:   make(chan Event, topicQueueSize),
		done:    make(chan struct{}),
	}
	h.topics[name] = t
	go t.dispatch(h.metrics)
	return t
}

// Subscribe registers a new live connection with no topic memberships.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		ch:     make(chan Event, subscriberQueueSize),
		hub:    h,
		topics: make(map[string]*topic),
	}
	if h.metrics != nil {
		h.metrics.Subscribers.Inc()
	}
	log.Debug().Str("subscriber", sub.ID).Msg("hub: subscriber connected")
	return sub
}

// Join adds the subscriber to a topic. Affiliation checks are the caller's
// responsibility; the hub trusts the join request.
func (h *Hub) Join(sub *Subscriber, topicName string) {
	t := h.getOrCreateTopic(topicName)

	// Membership is inserted under t.mu with the closed flag re-checked
	// there, so a concurrent Disconnect cannot leave a closed subscriber
	// behind in the member set. Disconnect never holds sub.mu while taking
	// t.mu, so nesting them here is safe.
	t.mu.Lock()
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		t.mu.Unlock()
		return
	}
	sub.topics[topicName] = t
	sub.mu.Unlock()
	t.members[sub] = struct{}{}
	t.mu.Unlock()
	log.Debug().Str("subscriber", sub.ID).Str("topic", topicName).Msg("hub: joined topic")
}

// Leave removes the subscriber from a topic.
func (h *Hub) Leave(sub *Subscriber, topicName string) {
	sub.mu.Lock()
	t, ok := sub.topics[topicName]
	delete(sub.topics, topicName)
	sub.mu.Unlock()
	if !ok {
		return
	}

	t.mu.Lock()
	delete(t.members, sub)
	t.mu.Unlock()
}

// Disconnect removes the subscriber from all topics and closes its channel.
func (h *Hub) Disconnect(sub *Subscriber) {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	joined := make([]*topic, 0, len(sub.topics))
	for _, t := range sub.topics {
		joined = append(joined, t)
	}
	sub.topics = make(map[string]*topic)
	sub.mu.Unlock()

	for _, t := range joined {
		t.mu.Lock()
		delete(t.members, sub)
		t.mu.Unlock()
	}
	close(sub.ch)
	if h.metrics != nil {
		h.metrics.Subscribers.Dec()
	}
	log.Debug().Str("subscriber", sub.ID).Msg("hub: subscriber disconnected")
}

// Publish enqueues an event for a topic and returns without waiting for
// delivery. Events within one topic are delivered in publish order.
func (h *Hub) Publish(topicName, event string, payload any) {
	evt := Event{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	t := h.getOrCreateTopic(topicName)
	select {
	case t.queue <- evt:
	default:
		log.Warn().Str("topic", topicName).Str("event", event).Msg("hub: topic queue full, event dropped")
		if h.metrics != nil {
			h.metrics.EventsDropped.Inc()
		}
	}

	if h.metrics != nil {
		h.metrics.EventsPublished.WithLabelValues(event).Inc()
	}
	if h.sink != nil {
		h.sink.Archive(topicName, evt)
	}
}

// PublishCenter publishes to a center's room.
func (h *Hub) PublishCenter(centerID, event string, payload any) {
	h.Publish(CenterTopic(centerID), event, payload)
}

// PublishOps publishes to the global operations room.
func (h *Hub) PublishOps(event string, payload any) {
	h.Publish(OpsTopic, event, payload)
}

// Close stops all topic dispatchers. Pending events are discarded.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, t := range h.topics {
		close(t.done)
	}
}

// MemberCount reports the current membership of a topic.
func (h *Hub) MemberCount(topicName string) int {
	h.mu.RLock()
	t, ok := h.topics[topicName]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}
