package broker

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrNotifierClosed = errors.New("notifier is closed")

// Subscriber is a live connection that receives serialized change events.
type Subscriber interface {
	ID() string
	// Deliver must not block. An error means the connection is unusable.
	Deliver(data []byte) error
	Close() error
}

// Publisher is the side of the notifier used by the stores.
type Publisher interface {
	Publish(topic Topic, event interface{}) int
}

type NotifierOption func(*Notifier)

// WithMirror forwards every published event to an external message bus
// under the given subject prefix.
func WithMirror(producer Producer, subjectPrefix string) NotifierOption {
	return func(n *Notifier) {
		n.mirror = producer
		n.subjectPrefix = subjectPrefix
	}
}

// Notifier maps topics to the set of currently subscribed connections and
// delivers change events to them. Delivery is best effort: at most once,
// with no retries.
type Notifier struct {
	mu     sync.RWMutex
	topics map[string]map[Subscriber]struct{}
	closed bool

	mirror        Producer
	subjectPrefix string
}

func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		topics: make(map[string]map[Subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Subscribe(topic Topic, sub Subscriber) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNotifierClosed
	}

	key := topic.key()
	subs, ok := n.topics[key]
	if !ok {
		subs = make(map[Subscriber]struct{})
		n.topics[key] = subs
	}
	if _, exists := subs[sub]; !exists {
		subs[sub] = struct{}{}
		subscribersActive.WithLabelValues(topic.Resource()).Inc()
	}

	log.Debug().Str("subscriber", sub.ID()).Stringer("topic", topic).Msg("Subscriber registered")
	return nil
}

// Unsubscribe removes sub from topic. Removing a subscriber that is not
// registered is a no-op; the return value reports whether anything changed.
func (n *Notifier) Unsubscribe(topic Topic, sub Subscriber) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	key := topic.key()
	subs, ok := n.topics[key]
	if !ok {
		return false
	}
	if _, exists := subs[sub]; !exists {
		return false
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(n.topics, key)
	}
	subscribersActive.WithLabelValues(topic.Resource()).Dec()

	log.Debug().Str("subscriber", sub.ID()).Stringer("topic", topic).Msg("Subscriber removed")
	return true
}

// Publish delivers event to every subscriber of exactly this topic and
// returns how many accepted it. Subscribers that fail are removed and closed.
func (n *Notifier) Publish(topic Topic, event interface{}) int {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Stringer("topic", topic).Msg("Failed to serialize change event")
		return 0
	}

	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return 0
	}
	subs := make([]Subscriber, 0, len(n.topics[topic.key()]))
	for sub := range n.topics[topic.key()] {
		subs = append(subs, sub)
	}
	n.mu.RUnlock()

	resource := topic.Resource()
	delivered := 0
	for _, sub := range subs {
		if err := deliver(sub, data); err != nil {
			log.Warn().Err(err).Str("subscriber", sub.ID()).Stringer("topic", topic).
				Msg("Failed to deliver change event, dropping subscriber")
			deliveriesTotal.WithLabelValues(resource, "failed").Inc()

			n.Unsubscribe(topic, sub)
			if err := sub.Close(); err != nil {
				log.Debug().Err(err).Str("subscriber", sub.ID()).Msg("Error closing subscriber")
			}
			continue
		}
		deliveriesTotal.WithLabelValues(resource, "delivered").Inc()
		delivered++
	}

	if n.mirror != nil {
		subject := topic.Subject(n.subjectPrefix)
		if err := n.mirror.Publish(subject, data); err != nil {
			mirrorErrorsTotal.Inc()
			log.Warn().Err(err).Str("subject", subject).Msg("Failed to mirror change event")
		}
	}

	return delivered
}

func deliver(sub Subscriber, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during delivery: %v", r)
		}
	}()
	return sub.Deliver(data)
}

func (n *Notifier) SubscriberCount(topic Topic) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.topics[topic.key()])
}

// Close closes every registered subscriber and rejects new subscriptions.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	topics := n.topics
	n.topics = make(map[string]map[Subscriber]struct{})
	n.mu.Unlock()

	count := 0
	for key, subs := range topics {
		gauge := subscribersActive.WithLabelValues(resourceOfKey(key))
		for sub := range subs {
			count++
			gauge.Dec()
			if err := sub.Close(); err != nil {
				log.Debug().Err(err).Str("subscriber", sub.ID()).Msg("Error closing subscriber")
			}
		}
	}

	log.Info().Int("subscribers", count).Msg("Notifier stopped")
}
