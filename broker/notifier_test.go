package broker

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	id string

	mu       sync.Mutex
	messages [][]byte
	failWith error
	panics   bool
	closed   int
}

func newFakeSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id}
}

func (s *fakeSubscriber) ID() string { return s.id }

func (s *fakeSubscriber) Deliver(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panics {
		panic("connection exploded")
	}
	if s.failWith != nil {
		return s.failWith
	}
	s.messages = append(s.messages, data)
	return nil
}

func (s *fakeSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *fakeSubscriber) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.messages...)
}

func (s *fakeSubscriber) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(subject string, data []byte) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockProducer) Close() {
	m.Called()
}

type testEvent struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

func TestPublishOnlyReachesExactTopic(t *testing.T) {
	n := NewNotifier()
	job5 := newFakeSubscriber("job5")
	job7 := newFakeSubscriber("job7")
	all := newFakeSubscriber("all")

	require.NoError(t, n.Subscribe(EntityTopic("print_job", 5), job5))
	require.NoError(t, n.Subscribe(EntityTopic("print_job", 7), job7))
	require.NoError(t, n.Subscribe(CollectionTopic("print_job"), all))

	assert.Equal(t, 1, n.Publish(EntityTopic("print_job", 5), testEvent{Type: "updated", ID: 5}))
	assert.Equal(t, 1, n.Publish(EntityTopic("print_job", 5), testEvent{Type: "deleted", ID: 5}))

	got := job5.received()
	require.Len(t, got, 2)
	var first testEvent
	require.NoError(t, json.Unmarshal(got[0], &first))
	assert.Equal(t, testEvent{Type: "updated", ID: 5}, first)

	assert.Empty(t, job7.received())
	assert.Empty(t, all.received())

	assert.Equal(t, 1, n.Publish(EntityTopic("print_job", 7), testEvent{Type: "updated", ID: 7}))
	assert.Len(t, job5.received(), 2)
	assert.Len(t, job7.received(), 1)
}

func TestPublishToTopicWithoutSubscribers(t *testing.T) {
	n := NewNotifier()
	assert.Equal(t, 0, n.Publish(CollectionTopic("print_job"), testEvent{Type: "added"}))
}

func TestPublishSurvivesBrokenSubscriber(t *testing.T) {
	n := NewNotifier()
	topic := EntityTopic("print_job", 1)

	healthy := newFakeSubscriber("healthy")
	broken := newFakeSubscriber("broken")
	broken.failWith = errors.New("use of closed network connection")
	panicky := newFakeSubscriber("panicky")
	panicky.panics = true
	other := newFakeSubscriber("other")

	for _, sub := range []*fakeSubscriber{healthy, broken, panicky, other} {
		require.NoError(t, n.Subscribe(topic, sub))
	}

	var delivered int
	assert.NotPanics(t, func() {
		delivered = n.Publish(topic, testEvent{Type: "updated", ID: 1})
	})

	assert.Equal(t, 2, delivered)
	assert.Len(t, healthy.received(), 1)
	assert.Len(t, other.received(), 1)

	assert.Equal(t, 1, broken.closeCount())
	assert.Equal(t, 1, panicky.closeCount())
	assert.Equal(t, 2, n.SubscriberCount(topic))

	assert.Equal(t, 2, n.Publish(topic, testEvent{Type: "updated", ID: 1}))
	assert.Len(t, healthy.received(), 2)
}

func TestUnsubscribeTwiceIsNoop(t *testing.T) {
	n := NewNotifier()
	topic := EntityTopic("print_job", 3)
	sub := newFakeSubscriber("sub")
	require.NoError(t, n.Subscribe(topic, sub))

	assert.True(t, n.Unsubscribe(topic, sub))
	assert.NotPanics(t, func() {
		assert.False(t, n.Unsubscribe(topic, sub))
	})
	assert.False(t, n.Unsubscribe(CollectionTopic("spool"), sub))
	assert.Equal(t, 0, n.SubscriberCount(topic))
	assert.Equal(t, 0, n.Publish(topic, testEvent{}))
}

func TestSubscribeKeepsTopicsSeparate(t *testing.T) {
	n := NewNotifier()
	sub := newFakeSubscriber("sub")

	require.NoError(t, n.Subscribe(NewTopic("a.b"), sub))
	assert.Equal(t, 0, n.SubscriberCount(NewTopic("a", "b")))
	assert.Equal(t, 1, n.SubscriberCount(NewTopic("a.b")))

	// Registering the same connection twice keeps a single membership.
	require.NoError(t, n.Subscribe(NewTopic("a.b"), sub))
	assert.Equal(t, 1, n.SubscriberCount(NewTopic("a.b")))
}

func TestCloseClosesSubscribers(t *testing.T) {
	n := NewNotifier()
	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	require.NoError(t, n.Subscribe(CollectionTopic("print_job"), a))
	require.NoError(t, n.Subscribe(EntityTopic("spool", 1), b))

	n.Close()
	n.Close()

	assert.Equal(t, 1, a.closeCount())
	assert.Equal(t, 1, b.closeCount())
	assert.Equal(t, 0, n.SubscriberCount(CollectionTopic("print_job")))
	assert.ErrorIs(t, n.Subscribe(CollectionTopic("print_job"), a), ErrNotifierClosed)
	assert.Equal(t, 0, n.Publish(CollectionTopic("print_job"), testEvent{}))
	assert.Empty(t, a.received())
}

func TestCloseLeavesOtherNotifiersGauge(t *testing.T) {
	gauge := subscribersActive.WithLabelValues("gauge_check")
	start := testutil.ToFloat64(gauge)

	first := NewNotifier()
	second := NewNotifier()
	defer second.Close()

	require.NoError(t, first.Subscribe(EntityTopic("gauge_check", 1), newFakeSubscriber("a")))
	require.NoError(t, first.Subscribe(EntityTopic("gauge_check", 2), newFakeSubscriber("b")))
	require.NoError(t, second.Subscribe(EntityTopic("gauge_check", 1), newFakeSubscriber("c")))
	assert.Equal(t, start+3, testutil.ToFloat64(gauge))

	first.Close()
	assert.Equal(t, start+1, testutil.ToFloat64(gauge))

	second.Unsubscribe(EntityTopic("gauge_check", 1), newFakeSubscriber("c"))
	assert.Equal(t, start+1, testutil.ToFloat64(gauge))
}

func TestPublishMirrorsToProducer(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Publish", "spoolman.print_job.9", mock.Anything).Return(nil).Once()

	n := NewNotifier(WithMirror(producer, "spoolman"))
	sub := newFakeSubscriber("sub")
	require.NoError(t, n.Subscribe(EntityTopic("print_job", 9), sub))

	assert.Equal(t, 1, n.Publish(EntityTopic("print_job", 9), testEvent{Type: "added", ID: 9}))

	producer.AssertExpectations(t)
	data := producer.Calls[0].Arguments.Get(1).([]byte)
	assert.Equal(t, sub.received()[0], data)
}

func TestPublishIgnoresMirrorFailure(t *testing.T) {
	producer := new(MockProducer)
	producer.On("Publish", "print_job", mock.Anything).Return(errors.New("nats: connection closed"))

	n := NewNotifier(WithMirror(producer, ""))
	sub := newFakeSubscriber("sub")
	require.NoError(t, n.Subscribe(CollectionTopic("print_job"), sub))

	assert.Equal(t, 1, n.Publish(CollectionTopic("print_job"), testEvent{Type: "added"}))
	assert.Len(t, sub.received(), 1)
	producer.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublishUnserializableEvent(t *testing.T) {
	n := NewNotifier()
	sub := newFakeSubscriber("sub")
	require.NoError(t, n.Subscribe(CollectionTopic("print_job"), sub))

	assert.Equal(t, 0, n.Publish(CollectionTopic("print_job"), make(chan int)))
	assert.Empty(t, sub.received())
	assert.Equal(t, 1, n.SubscriberCount(CollectionTopic("print_job")))
}

func TestNotifierConcurrentUse(t *testing.T) {
	n := NewNotifier()
	topic := CollectionTopic("print_job")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sub := newFakeSubscriber(fmt.Sprintf("sub-%d", i))
			for j := 0; j < 50; j++ {
				_ = n.Subscribe(topic, sub)
				n.Publish(topic, testEvent{ID: j})
				n.Unsubscribe(topic, sub)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for concurrent publishers")
	}
	assert.Equal(t, 0, n.SubscriberCount(topic))
}
