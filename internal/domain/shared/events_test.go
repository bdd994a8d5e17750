package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	name string
	at   time.Time
}

func (e testEvent) EventName() string { return e.name }
func (e testEvent) OccurredAt() time.Time { return e.at }

func TestAggregateRoot_DrainsEvents(t *testing.T) {
	var root AggregateRoot
	root.AddEvent(testEvent{name: "a"})
	root.AddEvent(testEvent{name: "b"})

	events := root.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].EventName())
	assert.Empty(t, root.Events())
}

func TestDispatcher_RoutesByName(t *testing.T) {
	d := NewDispatcher()
	var seen []string
	d.Register(func(e DomainEvent) error {
		seen = append(seen, "first:"+e.EventName())
		return nil
	}, "added", "removed")
	d.Register(func(e DomainEvent) error {
		seen = append(seen, "second:"+e.EventName())
		return nil
	}, "added")

	require.NoError(t, d.DispatchAll([]DomainEvent{
		testEvent{name: "added"},
		testEvent{name: "moved"},
		testEvent{name: "removed"},
	}))
	assert.Equal(t, []string{"first:added", "second:added", "first:removed"}, seen)
}

func TestDispatcher_RunsEveryHandler(t *testing.T) {
	d := NewDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Register(func(DomainEvent) error { calls++; return boom }, "added")
	d.Register(func(DomainEvent) error { calls++; return nil }, "added")

	err := d.Dispatch(testEvent{name: "added"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "added: boom")
	assert.Equal(t, 2, calls)
}
