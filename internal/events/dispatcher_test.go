package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherFanOut(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventGrievanceResolved, func(_ context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("first failed")
	})
	d.Subscribe(EventGrievanceResolved, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		require.Equal(t, int64(5), e.GrievanceID)
		return nil
	})
	d.Subscribe(EventGrievanceCreated, func(context.Context, Event) error {
		calls = append(calls, "created")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventGrievanceResolved, GrievanceID: 5})
	require.EqualError(t, err, "first failed")
	require.Equal(t, []string{"first", "second"}, calls)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventGrievanceUpdated}))
	require.Len(t, calls, 2)
}
