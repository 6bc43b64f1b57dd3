package viewstate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Items []string
	Count int
}

func TestStore_UpdateAndSubscribe(t *testing.T) {
	store := NewStore(counterState{})

	ch, cancel := store.Subscribe(4)
	defer cancel()

	first := <-ch
	assert.Equal(t, 0, first.Count)

	store.Update(func(s counterState) counterState {
		s.Count = 1
		s.Items = []string{"a"}
		return s
	})

	next := <-ch
	assert.Equal(t, 1, next.Count)
	assert.Equal(t, []string{"a"}, next.Items)
	assert.Equal(t, next, store.Get())
}

func TestStore_SlowSubscriberGetsLatest(t *testing.T) {
	store := NewStore(counterState{})
	ch, cancel := store.Subscribe(1)
	defer cancel()

	for i := 1; i <= 10; i++ {
		n := i
		store.Update(func(s counterState) counterState {
			s.Count = n
			return s
		})
	}

	latest := <-ch
	assert.Equal(t, 10, latest.Count)
}

func TestStore_CancelClosesChannel(t *testing.T) {
	store := NewStore(counterState{})
	ch, cancel := store.Subscribe(1)
	<-ch

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	// publishing after unsubscribe must not panic
	store.Update(func(s counterState) counterState { return s })
}

func TestStore_UpdateIf(t *testing.T) {
	store := NewStore(counterState{Count: 1})

	applied := store.UpdateIf(func() bool { return false }, func(s counterState) counterState {
		s.Count = 99
		return s
	})
	assert.False(t, applied)
	assert.Equal(t, 1, store.Get().Count)

	applied = store.UpdateIf(func() bool { return true }, func(s counterState) counterState {
		s.Count = 2
		return s
	})
	assert.True(t, applied)
	assert.Equal(t, 2, store.Get().Count)
}

func TestTasks_NewerCallSupersedesOlder(t *testing.T) {
	tasks := NewTasks()

	ctx1, first := tasks.Begin(context.Background(), "search")
	assert.True(t, first.Current())

	ctx2, second := tasks.Begin(context.Background(), "search")
	assert.False(t, first.Current())
	assert.True(t, second.Current())
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())

	// other operations are independent
	_, other := tasks.Begin(context.Background(), "categories")
	assert.True(t, other.Current())
	assert.True(t, second.Current())

	second.Done()
	assert.True(t, second.Current(), "Done releases the context but keeps the result current")
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}

func TestTasks_StaleDoneKeepsNewerCallAlive(t *testing.T) {
	tasks := NewTasks()

	_, first := tasks.Begin(context.Background(), "load")
	ctx2, second := tasks.Begin(context.Background(), "load")

	first.Done()
	assert.NoError(t, ctx2.Err())
	assert.True(t, second.Current())
}

func TestTasks_CancelAndClose(t *testing.T) {
	tasks := NewTasks()

	ctx, ticket := tasks.Begin(context.Background(), "detail")
	tasks.Cancel("detail")
	assert.False(t, ticket.Current())
	assert.Error(t, ctx.Err())

	ctx, ticket = tasks.Begin(context.Background(), "detail")
	tasks.Close()
	assert.False(t, ticket.Current())
	assert.Error(t, ctx.Err())

	ctx, ticket = tasks.Begin(context.Background(), "detail")
	assert.False(t, ticket.Current())
	assert.Error(t, ctx.Err())
}

func TestTicket_ZeroValueIsNeverCurrent(t *testing.T) {
	var ticket Ticket
	assert.False(t, ticket.Current())
	ticket.Done()
}

func TestDebouncer_LastTriggerWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var ran []string
	for _, q := range []string{"a", "ab", "abc"} {
		query := q
		d.Trigger(func() {
			mu.Lock()
			ran = append(ran, query)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ran) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc"}, ran)
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFlash_NewMessageRestartsCountdown(t *testing.T) {
	var f Flash
	var cleared atomic.Int32

	f.Show(20*time.Millisecond, func() { cleared.Add(1) })
	f.Show(80*time.Millisecond, func() { cleared.Add(10) })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), cleared.Load())

	require.Eventually(t, func() bool { return cleared.Load() == 10 }, time.Second, 5*time.Millisecond)

	f.Show(10*time.Millisecond, func() { cleared.Add(100) })
	f.Stop()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(10), cleared.Load())
}
