package bus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timada-org/tablesync/internal/bus"
)

type recorder struct {
	mux    sync.Mutex
	events []string
}

func (r *recorder) handler(prefix string) bus.Handler {
	return func(event *bus.Event) {
		r.mux.Lock()
		defer r.mux.Unlock()
		r.events = append(r.events, prefix+":"+event.Topic.String())
	}
}

func (r *recorder) snapshot() []string {
	r.mux.Lock()
	defer r.mux.Unlock()
	return append([]string(nil), r.events...)
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := bus.New()
	defer b.Close()

	rec := &recorder{}
	_, err := b.Subscribe("people/#", rec.handler("a"))
	require.NoError(t, err)

	b.Publish(&bus.Event{Topic: bus.MustName("people/state_changed")})
	b.Publish(&bus.Event{Topic: bus.MustName("todos/state_changed")})
	b.Publish(&bus.Event{Topic: bus.MustName("people/read_success")})

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a:people/state_changed", "a:people/read_success"}, rec.snapshot())
}

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := bus.New()
	defer b.Close()

	rec := &recorder{}
	_, err := b.Subscribe("#", rec.handler("first"))
	require.NoError(t, err)
	_, err = b.Subscribe("+/read_success", rec.handler("second"))
	require.NoError(t, err)

	b.Publish(&bus.Event{Topic: bus.MustName("todos/read_success")})

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first:todos/read_success", "second:todos/read_success"}, rec.snapshot())
}

func TestHandlersNeverOverlap(t *testing.T) {
	b := bus.New()
	defer b.Close()

	var mux sync.Mutex
	running, overlapped, delivered := 0, false, 0

	_, err := b.Subscribe("#", func(event *bus.Event) {
		mux.Lock()
		running++
		if running > 1 {
			overlapped = true
		}
		mux.Unlock()

		time.Sleep(time.Millisecond)

		mux.Lock()
		running--
		delivered++
		mux.Unlock()
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Publish(&bus.Event{Topic: bus.MustName("people/state_changed")})
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return delivered == 20
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, overlapped)
}

func TestUnsubscribe(t *testing.T) {
	b := bus.New()
	defer b.Close()

	rec := &recorder{}
	sub, err := b.Subscribe("#", rec.handler("gone"))
	require.NoError(t, err)
	_, err = b.Subscribe("#", rec.handler("kept"))
	require.NoError(t, err)

	b.Unsubscribe(sub)
	b.Unsubscribe(nil)
	b.Publish(&bus.Event{Topic: bus.MustName("people/state_changed")})

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"kept:people/state_changed"}, rec.snapshot())
}

func TestHandlerCanPublish(t *testing.T) {
	b := bus.New()
	defer b.Close()

	rec := &recorder{}
	_, err := b.Subscribe("people/state_changed", func(event *bus.Event) {
		b.Publish(&bus.Event{Topic: bus.MustName("people/read_success")})
	})
	require.NoError(t, err)
	_, err = b.Subscribe("people/read_success", rec.handler("read"))
	require.NoError(t, err)

	b.Publish(&bus.Event{Topic: bus.MustName("people/state_changed")})

	assert.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestSubscribeInvalidFilter(t *testing.T) {
	b := bus.New()
	defer b.Close()

	_, err := b.Subscribe("people#", func(*bus.Event) {})
	require.Error(t, err)
}

func TestClosedBusDropsEvents(t *testing.T) {
	b := bus.New()

	rec := &recorder{}
	_, err := b.Subscribe("#", rec.handler("x"))
	require.NoError(t, err)

	b.Close()
	b.Close()
	b.Publish(&bus.Event{Topic: bus.MustName("people/state_changed")})

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
