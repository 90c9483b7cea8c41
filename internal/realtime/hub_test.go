package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_NotifyReachesSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	h.Notify("u1")

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
}

func TestHub_NotifyIsScoped(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	h.Notify("someone-else")

	select {
	case <-ch:
		t.Fatal("signal leaked across users")
	default:
	}
}

// Repeated notifies before a read collapse into one pending signal; the
// subscriber refetches full state, so one wake-up is enough.
func TestHub_CoalescesBursts(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("u1")
	defer cancel()

	for i := 0; i < 10; i++ {
		h.Notify("u1")
	}

	<-ch
	select {
	case <-ch:
		t.Fatal("expected bursts to coalesce into a single signal")
	default:
	}
}

func TestHub_CancelUnsubscribes(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe("u1")
	assert.Equal(t, 1, h.Subscribers("u1"))

	cancel()
	assert.Equal(t, 0, h.Subscribers("u1"))

	// Cancel twice is harmless.
	cancel()
	assert.Equal(t, 0, h.Subscribers("u1"))

	// Notify with no subscribers must not block or panic.
	h.Notify("u1")
}

func TestHub_MultipleSubscribers(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.Subscribe("u1")
	ch2, cancel2 := h.Subscribe("u1")
	defer cancel1()
	defer cancel2()

	h.Notify("u1")

	for _, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		default:
			t.Fatal("every subscriber should receive the signal")
		}
	}
}
