package writer

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_BasicSendReceive(t *testing.T) {
	q := NewQueue[int](10, 0)

	for i := 0; i < 5; i++ {
		if !q.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}
	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := q.TryReceive()
		if !ok {
			t.Fatalf("TryReceive() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("received %d, want %d", val, i)
		}
	}
	if _, ok := q.TryReceive(); ok {
		t.Error("TryReceive() on empty queue returned true")
	}
}

func TestQueue_GrowAt70Percent(t *testing.T) {
	q := NewQueue[int](10, 0)

	for i := 0; i < 7; i++ {
		q.Send(i)
	}

	stats := q.Stats()
	if stats.Capacity != 20 {
		t.Errorf("Capacity = %d, want 20", stats.Capacity)
	}
	if stats.ResizeCount != 1 {
		t.Errorf("ResizeCount = %d, want 1", stats.ResizeCount)
	}
}

func TestQueue_BoundedDropsWhenFull(t *testing.T) {
	q := NewQueue[int](4, 8)

	accepted := 0
	for i := 0; i < 10; i++ {
		if q.Send(i) {
			accepted++
		}
	}

	if accepted != 8 {
		t.Errorf("accepted = %d, want 8", accepted)
	}
	stats := q.Stats()
	if stats.Capacity != 8 {
		t.Errorf("Capacity = %d, want 8", stats.Capacity)
	}
	if stats.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", stats.Dropped)
	}

	// The oldest items survive.
	for i := 0; i < 8; i++ {
		val, _ := q.TryReceive()
		if val != i {
			t.Errorf("received %d, want %d", val, i)
		}
	}
}

func TestQueue_WrappedGrowKeepsOrder(t *testing.T) {
	q := NewQueue[int](10, 0)

	for i := 0; i < 5; i++ {
		q.Send(i)
	}
	for i := 0; i < 4; i++ {
		q.TryReceive()
	}
	for i := 5; i < 40; i++ {
		q.Send(i)
	}

	for want := 4; want < 40; want++ {
		val, ok := q.TryReceive()
		if !ok {
			t.Fatalf("TryReceive() returned false at %d", want)
		}
		if val != want {
			t.Fatalf("received %d, want %d", val, want)
		}
	}
}

func TestQueue_BlockingReceive(t *testing.T) {
	q := NewQueue[int](10, 0)

	received := make(chan int, 1)
	go func() {
		val, ok := q.Receive()
		if ok {
			received <- val
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Send(42)

	select {
	case val := <-received:
		if val != 42 {
			t.Errorf("received %d, want 42", val)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive() did not return")
	}
}

func TestQueue_CloseDrainsThenStops(t *testing.T) {
	q := NewQueue[string](4, 0)
	q.Send("a")
	q.Close()

	if q.Send("b") {
		t.Error("Send() after Close() returned true")
	}
	if v, ok := q.Receive(); !ok || v != "a" {
		t.Errorf("Receive() = %q, %v, want a, true", v, ok)
	}
	if _, ok := q.Receive(); ok {
		t.Error("Receive() on closed empty queue returned true")
	}
}

func TestQueue_ConcurrentSendReceive(t *testing.T) {
	q := NewQueue[int](8, 0)
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Send(i)
		}
		q.Close()
	}()

	got := 0
	for {
		if _, ok := q.Receive(); !ok {
			break
		}
		got++
	}
	wg.Wait()

	if got != n {
		t.Errorf("received %d items, want %d", got, n)
	}
}
