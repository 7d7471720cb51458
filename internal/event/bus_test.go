package event

import (
	"testing"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("NewBus() returned nil")
	}
	if bus.handlers == nil {
		t.Fatal("NewBus() left handlers map uninitialized")
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()
	var received any
	bus.Subscribe("test", func(evt any) {
		received = evt
	})

	bus.Publish("test", "hello")

	if received != "hello" {
		t.Errorf("handler received %v, want %v", received, "hello")
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := NewBus()
	bus.Publish("nonexistent", "data")
}

func TestPublishIsSynchronousAndOrdered(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe("step", func(evt any) { order = append(order, 1) })
	bus.Subscribe("step", func(evt any) { order = append(order, 2) })

	bus.Publish("step", nil)
	bus.Publish("step", nil)

	want := []int{1, 2, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("handler order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("handler order = %v, want %v", order, want)
		}
	}
}

func TestPublishRecoversFromHandlerPanic(t *testing.T) {
	bus := NewBus()
	var after bool
	bus.Subscribe("boom", func(evt any) { panic("handler failure") })
	bus.Subscribe("boom", func(evt any) { after = true })

	bus.Publish("boom", nil)

	if !after {
		t.Fatal("handler after the panicking one never ran")
	}
}

func TestMultipleEventNamesAreIndependent(t *testing.T) {
	bus := NewBus()
	var a, b int
	bus.Subscribe("a", func(evt any) { a++ })
	bus.Subscribe("b", func(evt any) { b++ })

	bus.Publish("a", nil)
	bus.Publish("a", nil)
	bus.Publish("b", nil)

	if a != 2 || b != 1 {
		t.Fatalf("a=%d b=%d, want a=2 b=1", a, b)
	}
}
