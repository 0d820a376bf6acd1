package queues

import "testing"

func TestQueueIsFIFO(t *testing.T) {
	q := NewQueue[int]()
	if !q.IsEmpty() || q.Len() != 0 {
		t.Fatal("new queue should be empty")
	}

	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	if q.Len() != 3 {
		t.Fatalf("expected 3 queued items, found %d", q.Len())
	}
	for want := 1; want <= 3; want++ {
		if got := q.Pop(); got != want {
			t.Errorf("expected %d, found %d", want, got)
		}
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty after draining")
	}
}
