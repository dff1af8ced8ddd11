package queue

import "testing"

func TestServiceTickDequeuesInArrivalOrder(t *testing.T) {
	m := NewManager()
	m.SetCapacity("bar", 1)
	m.Enqueue("bar", 11)
	m.Enqueue("bar", 12)
	m.Enqueue("bar", 13)

	id, ok := m.ServiceTick("bar")
	if !ok || id != 11 {
		t.Fatalf("expected the queue head 11 first, got %d (ok=%v)", id, ok)
	}
	m.IncrementServing("bar")

	if _, ok := m.ServiceTick("bar"); ok {
		t.Fatalf("expected no dequeue while the single server slot is busy")
	}

	m.DecrementServing("bar")
	id, ok = m.ServiceTick("bar")
	if !ok || id != 12 {
		t.Fatalf("expected 12 once the server freed up, got %d (ok=%v)", id, ok)
	}
}

func TestLeaveRemovesFromFIFO(t *testing.T) {
	m := NewManager()
	m.Enqueue("bar", 1)
	m.Enqueue("bar", 2)
	m.Enqueue("bar", 3)

	if !m.Leave("bar", 2) {
		t.Fatalf("expected Leave to find agent 2")
	}
	if m.Leave("bar", 2) {
		t.Fatalf("expected a second Leave for the same agent to miss")
	}
	if m.QueueLen("bar") != 2 {
		t.Fatalf("expected 2 queued after one left, got %d", m.QueueLen("bar"))
	}

	id, _ := m.ServiceTick("bar")
	if id != 1 {
		t.Fatalf("expected arrival order preserved after a mid-queue departure, got %d", id)
	}
}

func TestLeaveAnyScansAllQueues(t *testing.T) {
	m := NewManager()
	m.Enqueue("bar", 7)
	m.Enqueue("restroom", 8)

	m.LeaveAny(8)
	if m.QueueLen("restroom") != 0 {
		t.Fatalf("expected agent 8 removed from the restroom queue")
	}
	if m.QueueLen("bar") != 1 {
		t.Fatalf("expected the bar queue untouched")
	}
}

func TestOccupancyCountsQueuedAndServing(t *testing.T) {
	m := NewManager()
	m.Enqueue("bar", 1)
	m.Enqueue("bar", 2)
	m.IncrementServing("bar")

	if m.Occupancy("bar") != 3 {
		t.Fatalf("expected occupancy 3 (2 queued + 1 serving), got %d", m.Occupancy("bar"))
	}
}

func TestMaxQueueLenIsRunningMax(t *testing.T) {
	m := NewManager()
	for id := 1; id <= 4; id++ {
		m.Enqueue("bar", id)
	}
	m.ServiceTick("bar")
	m.ServiceTick("bar")

	if m.MaxQueueLen("bar") != 4 {
		t.Fatalf("expected running max 4 after the queue drained, got %d", m.MaxQueueLen("bar"))
	}
}

func TestResetClearsEverything(t *testing.T) {
	m := NewManager()
	m.Enqueue("bar", 1)
	m.IncrementServing("bar")
	m.Reset()

	if m.QueueLen("bar") != 0 || m.MaxQueueLen("bar") != 0 {
		t.Fatalf("expected Reset to clear queues and running maxima")
	}
}

func TestDecrementServingNeverGoesNegative(t *testing.T) {
	m := NewManager()
	m.DecrementServing("bar")
	if m.ServingCount("bar") != 0 {
		t.Fatalf("expected serving count clamped at zero, got %d", m.ServingCount("bar"))
	}
}
