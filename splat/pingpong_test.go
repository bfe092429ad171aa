package splat

import "testing"

func TestPingPongFrontBack(t *testing.T) {
	p := newPingPong(1, 2)
	if p.Front() != 1 {
		t.Errorf("Front: want 1, got %v", p.Front())
	}
	if p.Back() != 2 {
		t.Errorf("Back: want 2, got %v", p.Back())
	}
}

func TestPingPongSwap(t *testing.T) {
	p := newPingPong("a", "b")
	p.Swap()
	if p.Front() != "b" || p.Back() != "a" {
		t.Errorf("after Swap: want front=b back=a, got front=%v back=%v", p.Front(), p.Back())
	}
	p.Swap()
	if p.Front() != "a" || p.Back() != "b" {
		t.Errorf("after second Swap: want front=a back=b, got front=%v back=%v", p.Front(), p.Back())
	}
}

func TestPingPongSetBackSetFront(t *testing.T) {
	p := newPingPong(0, 0)
	p.SetFront(10)
	p.SetBack(20)
	if p.Front() != 10 || p.Back() != 20 {
		t.Errorf("want front=10 back=20, got front=%v back=%v", p.Front(), p.Back())
	}
	p.Swap()
	if p.Front() != 20 || p.Back() != 10 {
		t.Errorf("after Swap want front=20 back=10, got front=%v back=%v", p.Front(), p.Back())
	}
}
