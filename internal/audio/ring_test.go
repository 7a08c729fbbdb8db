package audio

import (
	"encoding/binary"
	"testing"

	"nesemu/internal/apu"
)

func TestRingReadFormat(t *testing.T) {
	r := NewRing(4)
	r.Push([]apu.Sample{{Left: 1, Right: -1}, {Left: 0.5, Right: 0}})

	p := make([]byte, 16)
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 16 {
		t.Fatalf("Expected 16 bytes, got %d", n)
	}

	want := []int16{32767, -32767, 16383, 0, 0, 0, 0, 0}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(p[i*2:]))
		if got != w {
			t.Errorf("Sample %d: expected %d, got %d", i, w, got)
		}
	}

	_, underruns := r.Stats()
	if underruns != 2 {
		t.Errorf("Expected 2 underruns, got %d", underruns)
	}
}

func TestRingOverflowDropsOldest(t *testing.T) {
	r := NewRing(3)
	r.Push([]apu.Sample{{Left: 0.1}, {Left: 0.2}, {Left: 0.3}, {Left: 0.4}, {Left: 0.5}})

	if r.Len() != 3 {
		t.Fatalf("Expected 3 buffered, got %d", r.Len())
	}
	dropped, _ := r.Stats()
	if dropped != 2 {
		t.Errorf("Expected 2 dropped, got %d", dropped)
	}

	p := make([]byte, 4)
	r.Read(p)
	got := int16(binary.LittleEndian.Uint16(p))
	if want := toInt16(0.3); got != want {
		t.Errorf("Expected oldest remaining sample %d, got %d", want, got)
	}
}

func TestRingPartialFrame(t *testing.T) {
	r := NewRing(2)
	n, _ := r.Read(make([]byte, 6))
	if n != 4 {
		t.Errorf("Expected whole frames only, got %d bytes", n)
	}
}

func TestToInt16Clamps(t *testing.T) {
	if toInt16(2) != 32767 || toInt16(-2) != -32767 {
		t.Errorf("Expected clamp, got %d and %d", toInt16(2), toInt16(-2))
	}
}
