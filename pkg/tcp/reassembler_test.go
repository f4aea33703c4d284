package tcp

import "testing"

func TestReassemblerInOrder(t *testing.T) {
	r := NewReassembler(65000)

	r.Push([]byte("abc"), 0, false)
	got := r.Stream().Read(3)
	if string(got) != "abc" {
		t.Errorf("expected 'abc', got %q", got)
	}
	if !r.Empty() {
		t.Errorf("expected no pending bytes after in-order push")
	}
}

func TestReassemblerOutOfOrder(t *testing.T) {
	r := NewReassembler(65000)

	r.Push([]byte("def"), 3, false)
	if r.Stream().BufferSize() != 0 {
		t.Errorf("out-of-order bytes must not be delivered yet")
	}
	if r.UnassembledBytes() != 3 {
		t.Errorf("expected 3 unassembled bytes, got %d", r.UnassembledBytes())
	}

	r.Push([]byte("abc"), 0, false)
	got := r.Stream().Read(6)
	if string(got) != "abcdef" {
		t.Errorf("expected 'abcdef', got %q", got)
	}
	if !r.Empty() {
		t.Errorf("expected no pending bytes once the gap is filled")
	}
}

func TestReassemblerOverlapping(t *testing.T) {
	r := NewReassembler(65000)

	r.Push([]byte("abc"), 0, false)
	r.Push([]byte("bcdef"), 1, false) // overlaps already-delivered "bc"

	got := r.Stream().Read(6)
	if string(got) != "abcdef" {
		t.Errorf("expected overlapping push to merge to 'abcdef', got %q", got)
	}
}

func TestReassemblerDuplicateSubstringIgnored(t *testing.T) {
	r := NewReassembler(65000)

	r.Push([]byte("xyz"), 10, false)
	if r.UnassembledBytes() != 3 {
		t.Fatalf("expected 3 unassembled bytes, got %d", r.UnassembledBytes())
	}

	r.Push([]byte("xyz"), 10, false) // identical substring arrives again
	if r.UnassembledBytes() != 3 {
		t.Errorf("duplicate substring must not double-count unassembled bytes, got %d", r.UnassembledBytes())
	}
}

func TestReassemblerCapacityClamp(t *testing.T) {
	r := NewReassembler(2)

	r.Push([]byte("cd"), 2, false) // beyond the 2-byte window while index 0-1 are unfilled: dropped entirely
	if r.UnassembledBytes() != 0 {
		t.Errorf("expected bytes beyond capacity to be dropped, got %d unassembled", r.UnassembledBytes())
	}

	r.Push([]byte("ab"), 0, false)
	got := r.Stream().Read(2)
	if string(got) != "ab" {
		t.Errorf("expected 'ab' within capacity, got %q", got)
	}
}

func TestReassemblerEOFLatchesOnlyWhenContiguous(t *testing.T) {
	r := NewReassembler(65000)

	r.Push([]byte("def"), 3, true) // EOF index recorded, but a gap remains at [0,3)
	if r.Stream().EOF() {
		t.Errorf("EOF must not latch until the stream is contiguous through the end")
	}

	r.Push([]byte("abc"), 0, false)
	r.Stream().Read(6)
	if !r.Stream().EOF() {
		t.Errorf("expected EOF once the gap before the recorded end index was filled")
	}
}
