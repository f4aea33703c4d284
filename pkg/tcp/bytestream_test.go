package tcp

import "testing"

func TestByteStreamWriteRead(t *testing.T) {
	bs := NewByteStream(15)

	n := bs.Write([]byte("cat"))
	if n != 3 {
		t.Errorf("expected to write 3 bytes, wrote %d", n)
	}
	if bs.BufferSize() != 3 {
		t.Errorf("expected buffer size 3, got %d", bs.BufferSize())
	}

	out := bs.Read(3)
	if string(out) != "cat" {
		t.Errorf("expected to read 'cat', got %q", out)
	}
	if bs.BufferSize() != 0 {
		t.Errorf("expected empty buffer after read, got size %d", bs.BufferSize())
	}
	if bs.BytesWritten() != 3 || bs.BytesRead() != 3 {
		t.Errorf("expected written=read=3, got written=%d read=%d", bs.BytesWritten(), bs.BytesRead())
	}
}

func TestByteStreamCapacityClamp(t *testing.T) {
	bs := NewByteStream(2)

	n := bs.Write([]byte("cat"))
	if n != 2 {
		t.Errorf("expected write to clamp to capacity 2, wrote %d", n)
	}
	if bs.RemainingCapacity() != 0 {
		t.Errorf("expected no remaining capacity, got %d", bs.RemainingCapacity())
	}
}

func TestByteStreamPeekDoesNotConsume(t *testing.T) {
	bs := NewByteStream(10)
	bs.Write([]byte("hello"))

	if got := bs.Peek(3); string(got) != "hel" {
		t.Errorf("expected peek 'hel', got %q", got)
	}
	if bs.BufferSize() != 5 {
		t.Errorf("peek should not consume bytes, buffer size = %d", bs.BufferSize())
	}
}

func TestByteStreamEOF(t *testing.T) {
	bs := NewByteStream(10)
	bs.Write([]byte("ab"))
	bs.EndInput()

	if !bs.InputEnded() {
		t.Errorf("expected InputEnded after EndInput")
	}
	if bs.EOF() {
		t.Errorf("EOF should be false while unread bytes remain")
	}

	bs.Read(2)
	if !bs.EOF() {
		t.Errorf("expected EOF once input ended and buffer drained")
	}
}

func TestByteStreamError(t *testing.T) {
	bs := NewByteStream(10)
	if bs.Error() {
		t.Errorf("fresh stream should not be in error")
	}
	bs.SetError()
	if !bs.Error() {
		t.Errorf("expected Error() true after SetError")
	}
}
