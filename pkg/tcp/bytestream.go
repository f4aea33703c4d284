package tcp

// ByteStream is a bounded, flow-controlled in-memory FIFO of bytes with
// latching input-ended and error flags. Exactly one writer and one reader
// are expected; there is no internal locking, matching the single-threaded
// cooperative model of the rest of the package (spec §5).
type ByteStream struct {
	capacity uint64
	buf      []byte

	bytesWritten uint64
	bytesRead    uint64

	inputEnded bool
	hasError   bool
}

// NewByteStream constructs a ByteStream that holds at most capacity bytes.
func NewByteStream(capacity uint64) *ByteStream {
	return &ByteStream{capacity: capacity}
}

// Write accepts at most RemainingCapacity() bytes of data and returns how
// many were accepted. It never fails, and returns 0 once EndInput has been
// called.
func (s *ByteStream) Write(data []byte) int {
	if s.inputEnded {
		return 0
	}
	n := len(data)
	if rc := int(s.RemainingCapacity()); n > rc {
		n = rc
	}
	if n <= 0 {
		return 0
	}
	s.buf = append(s.buf, data[:n]...)
	s.bytesWritten += uint64(n)
	return n
}

// Peek returns up to min(n, BufferSize()) bytes without consuming them.
func (s *ByteStream) Peek(n int) []byte {
	if n > len(s.buf) {
		n = len(s.buf)
	}
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, s.buf[:n])
	return out
}

// Pop discards up to min(n, BufferSize()) bytes from the front of the buffer.
func (s *ByteStream) Pop(n int) {
	if n > len(s.buf) {
		n = len(s.buf)
	}
	if n <= 0 {
		return
	}
	s.buf = s.buf[n:]
	s.bytesRead += uint64(n)
}

// Read copies and removes up to min(n, BufferSize()) bytes.
func (s *ByteStream) Read(n int) []byte {
	out := s.Peek(n)
	s.Pop(len(out))
	return out
}

// EndInput latches input_ended. Once set, it never clears.
func (s *ByteStream) EndInput() { s.inputEnded = true }

// SetError latches the error flag. Once set, it never clears.
func (s *ByteStream) SetError() { s.hasError = true }

func (s *ByteStream) InputEnded() bool { return s.inputEnded }
func (s *ByteStream) Error() bool      { return s.hasError }

func (s *ByteStream) BytesWritten() uint64 { return s.bytesWritten }
func (s *ByteStream) BytesRead() uint64    { return s.bytesRead }

func (s *ByteStream) BufferSize() uint64 { return s.bytesWritten - s.bytesRead }

func (s *ByteStream) RemainingCapacity() uint64 {
	return s.capacity - s.BufferSize()
}

// EOF reports whether the stream has ended and been fully drained.
func (s *ByteStream) EOF() bool {
	return s.inputEnded && s.BufferSize() == 0
}
