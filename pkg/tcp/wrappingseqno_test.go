package tcp

import "testing"

func TestWrapBasic(t *testing.T) {
	isn := WrappingSeqno(0)
	if got := Wrap(0, isn); got != 0 {
		t.Errorf("Wrap(0,0) = %d, want 0", got)
	}
	if got := Wrap(1, isn); got != 1 {
		t.Errorf("Wrap(1,0) = %d, want 1", got)
	}

	isn = WrappingSeqno(1)
	if got := Wrap(0, isn); got != 1 {
		t.Errorf("Wrap(0,1) = %d, want 1", got)
	}

	isn = WrappingSeqno(1<<32 - 1)
	if got := Wrap(1, isn); got != 0 {
		t.Errorf("Wrap(1,2^32-1) = %d, want 0", got)
	}
}

func TestUnwrapRoundTrip(t *testing.T) {
	cases := []struct {
		isn        WrappingSeqno
		absolute   uint64
		checkpoint uint64
	}{
		{0, 0, 0},
		{0, 1, 0},
		{0, 1 << 16, 0},
		{1, 1 << 32, (1 << 32) + (1 << 16)},
		{1 << 31, (1 << 32) * 3, (1<<32)*3 - (1 << 16)},
		{1234567, 0xffffffff, 0},
	}

	for _, c := range cases {
		seqno := Wrap(c.absolute, c.isn)
		got := Unwrap(seqno, c.isn, c.checkpoint)
		if got != c.absolute {
			t.Errorf("Unwrap(Wrap(%d,%d),%d,%d) = %d, want %d",
				c.absolute, c.isn, c.isn, c.checkpoint, got, c.absolute)
		}
	}
}

func TestUnwrapPicksNearestToCheckpoint(t *testing.T) {
	isn := WrappingSeqno(0)
	// seqno 0 is consistent with absolute indices 0, 2^32, 2*2^32, ...
	// the one equal to a checkpoint sitting on the third wrap should be chosen.
	checkpoint := uint64(3) << 32
	got := Unwrap(0, isn, checkpoint)
	want := uint64(3) << 32
	if got != want {
		t.Errorf("Unwrap near checkpoint %d = %d, want %d", checkpoint, got, want)
	}
}

func TestUnwrapNeverNegative(t *testing.T) {
	isn := WrappingSeqno(2)
	got := Unwrap(1, isn, 0)
	if got != (1<<32)-1 {
		t.Errorf("Unwrap must not return a value requiring a negative offset, got %d", got)
	}
}
