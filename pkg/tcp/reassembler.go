package tcp

import "sort"

// reassemblySegment is a half-open byte range [start, end) of absolute
// stream indices held by the Reassembler pending delivery, plus the bytes
// for that range. len(data) == end-start always.
type reassemblySegment struct {
	start, end uint64
	data       []byte
}

// Reassembler merges overlapping, out-of-order substrings at arbitrary
// 64-bit absolute offsets into an in-order ByteStream, under a joint
// capacity budget shared between already-delivered-but-unread bytes and
// bytes still pending reassembly (spec §4.3).
type Reassembler struct {
	output   *ByteStream
	capacity uint64

	pending          []reassemblySegment // sorted by start, pairwise disjoint
	unassembledBytes uint64

	gotEOF   bool
	endIndex uint64
}

// NewReassembler constructs a Reassembler backed by a ByteStream of the
// given capacity.
func NewReassembler(capacity uint64) *Reassembler {
	return &Reassembler{
		output:   NewByteStream(capacity),
		capacity: capacity,
	}
}

// Stream returns the reassembled in-order byte stream.
func (r *Reassembler) Stream() *ByteStream { return r.output }

// UnassembledBytes is the number of bytes held in pending substrings,
// counting each byte of the logical stream at most once.
func (r *Reassembler) UnassembledBytes() uint64 { return r.unassembledBytes }

// Empty reports whether no substrings are waiting to be assembled.
func (r *Reassembler) Empty() bool { return r.unassembledBytes == 0 }

// Push ingests a substring whose first byte sits at the given absolute
// stream index, per the algorithm of spec §4.3.
func (r *Reassembler) Push(data []byte, index uint64, eof bool) {
	if r.output.InputEnded() {
		return
	}

	nextExpected := r.output.BytesWritten()
	length := uint64(len(data))
	if index+length < nextExpected {
		return
	}

	if eof && !r.gotEOF {
		r.gotEOF = true
		r.endIndex = index + length
	}

	capEnd := r.output.BytesRead() + r.capacity
	end := index + length
	if end > capEnd {
		end = capEnd
	}
	start := index
	if start < nextExpected {
		start = nextExpected
	}

	if start < end {
		segData := append([]byte(nil), data[start-index:end-index]...)
		r.mergeAndInsert(start, end, segData)
	}

	r.drain()
}

// mergeAndInsert trims the incoming [start, end) range against existing
// pending segments (existing data is authoritative on overlap), drops any
// existing segment the new range fully covers, and inserts what remains.
func (r *Reassembler) mergeAndInsert(start, end uint64, data []byte) {
	i := sort.Search(len(r.pending), func(i int) bool { return r.pending[i].end >= start })

	if i < len(r.pending) && r.pending[i].start <= start {
		prev := r.pending[i]
		if prev.end >= end {
			// the new segment is fully covered by an existing one
			return
		}
		trim := prev.end - start
		data = data[trim:]
		start = prev.end
		i++
	}

	j := i
	for j < len(r.pending) && r.pending[j].start < end {
		if r.pending[j].end <= end {
			j++
			continue
		}
		end = r.pending[j].start
		break
	}
	if start >= end {
		return
	}
	data = data[:end-start]

	var removed uint64
	for k := i; k < j; k++ {
		removed += r.pending[k].end - r.pending[k].start
	}
	r.unassembledBytes -= removed

	seg := reassemblySegment{start: start, end: end, data: data}
	merged := make([]reassemblySegment, 0, len(r.pending)-(j-i)+1)
	merged = append(merged, r.pending[:i]...)
	merged = append(merged, seg)
	merged = append(merged, r.pending[j:]...)
	r.pending = merged

	r.unassembledBytes += uint64(len(data))
}

// drain writes every contiguous pending segment at the front of the stream
// into the output ByteStream, then latches EOF if the whole stream has
// arrived.
func (r *Reassembler) drain() {
	for len(r.pending) > 0 && r.pending[0].start == r.output.BytesWritten() {
		seg := r.pending[0]
		wc := r.output.Write(seg.data)
		r.unassembledBytes -= uint64(wc)
		if wc < len(seg.data) {
			r.pending[0] = reassemblySegment{
				start: seg.start + uint64(wc),
				end:   seg.end,
				data:  seg.data[wc:],
			}
			break
		}
		r.pending = r.pending[1:]
	}

	if r.gotEOF && r.endIndex == r.output.BytesWritten() {
		r.output.EndInput()
	}
}
