package vterm

// DefaultScrollback is the scrollback limit used by New.
const DefaultScrollback = 10000

// scrollback is a bounded FIFO of retired rows. Rows are stored as pushed;
// the oldest row is evicted once the limit is reached.
type scrollback struct {
	buf   [][]Cell
	head  int // index of the oldest row once buf is full
	limit int
}

func newScrollback(limit int) *scrollback {
	if limit < 0 {
		limit = 0
	}
	return &scrollback{limit: limit}
}

func (s *scrollback) Len() int {
	return len(s.buf)
}

func (s *scrollback) Push(line []Cell) {
	if s.limit == 0 {
		return
	}
	if len(s.buf) < s.limit {
		s.buf = append(s.buf, line)
		return
	}
	s.buf[s.head] = line
	s.head = (s.head + 1) % len(s.buf)
}

// Line returns row i, 0 being the oldest.
func (s *scrollback) Line(i int) []Cell {
	if i < 0 || i >= len(s.buf) {
		return nil
	}
	return s.buf[(s.head+i)%len(s.buf)]
}

// PopNewest removes and returns the most recently pushed row.
func (s *scrollback) PopNewest() []Cell {
	if len(s.buf) == 0 {
		return nil
	}
	s.normalize()
	last := len(s.buf) - 1
	line := s.buf[last]
	s.buf[last] = nil
	s.buf = s.buf[:last]
	return line
}

// SetLimit changes the bound, evicting the oldest rows if needed.
func (s *scrollback) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	s.normalize()
	if drop := len(s.buf) - limit; drop > 0 {
		kept := make([][]Cell, limit)
		copy(kept, s.buf[drop:])
		s.buf = kept
	}
	s.limit = limit
}

func (s *scrollback) Clear() {
	s.buf = nil
	s.head = 0
}

// Lines returns deep copies of rows [start, start+n), oldest first.
func (s *scrollback) Lines(start, n int) [][]Cell {
	if start < 0 {
		start = 0
	}
	if start+n > len(s.buf) {
		n = len(s.buf) - start
	}
	if n <= 0 {
		return nil
	}
	out := make([][]Cell, n)
	for i := range out {
		out[i] = CopyLine(s.Line(start + i))
	}
	return out
}

// normalize rotates the ring so the oldest row sits at index 0.
func (s *scrollback) normalize() {
	if s.head == 0 {
		return
	}
	rotated := make([][]Cell, 0, len(s.buf))
	rotated = append(rotated, s.buf[s.head:]...)
	rotated = append(rotated, s.buf[:s.head]...)
	s.buf = rotated
	s.head = 0
}
