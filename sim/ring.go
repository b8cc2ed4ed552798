package sim

// ring is a byte ring buffer holding len(buf)-1 bytes. Callers hold the terminal lock.
type ring struct {
	buf        []byte
	head, tail int
}

func (r *ring) len() int {
	if r.head >= r.tail {
		return r.head - r.tail
	}
	return len(r.buf) - r.tail + r.head
}

// put stores b, dropping the oldest byte when full. It reports whether a byte was dropped.
func (r *ring) put(b byte) (dropped bool) {
	next := (r.head + 1) % len(r.buf)
	if next == r.tail {
		r.tail = (r.tail + 1) % len(r.buf)
		dropped = true
	}
	r.buf[r.head] = b
	r.head = next
	return dropped
}

func (r *ring) get() byte {
	if r.len() == 0 {
		return 0
	}
	b := r.buf[r.tail]
	r.tail = (r.tail + 1) % len(r.buf)
	return b
}

func (r *ring) readInto(p []byte) int {
	n := 0
	for n < len(p) && r.len() > 0 {
		p[n] = r.get()
		n++
	}
	return n
}
