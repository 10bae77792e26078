// Package tailbuffer provides a bounded writer that retains only the tail of
// what was written to it. It is used to keep the last portion of subprocess
// output for logging without holding the full stream.
package tailbuffer

import "io"

// TailBuffer is an io.Writer that keeps the last capacity bytes written to
// it. Reading drains the retained tail.
type TailBuffer struct {
	buf      []byte
	capacity int
	readOff  int
}

// NewTailBuffer creates a TailBuffer retaining at most capacity bytes.
func NewTailBuffer(capacity int) *TailBuffer {
	return &TailBuffer{capacity: capacity}
}

// Write implements io.Writer. It never fails; older bytes are discarded once
// the capacity is exceeded.
func (t *TailBuffer) Write(p []byte) (int, error) {
	if len(p) >= t.capacity {
		t.buf = append(t.buf[:0], p[len(p)-t.capacity:]...)
		return len(p), nil
	}
	t.buf = append(t.buf, p...)
	if overflow := len(t.buf) - t.capacity; overflow > 0 {
		t.buf = t.buf[overflow:]
	}
	return len(p), nil
}

// Read implements io.Reader over the retained tail.
func (t *TailBuffer) Read(p []byte) (int, error) {
	if t.readOff >= len(t.buf) {
		return 0, io.EOF
	}
	n := copy(p, t.buf[t.readOff:])
	t.readOff += n
	return n, nil
}
