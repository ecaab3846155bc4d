package stream

// BatchSize is the number of updates buffered between calls to
// [Writer.WriteUpdates] and read per call to [Reader.ReadUpdates].
const BatchSize = 4096

// BatchWriter buffers updates and hands them to a [Writer] in fixed-size
// batches. Call Flush when done.
type BatchWriter struct {
	w       Writer
	buf     []Update
	written uint64
}

// NewBatchWriter returns a BatchWriter flushing every size updates.
// A size <= 0 selects [BatchSize].
func NewBatchWriter(w Writer, size int) *BatchWriter {
	if size <= 0 {
		size = BatchSize
	}
	return &BatchWriter{w: w, buf: make([]Update, 0, size)}
}

// Add buffers u, flushing when the batch is full.
func (b *BatchWriter) Add(u Update) error {
	b.buf = append(b.buf, u)
	if len(b.buf) == cap(b.buf) {
		return b.Flush()
	}
	return nil
}

// Flush writes any buffered updates.
func (b *BatchWriter) Flush() error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := b.w.WriteUpdates(b.buf); err != nil {
		return err
	}
	b.written += uint64(len(b.buf))
	b.buf = b.buf[:0]
	return nil
}

// Written returns the number of updates flushed so far.
func (b *BatchWriter) Written() uint64 { return b.written }

// ReadAll reads r batch by batch, calling fn for each update, until the next
// breakpoint (registered or end of stream). It returns the number of updates
// passed to fn. An error from fn stops the read and is returned as is.
func ReadAll(r Reader, fn func(Update) error) (uint64, error) {
	buf := make([]Update, BatchSize)
	var count uint64
	for {
		n, err := r.ReadUpdates(buf)
		if err != nil {
			return count, err
		}
		for _, u := range buf[:n] {
			if u.Type == Breakpoint {
				return count, nil
			}
			if err := fn(u); err != nil {
				return count, err
			}
			count++
		}
	}
}

// Collect reads r up to the next breakpoint into a slice.
func Collect(r Reader) ([]Update, error) {
	out := make([]Update, 0, min(r.Updates(), 1<<20))
	_, err := ReadAll(r, func(u Update) error {
		out = append(out, u)
		return nil
	})
	return out, err
}

// Copy writes src's header and every update up to the next breakpoint to dst.
func Copy(dst Writer, src Reader) (uint64, error) {
	if err := dst.WriteHeader(src.Vertices(), src.Updates()); err != nil {
		return 0, err
	}
	bw := NewBatchWriter(dst, BatchSize)
	if _, err := ReadAll(src, bw.Add); err != nil {
		return bw.Written(), err
	}
	if err := bw.Flush(); err != nil {
		return bw.Written(), err
	}
	return bw.Written(), nil
}
