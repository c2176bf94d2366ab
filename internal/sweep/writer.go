package sweep

import "sync"

// Writer receives sweep records in sweep order.
type Writer interface {
	WriteRecord(Record) error
}

// Optional: writers can accept several records at once.
type batchWriter interface {
	WriteRecords([]Record) error
}

// WriteAll sends rows to w, in one batch when w supports it.
func WriteAll(w Writer, rows []Record) error {
	if bw, ok := w.(batchWriter); ok {
		return bw.WriteRecords(rows)
	}
	for _, r := range rows {
		if err := w.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// MultiWriter fans records out to several writers and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter, skipping nil writers.
func NewMultiWriter(ws ...Writer) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Add appends w.
func (mw *MultiWriter) Add(w Writer) {
	if w != nil {
		mw.writers = append(mw.writers, w)
	}
}

// Len is the number of attached writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// WriteRecord sends a record to all writers.
func (mw *MultiWriter) WriteRecord(r Record) error {
	for _, w := range mw.writers {
		if err := w.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecords sends records to all writers, using batch mode if supported.
func (mw *MultiWriter) WriteRecords(rows []Record) error {
	for _, w := range mw.writers {
		if err := WriteAll(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// Recorder keeps every record in memory for the admin server.
type Recorder struct {
	mu      sync.RWMutex
	records []Record
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// WriteRecord implements Writer.
func (r *Recorder) WriteRecord(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Sweep returns the records of one sweep in index order.
func (r *Recorder) Sweep(id string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for _, rec := range r.records {
		if rec.SweepID == id {
			out = append(out, rec)
		}
	}
	return out
}

// SweepIDs lists the recorded sweeps in first-seen order.
func (r *Recorder) SweepIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	var ids []string
	for _, rec := range r.records {
		if !seen[rec.SweepID] {
			seen[rec.SweepID] = true
			ids = append(ids, rec.SweepID)
		}
	}
	return ids
}

// Reset drops every record.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
