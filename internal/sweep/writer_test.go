package sweep

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingWriter struct{ calls int }

func (f *failingWriter) WriteRecord(Record) error {
	f.calls++
	return errors.New("boom")
}

type batchRecorder struct {
	Recorder
	batches int
}

func (b *batchRecorder) WriteRecords(rows []Record) error {
	b.batches++
	for _, r := range rows {
		_ = b.WriteRecord(r)
	}
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a, b := NewRecorder(), &batchRecorder{}
	mw := NewMultiWriter(a, nil, b)
	if mw.Len() != 2 {
		t.Fatalf("len = %d", mw.Len())
	}
	if err := mw.WriteRecord(sampleRecord()); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteRecords([]Record{sampleRecord(), sampleRecord()}); err != nil {
		t.Fatal(err)
	}
	if len(a.Records()) != 3 || len(b.Records()) != 3 {
		t.Fatalf("a=%d b=%d", len(a.Records()), len(b.Records()))
	}
	if b.batches != 1 {
		t.Fatalf("batch path not used: %d", b.batches)
	}
}

func TestMultiWriterStopsOnError(t *testing.T) {
	f := &failingWriter{}
	after := NewRecorder()
	mw := NewMultiWriter(f, after)
	if err := mw.WriteRecord(sampleRecord()); err == nil {
		t.Fatal("expected error")
	}
	if len(after.Records()) != 0 {
		t.Fatal("writer after failure was called")
	}
}

func TestRecorderSweeps(t *testing.T) {
	r := NewRecorder()
	for _, id := range []string{"a", "a", "b"} {
		rec := sampleRecord()
		rec.SweepID = id
		_ = r.WriteRecord(rec)
	}
	if ids := r.SweepIDs(); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("ids = %v", ids)
	}
	if len(r.Sweep("a")) != 2 {
		t.Fatal("sweep a should have two records")
	}
	r.Reset()
	if len(r.Records()) != 0 {
		t.Fatal("reset kept records")
	}
}

func TestFileWriterJSONL(t *testing.T) {
	dir := t.TempDir()
	recPath := filepath.Join(dir, "points.jsonl")
	sumPath := filepath.Join(dir, "summary.jsonl")
	fw, err := NewFileWriter(recPath, sumPath)
	if err != nil {
		t.Fatal(err)
	}
	rec := sampleRecord()
	rec.SweepID = "s1"
	rec.Axis = AxisJam
	if err := fw.WriteRecords([]Record{rec, rec}); err != nil {
		t.Fatal(err)
	}
	if err := fw.WriteSummary(Summary{SweepID: "s1", Safe: true, SafeDistance: 15.7}); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(recPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	lines := 0
	for sc.Scan() {
		var got Record
		if err := json.Unmarshal(sc.Bytes(), &got); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if got.Axis != AxisJam || got.SweepID != "s1" {
			t.Fatalf("decoded %+v", got)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("lines = %d", lines)
	}
	data, _ := os.ReadFile(sumPath)
	if !strings.Contains(string(data), `"safe_distance":15.7`) {
		t.Fatalf("summary = %s", data)
	}
}

func TestFileWriterWithoutSummary(t *testing.T) {
	fw, err := NewFileWriter(filepath.Join(t.TempDir(), "p.jsonl"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer fw.Close()
	if err := fw.WriteSummary(Summary{}); err != nil {
		t.Fatalf("summary without file should be a no-op: %v", err)
	}
}

func TestStdoutWriterPlain(t *testing.T) {
	var buf bytes.Buffer
	w := &StdoutWriter{out: &buf}
	rec := sampleRecord()
	rec.Index = 4
	if err := w.WriteRecord(rec); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected colour codes: %q", out)
	}
	for _, want := range []string{"[004]", "rx=0.3", "JAMMED", "p2=0.020"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	buf.Reset()
	_ = w.WriteSummary(Summary{Safe: true, Axis: AxisJam, SafeDistance: 15.7, Threshold: 0.05})
	if !strings.Contains(buf.String(), "15.7 m") {
		t.Fatalf("summary = %q", buf.String())
	}
}

func TestStdoutWriterColor(t *testing.T) {
	var buf bytes.Buffer
	w := &StdoutWriter{out: &buf, color: true}
	_ = w.WriteRecord(sampleRecord())
	if !strings.Contains(buf.String(), colorRed+"JAMMED"+colorReset) {
		t.Fatalf("expected red status, got %q", buf.String())
	}
}

func TestJSONStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	_ = w.WriteRecord(sampleRecord())
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["is_jammed"] != true || got["axis"] != "rx" {
		t.Fatalf("decoded %v", got)
	}
}
