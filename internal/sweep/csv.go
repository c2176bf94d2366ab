package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultCSVDir is where relative CSV paths are placed.
const DefaultCSVDir = "output/scan"

// Header is the CSV column row.
var Header = []string{
	"rxX", "rxY", "txRxDistance", "rxJamDistance", "scanCoordinate",
	"bodyLossDb", "bodyRxPowerDbm", "jamRxPowerDbm", "jamLossDb",
	"noJamSuccessRate", "jamSuccessRate", "isJammed",
	"noJamPacketsRx", "jamPacketsRx", "jamPacketsFromJammerRx",
}

// FormatFloat renders v with six significant digits, the way stream output does.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Fields returns the CSV columns of r.
func (r Record) Fields() []string {
	return []string{
		FormatFloat(r.RxX),
		FormatFloat(r.RxY),
		FormatFloat(r.TxRxDistance),
		FormatFloat(r.RxJamDistance),
		FormatFloat(r.ScanCoordinate),
		FormatFloat(r.BodyLossDb),
		FormatFloat(r.BodyRxPowerDbm),
		FormatFloat(r.JamRxPowerDbm),
		FormatFloat(r.JamLossDb),
		FormatFloat(r.NoJamSuccessRate),
		FormatFloat(r.JamSuccessRate),
		boolField(r.IsJammed),
		strconv.FormatUint(uint64(r.NoJamPacketsRx), 10),
		strconv.FormatUint(uint64(r.JamPacketsRx), 10),
		strconv.FormatUint(uint64(r.JamPacketsFromJammerRx), 10),
	}
}

// CSVWriter writes the header once and flushes after every row, so rows written
// before an abort stay on disk.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter writes the header to out.
func NewCSVWriter(out io.Writer) (*CSVWriter, error) {
	cw := &CSVWriter{w: csv.NewWriter(out)}
	if c, ok := out.(io.Closer); ok {
		cw.closer = c
	}
	if err := cw.w.Write(Header); err != nil {
		return nil, err
	}
	cw.w.Flush()
	return cw, cw.w.Error()
}

// WriteRecord implements Writer.
func (c *CSVWriter) WriteRecord(r Record) error {
	if err := c.w.Write(r.Fields()); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if e := c.closer.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// ResolveCSVPath keeps absolute paths and places relative ones under dir.
// An empty request resolves to "".
func ResolveCSVPath(requested, dir string) string {
	if requested == "" {
		return ""
	}
	if filepath.IsAbs(requested) {
		return requested
	}
	return filepath.Join(dir, requested)
}

// CreateCSV creates the parent directory of path and opens a CSVWriter on it.
func CreateCSV(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, errors.New("empty CSV path")
	}
	if parent := filepath.Dir(path); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %q: %w", parent, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %q for writing: %w", path, err)
	}
	cw, err := NewCSVWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("write header to %q: %w", path, err)
	}
	return cw, nil
}

// ReadCSV parses a sweep CSV. Metadata not stored in the file is left zero.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty CSV")
		}
		return nil, err
	}
	for i, h := range Header {
		if head[i] != h {
			return nil, fmt.Errorf("unexpected column %d %q, want %q", i, head[i], h)
		}
	}
	var out []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec.Index = len(out)
		out = append(out, rec)
	}
}

func parseRow(row []string) (Record, error) {
	var rec Record
	floats := []*float64{
		&rec.RxX, &rec.RxY, &rec.TxRxDistance, &rec.RxJamDistance, &rec.ScanCoordinate,
		&rec.BodyLossDb, &rec.BodyRxPowerDbm, &rec.JamRxPowerDbm, &rec.JamLossDb,
		&rec.NoJamSuccessRate, &rec.JamSuccessRate,
	}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", Header[i], err)
		}
		*dst = v
	}
	switch row[11] {
	case "1":
		rec.IsJammed = true
	case "0":
	default:
		return rec, fmt.Errorf("isJammed: want 0 or 1, got %q", row[11])
	}
	counts := []*uint32{&rec.NoJamPacketsRx, &rec.JamPacketsRx, &rec.JamPacketsFromJammerRx}
	for i, dst := range counts {
		v, err := strconv.ParseUint(row[12+i], 10, 32)
		if err != nil {
			return rec, fmt.Errorf("%s: %w", Header[12+i], err)
		}
		*dst = uint32(v)
	}
	return rec, nil
}
