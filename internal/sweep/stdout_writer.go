// Writers printing sweep records to STDOUT
package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

// StdoutWriter prints one line per record, colorized when attached to a terminal.
type StdoutWriter struct {
	out   io.Writer
	color bool
}

// NewStdoutWriter creates a StdoutWriter writing to os.Stdout.
func NewStdoutWriter() *StdoutWriter {
	return &StdoutWriter{out: os.Stdout, color: term.IsTerminal(int(os.Stdout.Fd()))}
}

func (w *StdoutWriter) paint(c, s string) string {
	if !w.color {
		return s
	}
	return c + s + colorReset
}

// WriteRecord implements Writer.
func (w *StdoutWriter) WriteRecord(r Record) error {
	status := w.paint(colorGreen, "clear")
	if r.IsJammed {
		status = w.paint(colorRed, "JAMMED")
	}
	_, err := fmt.Fprintf(w.out, "%s %s %s %s %s %s %s\n",
		w.paint(colorGray, fmt.Sprintf("[%03d]", r.Index)),
		w.paint(colorBlue, fmt.Sprintf("%s=%s", r.Axis, FormatFloat(r.ScanCoordinate))),
		w.paint(colorCyan, fmt.Sprintf("tx-rx=%sm rx-jam=%sm", FormatFloat(r.TxRxDistance), FormatFloat(r.RxJamDistance))),
		w.paint(colorYellow, fmt.Sprintf("body=%sdBm jam=%sdBm", FormatFloat(r.BodyRxPowerDbm), FormatFloat(r.JamRxPowerDbm))),
		fmt.Sprintf("p1=%.3f", r.NoJamSuccessRate),
		fmt.Sprintf("p2=%.3f", r.JamSuccessRate),
		status,
	)
	return err
}

// WriteSummary prints the outcome line.
func (w *StdoutWriter) WriteSummary(s Summary) error {
	c := colorRed
	if s.Safe {
		c = colorGreen
	}
	_, err := fmt.Fprintln(w.out, w.paint(c, s.Report()))
	return err
}

// JSONStdoutWriter prints records as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteRecord outputs a record in JSON format.
func (w *JSONStdoutWriter) WriteRecord(r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
