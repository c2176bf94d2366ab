package sweep

import (
	"os"

	"github.com/google/uuid"
)

// ReplayMeta fills the metadata a CSV file does not carry.
type ReplayMeta struct {
	SweepID   string
	Axis      Axis
	Organ     string
	Threshold float64
}

// Replay stamps meta onto records, sends them to w and recomputes the summary.
// The jammed flag stored in the file is kept as recorded.
func Replay(records []Record, meta ReplayMeta, w Writer) (Summary, error) {
	if meta.SweepID == "" {
		meta.SweepID = uuid.NewString()
	}
	sum := Summary{SweepID: meta.SweepID, Axis: meta.Axis, Threshold: meta.Threshold}
	for i := range records {
		records[i].SweepID = meta.SweepID
		records[i].Axis = meta.Axis
		records[i].Organ = meta.Organ
		records[i].Threshold = meta.Threshold
	}
	if w != nil && len(records) > 0 {
		if err := WriteAll(w, records); err != nil {
			return sum, err
		}
	}
	for _, r := range records {
		sum.Count++
		if r.IsJammed {
			sum.Jammed++
		}
	}
	if d, ok := SafeDistance(records, meta.Axis); ok {
		sum.Safe = true
		sum.SafeDistance = d
		for _, r := range records {
			if !r.IsJammed {
				sum.SafeCoordinate = r.ScanCoordinate
				break
			}
		}
	}
	return sum, nil
}

// ReplayCSVFile reads a sweep CSV from path and replays it into w.
func ReplayCSVFile(path string, meta ReplayMeta, w Writer) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return Summary{}, err
	}
	return Replay(records, meta, w)
}
