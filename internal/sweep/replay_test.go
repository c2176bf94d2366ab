package sweep

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReplayCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.csv")
	cw, err := CreateCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	for i, jammed := range []bool{true, true, false, true} {
		r := sampleRecord()
		r.IsJammed = jammed
		r.ScanCoordinate = float64(10 + i)
		r.RxJamDistance = float64(10+i) - 0.3
		_ = cw.WriteRecord(r)
	}
	_ = cw.Close()

	rec := NewRecorder()
	sum, err := ReplayCSVFile(path, ReplayMeta{Axis: AxisJam, Organ: "heart-402", Threshold: 0.05}, rec)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Count != 4 || sum.Jammed != 3 || !sum.Safe {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.SafeCoordinate != 12 || sum.SafeDistance != 11.7 {
		t.Fatalf("safe = %v / %v", sum.SafeCoordinate, sum.SafeDistance)
	}
	got := rec.Records()
	if len(got) != 4 || got[0].SweepID == "" || got[0].SweepID != sum.SweepID || got[3].Index != 3 || got[1].Organ != "heart-402" {
		t.Fatalf("replayed %+v", got)
	}
}

func TestReplayMissingFile(t *testing.T) {
	if _, err := ReplayCSVFile(filepath.Join(t.TempDir(), "nope.csv"), ReplayMeta{}, nil); !os.IsNotExist(err) {
		t.Fatalf("err = %v", err)
	}
}
