package sweep

import (
	"encoding/json"
	"os"
)

// FileWriter writes sweep records and summaries to JSONL files.
type FileWriter struct {
	recFile *os.File
	sumFile *os.File
	recEnc  *json.Encoder
	sumEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to skip summaries.
func NewFileWriter(recordPath, summaryPath string) (*FileWriter, error) {
	rf, err := os.Create(recordPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{recFile: rf, recEnc: json.NewEncoder(rf)}
	if summaryPath != "" {
		sf, err := os.Create(summaryPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.sumFile = sf
		fw.sumEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteRecord logs a single record.
func (f *FileWriter) WriteRecord(r Record) error {
	return f.recEnc.Encode(r)
}

// WriteRecords logs multiple records.
func (f *FileWriter) WriteRecords(rows []Record) error {
	for _, r := range rows {
		if err := f.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs a finished sweep, if enabled.
func (f *FileWriter) WriteSummary(s Summary) error {
	if f.sumEnc == nil {
		return nil
	}
	return f.sumEnc.Encode(s)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.recFile != nil {
		if e := f.recFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.sumFile != nil {
		if e := f.sumFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// SummaryWriter receives the summary once a sweep ends.
type SummaryWriter interface {
	WriteSummary(Summary) error
}
