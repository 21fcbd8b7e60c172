// Package sink handles the experiment's tabular I/O: appending result
// rows and loading question banks. Files use a semicolon delimiter
// because answer justifications routinely contain commas.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Row is one finished question run.
type Row struct {
	StudentName   string
	Studied       []string
	Model         string
	QnID          string
	Question      string
	FinalAnswer   string
	Justification string
	Confidence    float64
	Comment       string
	IsCorrect     bool
}

// TabularSink persists result rows. Appends are write-once: a row is
// never updated after it lands.
type TabularSink interface {
	Append(row Row) error
}

// Default column sets. Baseline runs carry the model identity so
// result files from different control arms can be told apart.
var (
	Columns = []string{
		"student_name", "studied", "qn_id", "question",
		"final_answer", "justification", "confidence_score", "comment", "is_correct",
	}
	ColumnsWithModel = []string{
		"student_name", "studied", "model", "qn_id", "question",
		"final_answer", "justification", "confidence_score", "comment", "is_correct",
	}
)

// CSVSink appends rows to a semicolon-delimited CSV file, writing the
// header only when it creates the file.
type CSVSink struct {
	path    string
	columns []string
}

// CSVOption customizes a CSV sink.
type CSVOption func(*CSVSink)

// WithColumns overrides the column set and order.
func WithColumns(columns []string) CSVOption {
	return func(s *CSVSink) {
		if len(columns) > 0 {
			s.columns = columns
		}
	}
}

// NewCSVSink creates a sink writing to path.
func NewCSVSink(path string, opts ...CSVOption) *CSVSink {
	s := &CSVSink{
		path:    path,
		columns: Columns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append writes one row, creating the file with a header row first if
// it does not exist yet.
func (s *CSVSink) Append(row Row) error {
	_, statErr := os.Stat(s.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("sink: open %s: %w", s.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if newFile {
		if err := w.Write(s.columns); err != nil {
			return fmt.Errorf("sink: write header: %w", err)
		}
	}

	values := row.fields()
	record := make([]string, len(s.columns))
	for i, col := range s.columns {
		record[i] = values[col]
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("sink: write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("sink: flush: %w", err)
	}
	return nil
}

func (r Row) fields() map[string]string {
	return map[string]string{
		"student_name":     r.StudentName,
		"studied":          strings.Join(r.Studied, ","),
		"model":            r.Model,
		"qn_id":            r.QnID,
		"question":         r.Question,
		"final_answer":     r.FinalAnswer,
		"justification":    r.Justification,
		"confidence_score": strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		"comment":          r.Comment,
		"is_correct":       strconv.FormatBool(r.IsCorrect),
	}
}
