package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Question is one multiple-choice exam question as stored in the
// question bank CSV.
type Question struct {
	ID            string
	Week          int
	Stem          string
	Options       string
	CorrectOption string
}

// LoadQuestions parses a semicolon-delimited question bank. Expected
// columns: qn_id, qn_week, qn_stem, qn_options, correct_option.
func LoadQuestions(path string) ([]Question, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sink: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("sink: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, required := range []string{"qn_id", "qn_options", "correct_option"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("sink: question file missing column %q", required)
		}
	}

	var questions []Question
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sink: read question row: %w", err)
		}

		q := Question{
			ID:            field(record, index, "qn_id"),
			Stem:          field(record, index, "qn_stem"),
			Options:       field(record, index, "qn_options"),
			CorrectOption: field(record, index, "correct_option"),
		}
		if raw := field(record, index, "qn_week"); raw != "" {
			week, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("sink: question %s: bad qn_week %q", q.ID, raw)
			}
			q.Week = week
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}
