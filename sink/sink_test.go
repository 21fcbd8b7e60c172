package sink

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestCSVSinkWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	sink := NewCSVSink(path)

	rows := []Row{
		{
			StudentName:   "StudentA",
			Studied:       []string{"Week1.pptx", "Week2.pptx"},
			QnID:          "q1",
			Question:      "What is X? A. one B. two",
			FinalAnswer:   "B",
			Justification: "The content says so, clearly.",
			Confidence:    0.85,
			Comment:       "Easy question.",
			IsCorrect:     true,
		},
		{
			StudentName: "StudentB",
			QnID:        "q1",
			FinalAnswer: "A",
			Confidence:  0.2,
			IsCorrect:   false,
		},
	}
	for _, row := range rows {
		if err := sink.Append(row); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}

	records := readAll(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}
	if strings.Join(records[0], ";") != strings.Join(Columns, ";") {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][0] != "StudentA" || records[1][1] != "Week1.pptx,Week2.pptx" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
	if records[1][4] != "B" || records[1][6] != "0.85" || records[1][8] != "true" {
		t.Fatalf("unexpected first row values: %v", records[1])
	}
	if records[2][0] != "StudentB" || records[2][8] != "false" {
		t.Fatalf("unexpected second row: %v", records[2])
	}
}

func TestCSVSinkModelColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.csv")
	sink := NewCSVSink(path, WithColumns(ColumnsWithModel))

	err := sink.Append(Row{
		StudentName: "Baseline",
		Model:       "weak_student",
		QnID:        "q1",
		FinalAnswer: "C",
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}

	records := readAll(t, path)
	if records[0][2] != "model" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][2] != "weak_student" {
		t.Fatalf("unexpected model value: %v", records[1])
	}
}

func TestCSVSinkAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	if err := NewCSVSink(path).Append(Row{StudentName: "A", QnID: "q1"}); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	// A fresh sink over the same path must not repeat the header.
	if err := NewCSVSink(path).Append(Row{StudentName: "B", QnID: "q2"}); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	records := readAll(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "student_name" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[2][0] != "B" {
		t.Fatalf("unexpected appended row: %v", records[2])
	}
}

func TestLoadQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	content := "qn_id;qn_week;qn_stem;qn_options;correct_option\n" +
		"q1;2;What is data analytics?;What is data analytics? A. collecting B. analyzing;B\n" +
		"q2;;No week given;Options here A. yes B. no;A\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	questions, err := LoadQuestions(path)
	if err != nil {
		t.Fatalf("LoadQuestions error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	q := questions[0]
	if q.ID != "q1" || q.Week != 2 || q.CorrectOption != "B" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if !strings.Contains(q.Options, "A. collecting") {
		t.Fatalf("unexpected options: %q", q.Options)
	}
	if questions[1].Week != 0 {
		t.Fatalf("missing week should stay zero, got %d", questions[1].Week)
	}
}

func TestLoadQuestionsMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.csv")
	if err := os.WriteFile(path, []byte("qn_id;qn_options\nq1;opts\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadQuestions(path); err == nil {
		t.Fatalf("expected error for missing correct_option column")
	}
}
