package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pavelanni/gradesheet/internal/model"
)

var leadingColumns = []string{"Student Name", "Timestamp", "University ID", "Email", "Score", "Percentage", "Grade"}

// CSVHeader returns the delimited-text header columns.
func CSVHeader() []string {
	header := append([]string(nil), leadingColumns...)
	for q := 1; q <= model.NumQuestions; q++ {
		p := model.QuestionField(q)
		header = append(header, p+" Student Answer", p+" Correct Answer", p+" Result")
	}
	return header
}

// WriteCSV writes one header line and one line per student. Text values are always
// quoted with embedded quotes doubled; score and percentage are written bare.
func WriteCSV(w io.Writer, results []model.StudentResult) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(CSVHeader(), ","))
	bw.WriteByte('\n')

	for _, r := range results {
		fields := []string{
			quote(r.Name),
			quote(r.Timestamp),
			quote(r.UniversityID),
			quote(r.Email),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Percentage) + "%",
			quote(r.Grade),
		}
		for _, e := range r.Evaluation {
			fields = append(fields, quote(e.StudentAnswer), quote(e.CorrectAnswer), quote(e.ResultLabel()))
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
