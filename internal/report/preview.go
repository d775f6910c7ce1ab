package report

import (
	"strconv"
	"strings"

	"github.com/RubachokBoss/submission-report/internal/models"
)

const (
	DefaultPreviewRows     = 5
	previewFeedbackMaxRune = 60
	placeholder            = "—"
)

type Summary struct {
	Students    int `json:"students"`
	Submissions int `json:"submissions"`
	Files       int `json:"files"`
}

type PreviewRow struct {
	Student     string `json:"student"`
	Submissions int    `json:"submissions"`
	Score       string `json:"score"`
	Feedback    string `json:"feedback"`
}

func Summarize(students []models.StudentAggregate) Summary {
	summary := Summary{Students: len(students)}
	for _, student := range students {
		summary.Submissions += len(student.Submissions)
		summary.Files += student.FileCount()
	}
	return summary
}

// Preview returns plain-text rows for the first limit students. The values
// are not escaped; callers printing them into markup must do so.
func Preview(students []models.StudentAggregate, limit int) []PreviewRow {
	if limit <= 0 || limit > len(students) {
		limit = len(students)
	}

	rows := make([]PreviewRow, 0, limit)
	for _, student := range students[:limit] {
		row := PreviewRow{
			Student:     student.Name,
			Submissions: len(student.Submissions),
			Score:       placeholder,
			Feedback:    placeholder,
		}
		if row.Student == "" {
			row.Student = placeholder
		}
		if latest, ok := student.Latest(); ok {
			if latest.Score != nil {
				row.Score = formatScore(*latest.Score)
			}
			if latest.Feedback != "" {
				row.Feedback = truncate(latest.Feedback, previewFeedbackMaxRune)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (r PreviewRow) Cells() []string {
	return []string{r.Student, strconv.Itoa(r.Submissions), r.Score, r.Feedback}
}

func truncate(value string, maxLength int) string {
	trimmed := strings.TrimSpace(value)
	runes := []rune(trimmed)
	if len(runes) <= maxLength {
		return trimmed
	}
	return string(runes[:maxLength-1]) + "…"
}
