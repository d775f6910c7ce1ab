package models

import (
	"strings"
	"time"
)

const (
	AttachmentTypeLink = "SUBMISSION_TYPE_LINK"
	UnknownStudentName = "Unknown Student"
)

type Attachment struct {
	URL  string `json:"URL"`
	Type string `json:"type"`
}

// SubmissionRecord is one entry of the submission listing. Score is nil when
// the platform has not graded the entry; SubmittedAt is empty when the entry
// was never submitted.
type SubmissionRecord struct {
	UserSerial  string       `json:"userSerial"`
	Description string       `json:"description"`
	Score       *float64     `json:"score"`
	SubmittedAt string       `json:"submittedAt"`
	Attachments []Attachment `json:"submissions"`
	Feedback    string       `json:"feedback"`
}

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// SubmittedTime parses SubmittedAt. Timestamps without a zone are wall-clock
// times in loc (time.Local when nil).
func (r SubmissionRecord) SubmittedTime(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(r.SubmittedAt)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SubmittedMillis is the sort key used for ordering a student's submissions.
// Missing or unparseable timestamps count as the epoch.
func (r SubmissionRecord) SubmittedMillis(loc *time.Location) int64 {
	t, ok := r.SubmittedTime(loc)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}
