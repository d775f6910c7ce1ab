// Package report turns student aggregates into a self-contained HTML
// document. Every fragment function escapes its own dynamic input.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/models"
)

const (
	DefaultTitle = "Assignment Submissions Report"

	timestampLayout = "Jan 2, 2006, 3:04:05 PM"
)

// Matches anywhere in the type string, so e.g. "SUBMISSION_TYPE_PNG" is an image.
var imageTypePattern = regexp.MustCompile(`(?i)PNG|JPE?G|GIF|WEBP`)

type Options struct {
	// PrintMode embeds print styles and triggers the browser print dialog on load.
	PrintMode   bool
	GeneratedAt time.Time
	Location    *time.Location
	Title       string
}

func (o Options) withDefaults() Options {
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if strings.TrimSpace(o.Title) == "" {
		o.Title = DefaultTitle
	}
	return o
}

// Render builds the report document. It refuses to render an empty report.
func Render(students []models.StudentAggregate, opts Options) (string, error) {
	if len(students) == 0 {
		return "", errs.NewEmptyData("No submission data available. Fetch data before exporting.")
	}
	return renderDocument(students, opts.withDefaults()), nil
}

func renderDocument(students []models.StudentAggregate, opts Options) string {
	summary := Summarize(students)

	rows := make([]string, 0, len(students))
	for _, student := range students {
		if row := renderStudentRow(student, opts.Location); row != "" {
			rows = append(rows, row)
		}
	}

	printStyles := ""
	if opts.PrintMode {
		printStyles = printCSS
	}
	autoPrint := ""
	if opts.PrintMode {
		autoPrint = `<script>window.addEventListener("load",()=>{window.focus();window.print();});</script>`
	}

	title := EscapeHTML(opts.Title)

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n  <head>\n    <meta charset=\"utf-8\" />\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", title)
	fmt.Fprintf(&b, "    <style>%s      %s\n    </style>\n  </head>\n  <body>\n", baseCSS, printStyles)
	b.WriteString("    <header>\n")
	fmt.Fprintf(&b, "      <h1>%s</h1>\n", title)
	fmt.Fprintf(&b, "      <p>Generated at %s · %d students · %d submission entries · %d files</p>\n",
		EscapeHTML(formatTimestamp(opts.GeneratedAt, opts.Location)),
		summary.Students,
		summary.Submissions,
		summary.Files,
	)
	b.WriteString("    </header>\n")
	b.WriteString(tableHead)
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n      </tbody>\n    </table>\n")
	fmt.Fprintf(&b, "    %s\n  </body>\n</html>", autoPrint)

	return b.String()
}

func renderStudentRow(student models.StudentAggregate, loc *time.Location) string {
	latest, ok := student.Latest()
	if !ok {
		return ""
	}

	name := student.Name
	if name == "" {
		name = "—"
	}

	scoreMarkup := `<span class="muted">No score</span>`
	if latest.Score != nil {
		scoreMarkup = EscapeHTML(formatScore(*latest.Score))
	}

	feedbackMarkup := `<span class="muted">No feedback</span>`
	if latest.Feedback != "" {
		feedbackMarkup = formatMultiline(latest.Feedback)
	}

	var meta strings.Builder
	fmt.Fprintf(&meta, "\n              <strong>%s</strong>", EscapeHTML(name))
	if student.Email != "" {
		fmt.Fprintf(&meta, "\n              <small>%s</small>", EscapeHTML(student.Email))
	}
	fmt.Fprintf(&meta, "\n              <small class=\"muted\">User Serial: %s</small>", EscapeHTML(student.UserSerial))
	if student.GroupSerial != "" {
		fmt.Fprintf(&meta, "\n              <small class=\"muted\">Group Serial: %s</small>", EscapeHTML(student.GroupSerial))
	}

	return fmt.Sprintf(`        <tr>
          <td>
            <div class="student-meta">%s
            </div>
          </td>
          <td>%s</td>
          <td>%s</td>
          <td>%s</td>
        </tr>`, meta.String(), renderSubmissionList(student, loc), scoreMarkup, feedbackMarkup)
}

func renderSubmissionList(student models.StudentAggregate, loc *time.Location) string {
	if len(student.Submissions) == 1 {
		return renderSubmissionCard(student.Submissions[0], student.Name, 1, loc)
	}

	var cards strings.Builder
	for i, submission := range student.Submissions {
		cards.WriteString(renderSubmissionCard(submission, student.Name, i+1, loc))
	}

	return fmt.Sprintf(`<details open>
            <summary>%d submissions</summary>
            <div class="submission-list">%s</div>
          </details>`, len(student.Submissions), cards.String())
}

func renderSubmissionCard(submission models.SubmissionRecord, studentName string, index int, loc *time.Location) string {
	submittedAt := `<span class="muted">Not submitted</span>`
	if submission.SubmittedAt != "" {
		if t, ok := submission.SubmittedTime(loc); ok {
			submittedAt = EscapeHTML(formatTimestamp(t, loc))
		} else {
			submittedAt = EscapeHTML(submission.SubmittedAt)
		}
	}

	description := `<span class="muted">No description provided.</span>`
	if submission.Description != "" {
		description = formatMultiline(submission.Description)
	}

	return fmt.Sprintf(`<article class="submission-card">
            <header>
              <span><strong>Submission %d</strong></span>
              <span>Submitted: %s</span>
            </header>
            <div>%s</div>
            %s
          </article>`, index, submittedAt, description, renderAttachments(submission.Attachments, studentName, index))
}

func renderAttachments(attachments []models.Attachment, studentName string, submissionIndex int) string {
	if len(attachments) == 0 {
		return `<div class="attachments"><span class="muted">No files</span></div>`
	}

	var items strings.Builder
	for i, attachment := range attachments {
		items.WriteString(renderAttachment(attachment, studentName, submissionIndex, i+1))
	}
	return `<div class="attachments">` + items.String() + `</div>`
}

func renderAttachment(attachment models.Attachment, studentName string, submissionIndex, fileIndex int) string {
	safeURL := EscapeAttribute(attachment.URL)

	kind := attachment.Type
	if kind == "" {
		kind = "File"
	}
	label := EscapeHTML(fmt.Sprintf("%s %d.%d", kind, submissionIndex, fileIndex))

	switch {
	case isImageType(attachment.Type):
		alt := EscapeAttribute(fmt.Sprintf("%s submission image %d.%d", studentName, submissionIndex, fileIndex))
		return fmt.Sprintf(`<div>
              <div><a href="%s" target="_blank" rel="noopener">%s</a></div>
              <img src="%s" alt="%s" loading="lazy" />
            </div>`, safeURL, label, safeURL, alt)
	case isLinkType(attachment.Type):
		return fmt.Sprintf(`<div>%s: <a href="%s" target="_blank" rel="noopener">Open link</a></div>`, label, safeURL)
	default:
		return fmt.Sprintf(`<div>%s: <a href="%s" target="_blank" rel="noopener">Download file</a></div>`, label, safeURL)
	}
}

func isImageType(kind string) bool {
	return imageTypePattern.MatchString(kind)
}

func isLinkType(kind string) bool {
	return strings.ToUpper(kind) == models.AttachmentTypeLink
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timestampLayout)
}

const tableHead = `    <table>
      <thead>
        <tr>
          <th style="width: 25%">Student</th>
          <th style="width: 10%">Submissions</th>
          <th style="width: 15%">Score</th>
          <th style="width: 30%">Feedback</th>
        </tr>
      </thead>
      <tbody>
`

const printCSS = `@page { margin: 12mm; } @media print { body { background: white; padding: 12mm; } table { box-shadow: none; } }`

const baseCSS = `
      :root {
        color-scheme: light;
        font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
      }
      body {
        margin: 0;
        padding: 24px;
        background: #f5f7fa;
      }
      header {
        margin-bottom: 24px;
      }
      h1 {
        margin: 0 0 8px;
        font-size: 22px;
      }
      table {
        width: 100%;
        border-collapse: collapse;
        background: white;
        border-radius: 8px;
        overflow: hidden;
        box-shadow: 0 2px 6px rgba(0, 0, 0, 0.1);
      }
      thead {
        background: #005ea8;
        color: white;
      }
      th, td {
        padding: 12px;
        text-align: left;
        vertical-align: top;
        border-bottom: 1px solid rgba(0, 0, 0, 0.08);
      }
      tr:last-child td {
        border-bottom: none;
      }
      .muted {
        color: rgba(0, 0, 0, 0.6);
        font-style: italic;
      }
      .student-meta {
        display: flex;
        flex-direction: column;
        gap: 4px;
      }
      .student-meta small {
        color: rgba(0, 0, 0, 0.6);
      }
      .submission-list {
        display: flex;
        flex-direction: column;
        gap: 12px;
      }
      .submission-card {
        border: 1px solid rgba(0, 0, 0, 0.1);
        border-radius: 6px;
        padding: 12px;
        background: rgba(0, 0, 0, 0.02);
      }
      .submission-card header {
        margin: 0 0 8px;
        font-weight: 600;
        display: flex;
        gap: 12px;
        flex-wrap: wrap;
      }
      .submission-card header span {
        display: flex;
        gap: 6px;
      }
      .submission-card header strong {
        font-weight: 700;
      }
      .attachments {
        margin-top: 8px;
        display: grid;
        gap: 12px;
      }
      .attachments img {
        max-width: 260px;
        width: 100%;
        border: 1px solid rgba(0, 0, 0, 0.1);
        border-radius: 4px;
      }
      summary {
        cursor: pointer;
      }
      summary::marker {
        color: #005ea8;
      }
      a {
        color: #005ea8;
      }
`
