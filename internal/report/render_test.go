package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/models"
)

func score(v float64) *float64 { return &v }

func fixedOptions() Options {
	return Options{
		GeneratedAt: time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		Location:    time.UTC,
		Title:       "Test Report",
	}
}

func sampleStudents() []models.StudentAggregate {
	return []models.StudentAggregate{
		{
			UserSerial:  "USR-A",
			GroupSerial: "GRP-1",
			Name:        "Alice",
			Email:       "alice@example.com",
			Submissions: []models.SubmissionRecord{
				{
					UserSerial:  "USR-A",
					Description: "second try\nwith fixes",
					Score:       score(92.5),
					SubmittedAt: "2024-03-02T10:00:00Z",
					Feedback:    "Great",
					Attachments: []models.Attachment{
						{URL: "https://cdn.example/a.png", Type: "SUBMISSION_TYPE_PNG"},
						{URL: "https://example.com/doc", Type: "SUBMISSION_TYPE_LINK"},
					},
				},
				{
					UserSerial:  "USR-A",
					SubmittedAt: "2024-03-01T10:00:00Z",
					Attachments: []models.Attachment{{URL: "https://cdn.example/a.pdf", Type: "SUBMISSION_TYPE_PDF"}},
				},
			},
		},
		{
			UserSerial:  "USR-B",
			Name:        "Bob",
			Submissions: []models.SubmissionRecord{{UserSerial: "USR-B"}},
		},
	}
}

func TestRenderEmpty(t *testing.T) {
	_, err := Render(nil, fixedOptions())
	require.Error(t, err)
	assert.True(t, errs.IsEmptyData(err))

	_, err = Render([]models.StudentAggregate{}, fixedOptions())
	assert.True(t, errs.IsEmptyData(err))
}

func TestRenderHeaderAndCounts(t *testing.T) {
	doc, err := Render(sampleStudents(), fixedOptions())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!doctype html>"))
	assert.Contains(t, doc, "<title>Test Report</title>")
	assert.Contains(t, doc, "Generated at Mar 5, 2024, 2:30:00 PM · 2 students · 3 submission entries · 3 files")
	assert.NotContains(t, doc, "@media print")
	assert.NotContains(t, doc, "window.print()")
}

func TestRenderStudentRows(t *testing.T) {
	doc, err := Render(sampleStudents(), fixedOptions())
	require.NoError(t, err)

	assert.Contains(t, doc, "<strong>Alice</strong>")
	assert.Contains(t, doc, "<small>alice@example.com</small>")
	assert.Contains(t, doc, `<small class="muted">User Serial: USR-A</small>`)
	assert.Contains(t, doc, `<small class="muted">Group Serial: GRP-1</small>`)
	assert.Contains(t, doc, "<td>92.5</td>")
	assert.Contains(t, doc, "<td>Great</td>")

	// Bob has one submission: inline card, no score, no feedback, no group serial.
	bob := doc[strings.Index(doc, "<strong>Bob</strong>"):]
	assert.NotContains(t, bob, "Group Serial")
	assert.Contains(t, bob, `<span class="muted">No score</span>`)
	assert.Contains(t, bob, `<span class="muted">No feedback</span>`)
	assert.Contains(t, bob, `<span class="muted">Not submitted</span>`)
	assert.Contains(t, bob, `<span class="muted">No description provided.</span>`)
	assert.Contains(t, bob, `<span class="muted">No files</span>`)
	assert.NotContains(t, bob, "<details")
}

func TestRenderMultipleSubmissionsCollapsible(t *testing.T) {
	doc, err := Render(sampleStudents(), fixedOptions())
	require.NoError(t, err)

	assert.Contains(t, doc, "<summary>2 submissions</summary>")
	first := strings.Index(doc, "<strong>Submission 1</strong>")
	second := strings.Index(doc, "<strong>Submission 2</strong>")
	require.True(t, first >= 0 && second > first)
	assert.Contains(t, doc, "Submitted: Mar 2, 2024, 10:00:00 AM")
	assert.Contains(t, doc, "second try<br />with fixes")
}

func TestRenderStylesCardHeaderAndToggle(t *testing.T) {
	doc, err := Render(sampleStudents(), fixedOptions())
	require.NoError(t, err)

	assert.Contains(t, doc, ".submission-card header span {")
	assert.Contains(t, doc, ".submission-card header strong {\n        font-weight: 700;")
	assert.Contains(t, doc, "summary::marker {\n        color: #005ea8;")
	assert.Contains(t, doc, "<span><strong>Submission 1</strong></span>")
}

func TestRenderAttachments(t *testing.T) {
	doc, err := Render(sampleStudents(), fixedOptions())
	require.NoError(t, err)

	assert.Contains(t, doc, `<a href="https://cdn.example/a.png" target="_blank" rel="noopener">SUBMISSION_TYPE_PNG 1.1</a>`)
	assert.Contains(t, doc, `<img src="https://cdn.example/a.png" alt="Alice submission image 1.1" loading="lazy" />`)
	assert.Contains(t, doc, `SUBMISSION_TYPE_LINK 1.2: <a href="https://example.com/doc" target="_blank" rel="noopener">Open link</a>`)
	assert.Contains(t, doc, `SUBMISSION_TYPE_PDF 2.1: <a href="https://cdn.example/a.pdf" target="_blank" rel="noopener">Download file</a>`)
}

func TestRenderAttachmentFallbackLabel(t *testing.T) {
	markup := renderAttachment(models.Attachment{URL: "u"}, "Zed", 3, 4)
	assert.Equal(t, `<div>File 3.4: <a href="u" target="_blank" rel="noopener">Download file</a></div>`, markup)
}

func TestImageTypeMatchesSubstrings(t *testing.T) {
	for _, kind := range []string{"png", "SUBMISSION_TYPE_JPG", "image/jpeg", "GIF", "webp", "XJPEGX"} {
		assert.True(t, isImageType(kind), kind)
	}
	for _, kind := range []string{"", "PDF", "SUBMISSION_TYPE_LINK", "JPX"} {
		assert.False(t, isImageType(kind), kind)
	}
	assert.True(t, isLinkType("submission_type_link"))
}

func TestRenderEscapesUserContent(t *testing.T) {
	students := []models.StudentAggregate{{
		UserSerial: `"><script>x</script>`,
		Name:       `<img src=x onerror=alert(1)>`,
		Email:      `a'b@example.com`,
		Submissions: []models.SubmissionRecord{{
			Description: "<b>bold</b>",
			Feedback:    `</td><td>`,
			Attachments: []models.Attachment{
				{URL: "javascript:alert(`x`)\" onmouseover=\"y", Type: "<PNG>"},
			},
		}},
	}}

	doc, err := Render(students, fixedOptions())
	require.NoError(t, err)

	assert.NotContains(t, doc, "<script>x</script>")
	assert.NotContains(t, doc, "<img src=x")
	assert.NotContains(t, doc, "<b>bold</b>")
	assert.NotContains(t, doc, `" onmouseover="`)
	assert.Contains(t, doc, "&lt;img src=x onerror=alert(1)&gt;")
	assert.Contains(t, doc, "a&#39;b@example.com")
	assert.Contains(t, doc, "&lt;/td&gt;&lt;td&gt;")
	assert.Contains(t, doc, `href="javascript:alert(&#96;x&#96;)&quot; onmouseover=&quot;y"`)
	assert.Contains(t, doc, "&lt;PNG&gt; 1.1")
	assert.Contains(t, doc, `alt="&lt;img src=x onerror=alert(1)&gt; submission image 1.1"`)
}

func TestRenderPrintMode(t *testing.T) {
	opts := fixedOptions()
	opts.PrintMode = true

	doc, err := Render(sampleStudents(), opts)
	require.NoError(t, err)

	assert.Contains(t, doc, "@page { margin: 12mm; }")
	assert.Contains(t, doc, "@media print")
	assert.Contains(t, doc, `<script>window.addEventListener("load",()=>{window.focus();window.print();});</script>`)
}

func TestRenderNameFallback(t *testing.T) {
	doc, err := Render([]models.StudentAggregate{{
		UserSerial:  "U1",
		Submissions: []models.SubmissionRecord{{}},
	}}, fixedOptions())
	require.NoError(t, err)
	assert.Contains(t, doc, "<strong>—</strong>")
}

func TestRenderDefaultsTitle(t *testing.T) {
	doc, err := Render(sampleStudents(), Options{Location: time.UTC})
	require.NoError(t, err)
	assert.Contains(t, doc, "<h1>"+DefaultTitle+"</h1>")
}

func TestRenderZonelessTimestampKeepsWallClock(t *testing.T) {
	students := []models.StudentAggregate{{
		UserSerial:  "USR-C",
		Name:        "Cara",
		Submissions: []models.SubmissionRecord{{UserSerial: "USR-C", SubmittedAt: "2024-04-09T10:15:00"}},
	}}
	opts := fixedOptions()
	opts.Location = time.FixedZone("UTC+7", 7*60*60)

	doc, err := Render(students, opts)
	require.NoError(t, err)
	assert.Contains(t, doc, "Submitted: Apr 9, 2024, 10:15:00 AM")
}
