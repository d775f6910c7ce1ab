package service

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/RubachokBoss/submission-report/internal/models"
)

// Aggregate joins submissions with group members by user serial. The result
// has one entry per distinct submitting user, ordered by name (case and
// accent insensitive); each entry's submissions are ordered newest first.
// Both sorts are stable. Timestamps without a zone are read in local time.
func Aggregate(groups []models.GroupMember, submissions []models.SubmissionRecord) []models.StudentAggregate {
	return AggregateIn(groups, submissions, time.Local)
}

// AggregateIn is Aggregate with zone-less timestamps read in loc.
func AggregateIn(groups []models.GroupMember, submissions []models.SubmissionRecord, loc *time.Location) []models.StudentAggregate {
	members := make(map[string]models.GroupMember, len(groups))
	for _, member := range groups {
		members[member.UserSerial] = member
	}

	index := make(map[string]int)
	var students []models.StudentAggregate

	for _, submission := range submissions {
		pos, seen := index[submission.UserSerial]
		if !seen {
			students = append(students, newStudent(submission.UserSerial, members))
			pos = len(students) - 1
			index[submission.UserSerial] = pos
		}
		students[pos].Submissions = append(students[pos].Submissions, normalizeSubmission(submission))
	}

	for i := range students {
		subs := students[i].Submissions
		sort.SliceStable(subs, func(a, b int) bool {
			return subs[a].SubmittedMillis(loc) > subs[b].SubmittedMillis(loc)
		})
	}

	collator := collate.New(language.English, collate.Loose)
	sort.SliceStable(students, func(a, b int) bool {
		return collator.CompareString(students[a].Name, students[b].Name) < 0
	})

	return students
}

func newStudent(userSerial string, members map[string]models.GroupMember) models.StudentAggregate {
	student := models.StudentAggregate{
		UserSerial: userSerial,
		Name:       models.UnknownStudentName,
	}

	member, ok := members[userSerial]
	if !ok {
		return student
	}

	student.GroupSerial = member.GroupSerial
	student.Email = member.Email
	if name := member.DisplayName(); name != "" {
		student.Name = name
	}
	return student
}

func normalizeSubmission(s models.SubmissionRecord) models.SubmissionRecord {
	attachments := make([]models.Attachment, len(s.Attachments))
	copy(attachments, s.Attachments)
	s.Attachments = attachments

	if s.Score != nil {
		score := *s.Score
		s.Score = &score
	}
	return s
}
