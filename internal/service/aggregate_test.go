package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/submission-report/internal/models"
)

func names(students []models.StudentAggregate) []string {
	out := make([]string, len(students))
	for i, s := range students {
		out[i] = s.Name
	}
	return out
}

func TestAggregateEndToEndFixture(t *testing.T) {
	groups := []models.GroupMember{
		{UserSerial: "A", GroupSerial: "GRP-1", Name: "Zoe Walker", Email: "zoe@example.com"},
		{UserSerial: "B", GroupSerial: "GRP-1", Name: "Adam Brown"},
	}
	submissions := []models.SubmissionRecord{
		{UserSerial: "A", Description: "first", SubmittedAt: "2024-02-01T08:00:00Z"},
		{UserSerial: "B", Description: "only"},
		{UserSerial: "A", Description: "second", SubmittedAt: "2024-02-03T08:00:00Z"},
	}

	students := Aggregate(groups, submissions)
	require.Len(t, students, 2)

	assert.Equal(t, "Adam Brown", students[0].Name)
	assert.Equal(t, "B", students[0].UserSerial)
	require.Len(t, students[0].Submissions, 1)

	assert.Equal(t, "Zoe Walker", students[1].Name)
	assert.Equal(t, "zoe@example.com", students[1].Email)
	assert.Equal(t, "GRP-1", students[1].GroupSerial)
	require.Len(t, students[1].Submissions, 2)
	assert.Equal(t, "second", students[1].Submissions[0].Description)
	assert.Equal(t, "first", students[1].Submissions[1].Description)
}

func TestAggregateOneEntryPerSubmittingUser(t *testing.T) {
	groups := []models.GroupMember{{UserSerial: "U1", Name: "One"}, {UserSerial: "U2", Name: "Two"}, {UserSerial: "U3", Name: "Three"}}
	submissions := []models.SubmissionRecord{
		{UserSerial: "U1"}, {UserSerial: "U2"}, {UserSerial: "U1"}, {UserSerial: "U1"}, {UserSerial: "U2"},
	}

	students := Aggregate(groups, submissions)
	require.Len(t, students, 2)

	serials := map[string]int{}
	for _, s := range students {
		serials[s.UserSerial]++
	}
	assert.Equal(t, map[string]int{"U1": 1, "U2": 1}, serials)
	assert.Empty(t, Aggregate(groups, nil))
}

func TestAggregateNameSortIsCaseInsensitive(t *testing.T) {
	groups := []models.GroupMember{{UserSerial: "1", Name: "bob"}, {UserSerial: "2", Name: "Alice"}}
	submissions := []models.SubmissionRecord{{UserSerial: "1"}, {UserSerial: "2"}}

	assert.Equal(t, []string{"Alice", "bob"}, names(Aggregate(groups, submissions)))
}

func TestAggregateNameSortIgnoresAccentsAndIsStable(t *testing.T) {
	groups := []models.GroupMember{
		{UserSerial: "1", Name: "émile"},
		{UserSerial: "2", Name: "Emile"},
		{UserSerial: "3", Name: "Dana"},
		{UserSerial: "4", Name: "Fay"},
	}
	submissions := []models.SubmissionRecord{{UserSerial: "4"}, {UserSerial: "1"}, {UserSerial: "2"}, {UserSerial: "3"}}

	assert.Equal(t, []string{"Dana", "émile", "Emile", "Fay"}, names(Aggregate(groups, submissions)))
}

func TestAggregateSubmissionOrder(t *testing.T) {
	submissions := []models.SubmissionRecord{
		{UserSerial: "U", Description: "missing"},
		{UserSerial: "U", Description: "tie-1", SubmittedAt: "2024-05-01T00:00:00Z"},
		{UserSerial: "U", Description: "newest", SubmittedAt: "2024-06-01T00:00:00Z"},
		{UserSerial: "U", Description: "garbage", SubmittedAt: "not a date"},
		{UserSerial: "U", Description: "tie-2", SubmittedAt: "2024-05-01T00:00:00Z"},
	}

	students := Aggregate(nil, submissions)
	require.Len(t, students, 1)

	var order []string
	for _, s := range students[0].Submissions {
		order = append(order, s.Description)
	}
	assert.Equal(t, []string{"newest", "tie-1", "tie-2", "missing", "garbage"}, order)
}

func TestAggregateUnknownStudent(t *testing.T) {
	students := Aggregate(
		[]models.GroupMember{{UserSerial: "known", Name: "Known"}},
		[]models.SubmissionRecord{{UserSerial: "ghost", Description: "x"}},
	)
	require.Len(t, students, 1)
	assert.Equal(t, "ghost", students[0].UserSerial)
	assert.Equal(t, models.UnknownStudentName, students[0].Name)
	assert.Empty(t, students[0].GroupSerial)
	assert.Empty(t, students[0].Email)
}

func TestAggregateNameFallbacks(t *testing.T) {
	groups := []models.GroupMember{
		{UserSerial: "1", UserName: "handle"},
		{UserSerial: "2"},
	}
	students := Aggregate(groups, []models.SubmissionRecord{{UserSerial: "1"}, {UserSerial: "2"}})
	assert.ElementsMatch(t, []string{"handle", models.UnknownStudentName}, names(students))
}

func TestAggregateLastMemberWins(t *testing.T) {
	groups := []models.GroupMember{
		{UserSerial: "1", Name: "Old", GroupSerial: "GRP-OLD"},
		{UserSerial: "1", Name: "New", GroupSerial: "GRP-NEW"},
	}
	students := Aggregate(groups, []models.SubmissionRecord{{UserSerial: "1"}})
	require.Len(t, students, 1)
	assert.Equal(t, "New", students[0].Name)
	assert.Equal(t, "GRP-NEW", students[0].GroupSerial)
}

func TestAggregateDoesNotAliasInput(t *testing.T) {
	score := 10.0
	submissions := []models.SubmissionRecord{{
		UserSerial:  "1",
		Score:       &score,
		Attachments: []models.Attachment{{URL: "a", Type: "PDF"}},
	}}

	students := Aggregate(nil, submissions)
	submissions[0].Attachments[0].URL = "changed"
	score = 99

	assert.Equal(t, "a", students[0].Submissions[0].Attachments[0].URL)
	assert.Equal(t, 10.0, *students[0].Submissions[0].Score)
}

func TestAggregateInReadsZonelessTimestampsInLocation(t *testing.T) {
	submissions := []models.SubmissionRecord{
		{UserSerial: "U", Description: "zoned", SubmittedAt: "2024-04-09T05:00:00Z"},
		{UserSerial: "U", Description: "local", SubmittedAt: "2024-04-09T09:00:00"},
	}

	utc := AggregateIn(nil, submissions, time.UTC)
	assert.Equal(t, "local", utc[0].Submissions[0].Description)

	jakarta := AggregateIn(nil, submissions, time.FixedZone("UTC+7", 7*60*60))
	assert.Equal(t, "zoned", jakarta[0].Submissions[0].Description)
}
