package models

// StudentAggregate joins a group member with every submission they made.
// Submissions are ordered newest first.
type StudentAggregate struct {
	UserSerial  string             `json:"userSerial"`
	GroupSerial string             `json:"groupSerial"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Submissions []SubmissionRecord `json:"submissions"`
}

func (s StudentAggregate) Latest() (SubmissionRecord, bool) {
	if len(s.Submissions) == 0 {
		return SubmissionRecord{}, false
	}
	return s.Submissions[0], true
}

func (s StudentAggregate) FileCount() int {
	total := 0
	for _, sub := range s.Submissions {
		total += len(sub.Attachments)
	}
	return total
}
