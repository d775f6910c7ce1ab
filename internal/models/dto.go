package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Platform response envelopes. Pointer fields distinguish a missing key from
// an empty value so that a malformed response can be rejected.

type UserGroupsEnvelope struct {
	Data *UserGroupsData `json:"data"`
}

type UserGroupsData struct {
	UserGroups *[]GroupMember `json:"userGroups"`
	Pagination *Pagination    `json:"pagination"`
}

type Pagination struct {
	TotalPage PageCount `json:"totalPage"`
}

type UserSubmissionsEnvelope struct {
	Data *UserSubmissionsData `json:"data"`
}

type UserSubmissionsData struct {
	UserSubmissions *[]SubmissionRecord `json:"userSubmissions"`
}

// PageCount accepts a JSON number, a numeric string or null. Anything that
// is not a number decodes to zero. Totals too large for an int32, including
// +Inf, saturate at math.MaxInt32 so page limits still apply.
type PageCount int

func (p *PageCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	f, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange):
		*p = 0
	case math.IsNaN(f) || f < 1:
		*p = 0
	case f >= math.MaxInt32:
		*p = math.MaxInt32
	default:
		*p = PageCount(int(f))
	}
	return nil
}

// HTTP API payloads

type RunResponse struct {
	RunID       string     `json:"run_id"`
	DataRunID   string     `json:"data_run_id,omitempty"`
	Phase       string     `json:"phase"`
	GroupSerial string     `json:"group_serial,omitempty"`
	Structure   string     `json:"structure_serial,omitempty"`
	Students    int        `json:"students"`
	Submissions int        `json:"submissions"`
	Files       int        `json:"files"`
	HasData     bool       `json:"has_data"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type StartRunRequest struct {
	GroupSerial     string `json:"group_serial"`
	StructureSerial string `json:"structure_serial"`
	PageURL         string `json:"page_url"`
}

type PublishRequest struct {
	Format string `json:"format"`
	Print  bool   `json:"print"`
}

type PublishResponse struct {
	Location string `json:"location"`
	Format   string `json:"format"`
	Size     int    `json:"size"`
}

// Document is a rendered report ready for delivery.
type Document struct {
	Name        string
	Format      string
	ContentType string
	Body        []byte
}
