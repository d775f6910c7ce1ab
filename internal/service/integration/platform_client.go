package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/metrics"
	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/rs/zerolog"
)

const (
	EndpointUserGroups      = "user-groups"
	EndpointUserSubmissions = "user-submissions"

	userGroupsPath      = "/api/v3/user-group/group/undefined/users"
	userSubmissionsPath = "/api/v3/exam/user-submission/list"
	userGroupStatus     = "USER_GROUP_ACTIVE_BY_PERIOD_FILTER"

	maxErrorBody = 512
)

type Response struct {
	Status int
	Body   []byte
}

// Transport issues GET requests carrying the platform session. Non-success
// statuses are returned as a Response, not as an error.
type Transport interface {
	Get(ctx context.Context, rawURL string) (*Response, error)
}

type TransportOptions struct {
	Tenant   string
	Country  string
	Platform string
	// Cookie is the ambient session cookie header, passed through untouched.
	Cookie  string
	Timeout time.Duration
}

type httpTransport struct {
	headers http.Header
	client  *http.Client
	logger  zerolog.Logger
}

func NewHTTPTransport(opts TransportOptions, logger zerolog.Logger) Transport {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Tenantname", opts.Tenant)
	headers.Set("Country", opts.Country)
	headers.Set("Platform", opts.Platform)
	headers.Set("With-Auth", "true")
	if opts.Cookie != "" {
		headers.Set("Cookie", opts.Cookie)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpTransport{
		headers: headers,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (t *httpTransport) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = t.headers.Clone()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			t.logger.Warn().Err(cerr).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

type GroupPage struct {
	Members    []models.GroupMember
	TotalPages int
}

// PlatformClient wraps the two listing endpoints the report is built from.
type PlatformClient interface {
	ListUserGroups(ctx context.Context, groupSerial string, page, pageSize int) (*GroupPage, error)
	ListUserSubmissions(ctx context.Context, structureSerial string, userSerials []string) ([]models.SubmissionRecord, error)
}

type platformClient struct {
	baseURL   string
	tenant    string
	transport Transport
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewPlatformClient(baseURL, tenant string, transport Transport, m *metrics.Metrics, logger zerolog.Logger) PlatformClient {
	return &platformClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tenant:    tenant,
		transport: transport,
		metrics:   m,
		logger:    logger,
	}
}

func (c *platformClient) ListUserGroups(ctx context.Context, groupSerial string, page, pageSize int) (*GroupPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("groupSerials", groupSerial)
	query.Set("withUserData", "true")
	query.Set("status", userGroupStatus)
	query.Set("userId", "")
	query.Set("userSerial", "")

	var envelope models.UserGroupsEnvelope
	if err := c.getJSON(ctx, EndpointUserGroups, c.baseURL+userGroupsPath+"?"+query.Encode(), &envelope); err != nil {
		return nil, err
	}

	if envelope.Data == nil {
		return nil, c.protocolError(EndpointUserGroups, errors.New(`missing "data" object`))
	}
	if envelope.Data.UserGroups == nil {
		return nil, c.protocolError(EndpointUserGroups, errors.New(`missing "data.userGroups" array`))
	}

	result := &GroupPage{Members: *envelope.Data.UserGroups}
	if envelope.Data.Pagination != nil {
		result.TotalPages = int(envelope.Data.Pagination.TotalPage)
	}

	c.metrics.ObserveRecords(EndpointUserGroups, len(result.Members))
	c.logger.Debug().
		Str("group_serial", groupSerial).
		Int("page", page).
		Int("total_pages", result.TotalPages).
		Int("members", len(result.Members)).
		Msg("User group page fetched")

	return result, nil
}

func (c *platformClient) ListUserSubmissions(ctx context.Context, structureSerial string, userSerials []string) ([]models.SubmissionRecord, error) {
	query := url.Values{}
	query.Set("structureSerial", structureSerial)
	query.Set("tenant", c.tenant)
	for _, serial := range userSerials {
		query.Add("userSerials", serial)
	}

	var envelope models.UserSubmissionsEnvelope
	if err := c.getJSON(ctx, EndpointUserSubmissions, c.baseURL+userSubmissionsPath+"?"+query.Encode(), &envelope); err != nil {
		return nil, err
	}

	if envelope.Data == nil {
		return nil, c.protocolError(EndpointUserSubmissions, errors.New(`missing "data" object`))
	}
	if envelope.Data.UserSubmissions == nil {
		return nil, c.protocolError(EndpointUserSubmissions, errors.New(`missing "data.userSubmissions" array`))
	}

	submissions := *envelope.Data.UserSubmissions
	c.metrics.ObserveRecords(EndpointUserSubmissions, len(submissions))
	c.logger.Debug().
		Str("structure_serial", structureSerial).
		Int("user_serials", len(userSerials)).
		Int("submissions", len(submissions)).
		Msg("Submission chunk fetched")

	return submissions, nil
}

func (c *platformClient) getJSON(ctx context.Context, endpoint, rawURL string, dst interface{}) error {
	resp, err := c.transport.Get(ctx, rawURL)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, "transport_error")
		return &errs.NetworkError{Endpoint: endpoint, Err: err}
	}

	if resp.Status < 200 || resp.Status > 299 {
		c.metrics.ObserveRequest(endpoint, "bad_status")
		return &errs.NetworkError{
			Endpoint: endpoint,
			Status:   resp.Status,
			Body:     snippet(resp.Body),
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(resp.Body))
	if err := decoder.Decode(dst); err != nil {
		c.metrics.ObserveRequest(endpoint, "bad_payload")
		return c.protocolError(endpoint, fmt.Errorf("failed to decode response: %w", err))
	}

	c.metrics.ObserveRequest(endpoint, "ok")
	return nil
}

func (c *platformClient) protocolError(endpoint string, err error) error {
	c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("Unexpected platform response")
	return &errs.ProtocolError{Endpoint: endpoint, Err: err}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
