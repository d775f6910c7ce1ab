package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/service/integration"
)

var (
	groupParamCandidates = []string{"groupSerial", "groupSerials", "group"}

	structurePattern   = regexp.MustCompile(`Node-[A-Z0-9]+`)
	groupSerialPattern = regexp.MustCompile(`GRP-[A-Z0-9]+`)
)

// Serials identify the group and assignment structure a run reports on.
type Serials struct {
	GroupSerial       string `json:"group_serial"`
	StructureSerial   string `json:"structure_serial"`
	GroupDetected     bool   `json:"group_detected"`
	StructureDetected bool   `json:"structure_detected"`
}

func (s Serials) Complete() bool {
	return s.GroupSerial != "" && s.StructureSerial != ""
}

// Validate refuses incomplete context instead of guessing.
func (s Serials) Validate() error {
	switch {
	case s.GroupSerial == "" && s.StructureSerial == "":
		return &errs.ConfigError{Message: "unable to resolve group and structure serials; keep the assignment page active or configure defaults"}
	case s.GroupSerial == "":
		return &errs.ConfigError{Field: "group_serial", Message: "not detected; open the assignment page or configure a default"}
	case s.StructureSerial == "":
		return &errs.ConfigError{Field: "structure_serial", Message: "not detected; open the assignment page or configure a default"}
	}
	return nil
}

type ContextResolver interface {
	Resolve(ctx context.Context) (Serials, error)
}

// StaticResolver returns configured serials unchanged.
type StaticResolver struct {
	GroupSerial     string
	StructureSerial string
}

func (r StaticResolver) Resolve(context.Context) (Serials, error) {
	return Serials{GroupSerial: r.GroupSerial, StructureSerial: r.StructureSerial}, nil
}

// PageResolver detects serials from an assignment page URL and, when the URL
// does not carry both, from the page markup fetched through the session.
type PageResolver struct {
	PageURL     string
	AllowedHost string
	Transport   integration.Transport
	Logger      zerolog.Logger
}

func (r PageResolver) Resolve(ctx context.Context) (Serials, error) {
	var serials Serials
	if strings.TrimSpace(r.PageURL) == "" {
		return serials, nil
	}

	pageURL, err := url.Parse(r.PageURL)
	if err != nil {
		r.Logger.Warn().Err(err).Str("page_url", r.PageURL).Msg("Ignoring unparseable page URL")
		return serials, nil
	}
	if r.AllowedHost != "" && !strings.EqualFold(pageURL.Hostname(), r.AllowedHost) {
		r.Logger.Debug().Str("host", pageURL.Hostname()).Msg("Page is not on the platform host")
		return serials, nil
	}

	query := pageURL.Query()
	serials.StructureSerial = query.Get("serial")
	for _, key := range groupParamCandidates {
		if value := query.Get(key); value != "" {
			serials.GroupSerial = value
			break
		}
	}

	if !serials.Complete() && r.Transport != nil {
		r.scrapeBody(ctx, pageURL.String(), &serials)
	}

	return serials, nil
}

func (r PageResolver) scrapeBody(ctx context.Context, pageURL string, serials *Serials) {
	resp, err := r.Transport.Get(ctx, pageURL)
	if err != nil {
		r.Logger.Warn().Err(err).Msg("Failed to load assignment page for serial detection")
		return
	}
	if resp.Status < 200 || resp.Status > 299 {
		r.Logger.Warn().Int("status", resp.Status).Msg("Assignment page returned non-success status")
		return
	}

	body := string(resp.Body)
	if serials.StructureSerial == "" {
		serials.StructureSerial = structurePattern.FindString(body)
	}
	if serials.GroupSerial == "" {
		serials.GroupSerial = groupSerialPattern.FindString(body)
	}
}

// ChainResolver takes each serial from the first resolver that yields it.
// Values from the Detect resolver are flagged as detected; values from
// Defaults are not.
type ChainResolver struct {
	Detect   ContextResolver
	Defaults ContextResolver
}

func (r ChainResolver) Resolve(ctx context.Context) (Serials, error) {
	var result Serials

	if r.Detect != nil {
		detected, err := r.Detect.Resolve(ctx)
		if err != nil {
			return Serials{}, err
		}
		result.GroupSerial = detected.GroupSerial
		result.StructureSerial = detected.StructureSerial
		result.GroupDetected = detected.GroupSerial != ""
		result.StructureDetected = detected.StructureSerial != ""
	}

	if r.Defaults != nil && !result.Complete() {
		defaults, err := r.Defaults.Resolve(ctx)
		if err != nil {
			return Serials{}, err
		}
		if result.GroupSerial == "" {
			result.GroupSerial = defaults.GroupSerial
		}
		if result.StructureSerial == "" {
			result.StructureSerial = defaults.StructureSerial
		}
	}

	return result, nil
}

// SelectionResolver builds the resolver for a run started with an explicit
// selection. Explicit serials win over serials detected from pageURL, which
// win over defaults. It returns nil when the selection is empty so the
// pipeline falls back to its configured resolver.
func SelectionResolver(group, structure, pageURL string, page PageResolver, defaults ContextResolver) ContextResolver {
	group, structure, pageURL = strings.TrimSpace(group), strings.TrimSpace(structure), strings.TrimSpace(pageURL)
	if group == "" && structure == "" && pageURL == "" {
		return nil
	}

	page.PageURL = pageURL
	return ChainResolver{
		Detect: ChainResolver{
			Detect:   StaticResolver{GroupSerial: group, StructureSerial: structure},
			Defaults: page,
		},
		Defaults: defaults,
	}
}
