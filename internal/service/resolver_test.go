package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubachokBoss/submission-report/internal/errs"
	"github.com/RubachokBoss/submission-report/internal/service/integration"
)

type stubTransport struct {
	resp  *integration.Response
	err   error
	calls []string
}

func (s *stubTransport) Get(_ context.Context, rawURL string) (*integration.Response, error) {
	s.calls = append(s.calls, rawURL)
	return s.resp, s.err
}

func TestPageResolverFromQuery(t *testing.T) {
	transport := &stubTransport{}
	r := PageResolver{
		PageURL:     "https://cms.example.com/assignment?serial=Node-ABC1&groupSerials=GRP-XY9",
		AllowedHost: "cms.example.com",
		Transport:   transport,
		Logger:      zerolog.Nop(),
	}

	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Node-ABC1", serials.StructureSerial)
	assert.Equal(t, "GRP-XY9", serials.GroupSerial)
	assert.Empty(t, transport.calls)
}

func TestPageResolverGroupParamPriority(t *testing.T) {
	r := PageResolver{PageURL: "https://cms.example.com/a?serial=S&group=G3&groupSerial=G1&groupSerials=G2", Logger: zerolog.Nop()}
	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "G1", serials.GroupSerial)
}

func TestPageResolverScrapesBody(t *testing.T) {
	transport := &stubTransport{resp: &integration.Response{
		Status: 200,
		Body:   []byte(`<div data-x="GRP-7QK2">group</div><script>var s="Node-55AB";</script>`),
	}}
	r := PageResolver{
		PageURL:     "https://cms.example.com/assignment",
		AllowedHost: "cms.example.com",
		Transport:   transport,
		Logger:      zerolog.Nop(),
	}

	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Node-55AB", serials.StructureSerial)
	assert.Equal(t, "GRP-7QK2", serials.GroupSerial)
	assert.Len(t, transport.calls, 1)
}

func TestPageResolverIgnoresForeignHost(t *testing.T) {
	transport := &stubTransport{}
	r := PageResolver{
		PageURL:     "https://evil.example.net/?serial=Node-1&group=GRP-1",
		AllowedHost: "cms.example.com",
		Transport:   transport,
		Logger:      zerolog.Nop(),
	}

	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Serials{}, serials)
	assert.Empty(t, transport.calls)
}

func TestPageResolverScrapeFailureIsNotFatal(t *testing.T) {
	r := PageResolver{
		PageURL:   "https://cms.example.com/a?serial=Node-1",
		Transport: &stubTransport{err: errors.New("offline")},
		Logger:    zerolog.Nop(),
	}

	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Node-1", serials.StructureSerial)
	assert.Empty(t, serials.GroupSerial)
}

func TestChainResolverMarksDetected(t *testing.T) {
	r := ChainResolver{
		Detect:   StaticResolver{StructureSerial: "Node-D"},
		Defaults: StaticResolver{GroupSerial: "GRP-DEF", StructureSerial: "Node-DEF"},
	}

	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Serials{
		GroupSerial:       "GRP-DEF",
		StructureSerial:   "Node-D",
		GroupDetected:     false,
		StructureDetected: true,
	}, serials)
}

func TestSerialsValidate(t *testing.T) {
	assert.NoError(t, Serials{GroupSerial: "G", StructureSerial: "S"}.Validate())

	for _, s := range []Serials{{}, {GroupSerial: "G"}, {StructureSerial: "S"}} {
		err := s.Validate()
		require.Error(t, err)
		assert.True(t, errs.IsConfig(err))
	}
}

func TestSelectionResolver(t *testing.T) {
	defaults := StaticResolver{GroupSerial: "GRP-DEF", StructureSerial: "Node-DEF"}
	page := PageResolver{AllowedHost: "cms.example.com", Logger: zerolog.Nop()}

	assert.Nil(t, SelectionResolver(" ", "", "", page, defaults))

	r := SelectionResolver("GRP-REQ", "", "https://cms.example.com/a?serial=Node-PAGE&group=GRP-PAGE", page, defaults)
	serials, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GRP-REQ", serials.GroupSerial)
	assert.Equal(t, "Node-PAGE", serials.StructureSerial)

	r = SelectionResolver("", "Node-REQ", "", page, defaults)
	serials, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Serials{GroupSerial: "GRP-DEF", StructureSerial: "Node-REQ", StructureDetected: true}, serials)
}
