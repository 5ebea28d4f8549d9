package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
)

type fakeCheckService struct {
	report *driving.CheckReport
	req    driving.CheckRequest
}

func (f *fakeCheckService) Check(_ context.Context, req driving.CheckRequest) (*driving.CheckReport, error) {
	f.req = req
	return f.report, nil
}

func stubCheck(t *testing.T, report *driving.CheckReport) *fakeCheckService {
	t.Helper()
	svc := &fakeCheckService{report: report}
	old := newCheckService
	newCheckService = func() driving.CheckService { return svc }
	t.Cleanup(func() { newCheckService = old })
	return svc
}

func TestCheckCmd_Clean(t *testing.T) {
	svc := stubCheck(t, &driving.CheckReport{Documents: 3, Links: 5})

	out, err := runCLI(t, "check", "docs", "--start", "index.md")

	require.NoError(t, err)
	assert.Equal(t, "docs", svc.req.Folder)
	assert.Equal(t, "index.md", svc.req.Start)
	assert.Contains(t, out, "checked 5 links in 3 documents: 0 problems")
}

func TestCheckCmd_Problems(t *testing.T) {
	stubCheck(t, &driving.CheckReport{
		Documents: 2,
		Links:     3,
		Unresolved: []domain.LinkEdge{
			{Source: "index.md", Label: "old", Target: "old.md"},
		},
		Dangling: []domain.LinkEdge{
			{Source: "index.md", Fragment: "setup", Destination: "guide.md", AnchorID: "guide-1a2b3c4d"},
		},
	})

	out, err := runCLI(t, "check", "docs", "--start", "index.md")

	assert.ErrorIs(t, err, errProblemsFound)
	assert.Contains(t, out, "index.md: unresolved link [old](old.md)")
	assert.Contains(t, out, "index.md: no heading for #setup in guide.md")
	assert.Contains(t, out, "2 problems")
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 problem", plural(1, "problem"))
	assert.Equal(t, "0 problems", plural(0, "problem"))
	assert.Equal(t, "4 problems", plural(4, "problem"))
}
