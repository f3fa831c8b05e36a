package sources

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/pkg/projects"
)

type stubSource struct {
	id   ID
	name string
}

func (s stubSource) ID() ID       { return s.id }
func (s stubSource) Name() string { return s.name }
func (s stubSource) Fetch(context.Context) ([]projects.Candidate, error) {
	return nil, nil
}

func TestIDs(t *testing.T) {
	for _, id := range IDs() {
		assert.True(t, id.IsValid())
	}
	assert.False(t, ID("sourceforge").IsValid())
	assert.Equal(t, "github", GitHubID.String())
}

func TestSourcesFilter(t *testing.T) {
	srcs := NewSources(
		stubSource{GitHubID, "github"},
		stubSource{GitLabID, "gitlab:gitlab.com"},
	)
	srcs.Add(stubSource{GitLabID, "gitlab:salsa.debian.org"})

	assert.Equal(t, 3, srcs.Len())
	assert.Len(t, srcs.Filter(), 3)

	gitlab := srcs.Filter(GitLabID)
	require.Len(t, gitlab, 2)
	assert.Equal(t, "gitlab:gitlab.com", gitlab[0].Name())
	assert.Equal(t, "gitlab:salsa.debian.org", gitlab[1].Name())

	assert.Len(t, srcs.List(), 3, "filtering must not modify the container")
}

type raw struct {
	Name string
	Fork bool
}

func adaptRaw(r raw) (projects.Candidate, bool) {
	if r.Fork || r.Name == "" {
		return projects.Candidate{}, false
	}
	return projects.NewCandidate(r.Name), true
}

func batches(pages [][]raw, failAfter int) iter.Seq2[[]raw, error] {
	return func(yield func([]raw, error) bool) {
		for i, p := range pages {
			if failAfter >= 0 && i == failAfter {
				yield(nil, errors.New("connection reset"))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func TestCollect(t *testing.T) {
	pages := [][]raw{
		{{Name: "Foo"}, {Name: "foo-fork", Fork: true}},
		{{Name: ""}, {Name: "Bar Baz"}},
	}

	got, err := Collect(context.Background(), batches(pages, -1), adaptRaw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "foo", got[0].Name)
	assert.Equal(t, "bar-baz", got[1].Name)
}

func TestCollectKeepsPartialResults(t *testing.T) {
	pages := [][]raw{
		{{Name: "one"}},
		{{Name: "two"}},
		{{Name: "three"}},
	}

	got, err := Collect(context.Background(), batches(pages, 2), adaptRaw)
	require.Error(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[1].Name)
}

func TestSingle(t *testing.T) {
	got, err := Collect(context.Background(), Single([]raw{{Name: "x"}}, nil), adaptRaw)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = Collect(context.Background(), Single[raw](nil, errors.New("unreadable")), adaptRaw)
	require.Error(t, err)
	assert.Empty(t, got)
}
