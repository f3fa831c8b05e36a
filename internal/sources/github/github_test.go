package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/internal/transport"
	"github.com/louib/panbuild/pkg/errors"
	"github.com/louib/panbuild/pkg/sources"
)

func loadTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// newServer serves the two testdata pages. When failSecond is set the
// second page answers with a server error.
func newServer(t *testing.T, failSecond bool) *httptest.Server {
	t.Helper()
	page1 := loadTestdata(t, "repositories_page1.json")
	page2 := loadTestdata(t, "repositories_page2.json")

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("since") {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repositories?since=27>; rel="next", <%s/repositories{?since}>; rel="first"`, srv.URL, srv.URL))
			_, _ = w.Write(page1)
		case "27":
			if failSecond {
				http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write(page2)
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAdapt(t *testing.T) {
	desc := "A widget."
	c, ok := Adapt(Repository{
		Name:        "Widget",
		FullName:    "acme/widget",
		Description: &desc,
		HTMLURL:     "https://github.com/acme/widget",
	})
	require.True(t, ok)

	assert.Equal(t, "widget", c.Name)
	assert.Equal(t, "A widget.", c.Description)
	assert.Equal(t, []string{"https://github.com/acme/widget"}, c.URLs)
	assert.Equal(t, []string{
		"git@github.com:acme/widget.git",
		"https://github.com/acme/widget.git",
	}, c.VCSURLs)
	assert.Empty(t, c.Tags)
}

func TestAdaptSkips(t *testing.T) {
	_, ok := Adapt(Repository{Name: "widget", FullName: "other/widget", Fork: true})
	assert.False(t, ok, "forks are skipped")

	_, ok = Adapt(Repository{FullName: "acme/"})
	assert.False(t, ok, "unnamed repositories are skipped")
}

func TestAdaptWithoutFullName(t *testing.T) {
	c, ok := Adapt(Repository{Name: "widget", HTMLURL: "https://github.com/acme/widget"})
	require.True(t, ok)
	assert.Empty(t, c.VCSURLs)
	assert.Empty(t, c.Description)
}

func TestFetch(t *testing.T) {
	srv := newServer(t, false)
	src := New(transport.New("github"), WithURL(srv.URL+"/repositories"))

	assert.Equal(t, sources.GitHubID, src.ID())

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"grit", "merb-core", "god"}, names)
	assert.Equal(t, []string{"git@github.com:mojombo/god.git", "https://github.com/mojombo/god.git"}, got[2].VCSURLs)
	assert.Empty(t, got[2].Description)
}

func TestFetchKeepsRecordsOnTransportError(t *testing.T) {
	srv := newServer(t, true)
	src := New(transport.New("github"), WithURL(srv.URL+"/repositories"))

	got, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Len(t, got, 2)
}

func TestFetchMalformedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "not a list"`))
	}))
	defer srv.Close()

	got, err := New(transport.New("github"), WithURL(srv.URL)).Fetch(context.Background())
	assert.True(t, errors.IsParseError(err))
	assert.Empty(t, got)
}
