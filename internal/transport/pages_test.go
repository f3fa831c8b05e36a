package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/louib/panbuild/pkg/errors"
)

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: ""},
		{
			name:   "github style",
			header: `<https://api.github.com/repositories?since=369>; rel="next", <https://api.github.com/repositories{?since}>; rel="first"`,
			want:   "https://api.github.com/repositories?since=369",
		},
		{
			name:   "next not first",
			header: `<https://x/?page=1>; rel="prev", <https://x/?page=3>; rel="next"`,
			want:   "https://x/?page=3",
		},
		{name: "unquoted", header: `<https://x/?page=2>; rel=next`, want: "https://x/?page=2"},
		{name: "multiple rels", header: `<https://x/?page=2>; rel="next last"`, want: "https://x/?page=2"},
		{name: "only last", header: `<https://x/?page=9>; rel="last"`, want: ""},
		{name: "malformed", header: `https://x/?page=2; rel="next"`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextLink(tt.header))
		})
	}
}

// linkServer serves three pages linked with Link headers.
func linkServer(t *testing.T, failOn int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "panbuild", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		if page == failOn {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		if page < 3 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next"`, srv.URL, page+1))
		}
		fmt.Fprintf(w, `[%d]`, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPagesFollowsLinkHeader(t *testing.T) {
	srv := linkServer(t, 0)
	c := New("test")

	var bodies []string
	for page, err := range c.Pages(context.Background(), srv.URL+"/items", LinkNext) {
		require.NoError(t, err)
		bodies = append(bodies, string(page.Body))
	}
	assert.Equal(t, []string{"[1]", "[2]", "[3]"}, bodies)
}

func TestPagesIsRestartable(t *testing.T) {
	srv := linkServer(t, 0)
	seq := New("test").Pages(context.Background(), srv.URL+"/items", LinkNext)

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 3, count())
	assert.Equal(t, 3, count())
}

func TestPagesIsLazy(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Link", `</next>; rel="next"`)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	for page, err := range New("test").Pages(context.Background(), srv.URL+"/start", LinkNext) {
		require.NoError(t, err)
		if page.Number == 2 {
			break
		}
	}
	assert.Equal(t, 2, requests)
}

func TestPagesStopsOnTransportError(t *testing.T) {
	srv := linkServer(t, 2)

	var (
		pages   int
		lastErr error
	)
	for page, err := range New("test").Pages(context.Background(), srv.URL+"/items", LinkNext) {
		if err != nil {
			lastErr = err
			continue
		}
		pages++
		assert.Equal(t, 1, page.Number)
	}
	assert.Equal(t, 1, pages)
	require.Error(t, lastErr)
	assert.True(t, errors.IsTransport(lastErr))
	assert.ErrorIs(t, lastErr, errors.ErrSourceUnavailable)

	var apiErr *errors.APIError
	require.ErrorAs(t, lastErr, &apiErr)
	assert.Equal(t, "test", apiErr.Source)
	assert.Contains(t, apiErr.Endpoint, "page=2")
}

func TestNextPageHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		next := ""
		if page < 3 {
			next = strconv.Itoa(page + 1)
		}
		w.Header().Set("X-Next-Page", next)
		fmt.Fprintf(w, `[%d]`, page)
	}))
	defer srv.Close()

	var bodies []string
	next := NextPageHeader("x-next-page", "page")
	for page, err := range New("gitlab").Pages(context.Background(), srv.URL+"/api/v4/projects?per_page=100&page=1", next) {
		require.NoError(t, err)
		bodies = append(bodies, string(page.Body))
	}
	assert.Equal(t, []string{"[1]", "[2]", "[3]"}, bodies)
}

func TestNextPageHeaderFallsBackToLink(t *testing.T) {
	p := &Page{
		Number: 1,
		URL:    "https://gitlab.example/api/v4/projects",
		Header: http.Header{"Link": []string{`</api/v4/projects?id_after=42>; rel="next"`}},
	}
	u, ok := NextPageHeader("x-next-page", "page")(p)
	require.True(t, ok)
	assert.Equal(t, "/api/v4/projects?id_after=42", u)
	assert.Equal(t, "https://gitlab.example/api/v4/projects?id_after=42", resolve(p.URL, u))
}

func TestStaticPages(t *testing.T) {
	mux := http.NewServeMux()
	for _, name := range []string{"a", "b", "c"} {
		mux.HandleFunc("/"+name+".json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `%q`, name)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	urls := []string{srv.URL + "/a.json", srv.URL + "/b.json", srv.URL + "/c.json"}
	var bodies []string
	for page, err := range New("homebrew").Pages(context.Background(), urls[0], StaticPages(urls)) {
		require.NoError(t, err)
		bodies = append(bodies, string(page.Body))
	}
	assert.Equal(t, []string{`"a"`, `"b"`, `"c"`}, bodies)
}

func TestDecodeJSON(t *testing.T) {
	var out []int
	require.NoError(t, DecodeJSON([]byte(`[1,2]`), "u", &out))
	assert.Equal(t, []int{1, 2}, out)

	err := DecodeJSON([]byte(`{`), "https://x/api", &out)
	assert.True(t, errors.IsParseError(err))
}

func TestClientOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/1.0", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Accept"))
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := New("debian", WithUserAgent("custom/1.0"), WithAccept(""), WithHTTPClient(srv.Client()))
	body, _, err := c.GetBody(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "debian", c.Source())
}
