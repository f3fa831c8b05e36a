package transport

import (
	"context"
	"iter"
	"net/http"
	"net/url"
	"strings"
)

// Page is one response of a paginated traversal.
type Page struct {
	Number int
	URL    string
	Header http.Header
	Body   []byte
}

// NextFunc returns the URL of the page following current, or false when
// the registry indicates no further page.
type NextFunc func(current *Page) (string, bool)

// Pages returns a lazy sequence of pages starting at first. Each page is
// fetched only when the consumer asks for it, and ranging over the
// sequence again restarts from first. A transport failure is yielded once
// as the error of the final element.
func (c *Client) Pages(ctx context.Context, first string, next NextFunc) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		target := first
		for n := 1; target != ""; n++ {
			body, header, err := c.GetBody(ctx, target)
			if err != nil {
				yield(nil, err)
				return
			}
			page := &Page{Number: n, URL: target, Header: header, Body: body}
			if !yield(page, nil) {
				return
			}

			u, ok := next(page)
			if !ok {
				return
			}
			target = resolve(page.URL, u)
		}
	}
}

// StaticPages returns a NextFunc walking a fixed list of URLs, the first of
// which is the start of the traversal.
func StaticPages(urls []string) NextFunc {
	return func(current *Page) (string, bool) {
		if current.Number >= len(urls) {
			return "", false
		}
		return urls[current.Number], true
	}
}

// LinkNext follows the rel="next" entry of the Link header.
func LinkNext(current *Page) (string, bool) {
	u := NextLink(current.Header.Get("Link"))
	return u, u != ""
}

// NextPageHeader follows a page-number header such as GitLab's
// x-next-page, falling back to the Link header when it is absent.
func NextPageHeader(name, param string) NextFunc {
	return func(current *Page) (string, bool) {
		if _, present := current.Header[http.CanonicalHeaderKey(name)]; !present {
			return LinkNext(current)
		}
		nextPage := strings.TrimSpace(current.Header.Get(name))
		if nextPage == "" {
			return "", false
		}
		u, err := url.Parse(current.URL)
		if err != nil {
			return "", false
		}
		q := u.Query()
		q.Set(param, nextPage)
		u.RawQuery = q.Encode()
		return u.String(), true
	}
}

// NextLink extracts the rel="next" target of an RFC 8288 Link header.
func NextLink(header string) string {
	for _, link := range strings.Split(header, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		target := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range parts[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			for _, rel := range strings.Fields(strings.Trim(strings.TrimSpace(value), `"`)) {
				if strings.EqualFold(rel, "next") {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}

// resolve makes ref absolute relative to base.
func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
