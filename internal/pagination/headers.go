package pagination

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Response headers emitted for every list endpoint.
const (
	HeaderPageNumber = "X-Page-Number"
	HeaderPageSize   = "X-Page-Size"
	HeaderTotalCount = "X-Total-Count"
)

// SetHeaders writes the element counters and, when the result set is
// non-empty, an RFC 5988 Link header onto w. Relation URLs are derived
// from requestURL with its page parameter replaced and size pinned to the
// current page size; every other query parameter is preserved.
func SetHeaders[T any](w http.ResponseWriter, p *Page[T], requestURL *url.URL) {
	w.Header().Set(HeaderPageNumber, strconv.Itoa(p.Number))
	w.Header().Set(HeaderPageSize, strconv.Itoa(p.Size))
	w.Header().Set(HeaderTotalCount, strconv.FormatInt(p.TotalElements, 10))

	if link := LinkHeader(p, requestURL); link != "" {
		w.Header().Set("Link", link)
	}
}

// LinkHeader renders the navigation relations in the fixed order first,
// last, prev, next; prev and next are omitted when inapplicable. An empty
// result set (TotalPages == 0) yields no link value at all.
func LinkHeader[T any](p *Page[T], requestURL *url.URL) string {
	if p.TotalPages == 0 {
		return ""
	}

	lastPage := p.TotalPages - 1
	if lastPage < 0 {
		lastPage = 0
	}

	links := []string{
		relation(requestURL, 0, p.Size, "first"),
		relation(requestURL, lastPage, p.Size, "last"),
	}
	if p.HasPrevious() {
		links = append(links, relation(requestURL, p.Number-1, p.Size, "prev"))
	}
	if p.HasNext() {
		links = append(links, relation(requestURL, p.Number+1, p.Size, "next"))
	}

	return strings.Join(links, ", ")
}

func relation(requestURL *url.URL, page, size int, rel string) string {
	u := *requestURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()

	return fmt.Sprintf("<%s>; rel=%q", u.String(), rel)
}
