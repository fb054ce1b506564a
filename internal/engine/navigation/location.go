package navigation

import (
	"net/url"
	"strings"
)

const (
	// QueryParam carries the active id in the query string.
	QueryParam = "testResultId"
	// PathPrefix addresses a record by path segment.
	PathPrefix = "/test-result/"
)

// FromLocation extracts the requested id from ?testResultId=<id> or
// /test-result/<id>. The query parameter wins when both are present.
func FromLocation(u *url.URL) string {
	if u == nil {
		return ""
	}
	if id := strings.TrimSpace(u.Query().Get(QueryParam)); id != "" {
		return id
	}
	path := u.Path
	if idx := strings.LastIndex(path, PathPrefix); idx >= 0 {
		rest := strings.Trim(path[idx+len(PathPrefix):], "/")
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		if id, err := url.PathUnescape(rest); err == nil {
			return id
		}
		return rest
	}
	return ""
}

// QueryLocation formats the query form of a location for id.
func QueryLocation(id string) string {
	return "?" + url.Values{QueryParam: []string{id}}.Encode()
}

// PathLocation formats the path form of a location for id.
func PathLocation(id string) string {
	return PathPrefix + url.PathEscape(id)
}

// ParseLocation parses raw as a URL or a bare "?..." / "/test-result/..."
// reference and extracts the requested id.
func ParseLocation(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return FromLocation(u)
}
