package common

import "strings"

// URI is a parsed request target. The path never contains the query string.
// Path parameters are empty until a route matches and the router fills them.
type URI struct {
	path   string
	query  map[string]string
	params map[string]string
}

// ParseURI splits target once on "?". The prefix is the path. The suffix, if present, is split
// on "&" and each pair on its first "="; a pair without "=" gets an empty value.
// No percent-decoding is done.
func ParseURI(target string) *URI {
	path, rawQuery, hasQuery := strings.Cut(target, "?")
	u := &URI{path: path}
	if !hasQuery {
		return u
	}

	u.query = make(map[string]string)
	for _, pair := range strings.Split(rawQuery, "&") {
		key, value, _ := strings.Cut(pair, "=")
		u.query[key] = value
	}
	return u
}

// Path returns the path part of the target.
func (u *URI) Path() string {
	return u.path
}

// Query returns the query parameter called name.
func (u *URI) Query(name string) (string, bool) {
	if u.query == nil {
		return "", false
	}
	v, ok := u.query[name]
	return v, ok
}

// HasQuery reports whether the target had a query string.
func (u *URI) HasQuery() bool {
	return u.query != nil
}

// Param returns the path parameter called name. It is only set after a route match.
func (u *URI) Param(name string) (string, bool) {
	if u.params == nil {
		return "", false
	}
	v, ok := u.params[name]
	return v, ok
}

// Params returns all path parameters, or nil before a route match.
func (u *URI) Params() map[string]string {
	return u.params
}

// SetParams replaces the path parameters.
func (u *URI) SetParams(params map[string]string) {
	u.params = params
}

// String rebuilds a target from the path and query. Query order is not preserved.
func (u *URI) String() string {
	if u.query == nil {
		return u.path
	}
	var b strings.Builder
	b.WriteString(u.path)
	b.WriteByte('?')
	first := true
	for k, v := range u.query {
		if !first {
			b.WriteByte('&')
		}
		first = false
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

// clone returns a deep copy.
func (u *URI) clone() *URI {
	if u == nil {
		return nil
	}
	return &URI{
		path:   u.path,
		query:  cloneMap(u.query),
		params: cloneMap(u.params),
	}
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
