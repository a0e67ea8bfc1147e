package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Suhaibinator/SServer/pkg/common"
)

// route is one entry of the route table
type route struct {
	method   common.Method
	template string
	pattern  *regexp.Regexp

	handler common.Handler         // the registered handler
	local   common.MiddlewareChain // sub-router and route middlewares
	wrapped common.Handler         // handler with every middleware applied
}

// placeholderName is the allowed form of a {name} placeholder
var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// compileTemplate turns a route template into an anchored regular expression.
// Each {name} placeholder becomes a named capture matching one or more characters other
// than "/". Text outside placeholders is used as regular expression syntax as is.
func compileTemplate(template string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^(?:")

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, fmt.Errorf("unmatched '}' in route template %q", template)
			}
			b.WriteString(rest)
			break
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return nil, fmt.Errorf("unmatched '}' in route template %q", template)
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unclosed '{' in route template %q", template)
		}
		name := rest[open+1 : open+end]
		if !placeholderName.MatchString(name) {
			return nil, fmt.Errorf("invalid parameter name %q in route template %q", name, template)
		}

		b.WriteString(rest[:open])
		b.WriteString("(?P<")
		b.WriteString(name)
		b.WriteString(">[^/]+)")
		rest = rest[open+end+1:]
	}

	b.WriteString(")$")
	return regexp.Compile(b.String())
}

// match returns the captured parameters if path matches the route.
func (rt *route) match(path string) (map[string]string, bool) {
	m := rt.pattern.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string)
	for i, name := range rt.pattern.SubexpNames() {
		if name != "" && i < len(m) {
			params[name] = m[i]
		}
	}
	return params, true
}

// lookup scans the routes for method in registration order. The first match wins.
func (r *Router) lookup(method common.Method, path string) (*route, map[string]string, bool) {
	for _, rt := range r.routes[method] {
		if params, ok := rt.match(path); ok {
			return rt, params, true
		}
	}
	return nil, nil, false
}
