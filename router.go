package chirp

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned by Router.Match when no registered pattern matches
// the request path. A typed parameter that fails conversion is reported the
// same way: to the caller it is indistinguishable from an unknown path.
var ErrNotFound = errors.New("chirp: no matching route")

// MethodNotAllowedError is returned by Router.Match when at least one pattern
// matches the request path but none of the routes there accept the request
// method. Allowed carries the union of methods declared for the path, sorted,
// ready for an Allow response header.
type MethodNotAllowedError struct {
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return "chirp: method not allowed (allowed: " + strings.Join(e.Allowed, ", ") + ")"
}

// ParamKind is the declared type of a path parameter segment.
type ParamKind int

const (
	ParamString ParamKind = iota // default, any text excluding '/'
	ParamInteger
	ParamFloat
	ParamRest // remaining path including '/', final segment only
)

func (k ParamKind) String() string {
	switch k {
	case ParamInteger:
		return "integer"
	case ParamFloat:
		return "float"
	case ParamRest:
		return "rest-of-path"
	default:
		return "string"
	}
}

// segment is one compiled token of a route pattern: either a literal or a
// named, typed parameter. Segments are created once at registration and never
// mutated.
type segment struct {
	literal string
	name    string
	kind    ParamKind
	isParam bool
}

// Route is a compiled association between a path pattern, an allowed method
// set, and a handler. Routes are created at registration and never mutated
// after the router compiles.
type Route struct {
	Pattern string
	Methods []string
	Handler HandlerFunc

	name     string
	segments []segment
	kinds    map[string]ParamKind
}

// Named assigns a name to the route for reverse lookup. It returns the route
// for chaining and must be called before the router compiles.
func (rt *Route) Named(name string) *Route {
	rt.name = name
	return rt
}

// Name returns the route's optional name.
func (rt *Route) Name() string { return rt.name }

// ParamKinds reports the declared kind of each parameter in the pattern.
func (rt *Route) ParamKinds() map[string]ParamKind { return rt.kinds }

// RouteMatch is the result of a successful match: the route plus the raw
// string value extracted for each path parameter.
type RouteMatch struct {
	Route  *Route
	Params map[string]string
}

// node is one level of the compiled prefix tree. Literal children take
// precedence over parameter children, which take precedence over a
// rest-of-path child.
type node struct {
	static map[string]*node
	params []*node // typed parameter children, in registration order
	rest   *node

	seg    segment
	routes map[string]*Route // method -> route terminating at this node
}

func newNode() *node {
	return &node{static: make(map[string]*node)}
}

// Router compiles a set of path patterns into an immutable matching table.
// All registration happens before Compile; after Compile the table is
// read-only and safe for unsynchronized concurrent Match calls.
type Router struct {
	root     *node
	routes   []*Route
	named    map[string]*Route
	compiled bool
}

// NewRouter returns an empty, uncompiled router.
func NewRouter() *Router {
	return &Router{
		root:  newNode(),
		named: make(map[string]*Route),
	}
}

// Handle registers a pattern for the given methods. It returns the new Route
// so it can be named. Invalid pattern syntax is a configuration error and is
// reported immediately; registering after Compile is a programming error and
// panics.
func (r *Router) Handle(pattern string, h HandlerFunc, methods ...string) (*Route, error) {
	if r.compiled {
		panic("chirp: route registered after Compile: " + pattern)
	}
	if h == nil {
		return nil, fmt.Errorf("chirp: nil handler for pattern %q", pattern)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("chirp: no methods for pattern %q", pattern)
	}
	segs, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	kinds := make(map[string]ParamKind)
	for _, s := range segs {
		if s.isParam {
			if _, dup := kinds[s.name]; dup {
				return nil, fmt.Errorf("chirp: duplicate parameter %q in pattern %q", s.name, pattern)
			}
			kinds[s.name] = s.kind
		}
	}
	ms := make([]string, len(methods))
	for i, m := range methods {
		ms[i] = strings.ToUpper(m)
	}
	rt := &Route{
		Pattern:  pattern,
		Methods:  ms,
		Handler:  h,
		segments: segs,
		kinds:    kinds,
	}
	r.routes = append(r.routes, rt)
	return rt, nil
}

// Compile freezes the registration table and builds the prefix tree. It must
// be called exactly once, after all routes are registered; Match panics if
// the router has not been compiled.
func (r *Router) Compile() error {
	if r.compiled {
		return errors.New("chirp: router already compiled")
	}
	for _, rt := range r.routes {
		if rt.name != "" {
			if _, dup := r.named[rt.name]; dup {
				return fmt.Errorf("chirp: duplicate route name %q", rt.name)
			}
			r.named[rt.name] = rt
		}
		if err := r.insert(rt); err != nil {
			return err
		}
	}
	r.compiled = true
	return nil
}

func (r *Router) insert(rt *Route) error {
	cur := r.root
	for _, s := range rt.segments {
		switch {
		case !s.isParam:
			child := cur.static[s.literal]
			if child == nil {
				child = newNode()
				child.seg = s
				cur.static[s.literal] = child
			}
			cur = child
		case s.kind == ParamRest:
			if cur.rest == nil {
				cur.rest = newNode()
				cur.rest.seg = s
			}
			cur = cur.rest
		default:
			var child *node
			for _, p := range cur.params {
				if p.seg.name == s.name && p.seg.kind == s.kind {
					child = p
					break
				}
			}
			if child == nil {
				child = newNode()
				child.seg = s
				cur.params = append(cur.params, child)
			}
			cur = child
		}
	}
	if cur.routes == nil {
		cur.routes = make(map[string]*Route)
	}
	for _, m := range rt.Methods {
		if _, dup := cur.routes[m]; dup {
			return fmt.Errorf("chirp: duplicate route %s %q", m, rt.Pattern)
		}
		cur.routes[m] = rt
	}
	return nil
}

// Lookup returns the route registered under the given name, if any.
func (r *Router) Lookup(name string) (*Route, bool) {
	rt, ok := r.named[name]
	return rt, ok
}

// Routes returns all registered routes in registration order.
func (r *Router) Routes() []*Route { return r.routes }

// Match resolves a method and path against the compiled table. On success it
// returns the matched route with raw parameter values. Failures are ordinary
// data-like outcomes: ErrNotFound when no pattern matches the path, or a
// *MethodNotAllowedError when a pattern matches but not for this method.
func (r *Router) Match(method, path string) (*RouteMatch, error) {
	if !r.compiled {
		panic("chirp: Match called before Compile")
	}
	segs := splitPath(path)
	params := make(map[string]string)
	allowed := make(map[string]bool)
	rt := r.search(r.root, segs, 0, strings.ToUpper(method), params, allowed)
	if rt != nil {
		return &RouteMatch{Route: rt, Params: params}, nil
	}
	if len(allowed) > 0 {
		ms := make([]string, 0, len(allowed))
		for m := range allowed {
			ms = append(ms, m)
		}
		sort.Strings(ms)
		return nil, &MethodNotAllowedError{Allowed: ms}
	}
	return nil, ErrNotFound
}

// search walks the tree depth-first with backtracking: static children first,
// then typed parameter children, then a rest-of-path child. A parameter whose
// value fails its declared type check simply does not match, and sibling
// alternatives are tried. Every terminal node whose path matched contributes
// its methods to allowed so a failed match can distinguish 404 from 405.
func (r *Router) search(n *node, segs []string, idx int, method string, params map[string]string, allowed map[string]bool) *Route {
	if idx == len(segs) {
		if n.routes == nil {
			return nil
		}
		for m := range n.routes {
			allowed[m] = true
		}
		return n.routes[method]
	}

	seg := segs[idx]

	if child, ok := n.static[seg]; ok {
		if rt := r.search(child, segs, idx+1, method, params, allowed); rt != nil {
			return rt
		}
	}

	for _, child := range n.params {
		if !convertible(seg, child.seg.kind) {
			continue
		}
		params[child.seg.name] = seg
		if rt := r.search(child, segs, idx+1, method, params, allowed); rt != nil {
			return rt
		}
		delete(params, child.seg.name)
	}

	if n.rest != nil && n.rest.routes != nil {
		for m := range n.rest.routes {
			allowed[m] = true
		}
		if rt := n.rest.routes[method]; rt != nil {
			params[n.rest.seg.name] = strings.Join(segs[idx:], "/")
			return rt
		}
	}

	return nil
}

// splitPath normalizes trailing slashes away and splits the path into
// segments. "/users/" and "/users" are equivalent; "/" matches the root
// pattern with zero segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func convertible(s string, kind ParamKind) bool {
	switch kind {
	case ParamInteger:
		return isDigits(s)
	case ParamFloat:
		return isFloat(s)
	default:
		return s != ""
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isFloat accepts digits with at most one decimal point and at least one
// digit overall ("42", "4.2", ".5", "5.").
func isFloat(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	digits := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// parsePattern compiles a pattern into segments, validating parameter syntax
// up front. Patterns use {name} or {name:type}; the angle-bracket style used
// by some frameworks is rejected here, at registration time, so the mistake
// surfaces at startup rather than as a route that never matches.
func parsePattern(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("chirp: pattern %q must begin with '/'", pattern)
	}
	raw := splitPath(pattern)
	segs := make([]segment, 0, len(raw))
	for i, tok := range raw {
		if strings.ContainsAny(tok, "<>") {
			return nil, fmt.Errorf("chirp: pattern %q uses unsupported parameter syntax %q: write {name} or {name:type} instead of <name>", pattern, tok)
		}
		if !strings.HasPrefix(tok, "{") {
			if strings.Contains(tok, "{") || strings.Contains(tok, "}") {
				return nil, fmt.Errorf("chirp: pattern %q has malformed segment %q", pattern, tok)
			}
			segs = append(segs, segment{literal: tok})
			continue
		}
		if !strings.HasSuffix(tok, "}") {
			return nil, fmt.Errorf("chirp: pattern %q has unterminated parameter %q", pattern, tok)
		}
		body := tok[1 : len(tok)-1]
		name, tag := body, ""
		if j := strings.IndexByte(body, ':'); j >= 0 {
			name, tag = body[:j], body[j+1:]
		}
		if name == "" {
			return nil, fmt.Errorf("chirp: pattern %q has unnamed parameter %q", pattern, tok)
		}
		kind, err := paramKind(tag)
		if err != nil {
			return nil, fmt.Errorf("chirp: pattern %q: %w", pattern, err)
		}
		if kind == ParamRest && i != len(raw)-1 {
			return nil, fmt.Errorf("chirp: pattern %q: rest-of-path parameter %q must be the final segment", pattern, name)
		}
		segs = append(segs, segment{name: name, kind: kind, isParam: true})
	}
	return segs, nil
}

func paramKind(tag string) (ParamKind, error) {
	switch tag {
	case "", "string":
		return ParamString, nil
	case "integer":
		return ParamInteger, nil
	case "float":
		return ParamFloat, nil
	case "rest-of-path":
		return ParamRest, nil
	default:
		return ParamString, fmt.Errorf("unknown parameter type %q (expected string, integer, float, or rest-of-path)", tag)
	}
}
