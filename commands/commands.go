// Package commands holds the CLI command table: one entry per REST endpoint,
// with the flags it accepts and where each flag lands in the request.
package commands

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrMissingParam = errors.New("missing required flags")
	ErrUnknownParam = errors.New("unknown flags")
)

// Location says whether a parameter is substituted into the path or sent in
// the query string.
type Location int

const (
	Query Location = iota
	Path
)

type Param struct {
	// Name is the flag name, kebab-case.
	Name string
	// Key is the wire name. Empty means Name with dashes turned into underscores.
	Key      string
	In       Location
	Required bool
	Default  string
	Usage    string
}

func (p Param) WireKey() string {
	if p.Key != "" {
		return p.Key
	}
	return strings.ReplaceAll(p.Name, "-", "_")
}

type Command struct {
	Name  string
	Group string
	Short string
	// Path is the endpoint template, with {name} placeholders for Path params.
	Path   string
	Params []Param
	// Paginated endpoints answer with a next_url that GetAll can follow.
	Paginated bool
	// Columns orders table and CSV output. Empty means all keys, sorted.
	Columns []string
}

// Usage renders the flag usage string in declaration order. Flags the user
// may leave out, including path params with a default, are bracketed.
func (c Command) Usage() string {
	parts := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		flag := fmt.Sprintf("--%s <%s>", p.Name, p.Name)
		if p.Default != "" || (!p.Required && p.In != Path) {
			flag = "[" + flag + "]"
		}
		parts = append(parts, flag)
	}
	return strings.Join(parts, " ")
}

func (c Command) Param(name string) (Param, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Resolve turns flag values into a request path and query map. Empty values
// fall back to the parameter's default; optional parameters with neither are
// left out of the query.
func (c Command) Resolve(values map[string]string) (string, map[string]string, error) {
	var unknown []string
	for name := range values {
		if _, ok := c.Param(name); !ok {
			unknown = append(unknown, "--"+name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return "", nil, fmt.Errorf("%s: %w: %s", c.Name, ErrUnknownParam, strings.Join(unknown, ", "))
	}

	path := c.Path
	query := make(map[string]string)
	var missing []string
	for _, p := range c.Params {
		v := strings.TrimSpace(values[p.Name])
		if v == "" {
			v = p.Default
		}
		if v == "" {
			if p.Required || p.In == Path {
				missing = append(missing, "--"+p.Name)
			}
			continue
		}

		switch p.In {
		case Path:
			path = strings.ReplaceAll(path, "{"+p.Name+"}", url.PathEscape(v))
		case Query:
			query[p.WireKey()] = v
		}
	}
	if len(missing) > 0 {
		return "", nil, fmt.Errorf("%s: %w: %s", c.Name, ErrMissingParam, strings.Join(missing, ", "))
	}
	return path, query, nil
}

var placeholderRE = regexp.MustCompile(`\{([a-z0-9-]+)\}`)

func (c Command) Validate() error {
	var errs []error
	if c.Name == "" || c.Path == "" {
		errs = append(errs, fmt.Errorf("command %q: name and path are required", c.Name))
	}

	placeholders := make(map[string]bool)
	for _, m := range placeholderRE.FindAllStringSubmatch(c.Path, -1) {
		placeholders[m[1]] = true
	}

	seen := make(map[string]bool)
	for _, p := range c.Params {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("command %s: duplicate flag --%s", c.Name, p.Name))
		}
		seen[p.Name] = true

		if p.In == Path && !placeholders[p.Name] {
			errs = append(errs, fmt.Errorf("command %s: path flag --%s has no {%s} in %s", c.Name, p.Name, p.Name, c.Path))
		}
		if p.In == Query && placeholders[p.Name] {
			errs = append(errs, fmt.Errorf("command %s: {%s} is bound to a query flag", c.Name, p.Name))
		}
	}
	for name := range placeholders {
		if !seen[name] {
			errs = append(errs, fmt.Errorf("command %s: placeholder {%s} has no flag", c.Name, name))
		}
	}
	return errors.Join(errs...)
}

type Table []Command

func (t Table) Lookup(name string) (Command, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Groups returns the distinct groups in table order.
func (t Table) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, c := range t {
		if !seen[c.Group] {
			seen[c.Group] = true
			groups = append(groups, c.Group)
		}
	}
	return groups
}

func (t Table) Validate() error {
	var errs []error
	names := make(map[string]bool, len(t))
	for _, c := range t {
		if names[c.Name] {
			errs = append(errs, fmt.Errorf("duplicate command %q", c.Name))
		}
		names[c.Name] = true
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
