// Package security resolves and installs the response hardening headers.
//
// A Provider turns a declarative content-security-policy directive set into
// middleware. Providers are obtained through Strategies tried in order; the
// startup sequence treats failure of every strategy as fatal.
package security

import (
	"fmt"
	"strings"
)

// Directive is one content-security-policy directive. A directive without
// values (upgrade-insecure-requests) renders as its bare name.
type Directive struct {
	Name   string
	Values []string
}

// Directives is an ordered directive set. Order is preserved when rendered.
type Directives []Directive

// Baseline is the hardening set every policy starts from.
func Baseline() Directives {
	return Directives{
		{Name: "default-src", Values: []string{"'self'"}},
		{Name: "base-uri", Values: []string{"'self'"}},
		{Name: "font-src", Values: []string{"'self'", "https:", "data:"}},
		{Name: "form-action", Values: []string{"'self'"}},
		{Name: "frame-ancestors", Values: []string{"'self'"}},
		{Name: "img-src", Values: []string{"'self'", "data:"}},
		{Name: "object-src", Values: []string{"'none'"}},
		{Name: "script-src", Values: []string{"'self'"}},
		{Name: "script-src-attr", Values: []string{"'none'"}},
		{Name: "style-src", Values: []string{"'self'", "https:", "'unsafe-inline'"}},
		{Name: "upgrade-insecure-requests"},
	}
}

// DefaultDirectives is the policy served by the platform: same-origin by
// default, inline and eval scripts allowed for the frontend bundle, inline
// styles, and images from same-origin, data URIs and any HTTPS origin.
func DefaultDirectives() Directives {
	return Baseline().Merge(Directives{
		{Name: "default-src", Values: []string{"'self'"}},
		{Name: "script-src", Values: []string{"'self'", "'unsafe-inline'", "'unsafe-eval'"}},
		{Name: "style-src", Values: []string{"'self'", "'unsafe-inline'"}},
		{Name: "img-src", Values: []string{"'self'", "data:", "https:"}},
	})
}

// Merge returns a copy of d where directives named in overrides replace the
// existing ones in place and unknown names are appended.
func (d Directives) Merge(overrides Directives) Directives {
	out := make(Directives, len(d))
	copy(out, d)

	for _, o := range overrides {
		name := strings.ToLower(strings.TrimSpace(o.Name))
		replaced := false
		for i := range out {
			if out[i].Name == name {
				out[i] = Directive{Name: name, Values: append([]string(nil), o.Values...)}
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, Directive{Name: name, Values: append([]string(nil), o.Values...)})
		}
	}
	return out
}

// Get returns the values of the named directive.
func (d Directives) Get(name string) ([]string, bool) {
	for _, dir := range d {
		if dir.Name == name {
			return dir.Values, true
		}
	}
	return nil, false
}

// Validate rejects names and values that would corrupt the header.
func (d Directives) Validate() error {
	if len(d) == 0 {
		return fmt.Errorf("directive set is empty")
	}
	for _, dir := range d {
		if dir.Name == "" || strings.Trim(dir.Name, "abcdefghijklmnopqrstuvwxyz-") != "" {
			return fmt.Errorf("invalid directive name %q", dir.Name)
		}
		for _, v := range dir.Values {
			if v == "" || strings.ContainsAny(v, ";,\r\n ") {
				return fmt.Errorf("invalid value %q for %s", v, dir.Name)
			}
		}
	}
	return nil
}

// String renders the Content-Security-Policy header value.
func (d Directives) String() string {
	parts := make([]string, 0, len(d))
	for _, dir := range d {
		if len(dir.Values) == 0 {
			parts = append(parts, dir.Name)
			continue
		}
		parts = append(parts, dir.Name+" "+strings.Join(dir.Values, " "))
	}
	return strings.Join(parts, ";")
}
