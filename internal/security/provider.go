package security

import (
	"fmt"
	"net/http"
)

// Provider configures hardening middleware from a directive set.
type Provider interface {
	Name() string
	Middleware(directives Directives) (func(http.Handler) http.Handler, error)
}

// HeaderSet holds the non-CSP hardening headers. Zero-valued fields fall
// back to the defaults; "-" disables a header.
type HeaderSet struct {
	CrossOriginOpenerPolicy      string `koanf:"cross_origin_opener_policy"`
	CrossOriginResourcePolicy    string `koanf:"cross_origin_resource_policy"`
	OriginAgentCluster           string `koanf:"origin_agent_cluster"`
	ReferrerPolicy               string `koanf:"referrer_policy"`
	StrictTransportSecurity      string `koanf:"strict_transport_security"`
	ContentTypeOptions           string `koanf:"content_type_options"`
	DNSPrefetchControl           string `koanf:"dns_prefetch_control"`
	DownloadOptions              string `koanf:"download_options"`
	FrameOptions                 string `koanf:"frame_options"`
	PermittedCrossDomainPolicies string `koanf:"permitted_cross_domain_policies"`
	XSSProtection                string `koanf:"xss_protection"`
}

func defaultHeaderSet() HeaderSet {
	return HeaderSet{
		CrossOriginOpenerPolicy:      "same-origin",
		CrossOriginResourcePolicy:    "same-origin",
		OriginAgentCluster:           "?1",
		ReferrerPolicy:               "no-referrer",
		StrictTransportSecurity:      "max-age=15552000; includeSubDomains",
		ContentTypeOptions:           "nosniff",
		DNSPrefetchControl:           "off",
		DownloadOptions:              "noopen",
		FrameOptions:                 "SAMEORIGIN",
		PermittedCrossDomainPolicies: "none",
		XSSProtection:                "0",
	}
}

func (h HeaderSet) withDefaults() HeaderSet {
	d := defaultHeaderSet()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return HeaderSet{
		CrossOriginOpenerPolicy:      pick(h.CrossOriginOpenerPolicy, d.CrossOriginOpenerPolicy),
		CrossOriginResourcePolicy:    pick(h.CrossOriginResourcePolicy, d.CrossOriginResourcePolicy),
		OriginAgentCluster:           pick(h.OriginAgentCluster, d.OriginAgentCluster),
		ReferrerPolicy:               pick(h.ReferrerPolicy, d.ReferrerPolicy),
		StrictTransportSecurity:      pick(h.StrictTransportSecurity, d.StrictTransportSecurity),
		ContentTypeOptions:           pick(h.ContentTypeOptions, d.ContentTypeOptions),
		DNSPrefetchControl:           pick(h.DNSPrefetchControl, d.DNSPrefetchControl),
		DownloadOptions:              pick(h.DownloadOptions, d.DownloadOptions),
		FrameOptions:                 pick(h.FrameOptions, d.FrameOptions),
		PermittedCrossDomainPolicies: pick(h.PermittedCrossDomainPolicies, d.PermittedCrossDomainPolicies),
		XSSProtection:                pick(h.XSSProtection, d.XSSProtection),
	}
}

func (h HeaderSet) pairs() [][2]string {
	return [][2]string{
		{"Cross-Origin-Opener-Policy", h.CrossOriginOpenerPolicy},
		{"Cross-Origin-Resource-Policy", h.CrossOriginResourcePolicy},
		{"Origin-Agent-Cluster", h.OriginAgentCluster},
		{"Referrer-Policy", h.ReferrerPolicy},
		{"Strict-Transport-Security", h.StrictTransportSecurity},
		{"X-Content-Type-Options", h.ContentTypeOptions},
		{"X-DNS-Prefetch-Control", h.DNSPrefetchControl},
		{"X-Download-Options", h.DownloadOptions},
		{"X-Frame-Options", h.FrameOptions},
		{"X-Permitted-Cross-Domain-Policies", h.PermittedCrossDomainPolicies},
		{"X-XSS-Protection", h.XSSProtection},
	}
}

// HeaderProvider writes the CSP and the HeaderSet on every response.
type HeaderProvider struct {
	name    string
	headers HeaderSet
	extra   Directives
}

// NewHeaderProvider returns a provider with the given header overrides and
// extra directives merged over whatever set Middleware receives.
func NewHeaderProvider(name string, headers HeaderSet, extra Directives) *HeaderProvider {
	return &HeaderProvider{name: name, headers: headers.withDefaults(), extra: extra}
}

func (p *HeaderProvider) Name() string {
	return p.name
}

func (p *HeaderProvider) Middleware(directives Directives) (func(http.Handler) http.Handler, error) {
	effective := directives.Merge(p.extra)
	if err := effective.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	csp := effective.String()
	var headers [][2]string
	for _, pair := range p.headers.pairs() {
		if pair[1] != "-" {
			headers = append(headers, pair)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			for _, pair := range headers {
				h.Set(pair[0], pair[1])
			}
			h.Del("X-Powered-By")

			next.ServeHTTP(w, r)
		})
	}, nil
}
