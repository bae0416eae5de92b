package security

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrNotConfigured marks a strategy that has nothing to load.
var ErrNotConfigured = errors.New("not configured")

// Strategy obtains a Provider.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context) (Provider, error)
}

type builtinStrategy struct{}

// Builtin returns the strategy for the compiled-in header provider.
func Builtin() Strategy {
	return builtinStrategy{}
}

func (builtinStrategy) Name() string { return "builtin" }

func (builtinStrategy) Resolve(ctx context.Context) (Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewHeaderProvider("builtin", HeaderSet{}, nil), nil
}

type fileStrategy struct {
	path string
}

// File returns a strategy that loads header overrides and extra directives
// from a YAML document:
//
//	headers:
//	  frame_options: DENY
//	directives:
//	  connect-src: ["'self'", "https://api.espaciohogar.app"]
func File(path string) Strategy {
	return fileStrategy{path: strings.TrimSpace(path)}
}

func (s fileStrategy) Name() string { return "file" }

func (s fileStrategy) Resolve(ctx context.Context) (Provider, error) {
	if s.path == "" {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.path, err)
	}

	var headers HeaderSet
	if err := k.Unmarshal("headers", &headers); err != nil {
		return nil, fmt.Errorf("decode headers: %w", err)
	}

	var raw map[string][]string
	if err := k.Unmarshal("directives", &raw); err != nil {
		return nil, fmt.Errorf("decode directives: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	extra := make(Directives, 0, len(names))
	for _, name := range names {
		extra = append(extra, Directive{Name: name, Values: raw[name]})
	}
	if len(extra) > 0 {
		if err := extra.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
	}

	return NewHeaderProvider("file:"+s.path, headers, extra), nil
}

// Resolve tries each strategy in order and returns the first provider.
func Resolve(ctx context.Context, strategies ...Strategy) (Provider, error) {
	if len(strategies) == 0 {
		return nil, errors.New("resolve security provider: no strategies")
	}

	var errs []error
	for _, s := range strategies {
		p, err := s.Resolve(ctx)
		if err == nil {
			return p, nil
		}
		errs = append(errs, fmt.Errorf("%s strategy: %w", s.Name(), err))
	}
	return nil, fmt.Errorf("resolve security provider: %w", errors.Join(errs...))
}

// Install resolves a provider and configures it with directives.
func Install(ctx context.Context, directives Directives, strategies ...Strategy) (func(http.Handler) http.Handler, Provider, error) {
	p, err := Resolve(ctx, strategies...)
	if err != nil {
		return nil, nil, err
	}
	mw, err := p.Middleware(directives)
	if err != nil {
		return nil, nil, fmt.Errorf("configure %s: %w", p.Name(), err)
	}
	return mw, p, nil
}
