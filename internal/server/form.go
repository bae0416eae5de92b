package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// formMaxDepth bounds bracket nesting; deeper keys keep the rest as one
	// literal segment.
	formMaxDepth = 5

	// formMaxParams caps the number of pairs considered.
	formMaxParams = 1000

	// formMaxIndex is the largest bracket index treated as an array position.
	formMaxIndex = 20
)

// ParseNestedForm decodes an urlencoded body into nested maps and slices
// using bracket notation:
//
//	user[name]=ana&user[tags][]=a&user[tags][]=b
//
// yields {"user": {"name": "ana", "tags": ["a", "b"]}}. Repeated plain keys
// collect into a slice. A plain value for a key that already holds an object
// is kept under the object's next numeric key: a[b]=1&a=2 yields
// {"a": {"b": "1", "1": "2"}}.
func ParseNestedForm(body string) (map[string]any, error) {
	root := make(map[string]any)
	if body == "" {
		return root, nil
	}

	pairs := strings.Split(body, "&")
	if len(pairs) > formMaxParams {
		pairs = pairs[:formMaxParams]
	}

	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decode key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		if key == "" {
			continue
		}

		segments := splitFormKey(key, formMaxDepth)
		root[segments[0]] = assignFormValue(root[segments[0]], segments[1:], value)
	}
	return root, nil
}

// splitFormKey splits "a[b][c]" into ["a", "b", "c"]. Keys that do not start
// with a plain name, or have unbalanced brackets, are kept whole.
func splitFormKey(key string, depth int) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segments := []string{key[:open]}
	rest := key[open:]
	for len(rest) > 0 && len(segments) <= depth {
		if rest[0] != '[' {
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segments = append(segments, rest[1:end])
		rest = rest[end+1:]
	}
	if len(segments) == 1 && rest != "" {
		return []string{key}
	}
	if rest != "" {
		segments = append(segments, rest)
	}
	return segments
}

func formIndex(segment string) (int, bool) {
	if segment == "" {
		return -1, true
	}
	n, err := strconv.Atoi(segment)
	if err != nil || n < 0 || n > formMaxIndex || strconv.Itoa(n) != segment {
		return 0, false
	}
	return n, true
}

func assignFormValue(current any, segments []string, value string) any {
	if len(segments) == 0 {
		switch c := current.(type) {
		case nil:
			return value
		case string:
			return []any{c, value}
		case []any:
			return append(c, value)
		case map[string]any:
			c[nextFormIndex(c)] = value
			return c
		default:
			return current
		}
	}

	segment, rest := segments[0], segments[1:]

	if idx, ok := formIndex(segment); ok {
		switch c := current.(type) {
		case nil:
			return []any{assignFormValue(nil, rest, value)}
		case []any:
			if idx < 0 || idx >= len(c) {
				return append(c, assignFormValue(nil, rest, value))
			}
			c[idx] = assignFormValue(c[idx], rest, value)
			return c
		case string:
			return []any{c, assignFormValue(nil, rest, value)}
		case map[string]any:
			if idx < 0 {
				segment = nextFormIndex(c)
			}
			c[segment] = assignFormValue(c[segment], rest, value)
			return c
		}
	}

	m := formObject(current)
	m[segment] = assignFormValue(m[segment], rest, value)
	return m
}

// nextFormIndex returns the first unused numeric key of m.
func nextFormIndex(m map[string]any) string {
	for i := len(m); ; i++ {
		if _, taken := m[strconv.Itoa(i)]; !taken {
			return strconv.Itoa(i)
		}
	}
}

// formObject converts current into a map so a named key can be added.
// Slices keep their elements under their index.
func formObject(current any) map[string]any {
	switch c := current.(type) {
	case map[string]any:
		return c
	case []any:
		m := make(map[string]any, len(c)+1)
		for i, v := range c {
			m[strconv.Itoa(i)] = v
		}
		return m
	case string:
		return map[string]any{"0": c}
	default:
		return make(map[string]any)
	}
}
