// Package urlnorm splits the path strings used by redirect rules and requests
// into a canonical (host, path, query) triple.
//
// Accepted forms:
//
//	/path/segments?x=1
//	//schemeless.example.com/path/segments
//	https://full.example.com/path/segments
//
// Anything that is not an http(s) URL is resolved against a placeholder base,
// so only its path and query survive.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL is returned for input that cannot be parsed as a URL reference
var ErrInvalidURL = errors.New("invalid URL")

const defaultScheme = "https:"

var placeholderBase = &url.URL{Scheme: "https", Host: "placeholder.com", Path: "/"}

// Result is the normalised form of a URL string
type Result struct {
	// Host is empty unless the input carried one
	Host string
	// Path always starts with "/"
	Path string
	// Query includes the leading "?" or is empty
	Query string
}

// PathWithQuery returns Path followed by Query
func (r Result) PathWithQuery() string {
	return r.Path + r.Query
}

// Normalize parses raw into its host, path and query parts.
func Normalize(raw string) (Result, error) {
	if strings.HasPrefix(raw, "//") {
		raw = defaultScheme + raw
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidURL, trimURLError(err))
	}

	// resolving also removes dot segments from absolute references
	resolved := placeholderBase.ResolveReference(ref)
	result := Result{Path: pathOf(resolved), Query: queryOf(resolved)}

	if isAbsoluteHTTP(raw) {
		if result.Host, err = canonicalHost(ref); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

// Split is Normalize returning the triple directly
func Split(raw string) (host, path, query string, err error) {
	r, err := Normalize(raw)
	return r.Host, r.Path, r.Query, err
}

// TogglePathSlash adds a trailing slash when absent and removes it when present
func TogglePathSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path + "/"
}

func isAbsoluteHTTP(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func canonicalHost(u *url.URL) (string, error) {
	hostname := u.Hostname()
	if hostname == "" {
		return "", nil
	}

	// IPv6 literals keep their brackets and skip IDNA
	if strings.Contains(hostname, ":") {
		return strings.ToLower(u.Host), nil
	}

	ascii, err := idna.Lookup.ToASCII(strings.ToLower(hostname))
	if err != nil {
		// fall back to the punycode profile, which accepts hostnames the
		// lookup profile rejects (underscores, for example)
		ascii, err = idna.Punycode.ToASCII(strings.ToLower(hostname))
		if err != nil {
			return "", fmt.Errorf("%w: host %q: %v", ErrInvalidURL, hostname, err)
		}
	}

	if port := u.Port(); port != "" {
		return ascii + ":" + port, nil
	}
	return ascii, nil
}

func pathOf(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

func queryOf(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

func trimURLError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
