// Package secret resolves connection profile secret references into
// credentials. A profile stores only an opaque reference; the actual
// credential is materialized at connect time and never retained.
package secret

import (
	"fmt"
	"os"
	"strings"
)

// Resolver turns a secret reference into a credential. The desktop
// shell installs an OS-keychain resolver here; this package ships
// resolvers suitable for CLI and test use.
type Resolver interface {
	// Resolve returns the credential for ref. An empty ref resolves to
	// an empty credential (databases without authentication).
	Resolve(ref string) (string, error)
}

// SchemeResolver resolves references by scheme prefix:
//
//	env:NAME   — value of the NAME environment variable
//	file:PATH  — trimmed contents of the file at PATH
//	anything else — the reference itself, taken as a literal
type SchemeResolver struct{}

// Resolve implements Resolver.
func (SchemeResolver) Resolve(ref string) (string, error) {
	switch {
	case ref == "":
		return "", nil
	case strings.HasPrefix(ref, "env:"):
		name := strings.TrimPrefix(ref, "env:")
		val, ok := os.LookupEnv(name)
		if !ok {
			return "", fmt.Errorf("secret environment variable %q is not set", name)
		}
		return val, nil
	case strings.HasPrefix(ref, "file:"):
		path := strings.TrimPrefix(ref, "file:")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return ref, nil
	}
}

// Static resolves every reference from a fixed map. Used in tests and
// by embedders that manage credentials themselves.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	val, ok := s[ref]
	if !ok {
		return "", fmt.Errorf("unknown secret reference %q", ref)
	}
	return val, nil
}

var (
	_ Resolver = SchemeResolver{}
	_ Resolver = Static(nil)
)
