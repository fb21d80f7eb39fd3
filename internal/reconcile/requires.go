package reconcile

import (
	"html"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Mod authors declare the application versions a file supports as free
// text in the file description, e.g. "Requires Vortex >=1.8.0 <2.0.0".
// The grammar is: HTML entities decoded first, then the literal prefix
// "requires vortex" (case-insensitive), then a semantic-version range
// expression. Everything after the range is ignored.
var requiresVortexRe = regexp.MustCompile(
	`(?i)requires\s+vortex\s+([<>=^~]{0,2}\s*v?\d+(?:\.\d+)*(?:\.[x*])?` +
		`(?:\s*(?:\|\||,|-|\s)\s*[<>=^~]{0,2}\s*v?\d+(?:\.\d+)*(?:\.[x*])?)*)`)

// ParseVortexRange extracts the version-constraint expression from a
// file description. It returns the raw range text, the parsed
// constraint, and whether a usable constraint was found. Text that
// looks like a constraint but does not parse as a semver range counts
// as not found.
func ParseVortexRange(description string) (string, *semver.Constraints, bool) {
	decoded := html.UnescapeString(description)

	match := requiresVortexRe.FindStringSubmatch(decoded)
	if match == nil {
		return "", nil, false
	}

	raw := strings.TrimSpace(match[1])
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return "", nil, false
	}
	return raw, c, true
}

// VersionWindow is the span of application versions the catalog
// supports, from the oldest release still in the wild to the newest
// shipped one.
type VersionWindow struct {
	Oldest *semver.Version
	Newest *semver.Version
}

// NewVersionWindow parses the two window bounds.
func NewVersionWindow(oldest, newest string) (VersionWindow, error) {
	lo, err := semver.NewVersion(strings.TrimPrefix(oldest, "v"))
	if err != nil {
		return VersionWindow{}, err
	}
	hi, err := semver.NewVersion(strings.TrimPrefix(newest, "v"))
	if err != nil {
		return VersionWindow{}, err
	}
	return VersionWindow{Oldest: lo, Newest: hi}, nil
}

// Satisfies reports whether either bound of the window matches the
// constraint. A file aimed anywhere inside the supported span stays
// eligible.
func (w VersionWindow) Satisfies(c *semver.Constraints) bool {
	return c.Check(w.Oldest) || c.Check(w.Newest)
}
