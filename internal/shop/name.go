package shop

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxSiteNameLen bounds the deployment name.
const MaxSiteNameLen = 32

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	siteNameRule = regexp.MustCompile(`^[a-z0-9-]{1,32}$`)
)

// NormalizeSiteName trims and lower-cases text, turns whitespace runs into
// single hyphens and validates the result.
func NormalizeSiteName(text string) (string, error) {
	name := spaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), "-")
	if !siteNameRule.MatchString(name) {
		return "", errors.Wrapf(ErrInvalidName, "%q", text)
	}
	return name, nil
}
