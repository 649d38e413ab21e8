package distro

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	releasePrefixes = []struct {
		prefix string
		family Family
	}{
		{"Red Hat Enterprise Linux", FamilyRHEL},
		{"Fedora", FamilyFedora},
	}

	// The first space-delimited run of digits and dots is the version.
	versionPattern = regexp.MustCompile(` ([0-9.]+) `)
)

// Parse classifies the contents of /etc/redhat-release.
func Parse(release string) (Info, error) {
	var info Info
	for _, p := range releasePrefixes {
		if strings.HasPrefix(release, p.prefix) {
			info.Family = p.family
			break
		}
	}
	if info.Family == "" {
		return Info{}, errors.Wrapf(ErrUnrecognizedRelease, "unknown distribution in %q", strings.TrimSpace(release))
	}

	match := versionPattern.FindStringSubmatch(release)
	if match == nil {
		return Info{}, errors.Wrapf(ErrUnrecognizedRelease, "no version found in %q", strings.TrimSpace(release))
	}

	parts := strings.Split(match[1], ".")
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Info{}, errors.Wrapf(ErrUnrecognizedRelease, "invalid major version in %q", match[1])
	}
	info.Major = major

	if len(parts) > 1 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return Info{}, errors.Wrapf(ErrUnrecognizedRelease, "invalid minor version in %q", match[1])
		}
		info.Minor = &minor
	}
	return info, nil
}
