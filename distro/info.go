package distro

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// Family is the coarse OS classification read from the release file.
type Family string

const (
	FamilyRHEL   Family = "rhel"
	FamilyFedora Family = "fedora"
)

// Info is the detected distribution of one host. Minor is nil when the
// release file carries no dotted version.
type Info struct {
	Family Family
	Major  int
	Minor  *int
}

func (i Info) HasMinor() bool {
	return i.Minor != nil
}

// String renders "family major minor", printing a missing minor as None.
func (i Info) String() string {
	minor := "None"
	if i.Minor != nil {
		minor = strconv.Itoa(*i.Minor)
	}
	return fmt.Sprintf("%s %d %s", i.Family, i.Major, minor)
}

// Version returns the release as a comparable version.
func (i Info) Version() (*version.Version, error) {
	raw := strconv.Itoa(i.Major)
	if i.Minor != nil {
		raw += "." + strconv.Itoa(*i.Minor)
	}
	return version.NewVersion(raw)
}

// Satisfies reports whether the release matches constraint, e.g. ">= 7.4".
func (i Info) Satisfies(constraint string) (bool, error) {
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	v, err := i.Version()
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
