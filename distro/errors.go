package distro

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrReleaseUnreadable means the release file could not be read from the
	// host, either because the command failed or the host was unreachable.
	ErrReleaseUnreadable = errors.New("failed to read /etc/redhat-release file")
	// ErrUnrecognizedRelease means the release file was read but the family
	// or major version could not be determined.
	ErrUnrecognizedRelease = errors.New("was not possible to fetch distro information")
)

// Error describes a failed inspection of one host. Kind is one of the
// sentinel errors above; errors.Is matches both Kind and the cause.
type Error struct {
	Host   string
	Kind   error
	Output string
	Err    error
}

// Error names Kind once: a cause that already wraps Kind is printed alone.
func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Host, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", e.Host, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Host, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
