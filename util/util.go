package util

import (
	"os"
	"os/user"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	homeDir     string
	homeDirErr  error
	homeDirOnce sync.Once
)

// Home returns the current user's home directory. The result is cached.
func Home() (string, error) {
	homeDirOnce.Do(func() {
		if u, err := user.Current(); err == nil && u.HomeDir != "" {
			homeDir = u.HomeDir
			return
		}
		if home := os.Getenv("HOME"); home != "" {
			homeDir = home
			return
		}
		homeDirErr = errors.New("unable to determine home directory: user lookup failed and HOME is blank")
	})
	return homeDir, homeDirErr
}

// EnsureDir creates dirPath and any missing parents.
func EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dirPath)
	}
	return nil
}

// FirstNonEmpty returns the first non-empty string, or "" if all are empty.
func FirstNonEmpty(strs ...string) string {
	for _, s := range strs {
		if s != "" {
			return s
		}
	}
	return ""
}

// UniqueStrings drops repeated entries, keeping the first occurrence.
func UniqueStrings(slice []string) []string {
	seen := make(map[string]struct{}, len(slice))
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// CombineErrors joins the messages of the non-nil errors with "; ".
// It returns nil when there are none.
func CombineErrors(errs ...error) error {
	var msgs []string
	for _, err := range errs {
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

// ShortDur formats d like time.Duration.String without trailing zero
// units, so 2m0s prints as 2m and 1h0m0s as 1h.
func ShortDur(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}
