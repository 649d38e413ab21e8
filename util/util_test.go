package util

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	home, err := Home()
	require.NoError(t, err)
	assert.NotEmpty(t, home)

	again, _ := Home()
	assert.Equal(t, home, again)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, EnsureDir(dir), "existing directory is not an error")

	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0600))
	assert.Error(t, EnsureDir(filepath.Join(file, "sub")))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
	assert.Equal(t, "", FirstNonEmpty())
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueStrings([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, UniqueStrings(nil))
}

func TestCombineErrors(t *testing.T) {
	assert.NoError(t, CombineErrors())
	assert.NoError(t, CombineErrors(nil, nil))

	err := CombineErrors(errors.New("first"), nil, errors.New("second"))
	require.Error(t, err)
	assert.Equal(t, "first; second", err.Error())
}

func TestShortDur(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m"},
		{90 * time.Second, "1m30s"},
		{time.Hour, "1h"},
		{time.Hour + 5*time.Minute, "1h5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortDur(tt.in), tt.in.String())
	}
}
