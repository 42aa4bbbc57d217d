package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()

	assert.True(t, strings.HasPrefix(s, "redact "))
	assert.Contains(t, s, Version)
	assert.Contains(t, s, runtime.Version())
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Short(), info.Version)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}
