package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/mod/semver"
)

func TestVersionIsSemantic(t *testing.T) {
	assert.Truef(t, semver.IsValid(Version), "Version %s is not a valid semantic version", Version)
}

func TestUptime(t *testing.T) {
	assert.False(t, StartTime.IsZero())

	prevStartTime := StartTime
	StartTime = time.Now().Add(-90 * time.Second)
	t.Cleanup(func() { StartTime = prevStartTime })
	assert.GreaterOrEqual(t, Uptime(), 90*time.Second)
}
