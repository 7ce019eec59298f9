package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusDownloading.IsActive())
	assert.True(t, StatusExtracting.IsActive())
	assert.False(t, StatusCreated.IsActive())
	assert.False(t, StatusInstalled.IsActive())

	assert.True(t, StatusInstalled.IsFinished())
	assert.True(t, StatusFailed.IsFinished())
	assert.False(t, StatusDownloaded.IsFinished())

	assert.Equal(t, "downloading", StatusDownloading.String())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		desc string
		from Status
		to   Status
		exp  bool
	}{
		{"start transfer", StatusCreated, StatusDownloading, true},
		{"transfer done", StatusDownloading, StatusDownloaded, true},
		{"start extraction", StatusDownloaded, StatusExtracting, true},
		{"install done", StatusExtracting, StatusInstalled, true},
		{"cannot skip transfer", StatusCreated, StatusDownloaded, false},
		{"cannot skip extraction", StatusDownloading, StatusInstalled, false},
		{"cannot go backwards", StatusDownloaded, StatusDownloading, false},
		{"fail while transferring", StatusDownloading, StatusFailed, true},
		{"fail before starting", StatusCreated, StatusFailed, true},
		{"installed is terminal", StatusInstalled, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusDownloading, false},
		{"failed stays failed", StatusFailed, StatusFailed, false},
	}

	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			assert.Equal(t, c.exp, CanTransition(c.from, c.to),
				"CanTransition(%s, %s) should be %v", c.from, c.to, c.exp)
		})
	}
}
