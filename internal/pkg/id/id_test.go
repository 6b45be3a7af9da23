package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		v := New()
		assert.Len(t, v, 26)
		assert.False(t, seen[v])
		seen[v] = true
	}
}

func TestTime_RoundTrip(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts := Time(New())
	assert.True(t, ts.After(before))
	assert.True(t, Time("not-a-ulid").IsZero())
}
