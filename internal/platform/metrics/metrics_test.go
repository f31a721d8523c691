package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 5*time.Millisecond)
	c.RecordTransition("clock_in", "ok")
	c.RecordTransition("clock_in", "ok")
	c.RecordTransition("clock_in", "already_clocked_in")

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(1), snap["rateLimitedTotal"])
	assert.Equal(t, uint64(45), snap["totalDurationMs"])

	transitions := snap["attendanceTransitions"].(map[string]uint64)
	assert.Equal(t, uint64(2), transitions["clock_in:ok"])
	assert.Equal(t, uint64(1), transitions["clock_in:already_clocked_in"])
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(200, time.Millisecond)
	c.RecordTransition("clock_out", "ok")
}
