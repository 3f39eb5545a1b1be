package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"update-a", PhaseUpdate, &log})
	r.Register(recorder{"script", PhaseScript, &log})
	r.Register(recorder{"update-b", PhaseUpdate, &log})
	r.Register(recorder{"events", PhasePreUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"events", "script", "update-a", "update-b", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
	assert.Equal(t, 5, r.Len())

	log = nil
	r.TickPhase(PhaseUpdate, time.Millisecond)
	assert.Equal(t, []string{"update-a", "update-b"}, log)
	assert.Equal(t, uint64(1), r.Ticks(), "partial ticks are not counted")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "script", PhaseScript.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
