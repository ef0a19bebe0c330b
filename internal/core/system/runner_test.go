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

func (r recorder) Phase() Phase         { return r.phase }
func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"reconcile", PhasePostUpdate, &log})
	r.Register(recorder{"hud", PhaseUpdate, &log})
	r.Register(recorder{"reconcile-late", PhasePostUpdate, &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{"hud", "reconcile", "reconcile-late", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Ticks())

	log = nil
	r.TickPhase(PhasePostUpdate, 0)
	assert.Equal(t, []string{"reconcile", "reconcile-late"}, log)
	assert.Equal(t, uint64(1), r.Ticks())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "post_update", PhasePostUpdate.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
