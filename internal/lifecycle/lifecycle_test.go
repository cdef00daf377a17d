package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clanofthecloud/cloudbridge/internal/bridge/bridgetest"
	"github.com/clanofthecloud/cloudbridge/internal/logger"
)

func TestTracker(t *testing.T) {
	rec := &bridgetest.Recorder{}
	tr := NewTracker(rec, logger.Discard())

	var seen []State
	tr.Subscribe(func(s State) { seen = append(seen, s) })

	assert.Equal(t, Foreground, tr.State())
	assert.Equal(t, -1, tr.Resumed(), "already foreground")

	assert.Equal(t, 0, tr.Suspended())
	assert.Equal(t, -1, tr.Suspended())
	assert.Equal(t, Background, tr.State())

	assert.Equal(t, 0, tr.Resumed())
	assert.Equal(t, Foreground, tr.State())

	suspended, resumed := rec.Lifecycle()
	assert.Equal(t, 1, suspended)
	assert.Equal(t, 1, resumed)
	assert.Equal(t, []State{Background, Foreground}, seen)
	assert.Equal(t, "background", Background.String())
}
