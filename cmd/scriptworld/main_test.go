package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/scriptworld/internal/config"
	coresys "github.com/l1jgo/scriptworld/internal/core/system"
)

func TestTickLoopStopsAtMaxTicks(t *testing.T) {
	r := coresys.NewRunner()
	cfg := config.SimulationConfig{TickRate: time.Millisecond, MaxTicks: 3}

	require.NoError(t, tickLoop(context.Background(), r, cfg, zap.NewNop()))
	assert.Equal(t, uint64(3), r.Ticks())
}

func TestTickLoopStopsOnCancel(t *testing.T) {
	r := coresys.NewRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.SimulationConfig{TickRate: time.Hour}
	require.NoError(t, tickLoop(ctx, r, cfg, zap.NewNop()))
	assert.Equal(t, uint64(0), r.Ticks())
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = newLogger(config.LoggingConfig{Level: "bogus", Format: "console"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel), "unknown levels fall back to info")
}
