package planner

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristopherRabotin/mga"
	"github.com/ChristopherRabotin/mga/search"
	"github.com/ChristopherRabotin/mga/sequence"
	"github.com/ChristopherRabotin/mga/solver"
)

func testPlanner() *Planner {
	cfg := mga.DefaultConfig()
	cfg.Solver.MaxGenerations = 40
	cfg.Solver.SeedSamples = 200
	cfg.Solver.Workers = 2
	return New(mga.SolarSystem(), cfg, nil)
}

func window() solver.Constraints {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return solver.Constraints{Start: start, End: start.AddDate(2, 0, 0), OriginAltitude: 200, DestinationAltitude: 500, MinFlybyAltitude: 300}
}

// large yields tens of millions of sequences.
var large = sequence.Parameters{Departure: mga.EarthID, Destination: mga.NeptuneID, MaxSwingBys: 10, MaxResonant: 3, MaxBackLegs: 3, MaxBackSpacing: 3}

func TestGenerateSequences(t *testing.T) {
	p := testPlanner()
	assert.Equal(t, mga.SunID, p.System().Star().ID)

	_, err := p.GenerateSequences(sequence.Parameters{Departure: mga.EarthID, Destination: mga.EarthID}, nil)
	assert.ErrorIs(t, err, mga.ErrPrecondition)

	params := sequence.Parameters{Departure: mga.EarthID, Destination: mga.JupiterID, MaxSwingBys: 2, MaxResonant: 1, MaxBackLegs: 1, MaxBackSpacing: 1}
	job, err := p.GenerateSequences(params, nil)
	require.NoError(t, err)
	out := job.Wait()
	require.Equal(t, search.Succeeded, out.Status)
	n, err := sequence.Count(p.System(), params)
	require.NoError(t, err)
	assert.Len(t, out.Value, int(n))
}

func TestGenerateSequencesCancel(t *testing.T) {
	p := testPlanner()
	first, err := p.GenerateSequences(large, nil)
	require.NoError(t, err)
	// Starting another generation cancels the first one.
	second, err := p.GenerateSequences(large, nil)
	require.NoError(t, err)
	out := first.Wait()
	assert.Equal(t, search.Cancelled, out.Status)
	assert.Nil(t, out.Value)
	assert.NoError(t, out.Err)

	p.CancelSequenceGeneration()
	p.CancelSequenceGeneration()
	assert.Equal(t, search.Cancelled, second.Wait().Status)
}

func TestSearchOptimalTrajectory(t *testing.T) {
	if testing.Short() {
		t.Skip("optimization run")
	}
	p := testPlanner()
	best, ok := p.CurrentBestDeltaV()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(best))

	c := window()
	c.End = c.Start.Add(-time.Hour)
	_, err := p.SearchOptimalTrajectory(mga.Sequence{mga.EarthID, mga.MarsID}, c, nil)
	assert.ErrorIs(t, err, mga.ErrPrecondition)

	var snapshots int
	job, err := p.SearchOptimalTrajectory(mga.Sequence{mga.EarthID, mga.MarsID}, window(), func(search.Progress) { snapshots++ })
	require.NoError(t, err)
	out := job.Wait()
	require.Equal(t, search.Succeeded, out.Status, "%v", out.Err)
	best, ok = p.CurrentBestDeltaV()
	require.True(t, ok)
	assert.InDelta(t, out.Value.TotalΔV, best, 1e-9)
	assert.Greater(t, snapshots, 0)
	// The real planets are not coplanar, hence a bit worse than a Hohmann transfer.
	assert.Greater(t, best, 5.0)
	assert.Less(t, best, 8.0)
}

func TestSearchOptimalTrajectoryCancel(t *testing.T) {
	p := testPlanner()
	p.cfg.Solver.MaxGenerations = 100000
	p.cfg.Solver.StallGenerations = 100000
	p.cfg.Solver.Tolerance = 0
	seq := mga.Sequence{mga.EarthID, mga.VenusID, mga.EarthID, mga.JupiterID}
	first, err := p.SearchOptimalTrajectory(seq, window(), nil)
	require.NoError(t, err)
	second, err := p.SearchOptimalTrajectory(seq, window(), nil)
	require.NoError(t, err)
	assert.Equal(t, search.Cancelled, first.Wait().Status)

	p.CancelTrajectorySearch()
	out := second.Wait()
	assert.Equal(t, search.Cancelled, out.Status)
	assert.Nil(t, out.Value)
}
