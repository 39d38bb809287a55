package mga

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// earthMars returns a one leg trajectory from a Lambert arc between the built-in Earth and Mars.
func earthMars(t *testing.T) (*System, *Trajectory) {
	t.Helper()
	sys := SolarSystem()
	earth, _ := sys.Body(EarthID)
	mars, _ := sys.Body(MarsID)
	dep := time.Date(2033, 4, 1, 0, 0, 0, 0, time.UTC)
	arr := dep.Add(200 * 24 * time.Hour)
	R0, V0, err := earth.StateAt(dep)
	require.NoError(t, err)
	R1, V1, err := mars.StateAt(arr)
	require.NoError(t, err)
	Vi, Vf, err := LambertRV(R0, R1, arr.Sub(dep), earth.AttractorGM())
	require.NoError(t, err)
	return sys, &Trajectory{
		Sequence: Sequence{EarthID, MarsID},
		Maneuvers: []Maneuver{
			{Kind: Departure, Body: EarthID, Date: dep, Prograde: 3.1, Normal: 0.2, Radial: -0.1, Magnitude: 3.5, Periapsis: 6578},
			{Kind: Flyby, Body: MarsID, Date: arr, Periapsis: math.Inf(1)},
		},
		Legs:  []Leg{{From: EarthID, To: MarsID, Departure: dep, Arrival: arr, VInfOut: Sub(Vi, V0), VInfIn: Sub(Vf, V1)}},
		Dates: []time.Time{dep, arr},
	}
}

func TestLegStates(t *testing.T) {
	sys, traj := earthMars(t)
	states, err := LegStates(sys, traj, 0, 10*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, states, 21)

	earth, _ := sys.Body(EarthID)
	μ := earth.AttractorGM()
	energy := func(s CgInterpolatedState) float64 {
		return Dot(s.Velocity, s.Velocity)/2 - μ/Norm(s.Position)
	}
	ξ := energy(states[0])
	for i, s := range states {
		assert.InEpsilon(t, ξ, energy(s), 1e-6, "energy not conserved at state %d", i)
		if i > 0 {
			assert.Greater(t, s.JD, states[i-1].JD)
		}
	}
	R0, _, _ := earth.StateAt(traj.Legs[0].Departure)
	assert.InDeltaSlice(t, R0, states[0].Position, 1e-6)

	_, err = LegStates(sys, traj, 1, time.Hour)
	assert.True(t, IsKind(err, KindPrecondition))
	_, err = LegStates(sys, traj, 0, 0)
	assert.True(t, IsKind(err, KindPrecondition))
}

func TestExportManeuvers(t *testing.T) {
	sys, traj := earthMars(t)
	var buf bytes.Buffer
	require.NoError(t, ExportManeuvers(&buf, sys, traj))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, maneuverHeader, records[0])
	assert.Equal(t, []string{"departure", "Earth"}, records[1][:2])
	assert.Equal(t, "3.100000", records[1][4])
	assert.Equal(t, "6578.000000", records[1][8])
	assert.Equal(t, "Mars", records[2][1])
	assert.Equal(t, "inf", records[2][8])
}

func TestExportStates(t *testing.T) {
	sys, traj := earthMars(t)
	var buf bytes.Buffer
	require.NoError(t, ExportStates(&buf, sys, traj, 0, 50*24*time.Hour))
	var records int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		records++
		assert.Len(t, strings.Fields(line), 7)
	}
	assert.Equal(t, 5, records)
}

func TestCatalog(t *testing.T) {
	sys, traj := earthMars(t)
	c := Catalog(sys, traj, "Earth-Mars", func(k int) string { return "leg.xyzv" })
	require.Len(t, c.Items, 1)
	item := c.Items[0]
	assert.Equal(t, "Earth-Mars-0", item.Name)
	assert.Equal(t, "Sun", item.Center)
	assert.Equal(t, "EclipticJ2000", item.TrajectoryFrame)
	assert.Equal(t, "leg.xyzv", item.Trajectory.Source)
	assert.Equal(t, "201 d", item.TrajectoryPlot.Duration)

	var buf bytes.Buffer
	require.NoError(t, ExportCatalog(&buf, c))
	var back CgCatalog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, c, back)
}
