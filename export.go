package mga

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog is a Cosmographia catalog.
type CgCatalog struct {
	Version string    `json:"version"`
	Name    string    `json:"name"`
	Items   []CgItems `json:"items,omitempty"`
}

// CgItems is one spacecraft arc of a catalog.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory"`
	Label           *CgLabel          `json:"label"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot"`
}

// CgTrajectory points to the interpolated states of an arc.
type CgTrajectory struct {
	Type   string `json:"type"`
	Source string `json:"source"`
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of an interpolated states file.
type CgInterpolatedState struct {
	JD       float64
	Position []float64
	Velocity []float64
}

// ToText converts to text for written output.
func (i CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%f %f %f %f %f %f %f", i.JD, i.Position[0], i.Position[1], i.Position[2], i.Velocity[0], i.Velocity[1], i.Velocity[2])
}

var maneuverHeader = []string{"kind", "body", "date", "jde", "prograde", "normal", "radial", "magnitude", "periapsis"}

// ExportManeuvers writes the maneuvers of t as CSV, one row per burn. Velocities are in km/s.
func ExportManeuvers(w io.Writer, sys *System, t *Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(maneuverHeader); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, m := range t.Maneuvers {
		name := strconv.Itoa(int(m.Body))
		if b, ok := sys.Body(m.Body); ok {
			name = b.Name
		}
		rp := "inf"
		if !math.IsInf(m.Periapsis, 0) {
			rp = f(m.Periapsis)
		}
		rec := []string{m.Kind.String(), name, m.Date.UTC().Format(time.RFC3339), f(julian.TimeToJD(m.Date)),
			f(m.Prograde), f(m.Normal), f(m.Radial), f(m.Magnitude), rp}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LegStates samples the spacecraft state along leg k of t every step, in the frame of the attractor of
// the leg. Both encounters are always included. Open conics are reported by their end points only.
func LegStates(sys *System, t *Trajectory, k int, step time.Duration) ([]CgInterpolatedState, error) {
	if k < 0 || k >= len(t.Legs) {
		return nil, NewPrecondition("no leg %d in a trajectory of %d legs", k, len(t.Legs))
	}
	if step <= 0 {
		return nil, NewPrecondition("sampling step must be positive")
	}
	l := t.Legs[k]
	from, ok := sys.Body(l.From)
	if !ok {
		return nil, NewPrecondition("unknown body %d", l.From)
	}
	to, ok := sys.Body(l.To)
	if !ok {
		return nil, NewPrecondition("unknown body %d", l.To)
	}
	R0, V0, err := from.StateAt(l.Departure)
	if err != nil {
		return nil, err
	}
	R1, V1, err := to.StateAt(l.Arrival)
	if err != nil {
		return nil, err
	}
	first := CgInterpolatedState{JD: julian.TimeToJD(l.Departure), Position: R0, Velocity: Add(V0, l.VInfOut)}
	last := CgInterpolatedState{JD: julian.TimeToJD(l.Arrival), Position: R1, Velocity: Add(V1, l.VInfIn)}
	μ := from.AttractorGM()
	o, err := NewOrbitFromRV(first.Position, first.Velocity, μ)
	if err != nil || o.e >= 1 {
		return []CgInterpolatedState{first, last}, nil
	}
	a, e, i, Ω, ω, ν, _, _, _ := o.Elements()
	E := 2 * math.Atan(math.Sqrt((1-e)/(1+e))*math.Tan(ν/2))
	el := Elements{A: a, E: e, I: i, RAAN: Ω, ArgPeri: ω, M0: E - e*math.Sin(E), Epoch: l.Departure}
	states := []CgInterpolatedState{first}
	for dt := l.Departure.Add(step); dt.Before(l.Arrival); dt = dt.Add(step) {
		R, V, err := el.StateAt(dt, μ)
		if err != nil {
			return nil, err
		}
		states = append(states, CgInterpolatedState{JD: julian.TimeToJD(dt), Position: R, Velocity: V})
	}
	return append(states, last), nil
}

// ExportStates writes the sampled states of leg k in the Cosmographia interpolated states format.
func ExportStates(w io.Writer, sys *System, t *Trajectory, k int, step time.Duration) error {
	states, err := LegStates(sys, t, k, step)
	if err != nil {
		return err
	}
	l := t.Legs[k]
	if _, err := fmt.Fprintf(w, `# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a TDB Julian date
#   Position in km
#   Velocity in km/sec
#   Leg start (UTC): %s`, l.Departure.UTC()); err != nil {
		return err
	}
	for _, s := range states {
		if _, err := io.WriteString(w, "\n"+s.ToText()); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "\n# Leg end (UTC): %s\n", l.Arrival.UTC())
	return err
}

// Catalog returns the Cosmographia catalog of t, whose leg k reads its states from source(k).
func Catalog(sys *System, t *Trajectory, name string, source func(k int) string) CgCatalog {
	c := CgCatalog{Version: "1.0", Name: name}
	color := []float64{0.6, 1, 1}
	for k, l := range t.Legs {
		center := "Sun"
		frame := "EclipticJ2000"
		if b, ok := sys.Body(l.From); ok {
			if att, ok := sys.Body(b.Attractor); ok {
				center = att.Name
				if !att.IsStar() {
					frame = "ICRF"
				}
			}
		}
		c.Items = append(c.Items, CgItems{
			Class:           "spacecraft",
			Name:            fmt.Sprintf("%s-%d", name, k),
			StartTime:       l.Departure.UTC().String(),
			EndTime:         l.Arrival.UTC().String(),
			Center:          center,
			TrajectoryFrame: frame,
			Trajectory:      &CgTrajectory{Type: "InterpolatedStates", Source: source(k)},
			Label:           &CgLabel{Color: color, FadeSize: 1000000, ShowText: true},
			TrajectoryPlot: &CgTrajectoryPlot{Color: color, LineWidth: 1, Lead: "0 d", SampleCount: 10,
				Duration: fmt.Sprintf("%d d", int(l.TOF().Hours()/24+1))},
		})
		color = shiftColor(color)
	}
	return c
}

// ExportCatalog writes the catalog as JSON.
func ExportCatalog(w io.Writer, c CgCatalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

func shiftColor(c []float64) []float64 {
	n := make([]float64, 3)
	for i := range c {
		n[i] = c[i] - 0.2
		if n[i] < 0 {
			n[i]++
		}
	}
	return n
}
