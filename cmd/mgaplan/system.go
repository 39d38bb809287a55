package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"

	"github.com/ChristopherRabotin/mga"
)

const dateFormat = "2006-01-02"

// bodyEntry is a [[body]] table of a system file. Angles are in degrees, distances in km.
type bodyEntry struct {
	ID        int     `mapstructure:"id"`
	Name      string  `mapstructure:"name"`
	Attractor int     `mapstructure:"attractor"`
	Mu        float64 `mapstructure:"mu"`
	Radius    float64 `mapstructure:"radius"`
	SOI       float64 `mapstructure:"soi"`
	A         float64 `mapstructure:"a"`
	E         float64 `mapstructure:"e"`
	I         float64 `mapstructure:"i"`
	RAAN      float64 `mapstructure:"raan"`
	ArgPeri   float64 `mapstructure:"argp"`
	M0        float64 `mapstructure:"m0"`
	Epoch     string  `mapstructure:"epoch"`
}

// loadSystem reads a TOML system file, or returns the built-in solar system when path is empty.
func loadSystem(path string) (*mga.System, error) {
	if path == "" {
		return mga.SolarSystem(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, mga.NewPrecondition("could not read system %s: %s", path, err)
	}
	var entries []bodyEntry
	if err := v.UnmarshalKey("body", &entries); err != nil {
		return nil, mga.NewPrecondition("could not understand bodies of %s: %s", path, err)
	}
	bodies := make([]mga.Body, len(entries))
	for i, e := range entries {
		epoch := mga.J2000
		if e.Epoch != "" {
			var err error
			if epoch, err = parseDate(e.Epoch); err != nil {
				return nil, err
			}
		}
		el := mga.Elements{
			A:       e.A,
			E:       e.E,
			I:       mga.Deg2rad(e.I),
			RAAN:    mga.Deg2rad(e.RAAN),
			ArgPeri: mga.Deg2rad(e.ArgPeri),
			M0:      mga.Deg2rad(e.M0),
			Epoch:   epoch,
		}
		bodies[i] = mga.NewBody(mga.BodyID(e.ID), e.Name, mga.BodyID(e.Attractor), e.Mu, e.Radius, e.SOI, el)
	}
	return mga.NewSystem(bodies)
}

// parseDate reads a Julian date or a calendar date (2006-01-02 or RFC3339), in UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if jde, err := strconv.ParseFloat(s, 64); err == nil {
		return julian.JDToTime(jde), nil
	}
	for _, layout := range []string{dateFormat, time.RFC3339} {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt.UTC(), nil
		}
	}
	return time.Time{}, mga.NewPrecondition("could not understand date %q", s)
}

// parseSequence reads a sequence of body names or identifiers separated by dashes.
func parseSequence(sys *mga.System, s string) (mga.Sequence, error) {
	if seq, err := mga.ParseSequence(s); err == nil {
		return seq, nil
	}
	parts := strings.Split(s, "-")
	seq := make(mga.Sequence, len(parts))
	for i, name := range parts {
		b, ok := sys.ByName(name)
		if !ok {
			return nil, mga.NewPrecondition("unknown body %q", name)
		}
		seq[i] = b.ID
	}
	if len(seq) < 2 {
		return nil, mga.NewPrecondition("sequence %q needs at least an origin and a destination", s)
	}
	return seq, nil
}

// lookupBody finds a body by name or identifier.
func lookupBody(sys *mga.System, s string) (mga.Body, error) {
	if id, err := strconv.Atoi(s); err == nil {
		if b, ok := sys.Body(mga.BodyID(id)); ok {
			return b, nil
		}
	}
	if b, ok := sys.ByName(s); ok {
		return b, nil
	}
	return mga.Body{}, mga.NewPrecondition("unknown body %q", s)
}

func attractorName(sys *mga.System, b mga.Body) string {
	if b.IsStar() {
		return "-"
	}
	if a, ok := sys.Body(b.Attractor); ok {
		return a.Name
	}
	return fmt.Sprintf("%d", b.Attractor)
}
