package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ChristopherRabotin/mga"
	"github.com/ChristopherRabotin/mga/planner"
	"github.com/ChristopherRabotin/mga/search"
	"github.com/ChristopherRabotin/mga/sequence"
	"github.com/ChristopherRabotin/mga/solver"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "mgaplan",
		Usage:     "Multiple gravity assist trajectory planner",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{mga.ConfigEnv}, Usage: "Configuration file or directory containing mga.toml"},
			&cli.StringFlag{Name: "system", Aliases: []string{"s"}, Usage: "TOML system file (defaults to the built-in solar system)"},
		},
		Commands: []*cli.Command{
			bodiesCmd(),
			sequencesCmd(),
			optimizeCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// setup loads the configuration and the system, and builds the planner.
func setup(c *cli.Context) (*planner.Planner, error) {
	cfg, err := mga.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	sys, err := loadSystem(c.String("system"))
	if err != nil {
		return nil, err
	}
	return planner.New(sys, cfg, mga.NewLogger(c.App.ErrWriter, cfg.Log)), nil
}

// bodiesCmd creates the bodies command.
func bodiesCmd() *cli.Command {
	return &cli.Command{
		Name:  "bodies",
		Usage: "List the bodies of the system",
		Action: func(c *cli.Context) error {
			sys, err := loadSystem(c.String("system"))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tATTRACTOR\tMU (km^3/s^2)\tRADIUS (km)\tSOI (km)\tPERIOD (days)")
			for _, b := range sys.Bodies() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%.6g\t%.1f\t%.6g\t%.2f\n", b.ID, b.Name, attractorName(sys, b), b.GM(), b.Radius, b.SOI, b.Period().Hours()/24)
			}
			return w.Flush()
		},
	}
}

// sequencesCmd creates the sequences command.
func sequencesCmd() *cli.Command {
	return &cli.Command{
		Name:  "sequences",
		Usage: "Enumerate the flyby sequences between two bodies",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Departure body (name or identifier)"},
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination body (name or identifier)"},
			&cli.IntFlag{Name: "swingbys", Value: 2, Usage: "Maximum number of gravity assists"},
			&cli.IntFlag{Name: "resonant", Value: 0, Usage: "Maximum number of resonant swing-bys"},
			&cli.IntFlag{Name: "backlegs", Value: 1, Usage: "Maximum number of legs toward the attractor"},
			&cli.IntFlag{Name: "spacing", Value: 1, Usage: "Maximum number of legs between two back legs"},
		},
		Action: func(c *cli.Context) error {
			p, err := setup(c)
			if err != nil {
				return err
			}
			sys := p.System()
			from, err := lookupBody(sys, c.String("from"))
			if err != nil {
				return err
			}
			to, err := lookupBody(sys, c.String("to"))
			if err != nil {
				return err
			}
			params := sequence.Parameters{
				Departure:      from.ID,
				Destination:    to.ID,
				MaxSwingBys:    c.Int("swingbys"),
				MaxResonant:    c.Int("resonant"),
				MaxBackLegs:    c.Int("backlegs"),
				MaxBackSpacing: c.Int("spacing"),
			}
			job, err := p.GenerateSequences(params, progressPrinter(c.App.ErrWriter))
			if err != nil {
				return err
			}
			out := wait(job, p.CancelSequenceGeneration)
			switch out.Status {
			case search.Cancelled:
				return cli.Exit("sequence generation cancelled", 130)
			case search.Failed:
				return out.Err
			}
			for _, seq := range out.Value {
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", seq, sys.SequenceNames(seq))
			}
			return nil
		},
	}
}

// optimizeCmd creates the optimize command.
func optimizeCmd() *cli.Command {
	return &cli.Command{
		Name:      "optimize",
		Usage:     "Search the minimum Δv trajectory of a sequence",
		ArgsUsage: "<sequence, e.g. Earth-Venus-Earth-Jupiter>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Required: true, Usage: "Start of the departure window (YYYY-MM-DD, RFC3339 or JDE)"},
			&cli.StringFlag{Name: "until", Required: true, Usage: "End of the departure window"},
			&cli.Float64Flag{Name: "origin-alt", Value: 200, Usage: "Parking orbit altitude at the origin (km)"},
			&cli.Float64Flag{Name: "dest-alt", Value: 500, Usage: "Parking orbit altitude at the destination (km)"},
			&cli.Float64Flag{Name: "flyby-alt", Value: 300, Usage: "Minimum flyby altitude (km)"},
			&cli.Float64Flag{Name: "max-days", Usage: "Maximum mission duration in days (0 for none)"},
			&cli.Float64Flag{Name: "max-vinf", Usage: "Maximum departure V infinity in km/s (0 for none)"},
			&cli.BoolFlag{Name: "no-insertion", Usage: "Flyby the destination instead of capturing"},
			&cli.StringFlag{Name: "export", Usage: "Directory where the maneuvers, the leg states and a Cosmographia catalog are written"},
			&cli.Float64Flag{Name: "export-step", Value: 1, Usage: "Sampling step of the exported leg states in days"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return mga.NewPrecondition("expected exactly one sequence argument")
			}
			p, err := setup(c)
			if err != nil {
				return err
			}
			sys := p.System()
			seq, err := parseSequence(sys, c.Args().First())
			if err != nil {
				return err
			}
			start, err := parseDate(c.String("from"))
			if err != nil {
				return err
			}
			end, err := parseDate(c.String("until"))
			if err != nil {
				return err
			}
			constraints := solver.Constraints{
				Start:               start,
				End:                 end,
				OriginAltitude:      c.Float64("origin-alt"),
				DestinationAltitude: c.Float64("dest-alt"),
				MinFlybyAltitude:    c.Float64("flyby-alt"),
				MaxDuration:         time.Duration(c.Float64("max-days") * 24 * float64(time.Hour)),
				MaxDepartureVInf:    c.Float64("max-vinf"),
				NoInsertion:         c.Bool("no-insertion"),
			}
			job, err := p.SearchOptimalTrajectory(seq, constraints, progressPrinter(c.App.ErrWriter))
			if err != nil {
				return err
			}
			out := wait(job, p.CancelTrajectorySearch)
			switch out.Status {
			case search.Cancelled:
				if best, ok := p.CurrentBestDeltaV(); ok {
					fmt.Fprintf(c.App.ErrWriter, "cancelled, best Δv so far: %.4f km/s\n", best)
				}
				return cli.Exit("trajectory search cancelled", 130)
			case search.Failed:
				return out.Err
			}
			printTrajectory(c.App.Writer, sys, out.Value)
			if dir := c.String("export"); dir != "" {
				step := time.Duration(c.Float64("export-step") * 24 * float64(time.Hour))
				if err := exportTrajectory(dir, sys, out.Value, step); err != nil {
					return err
				}
				fmt.Fprintf(c.App.ErrWriter, "trajectory exported to %s\n", dir)
			}
			return nil
		},
	}
}

// wait blocks until the job completes, cancelling it on SIGINT.
func wait[T any](job *search.Job[T], cancel func()) search.Outcome[T] {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	for {
		select {
		case <-sig:
			cancel()
		case <-job.Done():
			return job.Wait()
		}
	}
}

func progressPrinter(w io.Writer) search.ProgressFunc {
	return func(p search.Progress) {
		fmt.Fprintf(w, "\r%s", p)
		if p.Total > 0 && p.Evaluated >= p.Total {
			fmt.Fprintln(w)
		}
	}
}

func printTrajectory(w io.Writer, sys *mga.System, t *mga.Trajectory) {
	fmt.Fprintf(w, "\n%s\n", sys.SequenceNames(t.Sequence))
	fmt.Fprintf(w, "total Δv: %.4f km/s\tduration: %.1f days\n", t.TotalΔV, t.Duration().Hours()/24)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tBODY\tDATE\t|Δv| (km/s)\tPROGRADE\tNORMAL\tRADIAL\trP (km)")
	for _, m := range t.Maneuvers {
		b, _ := sys.Body(m.Body)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.1f\n", m.Kind, b.Name, m.Date.Format(dateFormat), m.Magnitude, m.Prograde, m.Normal, m.Radial, m.Periapsis)
	}
	tw.Flush()
	for _, l := range t.Legs {
		from, _ := sys.Body(l.From)
		to, _ := sys.Body(l.To)
		resonance := ""
		if l.Resonance[0] > 0 {
			resonance = fmt.Sprintf(" (%d:%d resonance)", l.Resonance[0], l.Resonance[1])
		}
		fmt.Fprintf(w, "%s -> %s: %s -> %s, %.1f days%s\n", from.Name, to.Name, l.Departure.Format(dateFormat), l.Arrival.Format(dateFormat), l.TOF().Hours()/24, resonance)
	}
}

// exportTrajectory writes maneuvers.csv, one leg-<k>.xyzv file per leg and catalog.json into dir.
func exportTrajectory(dir string, sys *mga.System, t *mga.Trajectory, step time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	source := func(k int) string { return fmt.Sprintf("leg-%d.xyzv", k) }
	write := func(name string, fn func(io.Writer) error) error {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	if err := write("maneuvers.csv", func(w io.Writer) error { return mga.ExportManeuvers(w, sys, t) }); err != nil {
		return err
	}
	for k := range t.Legs {
		if err := write(source(k), func(w io.Writer) error { return mga.ExportStates(w, sys, t, k, step) }); err != nil {
			return err
		}
	}
	name := strings.ReplaceAll(sys.SequenceNames(t.Sequence), " ", "")
	return write("catalog.json", func(w io.Writer) error { return mga.ExportCatalog(w, mga.Catalog(sys, t, name, source)) })
}
