package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/multiphys/internal/analysis"
	"github.com/san-kum/multiphys/internal/config"
	"github.com/san-kum/multiphys/internal/export"
	"github.com/san-kum/multiphys/internal/integrators"
	"github.com/san-kum/multiphys/internal/optim"
	"github.com/san-kum/multiphys/internal/sim"
	"github.com/san-kum/multiphys/internal/storage"
	"github.com/san-kum/multiphys/internal/viz"
)

var (
	dataDir     string
	configFile  string
	dt          float64
	steps       int
	integrator  string
	sweepLevels int
	exportPath  string
	svgPath     string
	checkEvery  bool

	tuneRing   string
	tuneParam  string
	tuneMin    float64
	tuneMax    float64
	tunePoints int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "multiphys",
		Short: "coupled multi-domain physics simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".multiphys", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario to completion",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")
	runCmd.Flags().IntVar(&steps, "steps", 0, "override step count")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "override integrator")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also export the trace to a JSON file")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "also render the trace to an SVG file")
	runCmd.Flags().BoolVar(&checkEvery, "check-every-step", false, "audit conservation after every step")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	liveCmd.Flags().Float64Var(&dt, "dt", 0, "override timestep")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "convergence sweep over halved timesteps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	sweepCmd.Flags().IntVar(&sweepLevels, "levels", 3, "refinement levels")

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list built-in scenarios",
		RunE:  listScenarios,
	}

	ringsCmd := &cobra.Command{
		Use:   "rings",
		Short: "list solver types and integrators",
		RunE:  listRings,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run's energy trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scenario]",
		Short: "grid-search one ring parameter for minimum energy drift",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	tuneCmd.Flags().StringVar(&tuneRing, "ring", "", "ring id to tune")
	tuneCmd.Flags().StringVar(&tuneParam, "param", "", "parameter key to tune")
	tuneCmd.Flags().Float64Var(&tuneMin, "min", 0, "sweep lower bound")
	tuneCmd.Flags().Float64Var(&tuneMax, "max", 1, "sweep upper bound")
	tuneCmd.Flags().IntVar(&tunePoints, "points", 5, "sweep points")
	tuneCmd.MarkFlagRequired("ring")
	tuneCmd.MarkFlagRequired("param")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, tuneCmd, scenariosCmd, ringsCmd, listCmd, plotCmd, analyzeCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadScenario resolves the scenario from a file, a preset name, or the
// default, then applies flag overrides.
func loadScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config

	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		cfg = loaded
	case len(args) == 1:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			names := config.ListPresets()
			sort.Strings(names)
			return nil, fmt.Errorf("unknown scenario %q (available: %v)", args[0], names)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("check-every-step") {
		cfg.Ledger.CheckEveryStep = checkEvery
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s (%d steps, dt=%g)...\n", cfg.Name, cfg.Steps, cfg.Dt)
	start := time.Now()

	result, runErr := runner.Run(context.Background(), nil)
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", result.StepsTaken, elapsed)
	fmt.Printf("run id: %s\n", runID)

	if graph := viz.RenderTrace(result.Energy, "total energy"); graph != "" {
		fmt.Println()
		fmt.Println(graph)
	}

	fmt.Println("\nfinal state:")
	fmt.Print(viz.SummaryTable(result.Records[len(result.Records)-1]))

	fmt.Println("\nconservation audit:")
	for _, q := range []string{"energy", "momentum", "mass", "entropy"} {
		if v, ok := result.Audit.Errors[q]; ok {
			fmt.Printf("  %-10s drift %.3e\n", q, v)
		}
	}
	if !result.Audit.Valid {
		for _, v := range result.Audit.Violations {
			fmt.Printf("  violation: %s\n", v)
		}
	}
	for _, e := range result.Errors {
		fmt.Printf("  logged: %v\n", e)
	}

	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, cfg, result); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", exportPath)
	}
	if svgPath != "" {
		series := []export.Series{
			{Name: "energy", Values: result.Energy, Color: "#00ff88"},
			{Name: "entropy", Values: result.Entropy, Color: "#ffaa00"},
		}
		if err := export.WriteTraceSVG(svgPath, result.Times, series, 800, 300); err != nil {
			return err
		}
		fmt.Printf("rendered to %s\n", svgPath)
	}

	return runErr
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	gs := optim.NewGridSearch(cfg, []optim.Axis{
		{Ring: tuneRing, Param: tuneParam, Min: tuneMin, Max: tuneMax, Points: tunePoints},
	})

	fmt.Printf("tuning %s.%s over [%g, %g] in %d points...\n",
		tuneRing, tuneParam, tuneMin, tuneMax, tunePoints)
	best, table, err := gs.Search(context.Background(), nil)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s.%s\tenergy drift\n", tuneRing, tuneParam)
	for _, p := range table {
		fmt.Fprintf(w, "%g\t%.3e\n", p.Params[tuneRing+"."+tuneParam], p.Cost)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %s.%s = %g (drift %.3e)\n",
		tuneRing, tuneParam, best.Params[tuneRing+"."+tuneParam], best.Cost)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	runner, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(runner), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	base, err := sim.Build(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("sweeping %s over %d refinement levels...\n", cfg.Name, sweepLevels)
	results, err := sim.Sweep(context.Background(), base, sweepLevels)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "dt\tsteps\tenergy drift")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3e\n", r.Dt, r.Steps, r.EnergyDrift)
	}
	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "scenario\trings\tsteps\tdt")
	for _, name := range names {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\n", name, len(cfg.Rings), cfg.Steps, cfg.Dt)
	}
	return w.Flush()
}

func listRings(cmd *cobra.Command, args []string) error {
	fmt.Println("solver types:")
	for _, name := range sim.RingTypes() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("\nintegrators:")
	for _, name := range integrators.Names() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\tscenario\tsteps\taudit")
	for _, r := range runs {
		audit := "ok"
		if !r.AuditValid {
			audit = fmt.Sprintf("%d violations", len(r.Violations))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Scenario, r.Steps, audit)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	records, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s has no series data", args[0])
	}

	energy := make([]float64, len(records))
	for i, rec := range records {
		energy[i] = rec["total_energy"]
	}
	fmt.Println(viz.RenderTrace(energy, "total energy"))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	records, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(records) < 4 {
		return fmt.Errorf("run %s is too short to analyze", args[0])
	}

	energy := make([]float64, len(records))
	for i, rec := range records {
		energy[i] = rec["total_energy"]
	}

	dominant := analysis.DominantFrequency(energy, meta.Dt)
	damping := analysis.Damping(energy, meta.Dt)
	spectrum := analysis.Spectrum(energy, meta.Dt)

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Scenario)
	fmt.Printf("dominant frequency: %.4f Hz\n", dominant)
	fmt.Printf("damping rate: %.4f 1/s\n", damping)

	if graph := viz.RenderTrace(analysis.PowerSeries(spectrum), "power spectrum"); graph != "" {
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}
