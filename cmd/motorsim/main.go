package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/kestrel-aero/motorsim/internal/batch"
	"github.com/kestrel-aero/motorsim/internal/config"
	"github.com/kestrel-aero/motorsim/internal/metrics"
	"github.com/kestrel-aero/motorsim/internal/sim"
	"github.com/kestrel-aero/motorsim/internal/store"
	"github.com/kestrel-aero/motorsim/internal/tui"
	"github.com/kestrel-aero/motorsim/internal/validate"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	maxTime    float64
	ambient    float64
	grainTemp  float64
	adaptive   bool
	noSave     bool

	sweepPorts   string
	sweepThroats string

	refCStar float64
	refIsp   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "motorsim",
		Short: "transient rocket-motor performance simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".motorsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "motor definition file (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named preset motor")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one burn",
		RunE:  runBurn,
	}
	addBurnFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate one burn with a live terminal view",
		RunE:  runLive,
	}
	addBurnFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot thrust and pressure curves of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid-search port radius and throat area for impulse",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sweepPorts, "ports", "0.015,0.02,0.025", "port radii to sweep, comma separated (m)")
	sweepCmd.Flags().StringVar(&sweepThroats, "throats", "", "throat areas to sweep, comma separated (m^2)")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "compare a burn against reference performance values",
		RunE:  runValidate,
	}
	addBurnFlags(validateCmd)
	validateCmd.Flags().Float64Var(&refCStar, "ref-cstar", 0, "reference characteristic velocity (m/s)")
	validateCmd.Flags().Float64Var(&refIsp, "ref-isp", 0, "reference delivered Isp (s)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset motors",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-20s %s\n", name, config.Presets[name].Motor)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, sweepCmd, validateCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBurnFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override (s)")
	cmd.Flags().Float64Var(&maxTime, "time", 0, "time limit override (s)")
	cmd.Flags().Float64Var(&ambient, "ambient", -1, "ambient pressure override (Pa)")
	cmd.Flags().Float64Var(&grainTemp, "grain-temp", 0, "propellant soak temperature override (K)")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "halve dt on solver non-convergence")
}

// loadConfig resolves the motor definition from --preset, --config and
// per-burn flag overrides, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.Default()
	label := "default"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
		cfg = p
		label = preset
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		label = configFile
	}

	if cmd.Flags().Changed("dt") {
		cfg.Sim.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Sim.MaxTime = maxTime
	}
	if cmd.Flags().Changed("ambient") {
		cfg.Sim.Ambient = ambient
	}
	if cmd.Flags().Changed("grain-temp") {
		cfg.Sim.GrainTemp = grainTemp
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Sim.AdaptiveRetry = adaptive
	}
	return cfg, label, nil
}

func runBurn(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	d, err := config.Build(cfg, config.BuildOptions{})
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		d.AddMetric(m)
	}

	fmt.Printf("running %s motor (%s)...\n", cfg.Motor, label)
	start := time.Now()
	result, err := d.Run(context.Background())
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	fmt.Printf("%s in %v, %d steps\n", result.Status, elapsed, len(result.States))
	if result.Truncated {
		fmt.Println("warning: stopped at the time limit before burnout")
	}
	for _, flag := range result.Flags {
		fmt.Printf("flag: %s\n", flag)
	}

	printSummary(result.Summary)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if noSave {
		return nil
	}
	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg.Motor, label, cfg.Sim.Dt, cfg.Sim.MaxTime, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func printSummary(s sim.Summary) {
	fmt.Println("\nsummary:")
	fmt.Printf("  burn time:        %.3f s\n", s.BurnTime)
	fmt.Printf("  total impulse:    %.1f N·s\n", s.TotalImpulse)
	fmt.Printf("  peak thrust:      %.1f N\n", s.MaxThrust)
	fmt.Printf("  average thrust:   %.1f N\n", s.AvgThrust)
	fmt.Printf("  average pressure: %.4g Pa\n", s.AvgPressure)
	fmt.Printf("  burnout pressure: %.4g Pa\n", s.BurnoutPressure)
	fmt.Printf("  delivered Isp:    %.1f s\n", s.DeliveredIsp)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := config.Build(cfg, config.BuildOptions{})
	if err != nil {
		return err
	}

	result, err := tui.Run(context.Background(), d, cfg.Motor+" "+label, cfg.Sim.MaxTime)
	if err != nil {
		return err
	}
	if result != nil {
		printSummary(result.Summary)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMOTOR\tLABEL\tTIME\tSTATUS\tBURN\tIMPULSE\tISP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2fs\t%.1fN·s\t%.1fs\n",
			run.ID,
			run.Motor,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Summary.BurnTime,
			run.Summary.TotalImpulse,
			run.Summary.DeliveredIsp,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s (%s, %s)\n", meta.ID, meta.Motor, meta.Label)
	fmt.Printf("samples: %d\n\n", len(states))

	curves := []struct {
		caption string
		pick    func(sim.State) float64
	}{
		{"thrust (N)", func(s sim.State) float64 { return s.Thrust }},
		{"chamber pressure (Pa)", func(s sim.State) float64 { return s.Pressure }},
		{"port radius (m)", func(s sim.State) float64 { return s.Radius }},
	}
	for _, c := range curves {
		data := make([]float64, len(states))
		for i, s := range states {
			data[i] = c.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(c.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		States:    states,
		Summary:   meta.Summary,
		Status:    statusFromString(meta.Status),
		Truncated: meta.Truncated,
		Metrics:   meta.Metrics,
		Flags:     meta.Flags,
	}
	return store.ExportJSON("-", meta.Motor, meta.Label, meta.Dt, result)
}

func statusFromString(s string) sim.Status {
	switch s {
	case "completed":
		return sim.Completed
	case "burnout_completed":
		return sim.BurnoutCompleted
	default:
		return sim.Failed
	}
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ports, err := parseFloats(sweepPorts)
	if err != nil {
		return fmt.Errorf("--ports: %w", err)
	}
	params := []string{"port_radius"}
	ranges := [][]float64{ports}
	if sweepThroats != "" {
		throats, err := parseFloats(sweepThroats)
		if err != nil {
			return fmt.Errorf("--throats: %w", err)
		}
		params = append(params, "throat_area")
		ranges = append(ranges, throats)
	}

	gs := batch.GridSearch{Params: params, Ranges: ranges}
	fmt.Printf("sweeping %v on %s (%d points)...\n", params, label, gridSize(ranges))

	best, score, err := gs.Search(context.Background(),
		func(p map[string]float64) (*sim.Driver, error) {
			point := *cfg
			point.Grain.PortRadius = p["port_radius"]
			if at, ok := p["throat_area"]; ok {
				point.Nozzle.ThroatArea = at
			}
			return config.Build(&point, config.BuildOptions{})
		},
		func(r *sim.Result) float64 { return r.Summary.TotalImpulse },
	)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("every grid point failed")
	}

	fmt.Printf("best total impulse: %.1f N·s\n", score)
	for k, v := range best {
		fmt.Printf("  %s: %g\n", k, v)
	}
	return nil
}

func gridSize(ranges [][]float64) int {
	n := 1
	for _, r := range ranges {
		n *= len(r)
	}
	return n
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	if refCStar == 0 && refIsp == 0 {
		return fmt.Errorf("supply at least one of --ref-cstar, --ref-isp")
	}

	cfg, label, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	d, err := config.Build(cfg, config.BuildOptions{})
	if err != nil {
		return err
	}

	fmt.Printf("validating %s against reference values...\n", label)
	result, err := d.Run(context.Background())
	if err != nil {
		return err
	}

	recs := validate.CompareAll(
		validate.Reference{CStar: refCStar, Isp: refIsp},
		validate.Computed{CStar: cfg.Propellant.CStar, Isp: result.Summary.DeliveredIsp},
		validate.DefaultBands(),
	)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tREFERENCE\tCOMPUTED\tREL DEV\tBAND")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.4f%%\t%s\n",
			r.Metric, r.Reference, r.Computed, r.RelDev*100, r.Band)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if validate.Worst(recs) == validate.Poor {
		return fmt.Errorf("validation outside acceptable bands")
	}
	return nil
}
