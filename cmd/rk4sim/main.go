package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/san-kum/rk4sim/internal/analysis"
	"github.com/san-kum/rk4sim/internal/automation"
	"github.com/san-kum/rk4sim/internal/config"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/experiment"
	"github.com/san-kum/rk4sim/internal/export"
	"github.com/san-kum/rk4sim/internal/logging"
	"github.com/san-kum/rk4sim/internal/optim"
	"github.com/san-kum/rk4sim/internal/storage"
	"github.com/san-kum/rk4sim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	// Run parameters
	dt        float64
	duration  float64
	x0        float64
	infected  float64
	recovered float64
	r0        float64
	removal   float64
	// Config file
	configFile string
	// Preset name
	preset string
	// Print a chart after the run
	plotAfter bool
	// Series selection for plot and export-svg
	series  []string
	outFile string
	// Phase portrait axes for export-svg
	phase []string
	// Convergence study span
	span float64
	// Parameter sweep
	sweepParams []string
	metricName  string
	maximize    bool
	// Live view theme
	themeName string
	// Monte Carlo
	trials  int
	perturb float64
	seed    uint64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rk4sim",
		Short:        "fixed-step RK4 integration lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rk4sim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and save the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&plotAfter, "plot", false, "print a chart of every component")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range experiment.NewRegistry().ListModels() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&series, "series", nil, "components to plot (default all)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a line chart of run data to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&outFile, "out", "", "output path (default <run_id>.svg)")
	exportSVGCmd.Flags().StringSliceVar(&series, "series", nil, "components to draw (default all)")
	exportSVGCmd.Flags().StringSliceVar(&phase, "phase", nil, "draw a phase portrait of two components, e.g. x,z")
	exportSVGCmd.MarkFlagsMutuallyExclusive("series", "phase")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Fprintf(out, "no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Fprintf(out, "  %s\n", p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "step a model interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&themeName, "theme", viz.ThemeMinimal.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	convergeCmd := &cobra.Command{
		Use:   "converge [model]",
		Short: "estimate the observed order of accuracy by step halving",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConvergence,
	}
	addRunFlags(convergeCmd)
	convergeCmd.Flags().Float64Var(&span, "span", 10, "integration span")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a model over a grid of parameter values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter values as name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "", "metric to compare (default: first model metric)")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer the largest metric value")
	sweepCmd.MarkFlagRequired("param")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "report the dominant frequency of each series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runSpectrum,
	}
	spectrumCmd.Flags().StringSliceVar(&series, "series", nil, "series to analyse (default: all)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "run a scripted sequence of simulations from a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [model]",
		Short: "run a model from randomly perturbed initial states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.05, "relative initial state perturbation")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().StringVar(&metricName, "metric", "", "metric to summarise (default: first model metric)")

	rootCmd.AddCommand(runCmd, listCmd, modelsCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd,
		liveCmd, convergeCmd, sweepCmd, spectrumCmd, scenarioCmd, monteCarloCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "step size (negative integrates backward)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&x0, "x0", 0, "initial point")
	cmd.Flags().Float64Var(&infected, "infected", config.DefaultInfected, "initial infected fraction (sir)")
	cmd.Flags().Float64Var(&recovered, "recovered", 0, "initial recovered fraction (sir)")
	cmd.Flags().Float64Var(&r0, "r0", 3, "basic reproduction number (sir)")
	cmd.Flags().Float64Var(&removal, "removal", 1.0/3.0, "removal rate per day (sir)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// newLogger honours log_level from the config file unless --log-level was
// given explicitly.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := logLevel
	if cfg != nil && cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
		level = cfg.LogLevel
	}
	return logging.NewLogger(level, cmd.ErrOrStderr())
}

// resolveConfig layers defaults, preset, config file and explicit flags, in
// that order, and validates the result.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	model := "sir"
	if len(args) > 0 {
		model = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 {
			model = cfg.Model
		}
	}
	cfg.Model = model

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("x0") {
		cfg.X0 = x0
	}
	if flags.Changed("infected") {
		cfg.InitState.Infected = infected
	}
	if flags.Changed("recovered") {
		cfg.InitState.Recovered = recovered
	}
	if flags.Changed("r0") {
		cfg.SIR.R0 = r0
	}
	if flags.Changed("removal") {
		cfg.SIR.Removal = removal
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	out := cmd.OutOrStdout()

	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	sys, err := registry.GetModel(cfg.Model, cfg)
	if err != nil {
		return err
	}

	exp := experiment.New(experiment.FromConfig(cfg), logger)
	if err := exp.Setup(sys, registry.DefaultMetrics(cfg.Model)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(out, "running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	info := storage.RunInfo{
		Model:  cfg.Model,
		Preset: preset,
		Dt:     cfg.Dt,
		X0:     cfg.X0,
		Steps:  cfg.Steps(),
	}
	if c, ok := sys.(dynamo.Configurable); ok {
		info.Params = c.GetParams()
	}
	runID, err := st.Save(info, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d\n", result.StepsTaken)
	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}

	if plotAfter {
		return printChart(out, result, nil, cfg.Model)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir, newLogger(cmd, nil))
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tDT\tX0\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			run.X0,
			run.Integrator,
		)
	}

	return w.Flush()
}

func loadRun(cmd *cobra.Command, runID string) (*storage.RunMetadata, *dynamo.Result, error) {
	st := storage.New(dataDir, newLogger(cmd, nil))
	meta, result, err := st.LoadResult(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(result.States) == 0 {
		return nil, nil, fmt.Errorf("run %s has no data", runID)
	}
	return meta, result, nil
}

// columns transposes the recorded states into one slice per component.
func columns(result *dynamo.Result) [][]float64 {
	cols := make([][]float64, len(result.States[0]))
	for i := range cols {
		cols[i] = result.Component(i)
	}
	return cols
}

func printChart(out io.Writer, result *dynamo.Result, names []string, caption string) error {
	data, labels, err := viz.SelectSeries(columns(result), result.Labels, names)
	if err != nil {
		return err
	}
	opts := viz.DefaultPlotOptions()
	opts.Caption = fmt.Sprintf("%s vs x", strings.Join(labels, ", "))
	if caption != "" {
		opts.Caption = caption + ": " + opts.Caption
	}
	var chart string
	if len(data) == 1 {
		chart, err = viz.PlotComponent(data[0], labels[0], opts)
	} else {
		chart, err = viz.PlotSeries(data, labels, opts)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, chart)
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "model: %s\n", meta.Model)
	fmt.Fprintf(out, "samples: %d\n\n", len(result.States))

	return printChart(out, result, series, "")
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(cmd.OutOrStdout(), result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(cmd.OutOrStdout(), meta, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	var svg string
	if len(phase) > 0 {
		svg, err = phaseSVG(result)
	} else {
		svg, err = seriesSVG(result)
	}
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func seriesSVG(result *dynamo.Result) (string, error) {
	data, labels, err := viz.SelectSeries(columns(result), result.Labels, series)
	if err != nil {
		return "", err
	}
	lines := make([]export.Series, len(data))
	for i := range data {
		lines[i] = export.Series{Name: labels[i], Values: data[i]}
	}
	return export.SeriesToSVG(result.Times, lines, 800, 400)
}

func phaseSVG(result *dynamo.Result) (string, error) {
	if len(phase) != 2 {
		return "", fmt.Errorf("--phase needs exactly two components, got %v", phase)
	}
	data, _, err := viz.SelectSeries(columns(result), result.Labels, phase)
	if err != nil {
		return "", err
	}
	svg := export.TrajectoryToSVG(data[0], data[1], 600, 600, export.Palette[0])
	if svg == "" {
		return "", fmt.Errorf("run has too few samples for a phase portrait")
	}
	return svg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	if !slices.Contains(viz.ThemeNames(), themeName) {
		return fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
	}
	viz.SetTheme(themeName)

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("live view needs an interactive terminal")
	}

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sys, err := experiment.NewRegistry().GetModel(cfg.Model, cfg)
	if err != nil {
		return err
	}

	m, err := viz.NewLive(cfg.Model, sys, cfg.Dt, cfg.X0, cfg.GetInitState())
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

func runConvergence(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	sys, err := experiment.NewRegistry().GetModel(cfg.Model, cfg)
	if err != nil {
		return err
	}

	newLogger(cmd, cfg).Debug("convergence study", "model", cfg.Model, "span", span, "h", cfg.Dt)
	c, err := analysis.EstimateOrder(sys.Derive, cfg.X0, cfg.GetInitState(), span, cfg.Dt)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "H\t%s\n", strings.Join(sys.Labels(), "\t"))
	for i, h := range c.StepSizes {
		fmt.Fprintf(w, "%g\t%s\n", h, formatState(c.Finals[i]))
	}
	fmt.Fprintf(w, "richardson\t%s\n", formatState(c.Estimate))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nobserved order: %.3f\n", c.Order)
	return nil
}

func formatState(y dynamo.State) string {
	parts := make([]string, len(y))
	for i, v := range y {
		parts[i] = fmt.Sprintf("%.10g", v)
	}
	return strings.Join(parts, "\t")
}

// parseSweepParams turns "r0=1.5,2,3" flags into grid axes, keeping flag order.
func parseSweepParams(raw []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(raw))
	ranges := make([][]float64, 0, len(raw))
	for _, p := range raw {
		name, list, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("invalid --param %q (want name=v1,v2,...)", p)
		}
		var values []float64
		for _, v := range strings.Split(list, ",") {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid value in --param %q: %w", p, err)
			}
			values = append(values, f)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names, ranges, err := parseSweepParams(sweepParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	if maximize {
		grid.Maximize()
	}

	registry := experiment.NewRegistry()
	metric, err := pickMetric(registry, cfg.Model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	newLogger(cmd, cfg).Debug("parameter sweep", "model", cfg.Model, "params", names, "metric", metric)
	points, best, err := grid.Search(ctx, optim.ExperimentBuilder(cfg, registry), metric)

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), metric)
	for _, p := range points {
		values := make([]string, len(names))
		for i, name := range names {
			values[i] = strconv.FormatFloat(p.Params[name], 'g', -1, 64)
		}
		result := fmt.Sprintf("%.6g", p.Value)
		if p.Err != nil {
			result = "error: " + p.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(values, "\t"), result)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nbest %s: %.6g at", metric, best.Value)
	for _, name := range names {
		fmt.Fprintf(out, " %s=%g", name, best.Params[name])
	}
	fmt.Fprintln(out)
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	meta, result, err := loadRun(cmd, args[0])
	if err != nil {
		return err
	}

	data, labels, err := viz.SelectSeries(columns(result), result.Labels, series)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tFREQUENCY\tPERIOD")
	for i, values := range data {
		f, err := analysis.DominantFrequency(values, meta.Dt)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t%v\n", labels[i], err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\n", labels[i], f, 1/f)
	}
	return w.Flush()
}

func pickMetric(registry *experiment.Registry, model string) (string, error) {
	if metricName != "" {
		return metricName, nil
	}
	defaults := registry.DefaultMetrics(model)
	if len(defaults) == 0 {
		return "", fmt.Errorf("model %s has no metrics", model)
	}
	return defaults[0].Name(), nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	logger := newLogger(cmd, nil)
	st := storage.New(dataDir, logger)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scenario: %s\n", sc.Name)
	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st, logger)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tSTEPS\tRUN")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.Step, r.Model, r.Result.StepsTaken, id)
	}
	if flushErr := w.Flush(); flushErr != nil {
		return flushErr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	metric, err := pickMetric(registry, cfg.Model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturb,
		NumTrials:    trials,
		Metric:       metric,
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(ctx, mc, registry, newLogger(cmd, cfg))
	if err != nil {
		return err
	}

	stable, unstable, mean, sd := automation.MonteCarloStats(results)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "trials: %d (stable %d, unstable %d)\n", len(results), stable, unstable)
	fmt.Fprintf(out, "%s: mean %.6g, stddev %.6g\n", metric, mean, sd)
	return nil
}
