package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/photonrlc/internal/automation"
	"github.com/san-kum/photonrlc/internal/config"
	"github.com/san-kum/photonrlc/internal/experiment"
	"github.com/san-kum/photonrlc/internal/logging"
	"github.com/san-kum/photonrlc/internal/storage"
	"github.com/san-kum/photonrlc/internal/telemetry"
	"github.com/san-kum/photonrlc/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	logger    = zap.NewNop()

	configFile string
	preset     string

	trials      int
	workers     int
	seed        uint64
	integrator  string
	resistance  float64
	inductance  float64
	capacitance float64
	temperature float64
	intensity   int
	sigmaRatio  float64
	endTime     float64
	dt          float64

	live        bool
	plot        bool
	noSave      bool
	label       string
	metricsAddr string

	trialIndex int
	trialPlot  bool

	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "photonrlc",
		Short:         "thermal photons perturbing an RLC oscillator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logFormat)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".photonrlc", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a batch of trials and summarize the energy deltas",
		Args:  cobra.NoArgs,
		RunE:  runTrials,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "show a live progress view")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the first trial's currents")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&label, "label", "", "run label")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	trialCmd := &cobra.Command{
		Use:   "trial",
		Short: "run a single trial and print its bookkeeping",
		Args:  cobra.NoArgs,
		RunE:  runSingleTrial,
	}
	addScenarioFlags(trialCmd)
	trialCmd.Flags().IntVar(&trialIndex, "index", 0, "trial index within the seeded batch")
	trialCmd.Flags().BoolVar(&trialPlot, "plot", true, "plot the currents")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "summarize the energy delta across values of one parameter",
		Long:  "sweepable parameters: " + strings.Join(experiment.Tunable(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the sweep")
	sweepCmd.Flags().StringVar(&label, "label", "", "sweep label")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the batches of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(scenarioCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	integratorsCmd := &cobra.Command{
		Use:   "integrators",
		Short: "list integrators",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range experiment.NewRegistry().ListIntegrators() {
				fmt.Println(name)
			}
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	addScenarioFlags(initConfigCmd)

	rootCmd.AddCommand(runCmd, trialCmd, sweepCmd, scenarioCmd, presetsCmd, integratorsCmd, initConfigCmd)
	rootCmd.AddCommand(runCommands()...)
	return rootCmd
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&trials, "trials", config.DefaultTrials, "number of trials")
	f.IntVar(&workers, "workers", 0, "concurrent trials (0 = one per CPU)")
	f.Uint64Var(&seed, "seed", 0, "base seed (0 = random)")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&resistance, "resistance", config.DefaultResistance, "resistance (ohm)")
	f.Float64Var(&inductance, "inductance", config.DefaultInductance, "inductance (H)")
	f.Float64Var(&capacitance, "capacitance", config.DefaultCapacitance, "capacitance (F)")
	f.Float64Var(&temperature, "temperature", config.DefaultTemperature, "source temperature (K)")
	f.IntVar(&intensity, "intensity", config.DefaultIntensity, "photons per segment")
	f.Float64Var(&sigmaRatio, "sigma-ratio", config.DefaultSigmaRatio, "aperture over coupling sigma")
	f.Float64Var(&endTime, "end", config.DefaultEnd, "end time (s)")
	f.Float64Var(&dt, "dt", config.DefaultDt, "segment length (s)")
}

// loadConfig resolves --preset or --config, then applies explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case preset != "" && configFile != "":
		return nil, errors.New("use either --preset or --config")
	case preset != "":
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("trials") {
		cfg.Trials.Count = trials
	}
	if f.Changed("workers") {
		cfg.Trials.Workers = workers
	}
	if f.Changed("seed") {
		cfg.Trials.Seed = seed
	}
	if f.Changed("integrator") {
		cfg.Solver.Integrator = integrator
	}
	if f.Changed("resistance") {
		cfg.Circuit.Resistance = resistance
	}
	if f.Changed("inductance") {
		cfg.Circuit.Inductance = inductance
	}
	if f.Changed("capacitance") {
		cfg.Circuit.Capacitance = capacitance
	}
	if f.Changed("temperature") {
		cfg.Source.Temperature = temperature
	}
	if f.Changed("intensity") {
		cfg.Source.Intensity = intensity
	}
	if f.Changed("sigma-ratio") {
		cfg.Coupling.SigmaRatio = sigmaRatio
	}
	if f.Changed("end") {
		cfg.Timing.End = endTime
	}
	if f.Changed("dt") {
		cfg.Timing.Dt = dt
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTrials(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	p := cfg.Params()

	if metricsAddr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := telemetry.Serve(srvCtx, metricsAddr, logger); err != nil {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() {
			cancel()
			<-done
		}()
	}

	opts := []automation.Option{automation.WithWorkers(cfg.Trials.Workers)}
	if !live {
		// Log lines would tear through the progress view.
		opts = append(opts, automation.WithLogger(logger))
	}

	var rep *automation.Report
	if live {
		rep, err = viz.RunLive(ctx, p, opts...)
	} else {
		fmt.Printf("running %d trials over [%g, %g] s...\n", p.Trials, p.Start, p.End)
		rep, err = automation.RunTrials(ctx, p, opts...)
	}
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (seed %d)\n\n", rep.Elapsed.Round(time.Millisecond), rep.Seed)
	fmt.Println(viz.SummaryView("energy delta (J)", rep.Summary))

	if plot && len(rep.Trials) > 0 {
		first := rep.Trials[0]
		graph, err := viz.PlotCurrents(first.Perturbed, first.Baseline, 70, 12)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(label, rep)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runSingleTrial(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if trialIndex < 0 {
		return fmt.Errorf("--index must be >= 0")
	}

	p := cfg.Params()
	if p.Seed == 0 {
		p.Seed = experiment.RandomSeed()
	}
	trial := experiment.Trial{
		Params: p,
		Index:  trialIndex,
		OnPhase: func(phase experiment.Phase, segment int) {
			logger.Debug("phase", zap.Stringer("phase", phase), zap.Int("segment", segment))
		},
	}

	res, err := trial.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("trial %d (seed %d) in %v\n\n", res.Index, res.Seed, res.Elapsed.Round(time.Microsecond))
	fmt.Printf("segments:          %d\n", res.Segments)
	fmt.Printf("photons:           %d (%d proposals)\n", res.Photons, res.Attempts)
	fmt.Printf("final omega:       %.6e rad/s\n", res.FinalOmega)
	fmt.Printf("baseline power:    %.6e W\n", res.BaselinePower)
	fmt.Printf("perturbed power:   %.6e W\n", res.PerturbedPower)
	fmt.Printf("baseline energy:   %.6e J\n", res.BaselineEnergy)
	fmt.Printf("perturbed energy:  %.6e J\n", res.PerturbedEnergy)
	fmt.Printf("energy delta:      %.6e J\n", res.Delta)
	fmt.Printf("stored initial:    %.6e\n", res.InitialStored)
	fmt.Printf("stored baseline:   %.6e\n", res.BaselineStored)
	fmt.Printf("stored perturbed:  %.6e\n", res.PerturbedStored)

	if trialPlot {
		graph, err := viz.PlotCurrents(res.Perturbed, res.Baseline, 70, 12)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sweep := automation.ParameterSweep{
		ParamName: args[0],
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}
	base := cfg.Params()
	if base.Seed == 0 {
		base.Seed = experiment.RandomSeed()
	}

	fmt.Printf("sweeping %s over [%g, %g] in %d steps, %d trials each...\n",
		sweep.ParamName, sweep.ParamMin, sweep.ParamMax, sweep.NumSteps, base.Trials)
	points, err := automation.RunSweep(cmd.Context(), sweep, base,
		automation.WithWorkers(cfg.Trials.Workers),
		automation.WithLogger(logger),
		automation.WithKeepTrajectories(0),
	)
	if err != nil {
		return err
	}

	fmt.Printf("\n%-14s  %-14s  %-14s  %-14s\n", sweep.ParamName, "mean", "median", "std_dev")
	fmt.Println(strings.Repeat("-", 62))
	for _, pt := range points {
		fmt.Printf("%-14.6g  %-14.6e  %-14.6e  %-14.6e\n", pt.Value, pt.Summary.Mean, pt.Summary.Median, pt.Summary.StdDev)
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveSweep(label, sweep, base, points)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}

	results, err := automation.RunScenario(cmd.Context(), sc, cfg.Params(),
		automation.WithWorkers(cfg.Trials.Workers),
		automation.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	for _, res := range results {
		fmt.Println()
		fmt.Println(viz.SummaryView(res.Step.Name, res.Report.Summary))
		if res.Step.SaveAs == "" {
			continue
		}
		runID, err := st.Save(res.Step.SaveAs, res.Report)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s as %s\n", res.Step.SaveAs, runID)
	}
	return nil
}
