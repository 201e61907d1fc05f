package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/photonrlc/internal/analysis"
	"github.com/san-kum/photonrlc/internal/export"
	"github.com/san-kum/photonrlc/internal/storage"
	"github.com/san-kum/photonrlc/internal/viz"
)

var (
	xAxis   int
	yAxis   int
	svgOut  string
	fftSize int
)

// runCommands are the commands that read stored runs.
func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run's summary and per-trial table",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the stored perturbed and baseline currents",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and decay analysis of the stored trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&fftSize, "fft", 1024, "resampled points for the spectrum")
	analyzeCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for the phase plot x-axis")
	analyzeCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for the phase plot y-axis")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export everything stored for a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's trial or sweep table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
		},
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the stored currents as an SVG overlay",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default <run_id>.svg)")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.New(dataDir).Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	return []*cobra.Command{listCmd, showCmd, plotCmd, analyzeCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, deleteCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tLABEL\tTIME\tTRIALS\tINTEG\tMEAN DELTA")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%.4e\n",
			run.ID,
			run.Kind,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Trials,
			run.Integrator,
			run.Summary.Mean,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", meta.ID)
	if meta.Label != "" {
		fmt.Printf("label:      %s\n", meta.Label)
	}
	fmt.Printf("seed:       %d\n", meta.Seed)
	fmt.Printf("integrator: %s (tol %g)\n", meta.Integrator, meta.Tolerance)
	fmt.Printf("elapsed:    %.2fs\n\n", meta.ElapsedSeconds)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if meta.Kind == storage.KindSweep {
		rows, err := st.LoadSweep(meta.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\tMEAN\tMEDIAN\tSTD DEV\tMIN\tMAX\n", meta.SweepParam)
		for _, r := range rows {
			fmt.Fprintf(w, "%.6g\t%.4e\t%.4e\t%.4e\t%.4e\t%.4e\n", r.Value, r.Mean, r.Median, r.StdDev, r.Min, r.Max)
		}
		return w.Flush()
	}

	fmt.Println(viz.SummaryView("energy delta (J)", meta.Summary))
	fmt.Println()

	rows, err := st.LoadTrials(meta.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "TRIAL\tDELTA\tBASELINE E\tPERTURBED E\tSEGMENTS\tPHOTONS\tATTEMPTS\tFINAL OMEGA")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%.4e\t%.4e\t%.4e\t%d\t%d\t%d\t%.4e\n",
			r.Index, r.Delta, r.BaselineEnergy, r.PerturbedEnergy, r.Segments, r.Photons, r.Attempts, r.FinalOmega)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	deltas := make([]float64, len(rows))
	for i, r := range rows {
		deltas[i] = r.Delta
	}
	if len(deltas) > 1 {
		fmt.Printf("\ndeltas %s\n", viz.Sparkline(deltas, min(len(deltas), 60)))
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	perturbed, baseline, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (trial %d)\n", meta.ID, meta.TrajectoryTrial)
	fmt.Printf("samples: %d perturbed, %d baseline\n\n", perturbed.Len(), baseline.Len())

	graph, err := viz.PlotCurrents(perturbed, baseline, 70, 15)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	perturbed, baseline, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	spec, err := analysis.PowerSpectrum(perturbed, 0, fftSize)
	if err != nil {
		return err
	}
	if bins := min(len(spec.Amplitudes), 80); bins > 2 {
		graph := asciigraph.Plot(spec.Amplitudes[1:bins],
			asciigraph.Height(10),
			asciigraph.Caption("perturbed current amplitude spectrum"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tPERTURBED\tBASELINE")
	pf, err := analysis.DominantFrequency(perturbed, 0, fftSize)
	if err != nil {
		return err
	}
	bf, err := analysis.DominantFrequency(baseline, 0, fftSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "dominant frequency (Hz)\t%.4e\t%.4e\n", pf, bf)
	fmt.Fprintf(w, "decay rate (1/s)\t%s\t%s\n", formatRate(analysis.DecayRate(perturbed)), formatRate(analysis.DecayRate(baseline)))
	fmt.Fprintf(w, "zero crossings\t%d\t%d\n", len(analysis.ZeroCrossings(perturbed, 0)), len(analysis.ZeroCrossings(baseline, 0)))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nstrongest bins:")
	for _, i := range spec.Peaks(3) {
		fmt.Printf("  %.4e Hz  amplitude %.4e\n", spec.Freqs[i], spec.Amplitudes[i])
	}

	if ascii := analysis.PhasePortraitToASCII(analysis.PhasePortrait(perturbed, xAxis, yAxis), 60, 20); ascii != "" {
		fmt.Printf("\nphase portrait (x%d, x%d):\n%s", xAxis, yAxis, ascii)
	}
	return nil
}

func formatRate(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.4e", r)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	perturbed, baseline, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}

	path := svgOut
	if path == "" {
		path = meta.ID + ".svg"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	title := fmt.Sprintf("%s trial %d", meta.ID, meta.TrajectoryTrial)
	if err := export.TrialSVG(f, perturbed, baseline, 900, 400, title); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return f.Close()
}
