package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/san-kum/photonrlc/internal/automation"
	"github.com/san-kum/photonrlc/internal/dynamo"
	"github.com/san-kum/photonrlc/internal/experiment"
)

const (
	metadataFile  = "metadata.json"
	trialsFile    = "trials.csv"
	sweepFile     = "sweep.csv"
	perturbedFile = "perturbed.csv"
	baselineFile  = "baseline.csv"
)

// ErrRunNotFound is returned for a run ID with no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	KindTrials = "trials"
	KindSweep  = "sweep"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID               string             `json:"id"`
	Kind             string             `json:"kind"`
	Label            string             `json:"label,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
	Seed             uint64             `json:"seed"`
	Trials           int                `json:"trials"`
	Integrator       string             `json:"integrator"`
	Tolerance        float64            `json:"tolerance"`
	PointsPerSegment int                `json:"points_per_segment"`
	BaselinePoints   int                `json:"baseline_points"`
	Initial          []float64          `json:"initial"`
	Params           map[string]float64 `json:"params"`
	Summary          automation.Summary `json:"summary"`
	SweepParam       string             `json:"sweep_param,omitempty"`
	ElapsedSeconds   float64            `json:"elapsed_seconds"`
	TrajectoryTrial  int                `json:"trajectory_trial"`
}

// TrialRow is one line of trials.csv.
type TrialRow struct {
	Index           int     `csv:"index"`
	Seed            uint64  `csv:"seed"`
	Delta           float64 `csv:"delta"`
	BaselineEnergy  float64 `csv:"baseline_energy"`
	PerturbedEnergy float64 `csv:"perturbed_energy"`
	BaselinePower   float64 `csv:"baseline_power"`
	PerturbedPower  float64 `csv:"perturbed_power"`
	BaselinePeak    float64 `csv:"baseline_peak"`
	PerturbedPeak   float64 `csv:"perturbed_peak"`
	Segments        int     `csv:"segments"`
	Photons         int     `csv:"photons"`
	Attempts        int     `csv:"attempts"`
	FinalOmega      float64 `csv:"final_omega"`
	ElapsedMillis   float64 `csv:"elapsed_ms"`
}

// SampleRow is one line of a trajectory CSV. Current is the position
// component of the circuit state.
type SampleRow struct {
	Time     float64 `csv:"time"`
	Current  float64 `csv:"current"`
	Velocity float64 `csv:"velocity"`
}

// SweepRow is one line of sweep.csv.
type SweepRow struct {
	Value  float64 `csv:"value"`
	Count  int     `csv:"count"`
	Mean   float64 `csv:"mean"`
	Median float64 `csv:"median"`
	StdDev float64 `csv:"std_dev"`
	Min    float64 `csv:"min"`
	Max    float64 `csv:"max"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("rlc_%s_%s", now.Format("20060102-150405"), uuid.NewString()[:8])
}

func metadataFor(kind string, p experiment.Params) RunMetadata {
	return RunMetadata{
		Kind:             kind,
		Timestamp:        time.Now(),
		Seed:             p.Seed,
		Trials:           p.Trials,
		Integrator:       p.Integrator,
		Tolerance:        p.Tolerance,
		PointsPerSegment: p.PointsPerSegment,
		BaselinePoints:   p.BaselinePoints,
		Initial:          p.Initial.Clone(),
		Params:           p.GetParams(),
		TrajectoryTrial:  -1,
	}
}

// Save writes a trial report: metadata, one CSV row per trial and the
// trajectories of the first trial that kept them.
func (s *Store) Save(label string, rep *automation.Report) (string, error) {
	meta := metadataFor(KindTrials, rep.Params)
	meta.Label = label
	meta.Seed = rep.Seed
	meta.Summary = rep.Summary
	meta.ElapsedSeconds = rep.Elapsed.Seconds()

	rows := make([]*TrialRow, 0, len(rep.Trials))
	for _, tr := range rep.Trials {
		rows = append(rows, trialRow(tr))
		if meta.TrajectoryTrial < 0 && !tr.Perturbed.Empty() && !tr.Baseline.Empty() {
			meta.TrajectoryTrial = tr.Index
		}
	}

	return s.commit(&meta, func(runDir string) error {
		if err := writeCSV(filepath.Join(runDir, trialsFile), &rows); err != nil {
			return err
		}
		if meta.TrajectoryTrial < 0 {
			return nil
		}
		tr := rep.Trials[meta.TrajectoryTrial]
		if err := writeTrajectory(filepath.Join(runDir, perturbedFile), tr.Perturbed); err != nil {
			return err
		}
		return writeTrajectory(filepath.Join(runDir, baselineFile), tr.Baseline)
	})
}

// SaveSweep writes a parameter sweep: metadata and one CSV row per point.
func (s *Store) SaveSweep(label string, sweep automation.ParameterSweep, base experiment.Params, points []automation.SweepPoint) (string, error) {
	meta := metadataFor(KindSweep, base)
	meta.Label = label
	meta.SweepParam = sweep.ParamName

	rows := make([]*SweepRow, 0, len(points))
	for _, pt := range points {
		rows = append(rows, &SweepRow{
			Value:  pt.Value,
			Count:  pt.Summary.Count,
			Mean:   pt.Summary.Mean,
			Median: pt.Summary.Median,
			StdDev: pt.Summary.StdDev,
			Min:    pt.Summary.Min,
			Max:    pt.Summary.Max,
		})
	}

	return s.commit(&meta, func(runDir string) error {
		return writeCSV(filepath.Join(runDir, sweepFile), &rows)
	})
}

// commit creates the run directory, lets write fill it and writes metadata
// last, so List never sees a run whose data files are missing. Any failure
// removes the directory.
func (s *Store) commit(meta *RunMetadata, write func(runDir string) error) (id string, err error) {
	meta.ID = newRunID(meta.Timestamp)
	runDir := s.Dir(meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	if err := write(runDir); err != nil {
		return "", err
	}
	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta *RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func trialRow(tr experiment.TrialResult) *TrialRow {
	return &TrialRow{
		Index:           tr.Index,
		Seed:            tr.Seed,
		Delta:           tr.Delta,
		BaselineEnergy:  tr.BaselineEnergy,
		PerturbedEnergy: tr.PerturbedEnergy,
		BaselinePower:   tr.BaselinePower,
		PerturbedPower:  tr.PerturbedPower,
		BaselinePeak:    tr.BaselinePeak,
		PerturbedPeak:   tr.PerturbedPeak,
		Segments:        tr.Segments,
		Photons:         tr.Photons,
		Attempts:        tr.Attempts,
		FinalOmega:      tr.FinalOmega,
		ElapsedMillis:   float64(tr.Elapsed.Microseconds()) / 1000,
	}
}

func writeCSV(path string, rows any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return gocsv.MarshalFile(rows, f)
}

func writeTrajectory(path string, tr dynamo.Trajectory) error {
	rows := make([]*SampleRow, 0, tr.Len())
	for i, x := range tr.States {
		row := &SampleRow{Time: tr.Times[i]}
		if len(x) > 0 {
			row.Current = x[0]
		}
		if len(x) > 1 {
			row.Velocity = x[1]
		}
		rows = append(rows, row)
	}
	return writeCSV(path, &rows)
}

// validRunID accepts a single path element naming a directory under baseDir.
func validRunID(runID string) bool {
	return runID != "" && runID != "." && runID != ".." &&
		!strings.ContainsAny(runID, `/\`) && filepath.IsLocal(runID)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if !validRunID(runID) {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadTrials(runID string) ([]TrialRow, error) {
	var rows []TrialRow
	if err := s.readCSV(runID, trialsFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) LoadSweep(runID string) ([]SweepRow, error) {
	var rows []SweepRow
	if err := s.readCSV(runID, sweepFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadTrajectory reads the perturbed and baseline trajectories of a run.
func (s *Store) LoadTrajectory(runID string) (perturbed, baseline dynamo.Trajectory, err error) {
	if perturbed, err = s.loadTrajectory(runID, perturbedFile); err != nil {
		return
	}
	baseline, err = s.loadTrajectory(runID, baselineFile)
	return
}

func (s *Store) loadTrajectory(runID, name string) (dynamo.Trajectory, error) {
	var rows []SampleRow
	if err := s.readCSV(runID, name, &rows); err != nil {
		return dynamo.Trajectory{}, err
	}

	tr := dynamo.Trajectory{
		Times:  make([]float64, 0, len(rows)),
		States: make([]dynamo.State, 0, len(rows)),
	}
	for _, r := range rows {
		tr.Times = append(tr.Times, r.Time)
		tr.States = append(tr.States, dynamo.State{r.Current, r.Velocity})
	}
	return tr, nil
}

func (s *Store) readCSV(runID, name string, out any) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	f, err := os.Open(filepath.Join(s.Dir(runID), name))
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}
