package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

type ExportData struct {
	Metadata  RunMetadata `json:"metadata"`
	Trials    []TrialRow  `json:"trials,omitempty"`
	Sweep     []SweepRow  `json:"sweep,omitempty"`
	Perturbed []SampleRow `json:"perturbed,omitempty"`
	Baseline  []SampleRow `json:"baseline,omitempty"`
}

// ExportJSON writes everything stored for runID as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	data := ExportData{Metadata: *meta}

	switch meta.Kind {
	case KindSweep:
		if data.Sweep, err = s.LoadSweep(runID); err != nil {
			return err
		}
	default:
		if data.Trials, err = s.LoadTrials(runID); err != nil {
			return err
		}
		if meta.TrajectoryTrial >= 0 {
			if err := s.readCSV(runID, perturbedFile, &data.Perturbed); err != nil {
				return err
			}
			if err := s.readCSV(runID, baselineFile, &data.Baseline); err != nil {
				return err
			}
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies the run's main table (trials or sweep points) to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	name := trialsFile
	if meta.Kind == KindSweep {
		name = sweepFile
	}

	f, err := os.Open(filepath.Join(s.Dir(runID), name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// Delete removes a run directory.
func (s *Store) Delete(runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	return os.RemoveAll(s.Dir(runID))
}
