// Package storage keeps simulation runs on disk, one directory per run
// holding metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/spinsim/internal/dynamo"
)

// StateColumns names the six body-state components in CSV headers.
var StateColumns = []string{"wx", "wy", "wz", "psi", "theta", "phi"}

const (
	nutationColumn   = "nutation_deg"
	precessionColumn = "precession_deg"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Label      string             `json:"label,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Motors     []string           `json:"motors"`
	Design     map[string]float64 `json:"design"`
	Start      float64            `json:"start"`
	End        float64            `json:"end"`
	Samples    int                `json:"samples"`
	Stats      dynamo.Stats       `json:"stats"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Record is a trajectory with its derived attitude angles.
type Record struct {
	Trajectory *dynamo.Trajectory
	Nutation   []float64
	Precession []float64
}

// Save writes a new run and returns its ID. ID and Timestamp of meta are
// filled in.
func (s *Store) Save(meta RunMetadata, rec *Record) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("run_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, rec); err != nil {
		return "", err
	}
	return runID, csvFile.Sync()
}

// WriteCSV writes one row per sample: time, state components and, when
// present, the derived angles.
func WriteCSV(out io.Writer, rec *Record) error {
	if rec == nil || rec.Trajectory == nil {
		return fmt.Errorf("%w: no trajectory", dynamo.ErrInvalidInput)
	}
	tr := rec.Trajectory
	withAngles := len(rec.Nutation) == tr.Len() && len(rec.Precession) == tr.Len()

	w := csv.NewWriter(out)
	if tr.Len() == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	dim := len(tr.States[0])
	for i := 0; i < dim; i++ {
		if dim == len(StateColumns) {
			header = append(header, StateColumns[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if withAngles {
		header = append(header, nutationColumn, precessionColumn)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, x := range tr.States {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(tr.Times[i]))
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		if withAngles {
			row = append(row, formatFloat(rec.Nutation[i]), formatFloat(rec.Precession[i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every stored run, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecord reads a run's states.csv back into a Record.
func (s *Store) LoadRecord(runID string) (*Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

func ReadCSV(in io.Reader) (*Record, error) {
	r := csv.NewReader(in)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Record{Trajectory: dynamo.NewTrajectory(0)}, nil
	}
	if err != nil {
		return nil, err
	}

	dim := len(header) - 1
	withAngles := len(header) >= 3 && header[len(header)-2] == nutationColumn && header[len(header)-1] == precessionColumn
	if withAngles {
		dim -= 2
	}
	if dim < 1 {
		return nil, fmt.Errorf("%w: csv header %v has no state columns", dynamo.ErrInvalidInput, header)
	}

	rec := &Record{Trajectory: dynamo.NewTrajectory(0)}
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		vals := make([]float64, len(row))
		for i, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			vals[i] = v
		}

		rec.Trajectory.Append(vals[0], dynamo.State(vals[1:1+dim]))
		if withAngles {
			rec.Nutation = append(rec.Nutation, vals[1+dim])
			rec.Precession = append(rec.Precession, vals[2+dim])
		}
	}
	return rec, nil
}
