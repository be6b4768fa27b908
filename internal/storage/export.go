package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Steps      int         `json:"steps"`
	Times      []float64   `json:"times"`
	States     [][]float64 `json:"states"`
	Nutation   []float64   `json:"nutation_deg,omitempty"`
	Precession []float64   `json:"precession_deg,omitempty"`
}

// ExportJSON writes a run and its samples as a single JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, rec *Record) error {
	data := ExportData{
		RunMetadata: meta,
		Nutation:    rec.Nutation,
		Precession:  rec.Precession,
	}
	if tr := rec.Trajectory; tr != nil {
		data.Steps = tr.Len()
		data.Times = tr.Times
		data.States = make([][]float64, len(tr.States))
		for i, s := range tr.States {
			data.States[i] = s
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
