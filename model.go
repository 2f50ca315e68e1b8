package forecaster

import (
	"fmt"
	"io"
	"time"

	"github.com/accidentcast/forecaster/forecast"
	"github.com/goccy/go-json"
)

// History is the range of days the forecaster was trained on
type History struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Model is the serializable artifact of a fitted forecaster
type Model struct {
	Options     *Options       `json:"options"`
	History     History        `json:"history"`
	Series      forecast.Model `json:"series_model"`
	Uncertainty forecast.Model `json:"uncertainty_model"`
}

// DecodeModel reads a JSON artifact
func DecodeModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Encode writes the model as indented JSON
func (m Model) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sHistory: %s - %s\n", prefix,
		m.History.Start.Format(time.DateOnly), m.History.End.Format(time.DateOnly)); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "%sResidual Window: %d    Zscore: %.2f\n", prefix,
			m.Options.ResidualWindow, m.Options.ResidualZscore); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%sSeries:\n", prefix); err != nil {
		return err
	}
	if err := m.Series.TablePrint(w, prefix+indent, indent); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n%sUncertainty:\n", prefix); err != nil {
		return err
	}
	if err := m.Uncertainty.TablePrint(w, prefix+indent, indent); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
