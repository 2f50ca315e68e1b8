package forecaster

import (
	"bytes"
	"testing"

	"github.com/accidentcast/forecaster/timedataset"
	"github.com/pkg/profile"
)

var benchPredictRes *Results

func BenchmarkTrainToModel(b *testing.B) {
	t, y := generateDaily(4 * 365)

	var f *Forecaster
	var err error
	for b.Loop() {
		f, err = New(nil)
		if err != nil {
			b.Fatal(err)
		}
		if err := f.Fit(t, y, nil); err != nil {
			b.Fatal(err)
		}
	}

	m, err := f.Model()
	if err != nil {
		b.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		b.Fatal(err)
	}
}

func BenchmarkPredictFromModel(b *testing.B) {
	t, y := generateDaily(4 * 365)
	trained, err := New(nil)
	if err != nil {
		b.Fatal(err)
	}
	if err := trained.Fit(t, y, nil); err != nil {
		b.Fatal(err)
	}
	m, err := trained.Model()
	if err != nil {
		b.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		b.Fatal(err)
	}
	model, err := DecodeModel(&buf)
	if err != nil {
		b.Fatal(err)
	}
	f, err := NewFromModel(model)
	if err != nil {
		b.Fatal(err)
	}

	frame, err := timedataset.FutureFrame(f.History().Start, f.History().End, 365)
	if err != nil {
		b.Fatal(err)
	}

	defer profile.Start(profile.CPUProfile, profile.ProfilePath(b.TempDir()), profile.Quiet).Stop()
	for b.Loop() {
		benchPredictRes, err = f.Predict(frame, nil)
		if err != nil {
			b.Fatal(err)
		}
	}
}
