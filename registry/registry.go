// Package registry holds the forecasters loaded at startup, one per configured series.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/accidentcast/forecaster"
	"github.com/accidentcast/forecaster/series"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Entry maps a series to its model artifact
type Entry struct {
	Key  series.Key
	Path string
}

// Registry is the immutable set of loaded forecasters. It is safe for concurrent reads.
type Registry struct {
	set    series.Set
	models map[series.Key]*forecaster.Forecaster
}

// Load reads every artifact exactly once, concurrently. Any failure aborts the whole load.
func Load(ctx context.Context, entries []Entry, log logrus.FieldLogger) (*Registry, error) {
	log = log.WithField("component", "registry")

	loaded := make([]*forecaster.Forecaster, len(entries))
	g, gCtx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			start := time.Now()
			f, err := LoadFile(entry.Path)
			if err != nil {
				return fmt.Errorf("unable to load model for %q, %w", entry.Key, err)
			}
			loaded[i] = f
			hist := f.History()
			log.WithFields(logrus.Fields{
				"series":   entry.Key,
				"path":     entry.Path,
				"history":  hist.Start.Format(time.DateOnly) + " - " + hist.End.Format(time.DateOnly),
				"duration": time.Since(start),
			}).Info("Loaded model")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	keys := make([]series.Key, 0, len(entries))
	models := make(map[series.Key]*forecaster.Forecaster, len(entries))
	for i, entry := range entries {
		if _, exists := models[entry.Key]; exists {
			continue
		}
		keys = append(keys, entry.Key)
		models[entry.Key] = loaded[i]
	}
	return &Registry{set: series.NewSet(keys), models: models}, nil
}

// LoadFile decodes a single model artifact
func LoadFile(path string) (*forecaster.Forecaster, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no artifact at %s, %w", path, series.ErrUnknownSeries)
		}
		return nil, err
	}
	defer file.Close()

	model, err := forecaster.DecodeModel(file)
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s, %v, %w", path, err, series.ErrDataFormat)
	}
	f, err := forecaster.NewFromModel(model)
	if err != nil {
		return nil, fmt.Errorf("invalid model in %s, %v, %w", path, err, series.ErrDataFormat)
	}
	return f, nil
}

// Get returns the forecaster of a series
func (r *Registry) Get(key string) (*forecaster.Forecaster, error) {
	k, err := r.set.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("model %w", err)
	}
	return r.models[k], nil
}

// Contains reports whether a model was loaded for the raw key
func (r *Registry) Contains(key string) bool {
	return r.set.Contains(series.Key(key))
}

// Keys returns the loaded series in configuration order
func (r *Registry) Keys() []series.Key {
	return r.set.Keys()
}

// Len returns the number of loaded models
func (r *Registry) Len() int {
	return r.set.Len()
}
