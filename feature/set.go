package feature

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Set holds the data of each feature keyed by the string representation of the feature.
// All features in a set have the same number of observations.
type Set struct {
	m      int
	set    map[string][]float64
	labels map[string]Feature
}

func NewSet() *Set {
	return &Set{
		set:    make(map[string][]float64),
		labels: make(map[string]Feature),
	}
}

// Len returns the number of features in the set
func (s *Set) Len() int {
	return len(s.set)
}

// Rows returns the number of observations of every feature
func (s *Set) Rows() int {
	return s.m
}

// Set stores the data of a feature, overwriting any previous data for the same label. The
// first feature fixes the number of observations; later data of a different length is
// ignored and Set reports false.
func (s *Set) Set(f Feature, data []float64) bool {
	if len(s.set) == 0 {
		s.m = len(data)
	}
	if len(data) != s.m {
		return false
	}
	s.set[f.String()] = data
	s.labels[f.String()] = f
	return true
}

// Get returns the data of a feature and whether it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	data, exists := s.set[f.String()]
	return data, exists
}

// Del removes a feature from the set
func (s *Set) Del(f Feature) {
	delete(s.set, f.String())
	delete(s.labels, f.String())
	if len(s.set) == 0 {
		s.m = 0
	}
}

// Update merges the features of other into this set. Features with a mismatched number of
// observations are skipped.
func (s *Set) Update(other *Set) {
	if other == nil {
		return
	}
	for _, f := range other.Labels().Labels() {
		s.Set(f, other.set[f.String()])
	}
}

// Filter returns a new set with only the features accepted by keep
func (s *Set) Filter(keep func(Feature) bool) *Set {
	res := NewSet()
	for _, f := range s.Labels().Labels() {
		if keep(f) {
			res.Set(f, s.set[f.String()])
		}
	}
	return res
}

// Labels returns the features sorted by their string representation
func (s *Set) Labels() *Labels {
	labels := make([]Feature, 0, len(s.labels))
	for _, f := range s.labels {
		labels = append(labels, f)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i].String() < labels[j].String()
	})
	return NewLabels(labels)
}

// MatrixSlice returns one slice per feature in label order
func (s *Set) MatrixSlice() [][]float64 {
	labels := s.Labels().Labels()
	if len(labels) == 0 {
		return nil
	}
	res := make([][]float64, len(labels))
	for i, f := range labels {
		res[i] = s.set[f.String()]
	}
	return res
}

// Matrix returns the set as a matrix with one row per observation and one column per
// feature in label order.
func (s *Set) Matrix() *mat.Dense {
	labels := s.Labels().Labels()
	if len(labels) == 0 || s.m == 0 {
		return nil
	}
	n := len(labels)
	obs := make([]float64, s.m*n)
	for j, f := range labels {
		for i, v := range s.set[f.String()] {
			obs[i*n+j] = v
		}
	}
	return mat.NewDense(s.m, n, obs)
}
