// Package series names the target quantities that can be forecast and the errors shared by
// every component that resolves data for them.
package series

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSeries is returned when a series key is not part of the configured set or when
	// the stored artifact backing it does not exist.
	ErrUnknownSeries = errors.New("unknown series")

	// ErrDataFormat is returned when a stored file exists but cannot be parsed into the
	// expected shape.
	ErrDataFormat = errors.New("malformed data")
)

// Key identifies a forecast target such as the total accident count or the count restricted
// to one severity class.
type Key string

const (
	TotalAccidents       Key = "total_accidents"
	SeverityKilled       Key = "gravite_accident_tué"
	SeverityLightInjury  Key = "gravite_accident_blessé_léger"
	SeverityHospitalized Key = "gravite_accident_blessé_hospitalisé"
	SeverityUnharmed     Key = "gravite_accident_indemne"
)

// DefaultKeys is the enumerated set served when the configuration does not override it.
func DefaultKeys() []Key {
	return []Key{
		TotalAccidents,
		SeverityKilled,
		SeverityLightInjury,
		SeverityHospitalized,
		SeverityUnharmed,
	}
}

// DefaultModelFile returns the artifact file name historically used for a default key.
func DefaultModelFile(k Key) string {
	switch k {
	case TotalAccidents:
		return "Prophet_model_tot_acc.json"
	case SeverityKilled:
		return "Prophet_model_acc_tués.json"
	case SeverityLightInjury:
		return "Prophet_model_acc_legers.json"
	case SeverityHospitalized:
		return "Prophet_model_acc_hosp.json"
	case SeverityUnharmed:
		return "Prophet_model_acc_indemnes.json"
	}
	return string(k) + ".json"
}

func (k Key) String() string {
	return string(k)
}

// Set is an immutable lookup of the keys known at startup.
type Set struct {
	keys []Key
	idx  map[Key]struct{}
}

// NewSet builds a Set preserving the input order. Duplicates are ignored.
func NewSet(keys []Key) Set {
	s := Set{idx: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		if _, exists := s.idx[k]; exists {
			continue
		}
		s.idx[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
	return s
}

// Parse validates a raw key against the set.
func (s Set) Parse(raw string) (Key, error) {
	k := Key(raw)
	if _, exists := s.idx[k]; !exists {
		return "", fmt.Errorf("%q, %w", raw, ErrUnknownSeries)
	}
	return k, nil
}

// Contains reports whether the key is part of the set.
func (s Set) Contains(k Key) bool {
	_, exists := s.idx[k]
	return exists
}

// Keys returns a copy of the keys in insertion order.
func (s Set) Keys() []Key {
	keys := make([]Key, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func (s Set) Len() int {
	return len(s.keys)
}
