package feature

import "fmt"

// Regressor feature is an external covariate supplied alongside the time points, e.g. the
// daily traffic volume or a weather indicator.
type Regressor struct {
	Name string `json:"name"`
}

func NewRegressor(name string) *Regressor {
	return &Regressor{name}
}

func (r Regressor) String() string {
	return fmt.Sprintf("reg_%s", r.Name)
}

func (r Regressor) Get(label string) (string, bool) {
	return getName(r.Name, label)
}

func (r Regressor) Type() FeatureType {
	return FeatureTypeRegressor
}

func (r Regressor) Decode() map[string]string {
	return map[string]string{"name": r.Name}
}
