package marketengine

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler is the engine's source of randomness.
type Sampler interface {
	// StudentT draws a Student-t innovation rescaled to unit variance.
	StudentT() float64
	Normal(mu, sd float64) float64
	LogNormal(mu, sigma float64) float64
	// Uniform draws from [0, 1).
	Uniform() float64
}

type distSampler struct {
	t     distuv.StudentsT
	scale float64
}

// NewSampler returns a Sampler whose Student-t draws have df degrees of
// freedom. A raw t(df) draw has variance df/(df-2); StudentT divides by
// sqrt(df/(df-2)) so GARCH variance units stay consistent. df must be > 2.
func NewSampler(df float64) Sampler {
	return &distSampler{
		t:     distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df},
		scale: math.Sqrt(df / (df - 2)),
	}
}

func (s *distSampler) StudentT() float64 {
	return s.t.Rand() / s.scale
}

func (s *distSampler) Normal(mu, sd float64) float64 {
	if sd <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sd}.Rand()
}

func (s *distSampler) LogNormal(mu, sigma float64) float64 {
	if sigma <= 0 {
		return math.Exp(mu)
	}
	return distuv.LogNormal{Mu: mu, Sigma: sigma}.Rand()
}

func (s *distSampler) Uniform() float64 {
	return rand.Float64()
}
