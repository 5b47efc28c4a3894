package inference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Regressor predicts a continuous value from a feature vector.
type Regressor interface {
	NumFeatures() int
	Predict(x []float64) (float64, error)
}

// Classifier predicts an encoded class index from a feature vector.
type Classifier interface {
	NumFeatures() int
	PredictClass(x []float64) (int, error)
}

// ClassCounter is implemented by classifiers that know how many classes they emit.
type ClassCounter interface {
	NumClasses() int
}

// LabelEncoder maps encoded class indices back to their labels.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Decode returns the label of a class index.
func (e *LabelEncoder) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(e.Classes) {
		return "", fmt.Errorf("class index %d outside encoder range [0, %d)", idx, len(e.Classes))
	}
	return e.Classes[idx], nil
}

func checkWidth(want int, x []float64) error {
	if len(x) != want {
		return fmt.Errorf("X has %d features, but model is expecting %d features as input", len(x), want)
	}
	return nil
}

func checkFinite(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("model produced non-finite output %v", v)
	}
	return nil
}

// LinearRegressor computes intercept + coef·x.
type LinearRegressor struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (m *LinearRegressor) NumFeatures() int { return len(m.Coef) }

func (m *LinearRegressor) Predict(x []float64) (float64, error) {
	if err := checkWidth(len(m.Coef), x); err != nil {
		return 0, err
	}
	y := m.Intercept + floats.Dot(m.Coef, x)
	return y, checkFinite(y)
}

// LogisticClassifier is a binary classifier; class 1 when the sigmoid of the
// linear score exceeds 0.5.
type LogisticClassifier struct {
	Intercept float64   `json:"intercept"`
	Coef      []float64 `json:"coef"`
}

func (m *LogisticClassifier) NumFeatures() int { return len(m.Coef) }

func (m *LogisticClassifier) NumClasses() int { return 2 }

// Probability returns P(class = 1).
func (m *LogisticClassifier) Probability(x []float64) (float64, error) {
	if err := checkWidth(len(m.Coef), x); err != nil {
		return 0, err
	}
	z := m.Intercept + floats.Dot(m.Coef, x)
	return 1 / (1 + math.Exp(-z)), nil
}

func (m *LogisticClassifier) PredictClass(x []float64) (int, error) {
	p, err := m.Probability(x)
	if err != nil {
		return 0, err
	}
	if p > 0.5 {
		return 1, nil
	}
	return 0, nil
}

// SoftmaxClassifier is a multinomial linear classifier. Row k of the
// coefficient matrix scores class k.
type SoftmaxClassifier struct {
	intercepts []float64
	coef       *mat.Dense
}

// NewSoftmaxClassifier validates the shape of the coefficients.
func NewSoftmaxClassifier(intercepts []float64, coef [][]float64) (*SoftmaxClassifier, error) {
	if len(coef) < 2 {
		return nil, fmt.Errorf("softmax classifier needs at least 2 classes, got %d", len(coef))
	}
	if len(intercepts) != len(coef) {
		return nil, fmt.Errorf("softmax classifier has %d intercepts for %d classes", len(intercepts), len(coef))
	}
	width := len(coef[0])
	if width == 0 {
		return nil, fmt.Errorf("softmax classifier has no features")
	}
	data := make([]float64, 0, len(coef)*width)
	for k, row := range coef {
		if len(row) != width {
			return nil, fmt.Errorf("softmax classifier row %d has %d coefficients, want %d", k, len(row), width)
		}
		data = append(data, row...)
	}
	return &SoftmaxClassifier{
		intercepts: intercepts,
		coef:       mat.NewDense(len(coef), width, data),
	}, nil
}

func (m *SoftmaxClassifier) NumFeatures() int {
	_, c := m.coef.Dims()
	return c
}

func (m *SoftmaxClassifier) NumClasses() int { return len(m.intercepts) }

// Scores returns the unnormalised class scores.
func (m *SoftmaxClassifier) Scores(x []float64) ([]float64, error) {
	if err := checkWidth(m.NumFeatures(), x); err != nil {
		return nil, err
	}
	var scores mat.VecDense
	scores.MulVec(m.coef, mat.NewVecDense(len(x), x))
	out := make([]float64, len(m.intercepts))
	floats.AddTo(out, scores.RawVector().Data, m.intercepts)
	return out, nil
}

func (m *SoftmaxClassifier) PredictClass(x []float64) (int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(scores), nil
}
