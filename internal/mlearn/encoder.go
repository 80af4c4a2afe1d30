package mlearn

import (
	apperrors "insightlens/internal/errors"
)

// LabelEncoder maps categorical string values to stable integer codes in
// first-seen order. The fitted encoding is persisted with its model so
// prediction reuses the training-time codes.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	codes map[string]int
}

// Fit assigns codes 0,1,2,... in first-seen order of the values.
func (e *LabelEncoder) Fit(values []string) {
	e.Classes = e.Classes[:0]
	e.codes = make(map[string]int)
	for _, v := range values {
		if _, ok := e.codes[v]; !ok {
			e.codes[v] = len(e.Classes)
			e.Classes = append(e.Classes, v)
		}
	}
}

// Transform maps values to their fitted codes. An unseen value is a schema
// error: the encoding travelling with a model must cover everything it is
// asked to predict on.
func (e *LabelEncoder) Transform(values []string) ([]float64, error) {
	e.ensureCodes()
	out := make([]float64, len(values))
	for i, v := range values {
		code, ok := e.codes[v]
		if !ok {
			return nil, apperrors.NewSchemaError(v, "value not present in fitted encoding")
		}
		out[i] = float64(code)
	}
	return out, nil
}

// FitTransform fits on values and returns their codes.
func (e *LabelEncoder) FitTransform(values []string) []float64 {
	e.Fit(values)
	out, _ := e.Transform(values)
	return out
}

// ensureCodes rebuilds the lookup map after JSON deserialization, which
// only restores Classes.
func (e *LabelEncoder) ensureCodes() {
	if e.codes != nil {
		return
	}
	e.codes = make(map[string]int, len(e.Classes))
	for i, c := range e.Classes {
		e.codes[c] = i
	}
}
