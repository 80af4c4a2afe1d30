package mlearn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "insightlens/internal/errors"
)

func TestLabelEncoderFirstSeenOrder(t *testing.T) {
	var enc LabelEncoder
	codes := enc.FitTransform([]string{"North", "South", "North", "East"})

	assert.Equal(t, []string{"North", "South", "East"}, enc.Classes)
	assert.Equal(t, []float64{0, 1, 0, 2}, codes)
}

func TestLabelEncoderUnknownValue(t *testing.T) {
	var enc LabelEncoder
	enc.Fit([]string{"North"})

	_, err := enc.Transform([]string{"West"})
	assert.True(t, apperrors.IsSchema(err))
}

func TestLabelEncoderSurvivesSerialization(t *testing.T) {
	var enc LabelEncoder
	enc.Fit([]string{"Books", "Toys"})

	data, err := json.Marshal(&enc)
	require.NoError(t, err)

	var restored LabelEncoder
	require.NoError(t, json.Unmarshal(data, &restored))

	codes, err := restored.Transform([]string{"Toys", "Books"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, codes)
}
