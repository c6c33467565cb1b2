package linear_model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/glearn/core/model"
)

func TestLinearRegressionWeightHashIsReproducible(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0, 3.0, -1.0}, 5.0, 50)

	first := NewLinearRegression()
	require.NoError(t, first.Fit(X, y))
	second := NewLinearRegression()
	require.NoError(t, second.Fit(X, y))

	require.NotEmpty(t, first.WeightHash())
	assert.Equal(t, first.WeightHash(), second.WeightHash())

	unfitted := NewLinearRegression()
	assert.Empty(t, unfitted.WeightHash())
}

func TestLinearRegressionExportImportRoundTrip(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.5, -0.5}, 0.25, 30)

	src := NewLinearRegression()
	require.NoError(t, src.Fit(X, y))

	weights, err := src.ExportWeights()
	require.NoError(t, err)
	require.NoError(t, weights.Validate())
	assert.Equal(t, "LinearRegression", weights.ModelType)

	dst := NewLinearRegression()
	require.NoError(t, dst.ImportWeights(weights))
	assert.True(t, dst.IsFitted())
	assert.InDeltaSlice(t, src.Weights(), dst.Weights(), 1e-15)
	assert.InDelta(t, src.Intercept(), dst.Intercept(), 1e-15)

	srcPred, err := src.Predict(X)
	require.NoError(t, err)
	dstPred, err := dst.Predict(X)
	require.NoError(t, err)
	rows, _ := srcPred.Dims()
	for i := 0; i < rows; i++ {
		assert.InDelta(t, srcPred.At(i, 0), dstPred.At(i, 0), 1e-15)
	}
}

func TestLinearRegressionImportRejectsCorruptedWeights(t *testing.T) {
	X, y := makeLinearData(t, []float64{2.0}, 0, 20)

	src := NewLinearRegression()
	require.NoError(t, src.Fit(X, y))
	weights, err := src.ExportWeights()
	require.NoError(t, err)

	weights.Coefficients[0] += 1.0

	dst := NewLinearRegression()
	assert.Error(t, dst.ImportWeights(weights), "checksum must catch tampered coefficients")

	assert.Error(t, dst.ImportWeights(nil))

	wrongType := &model.ModelWeights{
		ModelType:    "Ridge",
		Version:      "1",
		Coefficients: []float64{1},
		IsFitted:     true,
	}
	assert.Error(t, dst.ImportWeights(wrongType))
}

func TestLinearRegressionExportBeforeFit(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.ExportWeights()
	assert.Error(t, err)
}

func TestSaveAndLoadModelFile(t *testing.T) {
	X, y := makeLinearData(t, []float64{1.0, 2.0}, -0.5, 25)

	src := NewLinearRegression()
	require.NoError(t, src.Fit(X, y))

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, model.SaveModel(src, path))

	dst := NewLinearRegression()
	require.NoError(t, model.LoadModel(dst, path))
	assert.Equal(t, src.WeightHash(), dst.WeightHash())
}

func TestWriteAndReadWeights(t *testing.T) {
	X, y := makeLinearData(t, []float64{0.5}, 1.0, 15)

	src := NewLinearRegression()
	require.NoError(t, src.Fit(X, y))
	weights, err := src.ExportWeights()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, model.WriteWeights(&buf, weights))

	decoded, err := model.ReadWeights(&buf)
	require.NoError(t, err)
	assert.Equal(t, weights.ModelType, decoded.ModelType)
	assert.InDeltaSlice(t, weights.Coefficients, decoded.Coefficients, 1e-15)

	// 検証に失敗する重みはロード時点で拒否される
	bad := &model.ModelWeights{ModelType: "LinearRegression", Version: "1", IsFitted: true}
	var badBuf bytes.Buffer
	require.NoError(t, model.WriteWeights(&badBuf, bad))
	_, err = model.ReadWeights(&badBuf)
	assert.Error(t, err)
}
