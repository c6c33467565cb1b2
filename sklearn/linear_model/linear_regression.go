package linear_model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// LinearRegression は最小二乗法による線形回帰
// 正則化を行わないため、正則化が必要な場合はRidgeやLassoを使うこと
type LinearRegression struct {
	state *model.StateManager
	mu    sync.RWMutex

	fitIntercept bool
	normalize    bool
	copyX        bool

	coef_      []float64
	intercept_ float64
}

// LinearRegressionOption はLinearRegressionの設定オプション
type LinearRegressionOption func(*LinearRegression)

// WithLRFitIntercept は切片を学習するかどうかを設定する（デフォルト: true）
func WithLRFitIntercept(fit bool) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.fitIntercept = fit }
}

// WithLRNormalize は学習前に特徴量をL2ノルムで正規化するかどうかを設定する
func WithLRNormalize(normalize bool) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.normalize = normalize }
}

// WithLRCopyX は入力行列をコピーしてから学習するかどうかを設定する（デフォルト: true）
func WithLRCopyX(copy bool) LinearRegressionOption {
	return func(lr *LinearRegression) { lr.copyX = copy }
}

// NewLinearRegression は新しいLinearRegressionを作成する
func NewLinearRegression(options ...LinearRegressionOption) *LinearRegression {
	lr := &LinearRegression{
		state:        model.NewStateManager(),
		fitIntercept: true,
		copyX:        true,
	}
	for _, opt := range options {
		opt(lr)
	}
	return lr
}

// Fit は正規方程式をQR分解で解いて係数を学習する
func (lr *LinearRegression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "LinearRegression.Fit")

	lr.mu.Lock()
	defer lr.mu.Unlock()

	if err := validateXY("LinearRegression.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()
	if _, yCols := y.Dims(); yCols != 1 {
		return errors.NewDimensionError("LinearRegression.Fit", 1, yCols, 1)
	}

	var Xd *mat.Dense
	if lr.copyX {
		Xd = mat.DenseCopyOf(X)
	} else {
		Xd = toDense(X)
	}
	yd := mat.DenseCopyOf(y)

	XMean, yMean, XStd := centerData(Xd, yd, lr.fitIntercept, lr.normalize, nil)

	var qr mat.QR
	qr.Factorize(Xd)
	sol := mat.NewDense(nFeatures, 1, nil)
	if err := qr.SolveTo(sol, false, yd); err != nil {
		return errors.NewSingularMatrixError("LinearRegression.Fit", nSamples, nFeatures)
	}

	coef := mat.NewDense(1, nFeatures, nil)
	for j := 0; j < nFeatures; j++ {
		coef.Set(0, j, sol.At(j, 0))
	}
	intercept := restoreIntercept(coef, XMean, yMean, XStd)

	lr.coef_ = coef.RawRowView(0)
	lr.intercept_ = intercept[0]
	lr.state.SetDimensions(nFeatures, nSamples)
	lr.state.SetFitted()
	return nil
}

// Predict は入力に対する予測値を返す
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	if err := lr.state.RequireFitted("LinearRegression", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := lr.state.ValidateFeatures("LinearRegression.Predict", nFeatures); err != nil {
		return nil, err
	}

	coef := mat.NewDense(1, len(lr.coef_), lr.coef_)
	return decisionFunction(X, coef, []float64{lr.intercept_}), nil
}

// Score は決定係数R²を返す
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(lr, X, y)
}

// IsFitted は学習済みかどうかを返す
func (lr *LinearRegression) IsFitted() bool {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.state.IsFitted()
}

// Weights は学習済みの係数のコピーを返す
func (lr *LinearRegression) Weights() []float64 {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return append([]float64(nil), lr.coef_...)
}

// Intercept は学習済みの切片を返す
func (lr *LinearRegression) Intercept() float64 {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return lr.intercept_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (lr *LinearRegression) Clone() model.Estimator {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	return NewLinearRegression(
		WithLRFitIntercept(lr.fitIntercept),
		WithLRNormalize(lr.normalize),
		WithLRCopyX(lr.copyX),
	)
}

// ExportWeights は学習済みの重みをチェックサム付きでエクスポートする
func (lr *LinearRegression) ExportWeights() (*model.ModelWeights, error) {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	if err := lr.state.RequireFitted("LinearRegression", "ExportWeights"); err != nil {
		return nil, err
	}

	nFeatures, nSamples := lr.state.GetDimensions()
	weights := &model.ModelWeights{
		ModelType:    "LinearRegression",
		Version:      "1",
		Coefficients: append([]float64(nil), lr.coef_...),
		Intercept:    lr.intercept_,
		IsFitted:     true,
		Hyperparameters: map[string]interface{}{
			"fit_intercept": lr.fitIntercept,
			"normalize":     lr.normalize,
		},
		Metadata: map[string]interface{}{
			"n_features": nFeatures,
			"n_samples":  nSamples,
			"checksum":   weightChecksum(lr.coef_, lr.intercept_),
		},
	}
	return weights, nil
}

// ImportWeights はエクスポートされた重みを読み込み、学習済み状態にする
// チェックサムが一致しない場合はエラーを返す
func (lr *LinearRegression) ImportWeights(weights *model.ModelWeights) error {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	if weights == nil {
		return errors.NewValidationError("weights", "weights must not be nil", nil)
	}
	if err := weights.Validate(); err != nil {
		return err
	}
	if weights.ModelType != "LinearRegression" {
		return errors.NewValidationError("model_type", "expected LinearRegression", weights.ModelType)
	}

	coef := append([]float64(nil), weights.Coefficients...)
	if want, ok := weights.Metadata["checksum"].(string); ok {
		if got := weightChecksum(coef, weights.Intercept); got != want {
			return errors.NewValueError("LinearRegression.ImportWeights", "checksum mismatch, weights may be corrupted")
		}
	}

	if v, ok := weights.Hyperparameters["fit_intercept"].(bool); ok {
		lr.fitIntercept = v
	}
	if v, ok := weights.Hyperparameters["normalize"].(bool); ok {
		lr.normalize = v
	}

	lr.coef_ = coef
	lr.intercept_ = weights.Intercept

	// JSON経由ではfloat64、メモリ内ではintで届く
	nSamples := 0
	switch v := weights.Metadata["n_samples"].(type) {
	case float64:
		nSamples = int(v)
	case int:
		nSamples = v
	}
	lr.state.SetDimensions(len(coef), nSamples)
	lr.state.SetFitted()
	return nil
}

// WeightHash は重みのSHA-256ハッシュを返す
// 学習結果の再現性検証に使う
func (lr *LinearRegression) WeightHash() string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()
	if !lr.state.IsFitted() {
		return ""
	}
	return weightChecksum(lr.coef_, lr.intercept_)
}

func weightChecksum(coef []float64, intercept float64) string {
	payload := append(append([]float64(nil), coef...), intercept)
	data, _ := json.Marshal(payload)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
