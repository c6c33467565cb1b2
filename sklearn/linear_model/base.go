// Package linear_model provides linear estimators: coordinate-descent
// elastic-net and lasso with regularization paths, the ridge solver family
// with generalized cross-validation, and stochastic gradient descent
// regressors and classifiers. The APIs follow scikit-learn naming.
package linear_model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// toDense はmat.Matrixを*mat.Denseのコピーに変換する
// 呼び出し側が安全に変更できるよう常に新しいメモリを確保する
func toDense(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Copy(m)
	return out
}

// toVec はn×1行列を[]float64に変換する
func toVec(m mat.Matrix) []float64 {
	r, _ := m.Dims()
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = m.At(i, 0)
	}
	return out
}

// vecToMatrix は[]float64をn×1の*mat.Denseに変換する
func vecToMatrix(v []float64) *mat.Dense {
	out := mat.NewDense(len(v), 1, nil)
	for i, val := range v {
		out.Set(i, 0, val)
	}
	return out
}

// validateXY はXとyの行数が一致しデータが空でないことを検証する
func validateXY(op string, X, y mat.Matrix) error {
	xr, xc := X.Dims()
	yr, _ := y.Dims()

	if xr == 0 || xc == 0 {
		return errors.NewValueError(op, "empty input matrix")
	}
	if xr != yr {
		return errors.NewDimensionError(op, xr, yr, 0)
	}
	return nil
}

// centerData は切片学習のためにXとyを中心化する
// fitInterceptがfalseの場合は何もしないでゼロ平均・単位スケールを返す
// normalizeがtrueの場合は各列をそのL2ノルムで割る
// sampleWeightが与えられた場合は重み付き平均で中心化する
//
// 戻り値のXMean, yMean, XStdはsetInterceptで切片を復元するために使う
// Xとyは破壊的に変更される
func centerData(X *mat.Dense, y *mat.Dense, fitIntercept, normalize bool, sampleWeight []float64) (XMean, yMean, XStd []float64) {
	nSamples, nFeatures := X.Dims()
	_, nTargets := y.Dims()

	XMean = make([]float64, nFeatures)
	yMean = make([]float64, nTargets)
	XStd = make([]float64, nFeatures)
	for j := range XStd {
		XStd[j] = 1.0
	}

	if !fitIntercept {
		return XMean, yMean, XStd
	}

	// 重み付き平均
	var wSum float64
	if sampleWeight != nil {
		for _, w := range sampleWeight {
			wSum += w
		}
	} else {
		wSum = float64(nSamples)
	}

	for j := 0; j < nFeatures; j++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			if sampleWeight != nil {
				sum += X.At(i, j) * sampleWeight[i]
			} else {
				sum += X.At(i, j)
			}
		}
		XMean[j] = sum / wSum
	}
	for k := 0; k < nTargets; k++ {
		var sum float64
		for i := 0; i < nSamples; i++ {
			if sampleWeight != nil {
				sum += y.At(i, k) * sampleWeight[i]
			} else {
				sum += y.At(i, k)
			}
		}
		yMean[k] = sum / wSum
	}

	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			X.Set(i, j, X.At(i, j)-XMean[j])
		}
		for k := 0; k < nTargets; k++ {
			y.Set(i, k, y.At(i, k)-yMean[k])
		}
	}

	if normalize {
		for j := 0; j < nFeatures; j++ {
			var norm float64
			for i := 0; i < nSamples; i++ {
				v := X.At(i, j)
				norm += v * v
			}
			norm = math.Sqrt(norm)
			if norm == 0 {
				norm = 1.0
			}
			XStd[j] = norm
			for i := 0; i < nSamples; i++ {
				X.Set(i, j, X.At(i, j)/norm)
			}
		}
	}

	return XMean, yMean, XStd
}

// restoreIntercept は中心化されたデータで学習した係数から
// 元のスケールでの係数と切片を復元する
// coefは(nTargets × nFeatures)で、破壊的にスケールが戻される
func restoreIntercept(coef *mat.Dense, XMean, yMean, XStd []float64) (intercept []float64) {
	nTargets, nFeatures := coef.Dims()
	intercept = make([]float64, nTargets)

	for k := 0; k < nTargets; k++ {
		var dot float64
		for j := 0; j < nFeatures; j++ {
			w := coef.At(k, j) / XStd[j]
			coef.Set(k, j, w)
			dot += XMean[j] * w
		}
		intercept[k] = yMean[k] - dot
	}
	return intercept
}

// decisionFunction はX·coefᵀ + interceptを計算する
// coefは(nTargets × nFeatures)、戻り値は(nSamples × nTargets)
func decisionFunction(X mat.Matrix, coef *mat.Dense, intercept []float64) *mat.Dense {
	nSamples, _ := X.Dims()
	nTargets, _ := coef.Dims()

	out := mat.NewDense(nSamples, nTargets, nil)
	out.Mul(X, coef.T())
	for i := 0; i < nSamples; i++ {
		for k := 0; k < nTargets; k++ {
			out.Set(i, k, out.At(i, k)+intercept[k])
		}
	}
	return out
}

// r2ScoreForModel はPredict結果に対する決定係数を計算する共通実装
func r2ScoreForModel(p interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}, X, y mat.Matrix) (float64, error) {
	pred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}

	yTrue := toVec(y)
	yPred := toVec(pred)

	n := len(yTrue)
	var yMean float64
	for _, v := range yTrue {
		yMean += v
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		tss += (yTrue[i] - yMean) * (yTrue[i] - yMean)
		rss += (yTrue[i] - yPred[i]) * (yTrue[i] - yPred[i])
	}
	if tss == 0 {
		// 定数ターゲットは完全予測のときだけ1、それ以外は0
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}
