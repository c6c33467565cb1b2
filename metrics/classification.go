package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// AccuracyScore は分類の正解率を計算する
// ラベルは完全一致で比較される
func AccuracyScore(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty vector")
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AccuracyScore", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// ZeroOneLoss は誤分類率（1 - 正解率）を計算する
func ZeroOneLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := AccuracyScore(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// AccuracyScoreLabels は整数ラベルのスライスに対して正解率を計算する
func AccuracyScoreLabels(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScoreLabels", "empty slice")
	}

	if len(yPred) != n {
		return 0, errors.NewDimensionError("AccuracyScoreLabels", n, len(yPred), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}
