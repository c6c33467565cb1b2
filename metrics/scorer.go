package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// Scorer は評価指標を名前付きでラップし、交差検証やリッジ回帰の
// 正則化パラメータ選択から統一的に呼び出せるようにする
type Scorer struct {
	// Name はスコアラーの登録名
	Name string
	// GreaterIsBetter はスコアが大きいほど良いかどうか
	// 誤差系の指標（MSE等）では false になる
	GreaterIsBetter bool

	fn func(yTrue, yPred *mat.VecDense) (float64, error)
}

// Score は真値と予測値に対するスコアを計算する
func (s Scorer) Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if s.fn == nil {
		return 0, errors.NewValueError("Scorer.Score", "scorer is not initialized")
	}
	return s.fn(yTrue, yPred)
}

// 登録済みスコアラー
var scorers = map[string]Scorer{
	"r2": {
		Name:            "r2",
		GreaterIsBetter: true,
		fn:              R2Score,
	},
	"mean_squared_error": {
		Name:            "mean_squared_error",
		GreaterIsBetter: false,
		fn:              MSE,
	},
	"mean_absolute_error": {
		Name:            "mean_absolute_error",
		GreaterIsBetter: false,
		fn:              MAE,
	},
	// 最大化規約に合わせて符号反転した誤差系スコアラー
	"neg_mean_squared_error": {
		Name:            "neg_mean_squared_error",
		GreaterIsBetter: true,
		fn:              negated(MSE),
	},
	"neg_mean_absolute_error": {
		Name:            "neg_mean_absolute_error",
		GreaterIsBetter: true,
		fn:              negated(MAE),
	},
	"accuracy": {
		Name:            "accuracy",
		GreaterIsBetter: true,
		fn:              AccuracyScore,
	},
}

// negated は誤差指標を符号反転し、大きいほど良いスコアに変換する
func negated(fn func(yTrue, yPred *mat.VecDense) (float64, error)) func(yTrue, yPred *mat.VecDense) (float64, error) {
	return func(yTrue, yPred *mat.VecDense) (float64, error) {
		v, err := fn(yTrue, yPred)
		return -v, err
	}
}

// GetScorer は登録名からスコアラーを取得する
// 利用可能な名前: "r2", "mean_squared_error", "neg_mean_squared_error",
// "mean_absolute_error", "neg_mean_absolute_error", "accuracy"
func GetScorer(name string) (Scorer, error) {
	// "mse" は別名として受け付ける
	if name == "mse" {
		name = "mean_squared_error"
	}
	s, ok := scorers[name]
	if !ok {
		return Scorer{}, errors.NewValueError("GetScorer", "unknown scorer: "+name)
	}
	return s, nil
}
