package model

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Batch はストリーミング学習に流す1単位の学習データ
type Batch struct {
	X mat.Matrix // 特徴量行列
	Y mat.Matrix // 目的変数行列
}

// StreamingEstimator はチャネル経由でデータを受け取りながら逐次学習する
// 推定器のインターフェース。SGDRegressorが実装する
type StreamingEstimator interface {
	IncrementalEstimator

	// FitStream はデータストリームからモデルを学習する
	// コンテキストのキャンセルかチャネルのクローズまで学習を続ける
	FitStream(ctx context.Context, dataChan <-chan *Batch) error

	// PredictStream は入力ストリームの各行列を順に予測して返す
	// 入力チャネルが閉じられると出力チャネルも閉じられる
	PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix

	// FitPredictStream はtest-then-train方式で学習と予測を同時に行う
	// 各バッチをまず予測してから、そのバッチで学習する
	FitPredictStream(ctx context.Context, dataChan <-chan *Batch) <-chan mat.Matrix
}
