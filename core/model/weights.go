package model

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ModelWeights は線形推定器の学習結果を永続化するためのレコード
// WeightExporterを実装する推定器がエクスポート・インポートに使い、
// SaveModel / LoadModel でJSONファイルとして読み書きされる
type ModelWeights struct {
	// ModelType は推定器の種類（LinearRegression等）
	// インポート時に一致しないレコードは拒否される
	ModelType string `json:"model_type"`

	// Version はレコード形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// Coefficients は係数ベクトル
	Coefficients []float64 `json:"coefficients"`

	// Intercept は切片
	Intercept float64 `json:"intercept"`

	// Features は特徴量の名前（オプション）
	Features []string `json:"features,omitempty"`

	// Hyperparameters は学習時のハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// Metadata は標本数やチェックサム等の追加情報
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted は学習済みの重みかどうか
	IsFitted bool `json:"is_fitted"`
}

// ToJSON はModelWeightsをJSON形式にシリアライズする
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsを復元する
func (mw *ModelWeights) FromJSON(data []byte) error {
	return json.Unmarshal(data, mw)
}

// Validate はレコードの整合性を検証する
// 学習済みフラグと係数の有無が食い違うレコードは不正とみなす
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.New("model_type is required")
	}
	if mw.Version == "" {
		return errors.New("version is required")
	}
	if !mw.IsFitted && len(mw.Coefficients) > 0 {
		return errors.New("unfitted model should not have coefficients")
	}
	if mw.IsFitted && len(mw.Coefficients) == 0 {
		return errors.New("fitted model must have coefficients")
	}
	return nil
}

// Clone はModelWeightsのディープコピーを返す
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		Intercept:       mw.Intercept,
		IsFitted:        mw.IsFitted,
		Coefficients:    make([]float64, len(mw.Coefficients)),
		Features:        make([]string, len(mw.Features)),
		Hyperparameters: make(map[string]interface{}),
		Metadata:        make(map[string]interface{}),
	}

	copy(clone.Coefficients, mw.Coefficients)
	copy(clone.Features, mw.Features)

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}
