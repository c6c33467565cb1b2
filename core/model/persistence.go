package model

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// WeightExporter は重みのエクスポート・インポートに対応したモデル
type WeightExporter interface {
	ExportWeights() (*ModelWeights, error)
	ImportWeights(weights *ModelWeights) error
}

// SaveModel はモデルの重みをJSONファイルに保存する
//
// 使用例:
//
//	reg := linear_model.NewLinearRegression()
//	// ... 学習 ...
//	err := model.SaveModel(reg, "model.json")
func SaveModel(m WeightExporter, filename string) error {
	weights, err := m.ExportWeights()
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create model file")
	}
	defer file.Close()

	return WriteWeights(file, weights)
}

// LoadModel はJSONファイルから重みを読み込んでモデルを学習済み状態にする
func LoadModel(m WeightExporter, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer file.Close()

	weights, err := ReadWeights(file)
	if err != nil {
		return err
	}
	return m.ImportWeights(weights)
}

// WriteWeights は重みをio.WriterにJSONで書き出す
func WriteWeights(w io.Writer, weights *ModelWeights) error {
	data, err := weights.ToJSON()
	if err != nil {
		return errors.Wrap(err, "failed to encode model weights")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "failed to write model weights")
	}
	return nil
}

// ReadWeights はio.Readerから重みのJSONを読み込んで検証する
func ReadWeights(r io.Reader) (*ModelWeights, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model weights")
	}

	weights := &ModelWeights{}
	if err := weights.FromJSON(data); err != nil {
		return nil, errors.Wrap(err, "failed to decode model weights")
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}
