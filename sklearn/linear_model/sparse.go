package linear_model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// CSCMatrix は圧縮列格納（Compressed Sparse Column）形式の疎行列
// 座標降下法は特徴列単位でアクセスするためCSC形式が適している
// mat.Matrixを実装しているので密行列と同じAPIに渡せる
type CSCMatrix struct {
	rows, cols int
	data       []float64 // 非ゼロ値（列順）
	rowIdx     []int     // 各値の行インデックス
	colPtr     []int     // 列jの値はdata[colPtr[j]:colPtr[j+1]]
}

// NewCSCMatrix は生のCSC配列から疎行列を作成する
func NewCSCMatrix(rows, cols int, data []float64, rowIdx, colPtr []int) (*CSCMatrix, error) {
	if len(colPtr) != cols+1 {
		return nil, errors.NewValueError("NewCSCMatrix", "colPtr length must be cols+1")
	}
	if len(data) != len(rowIdx) {
		return nil, errors.NewValueError("NewCSCMatrix", "data and rowIdx must have equal length")
	}
	for _, i := range rowIdx {
		if i < 0 || i >= rows {
			return nil, errors.NewValueError("NewCSCMatrix", "row index out of range")
		}
	}
	return &CSCMatrix{rows: rows, cols: cols, data: data, rowIdx: rowIdx, colPtr: colPtr}, nil
}

// NewCSCFromDense は密行列から非ゼロ要素を抽出してCSC疎行列を作成する
func NewCSCFromDense(m mat.Matrix) *CSCMatrix {
	rows, cols := m.Dims()
	out := &CSCMatrix{
		rows:   rows,
		cols:   cols,
		colPtr: make([]int, cols+1),
	}
	for j := 0; j < cols; j++ {
		out.colPtr[j] = len(out.data)
		for i := 0; i < rows; i++ {
			if v := m.At(i, j); v != 0 {
				out.data = append(out.data, v)
				out.rowIdx = append(out.rowIdx, i)
			}
		}
	}
	out.colPtr[cols] = len(out.data)
	return out
}

// Dims は行列の次元を返す
func (m *CSCMatrix) Dims() (r, c int) { return m.rows, m.cols }

// At は(i, j)要素を返す
// 疎行列なので列内の線形探索になる。数値計算カーネルはColumnを使うこと
func (m *CSCMatrix) At(i, j int) float64 {
	for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
		if m.rowIdx[k] == i {
			return m.data[k]
		}
	}
	return 0
}

// T は転置ビューを返す
func (m *CSCMatrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// Column は列jの非ゼロ要素（行インデックスと値）を返す
// 戻り値は内部ストレージへのスライスであり変更してはいけない
func (m *CSCMatrix) Column(j int) (rows []int, values []float64) {
	lo, hi := m.colPtr[j], m.colPtr[j+1]
	return m.rowIdx[lo:hi], m.data[lo:hi]
}

// NNZ は非ゼロ要素数を返す
func (m *CSCMatrix) NNZ() int { return len(m.data) }

// ColMeans は各列の平均を返す（中心化の仮想適用に使う）
func (m *CSCMatrix) ColMeans() []float64 {
	means := make([]float64, m.cols)
	for j := 0; j < m.cols; j++ {
		var sum float64
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			sum += m.data[k]
		}
		means[j] = sum / float64(m.rows)
	}
	return means
}

// MulVecTo はout = M·xを計算する
func (m *CSCMatrix) MulVecTo(out []float64, x []float64) {
	for i := range out {
		out[i] = 0
	}
	for j := 0; j < m.cols; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		for k := m.colPtr[j]; k < m.colPtr[j+1]; k++ {
			out[m.rowIdx[k]] += m.data[k] * xj
		}
	}
}
