package linear_model

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/core/parallel"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
	"github.com/YuminosukeSato/glearn/sklearn/cross_validation"
)

// ElasticNetCV は交差検証でalphaとl1Ratioを選ぶElasticNet
// 正則化パス全体をfoldごとに一度に計算するため、alphaごとに
// 学習し直すグリッドサーチより大幅に速い
type ElasticNetCV struct {
	state *model.StateManager
	mu    sync.RWMutex

	l1Ratios     []float64
	alphas       []float64 // 明示指定、nilなら自動グリッド
	nAlphas      int
	eps          float64
	cv           cross_validation.Splitter
	nFolds       int
	fitIntercept bool
	normalize    bool
	maxIter      int
	tol          float64
	positive     bool
	nJobs        int

	model_    *ElasticNet
	alpha_    float64
	l1Ratio_  float64
	alphas_   []float64
	msePath_  *mat.Dense // 選択されたl1Ratioの (nAlphas×nFolds)
	mseMean_  []float64  // 選択されたl1Ratioのfold平均
	allPaths_ []*mat.Dense
}

// ElasticNetCVOption はElasticNetCVのオプション設定関数
type ElasticNetCVOption func(*ElasticNetCV)

// WithCVL1Ratios は試すl1Ratio候補を設定する（デフォルト: 0.5のみ）
// l1Ratio=0を含める場合はalphaグリッドを明示的に与えること
func WithCVL1Ratios(l1Ratios []float64) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.l1Ratios = append([]float64(nil), l1Ratios...) }
}

// WithCVAlphas はalphaグリッドを明示的に設定する（自動グリッドを無効化）
func WithCVAlphas(alphas []float64) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.alphas = append([]float64(nil), alphas...) }
}

// WithCVNAlphas は自動グリッドのalpha数を設定する（デフォルト: 100）
func WithCVNAlphas(nAlphas int) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.nAlphas = nAlphas }
}

// WithCVEps は自動グリッドの alpha_min/alpha_max 比を設定する（デフォルト: 1e-3）
func WithCVEps(eps float64) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.eps = eps }
}

// WithCVSplitter は明示的なfold生成器を設定する
func WithCVSplitter(cv cross_validation.Splitter) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.cv = cv }
}

// WithCVNFolds はfold数を設定する（デフォルト: 3）
func WithCVNFolds(nFolds int) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.nFolds = nFolds }
}

// WithCVFitIntercept は切片を学習するかどうかを設定する
func WithCVFitIntercept(fit bool) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.fitIntercept = fit }
}

// WithCVNormalize は特徴量をL2ノルムで正規化するかどうかを設定する
func WithCVNormalize(normalize bool) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.normalize = normalize }
}

// WithCVMaxIter は座標降下法の最大反復回数を設定する
func WithCVMaxIter(maxIter int) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.maxIter = maxIter }
}

// WithCVTol は双対ギャップの収束判定許容値を設定する
func WithCVTol(tol float64) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.tol = tol }
}

// WithCVPositive は係数を非負に制約する
func WithCVPositive(positive bool) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.positive = positive }
}

// WithCVNJobs は(l1Ratio, fold)評価の並列数を設定する（0でCPU数）
func WithCVNJobs(nJobs int) ElasticNetCVOption {
	return func(e *ElasticNetCV) { e.nJobs = nJobs }
}

// NewElasticNetCV は新しいElasticNetCVを作成する
func NewElasticNetCV(options ...ElasticNetCVOption) *ElasticNetCV {
	e := &ElasticNetCV{
		state:        model.NewStateManager(),
		l1Ratios:     []float64{0.5},
		nAlphas:      100,
		eps:          1e-3,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// alphaGridFor はl1Ratioごとのalphaグリッドを全データから計算する
// fold間で同じグリッドを使うことでMSEを平均できる
func (e *ElasticNetCV) alphaGridFor(X, y mat.Matrix, l1Ratio float64) ([]float64, error) {
	if e.alphas != nil {
		grid := append([]float64(nil), e.alphas...)
		sortDescending(grid)
		return grid, nil
	}

	nSamples, nFeatures := X.Dims()
	Xc := mat.NewDense(nSamples, nFeatures, nil)
	Xc.Copy(X)
	yc := mat.NewDense(nSamples, 1, nil)
	yc.Copy(y)
	centerData(Xc, yc, e.fitIntercept, e.normalize, nil)

	yv := make([]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		yv[i] = yc.At(i, 0)
	}
	return AlphaGrid(Xc, yv, l1Ratio, e.eps, e.nAlphas)
}

// cvCell は1つの(l1Ratio, fold)の組に対するパス評価の結果
type cvCell struct {
	l1Idx   int
	foldIdx int
	mses    []float64 // alphaごとのテストMSE
}

// Fit は全(l1Ratio, alpha)組の交差検証MSEを計算し、最良の組で学習し直す
func (e *ElasticNetCV) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "ElasticNetCV.Fit")

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateXY("ElasticNetCV.Fit", X, y); err != nil {
		return err
	}
	if len(e.l1Ratios) == 0 {
		return errors.NewValidationError("l1_ratio", "must be non-empty", 0)
	}
	nSamples, nFeatures := X.Dims()

	// fold間で共有するalphaグリッドをl1Ratioごとに決める
	grids := make([][]float64, len(e.l1Ratios))
	for li, l1Ratio := range e.l1Ratios {
		grid, err := e.alphaGridFor(X, y, l1Ratio)
		if err != nil {
			return err
		}
		grids[li] = grid
	}

	cv, err := cross_validation.CheckCV(e.cv, e.nFolds, nSamples, nil, false)
	if err != nil {
		return err
	}
	folds := cv.Split()
	for i := range folds {
		folds[i] = folds[i].AsIndices()
	}

	// (l1Ratio, fold)の全組を並列に評価する
	type job struct{ li, fi int }
	jobs := make([]job, 0, len(e.l1Ratios)*len(folds))
	for li := range e.l1Ratios {
		for fi := range folds {
			jobs = append(jobs, job{li, fi})
		}
	}
	cells := make([]cvCell, len(jobs))

	err = parallel.MapError(len(jobs), e.nJobs, func(j int) error {
		li, fi := jobs[j].li, jobs[j].fi
		fold := folds[fi]
		grid := grids[li]

		XTrain, yTrain := subsetXY(X, y, fold.Train)
		XTest, yTest := subsetXY(X, y, fold.Test)

		path, err := EnetPath(XTrain, yTrain,
			WithPathAlphas(grid),
			WithPathL1Ratio(e.l1Ratios[li]),
			WithPathFitIntercept(e.fitIntercept),
			WithPathNormalize(e.normalize),
			WithPathMaxIter(e.maxIter),
			WithPathTol(e.tol),
			WithPathPositive(e.positive),
		)
		if err != nil {
			return errors.Wrapf(err, "regularization path on fold %d", fi)
		}

		nTest := len(fold.Test)
		mses := make([]float64, len(grid))
		row := make([]float64, nFeatures)
		for a := range grid {
			mat.Row(row, a, path.Coefs)
			sum := 0.0
			for i := 0; i < nTest; i++ {
				pred := path.Intercepts[a]
				for jf := 0; jf < nFeatures; jf++ {
					pred += row[jf] * XTest.At(i, jf)
				}
				d := yTest.At(i, 0) - pred
				sum += d * d
			}
			mses[a] = sum / float64(nTest)
		}
		cells[j] = cvCell{l1Idx: li, foldIdx: fi, mses: mses}
		return nil
	})
	if err != nil {
		return err
	}

	// fold平均MSEが最小の(l1Ratio, alpha)を選ぶ
	bestMSE := math.Inf(1)
	bestL1 := 0
	bestAlphaIdx := 0
	allPaths := make([]*mat.Dense, len(e.l1Ratios))
	for li, grid := range grids {
		msePath := mat.NewDense(len(grid), len(folds), nil)
		for _, cell := range cells {
			if cell.l1Idx != li {
				continue
			}
			for a, mse := range cell.mses {
				msePath.Set(a, cell.foldIdx, mse)
			}
		}
		allPaths[li] = msePath
		for a := range grid {
			mean := 0.0
			for f := 0; f < len(folds); f++ {
				mean += msePath.At(a, f)
			}
			mean /= float64(len(folds))
			if mean < bestMSE {
				bestMSE = mean
				bestL1 = li
				bestAlphaIdx = a
			}
		}
	}

	bestAlpha := grids[bestL1][bestAlphaIdx]
	bestL1Ratio := e.l1Ratios[bestL1]

	// 最良の組で全データから学習し直す
	final := NewElasticNet(
		WithAlpha(bestAlpha),
		WithL1Ratio(bestL1Ratio),
		WithFitIntercept(e.fitIntercept),
		WithNormalize(e.normalize),
		WithMaxIter(e.maxIter),
		WithTol(e.tol),
		WithPositive(e.positive),
	)
	if err := final.Fit(X, y); err != nil {
		return err
	}

	e.model_ = final
	e.alpha_ = bestAlpha
	e.l1Ratio_ = bestL1Ratio
	e.alphas_ = grids[bestL1]
	e.msePath_ = allPaths[bestL1]
	e.allPaths_ = allPaths
	grid := grids[bestL1]
	e.mseMean_ = make([]float64, len(grid))
	for a := range grid {
		mean := 0.0
		for f := 0; f < len(folds); f++ {
			mean += allPaths[bestL1].At(a, f)
		}
		e.mseMean_[a] = mean / float64(len(folds))
	}
	e.state.SetDimensions(nFeatures, nSamples)
	e.state.SetFitted()

	log.GetLoggerWithName("ElasticNetCV").Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.AlphaKey, bestAlpha,
		"l1_ratio", bestL1Ratio,
		log.FoldsKey, len(folds),
	)
	return nil
}

// Predict は学習済みモデルで予測する
func (e *ElasticNetCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.state.RequireFitted("ElasticNetCV", "Predict"); err != nil {
		return nil, err
	}
	return e.model_.Predict(X)
}

// Score は決定係数R²を返す
func (e *ElasticNetCV) Score(X, y mat.Matrix) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.state.RequireFitted("ElasticNetCV", "Score"); err != nil {
		return 0, err
	}
	return e.model_.Score(X, y)
}

// IsFitted は学習済みかどうかを返す
func (e *ElasticNetCV) IsFitted() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.IsFitted()
}

// Alpha は選択された正則化強度を返す
func (e *ElasticNetCV) Alpha() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha_
}

// L1Ratio は選択されたL1比率を返す
func (e *ElasticNetCV) L1Ratio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.l1Ratio_
}

// Alphas は選択されたl1Ratioのalphaグリッド（降順）を返す
func (e *ElasticNetCV) Alphas() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]float64(nil), e.alphas_...)
}

// MSEPath は選択されたl1Ratioの (nAlphas×nFolds) テストMSE行列を返す
func (e *ElasticNetCV) MSEPath() *mat.Dense {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.msePath_
}

// MSEMean は選択されたl1Ratioのalphaごとのfold平均MSEを返す
func (e *ElasticNetCV) MSEMean() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]float64(nil), e.mseMean_...)
}

// Weights は係数ベクトルを返す
func (e *ElasticNetCV) Weights() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model_ == nil {
		return nil
	}
	return e.model_.Weights()
}

// Intercept は切片を返す
func (e *ElasticNetCV) Intercept() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model_ == nil {
		return 0
	}
	return e.model_.Intercept()
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (e *ElasticNetCV) Clone() model.Estimator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	clone := NewElasticNetCV(
		WithCVL1Ratios(e.l1Ratios),
		WithCVNAlphas(e.nAlphas),
		WithCVEps(e.eps),
		WithCVNFolds(e.nFolds),
		WithCVFitIntercept(e.fitIntercept),
		WithCVNormalize(e.normalize),
		WithCVMaxIter(e.maxIter),
		WithCVTol(e.tol),
		WithCVPositive(e.positive),
		WithCVNJobs(e.nJobs),
	)
	if e.alphas != nil {
		clone.alphas = append([]float64(nil), e.alphas...)
	}
	if e.cv != nil {
		clone.cv = e.cv
	}
	return clone
}

// LassoCV は交差検証でalphaを選ぶLasso
// l1Ratioを1.0に固定したElasticNetCVと等価
type LassoCV struct {
	ElasticNetCV
}

// NewLassoCV は新しいLassoCVを作成する
func NewLassoCV(options ...ElasticNetCVOption) *LassoCV {
	l := &LassoCV{}
	l.state = model.NewStateManager()
	l.l1Ratios = []float64{1.0}
	l.nAlphas = 100
	l.eps = 1e-3
	l.fitIntercept = true
	l.maxIter = 1000
	l.tol = 1e-4
	for _, opt := range options {
		opt(&l.ElasticNetCV)
	}
	// Lassoなのでl1Ratioは常に1.0
	l.l1Ratios = []float64{1.0}
	return l
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (l *LassoCV) Clone() model.Estimator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	clone := NewLassoCV(
		WithCVNAlphas(l.nAlphas),
		WithCVEps(l.eps),
		WithCVNFolds(l.nFolds),
		WithCVFitIntercept(l.fitIntercept),
		WithCVNormalize(l.normalize),
		WithCVMaxIter(l.maxIter),
		WithCVTol(l.tol),
		WithCVPositive(l.positive),
		WithCVNJobs(l.nJobs),
	)
	if l.alphas != nil {
		clone.alphas = append([]float64(nil), l.alphas...)
	}
	if l.cv != nil {
		clone.cv = l.cv
	}
	return clone
}

// subsetXY は指定行だけを抜き出した密行列を返す
func subsetXY(X, y mat.Matrix, rows []int) (*mat.Dense, *mat.Dense) {
	_, nFeatures := X.Dims()
	Xs := mat.NewDense(len(rows), nFeatures, nil)
	ys := mat.NewDense(len(rows), 1, nil)
	for outRow, i := range rows {
		for j := 0; j < nFeatures; j++ {
			Xs.Set(outRow, j, X.At(i, j))
		}
		ys.Set(outRow, 0, y.At(i, 0))
	}
	return Xs, ys
}

// sortDescending は降順の挿入ソート（alphaグリッドは高々数百要素）
func sortDescending(vals []float64) {
	for i := 1; i < len(vals); i++ {
		for j := i; j > 0 && vals[j] > vals[j-1]; j-- {
			vals[j], vals[j-1] = vals[j-1], vals[j]
		}
	}
}
