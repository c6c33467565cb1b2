package linear_model

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

// AlphaGrid は正則化パスの対数等間隔alpha列を計算する
// alpha_max = max_j |X[:,j]·y| / (nSamples·l1Ratio) から eps·alpha_max まで
// nAlphas個を降順で返す
// Xとyは中心化済みであること
func AlphaGrid(X *mat.Dense, y []float64, l1Ratio, eps float64, nAlphas int) ([]float64, error) {
	if l1Ratio <= 0 {
		return nil, errors.NewValidationError("l1_ratio", "automatic alpha grid requires l1_ratio > 0", l1Ratio)
	}
	nSamples, nFeatures := X.Dims()

	alphaMax := 0.0
	col := make([]float64, nSamples)
	for j := 0; j < nFeatures; j++ {
		mat.Col(col, j, X)
		if a := math.Abs(floats.Dot(col, y)); a > alphaMax {
			alphaMax = a
		}
	}
	alphaMax /= float64(nSamples) * l1Ratio

	if alphaMax <= 0 {
		return nil, errors.NewValueError("AlphaGrid", "alpha_max is zero; X carries no signal for y")
	}

	alphas := make([]float64, nAlphas)
	if nAlphas == 1 {
		alphas[0] = alphaMax
		return alphas, nil
	}
	logMax := math.Log10(alphaMax)
	logMin := math.Log10(alphaMax * eps)
	for i := 0; i < nAlphas; i++ {
		// 降順: alphaMax → eps·alphaMax
		frac := float64(i) / float64(nAlphas-1)
		alphas[i] = math.Pow(10, logMax+frac*(logMin-logMax))
	}
	return alphas, nil
}

// PathResult は正則化パス計算の結果
type PathResult struct {
	// Alphas は使用された正則化強度（降順）
	Alphas []float64
	// Coefs は各alphaでの係数（nAlphas × nFeatures、元のスケール）
	Coefs *mat.Dense
	// Intercepts は各alphaでの切片
	Intercepts []float64
	// DualGaps は各alphaでの最終的な双対ギャップ
	DualGaps []float64
	// NIters は各alphaでの反復数
	NIters []int
}

// pathConfig は正則化パス計算の設定
type pathConfig struct {
	alphas       []float64
	nAlphas      int
	eps          float64
	l1Ratio      float64
	fitIntercept bool
	normalize    bool
	maxIter      int
	tol          float64
	positive     bool
}

// PathOption はEnetPath/LassoPathの設定オプション
type PathOption func(*pathConfig)

// WithPathAlphas は使用するalpha列を明示的に指定する
func WithPathAlphas(alphas []float64) PathOption {
	return func(c *pathConfig) { c.alphas = alphas }
}

// WithPathNAlphas は自動グリッドのalpha数を設定する
func WithPathNAlphas(n int) PathOption {
	return func(c *pathConfig) { c.nAlphas = n }
}

// WithPathEps は自動グリッドの alpha_min/alpha_max 比を設定する
func WithPathEps(eps float64) PathOption {
	return func(c *pathConfig) { c.eps = eps }
}

// WithPathL1Ratio はL1とL2の混合比を設定する（1.0でlasso）
func WithPathL1Ratio(r float64) PathOption {
	return func(c *pathConfig) { c.l1Ratio = r }
}

// WithPathFitIntercept は切片学習の有無を設定する
func WithPathFitIntercept(fit bool) PathOption {
	return func(c *pathConfig) { c.fitIntercept = fit }
}

// WithPathNormalize は特徴の正規化の有無を設定する
func WithPathNormalize(normalize bool) PathOption {
	return func(c *pathConfig) { c.normalize = normalize }
}

// WithPathMaxIter は座標降下の最大反復数を設定する
func WithPathMaxIter(maxIter int) PathOption {
	return func(c *pathConfig) { c.maxIter = maxIter }
}

// WithPathTol は収束許容誤差を設定する
func WithPathTol(tol float64) PathOption {
	return func(c *pathConfig) { c.tol = tol }
}

// WithPathPositive は係数を非負に制約する
func WithPathPositive(positive bool) PathOption {
	return func(c *pathConfig) { c.positive = positive }
}

// EnetPath はelastic-netの正則化パスを座標降下法で計算する
// alphaは降順に処理され、前のalphaの解をウォームスタートとして使う
func EnetPath(X, y mat.Matrix, options ...PathOption) (*PathResult, error) {
	cfg := &pathConfig{
		nAlphas:      100,
		eps:          1e-3,
		l1Ratio:      0.5,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
	}
	for _, opt := range options {
		opt(cfg)
	}

	if err := validateXY("EnetPath", X, y); err != nil {
		return nil, err
	}
	if cfg.l1Ratio < 0 || cfg.l1Ratio > 1 {
		return nil, errors.NewValidationError("l1_ratio", "must be in [0, 1]", cfg.l1Ratio)
	}

	start := time.Now()
	Xd := toDense(X)
	yd := toDense(y)
	nSamples, nFeatures := Xd.Dims()

	XMean, yMean, XStd := centerData(Xd, yd, cfg.fitIntercept, cfg.normalize, nil)
	yv := toVec(yd)

	alphas := cfg.alphas
	if alphas == nil {
		var err error
		alphas, err = AlphaGrid(Xd, yv, cfg.l1Ratio, cfg.eps, cfg.nAlphas)
		if err != nil {
			return nil, err
		}
	} else {
		// 明示指定されたalphaも降順に処理する
		alphas = append([]float64(nil), alphas...)
		for i := 0; i < len(alphas); i++ {
			for j := i + 1; j < len(alphas); j++ {
				if alphas[j] > alphas[i] {
					alphas[i], alphas[j] = alphas[j], alphas[i]
				}
			}
		}
	}

	result := &PathResult{
		Alphas:     alphas,
		Coefs:      mat.NewDense(len(alphas), nFeatures, nil),
		Intercepts: make([]float64, len(alphas)),
		DualGaps:   make([]float64, len(alphas)),
		NIters:     make([]int, len(alphas)),
	}

	// 前のalphaの解がウォームスタートになる
	w := make([]float64, nFeatures)
	for ai, alpha := range alphas {
		l1 := alpha * cfg.l1Ratio * float64(nSamples)
		l2 := alpha * (1 - cfg.l1Ratio) * float64(nSamples)

		res := enetCoordinateDescent(w, l1, l2, Xd, yv, cfg.maxIter, cfg.tol, cfg.positive)
		result.DualGaps[ai] = res.gap
		result.NIters[ai] = res.nIter
		if !res.converged {
			warning := errors.NewConvergenceWarning("coordinate descent", res.nIter, "objective did not converge; you might want to increase the number of iterations")
			warning.Gap = res.gap
			errors.Warn(warning)
		}

		// 元スケールへ戻した係数と切片を記録
		var dot float64
		for j := 0; j < nFeatures; j++ {
			wj := w[j] / XStd[j]
			result.Coefs.Set(ai, j, wj)
			dot += XMean[j] * wj
		}
		result.Intercepts[ai] = yMean[0] - dot
	}

	log.GetLoggerWithName("linear_model").Debug("regularization path computed",
		log.OperationKey, log.OperationPath,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"n_alphas", len(alphas),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

// LassoPath はlassoの正則化パスを計算する（l1_ratio=1のEnetPath）
func LassoPath(X, y mat.Matrix, options ...PathOption) (*PathResult, error) {
	options = append(options, WithPathL1Ratio(1.0))
	return EnetPath(X, y, options...)
}

// ElasticNet はL1とL2の混合正則化付き線形回帰モデル
// 目的関数:
//
//	(1/(2n))·||y - Xw||² + alpha·l1Ratio·||w||₁ + (alpha·(1-l1Ratio)/2)·||w||²
//
// 座標降下法で最適化し、収束は双対ギャップで判定する
type ElasticNet struct {
	state *model.StateManager
	mu    sync.RWMutex

	// ハイパーパラメータ
	alpha        float64 // 正則化強度
	l1Ratio      float64 // L1の混合比（1.0でlasso相当）
	fitIntercept bool    // 切片を学習するか
	normalize    bool    // 特徴をL2ノルムで正規化するか
	maxIter      int     // 座標降下の最大反復数
	tol          float64 // 収束許容誤差（||y||²でスケールされる）
	positive     bool    // 係数を非負に制約するか
	warmStart    bool    // 前回の係数から学習を継続するか
	copyX        bool    // 入力Xをコピーしてから中心化するか

	// 学習パラメータ
	coef_      []float64
	intercept_ float64
	dualGap_   float64
	nIter_     int
	converged_ bool
}

// ElasticNetOption は設定オプション
type ElasticNetOption func(*ElasticNet)

// NewElasticNet は新しいElasticNetを作成する
func NewElasticNet(options ...ElasticNetOption) *ElasticNet {
	e := &ElasticNet{
		state:        model.NewStateManager(),
		alpha:        1.0,
		l1Ratio:      0.5,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
		copyX:        true,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// WithAlpha は正則化強度を設定する
func WithAlpha(alpha float64) ElasticNetOption {
	return func(e *ElasticNet) { e.alpha = alpha }
}

// WithL1Ratio はL1の混合比を設定する
func WithL1Ratio(r float64) ElasticNetOption {
	return func(e *ElasticNet) { e.l1Ratio = r }
}

// WithFitIntercept は切片学習の有無を設定する
func WithFitIntercept(fit bool) ElasticNetOption {
	return func(e *ElasticNet) { e.fitIntercept = fit }
}

// WithNormalize は特徴の正規化の有無を設定する
func WithNormalize(normalize bool) ElasticNetOption {
	return func(e *ElasticNet) { e.normalize = normalize }
}

// WithMaxIter は最大反復数を設定する
func WithMaxIter(maxIter int) ElasticNetOption {
	return func(e *ElasticNet) { e.maxIter = maxIter }
}

// WithTol は収束許容誤差を設定する
func WithTol(tol float64) ElasticNetOption {
	return func(e *ElasticNet) { e.tol = tol }
}

// WithPositive は係数の非負制約を設定する
func WithPositive(positive bool) ElasticNetOption {
	return func(e *ElasticNet) { e.positive = positive }
}

// WithWarmStart はウォームスタートの有無を設定する
func WithWarmStart(warmStart bool) ElasticNetOption {
	return func(e *ElasticNet) { e.warmStart = warmStart }
}

// WithCopyX は入力コピーの有無を設定する
// falseにするとXが*mat.Denseの場合に中心化で破壊的に変更される
func WithCopyX(copyX bool) ElasticNetOption {
	return func(e *ElasticNet) { e.copyX = copyX }
}

// Fit はモデルを座標降下法で学習させる
// Xが*CSCMatrixの場合は密行列化せずに疎行列カーネルを使う
func (e *ElasticNet) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "ElasticNet.Fit")

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := validateXY("ElasticNet.Fit", X, y); err != nil {
		return err
	}
	if err := e.validateParams(); err != nil {
		return err
	}
	if e.alpha == 0 {
		errors.Warn(errors.NewDataConversionWarning("alpha=0", "ordinary least squares", "with alpha=0 coordinate descent has no regularization; use a least-squares solver instead"))
	}

	nSamples, nFeatures := X.Dims()
	start := time.Now()

	if !e.warmStart || e.coef_ == nil || len(e.coef_) != nFeatures {
		e.coef_ = make([]float64, nFeatures)
	}

	l1 := e.alpha * e.l1Ratio * float64(nSamples)
	l2 := e.alpha * (1 - e.l1Ratio) * float64(nSamples)

	var res cdResult
	var XMean, yMean, XStd []float64

	if Xs, ok := X.(*CSCMatrix); ok {
		// 疎行列: 中心化を仮想適用する
		if e.normalize {
			return errors.NewValidationError("normalize", "normalization is not supported for sparse input", true)
		}
		yd := toDense(y)
		var xMean []float64
		yMean = make([]float64, 1)
		if e.fitIntercept {
			xMean = Xs.ColMeans()
			yv := toVec(yd)
			yMean[0] = floats.Sum(yv) / float64(len(yv))
			for i := 0; i < nSamples; i++ {
				yd.Set(i, 0, yd.At(i, 0)-yMean[0])
			}
		}
		res = sparseEnetCoordinateDescent(e.coef_, l1, l2, Xs, toVec(yd), xMean, e.maxIter, e.tol, e.positive)
		XMean = xMean
		if XMean == nil {
			XMean = make([]float64, nFeatures)
		}
		XStd = make([]float64, nFeatures)
		for j := range XStd {
			XStd[j] = 1
		}
	} else {
		var Xd *mat.Dense
		if d, ok := X.(*mat.Dense); ok && !e.copyX {
			Xd = d
		} else {
			Xd = toDense(X)
		}
		yd := toDense(y)
		XMean, yMean, XStd = centerData(Xd, yd, e.fitIntercept, e.normalize, nil)
		res = enetCoordinateDescent(e.coef_, l1, l2, Xd, toVec(yd), e.maxIter, e.tol, e.positive)
	}

	e.dualGap_ = res.gap
	e.nIter_ = res.nIter
	e.converged_ = res.converged
	if !res.converged {
		warning := errors.NewConvergenceWarning("coordinate descent", res.nIter, "objective did not converge; you might want to increase the number of iterations")
		warning.Gap = res.gap
		errors.Warn(warning)
	}

	// 係数を元のスケールに戻し切片を計算する
	var dot float64
	for j := 0; j < nFeatures; j++ {
		e.coef_[j] /= XStd[j]
		dot += XMean[j] * e.coef_[j]
	}
	e.intercept_ = yMean[0] - dot

	e.state.SetDimensions(nFeatures, nSamples)
	e.state.SetFitted()

	log.GetLoggerWithName("linear_model").Debug("elastic net fitted",
		log.ModelNameKey, "ElasticNet",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, e.nIter_,
		log.DualGapKey, e.dualGap_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

func (e *ElasticNet) validateParams() error {
	if e.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", e.alpha)
	}
	if e.l1Ratio < 0 || e.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", e.l1Ratio)
	}
	if e.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "must be positive", e.maxIter)
	}
	return nil
}

// Predict は入力データに対する予測を行う
func (e *ElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.state.RequireFitted("ElasticNet", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if cols != len(e.coef_) {
		return nil, errors.NewDimensionError("ElasticNet.Predict", len(e.coef_), cols, 1)
	}

	pred := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		v := e.intercept_
		for j := 0; j < cols; j++ {
			v += X.At(i, j) * e.coef_[j]
		}
		pred.Set(i, 0, v)
	}
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (e *ElasticNet) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(e, X, y)
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *ElasticNet) IsFitted() bool { return e.state.IsFitted() }

// Coef は学習された係数を返す
func (e *ElasticNet) Coef() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]float64, len(e.coef_))
	copy(out, e.coef_)
	return out
}

// Weights はmodel.LinearModelインターフェースの実装
func (e *ElasticNet) Weights() []float64 { return e.Coef() }

// Intercept は学習された切片を返す
func (e *ElasticNet) Intercept() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.intercept_
}

// DualGap は最適化終了時の双対ギャップを返す
func (e *ElasticNet) DualGap() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dualGap_
}

// NIter は実行された反復数を返す
func (e *ElasticNet) NIter() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nIter_
}

// Converged は双対ギャップが許容誤差を下回ったかどうかを返す
func (e *ElasticNet) Converged() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.converged_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (e *ElasticNet) Clone() model.Estimator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return &ElasticNet{
		state:        model.NewStateManager(),
		alpha:        e.alpha,
		l1Ratio:      e.l1Ratio,
		fitIntercept: e.fitIntercept,
		normalize:    e.normalize,
		maxIter:      e.maxIter,
		tol:          e.tol,
		positive:     e.positive,
		warmStart:    e.warmStart,
		copyX:        e.copyX,
	}
}

// Lasso はL1正則化付き線形回帰モデル（l1_ratio=1のElasticNet）
type Lasso struct {
	ElasticNet
}

// NewLasso は新しいLassoを作成する
func NewLasso(options ...ElasticNetOption) *Lasso {
	l := &Lasso{}
	l.state = model.NewStateManager()
	l.alpha = 1.0
	l.fitIntercept = true
	l.maxIter = 1000
	l.tol = 1e-4
	l.copyX = true
	for _, opt := range options {
		opt(&l.ElasticNet)
	}
	l.l1Ratio = 1.0
	return l
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (l *Lasso) Clone() model.Estimator {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := &Lasso{}
	out.state = model.NewStateManager()
	out.alpha = l.alpha
	out.l1Ratio = 1.0
	out.fitIntercept = l.fitIntercept
	out.normalize = l.normalize
	out.maxIter = l.maxIter
	out.tol = l.tol
	out.positive = l.positive
	out.warmStart = l.warmStart
	out.copyX = l.copyX
	return out
}

// MultiTaskElasticNet は複数ターゲットを同時に学習するelastic-net
// l2,1混合ノルムにより特徴選択が全タスクで共有される:
// ある特徴の係数は全タスクで同時に非ゼロになるか、同時にゼロになる
type MultiTaskElasticNet struct {
	state *model.StateManager
	mu    sync.RWMutex

	alpha        float64
	l1Ratio      float64
	fitIntercept bool
	normalize    bool
	maxIter      int
	tol          float64
	warmStart    bool

	coef_      *mat.Dense // (nTasks × nFeatures)
	intercept_ []float64
	dualGap_   float64
	nIter_     int
	converged_ bool
}

// MultiTaskOption は設定オプション
type MultiTaskOption func(*MultiTaskElasticNet)

// NewMultiTaskElasticNet は新しいMultiTaskElasticNetを作成する
func NewMultiTaskElasticNet(options ...MultiTaskOption) *MultiTaskElasticNet {
	m := &MultiTaskElasticNet{
		state:        model.NewStateManager(),
		alpha:        1.0,
		l1Ratio:      0.5,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// WithMultiTaskAlpha は正則化強度を設定する
func WithMultiTaskAlpha(alpha float64) MultiTaskOption {
	return func(m *MultiTaskElasticNet) { m.alpha = alpha }
}

// WithMultiTaskL1Ratio はL1の混合比を設定する
func WithMultiTaskL1Ratio(r float64) MultiTaskOption {
	return func(m *MultiTaskElasticNet) { m.l1Ratio = r }
}

// WithMultiTaskMaxIter は最大反復数を設定する
func WithMultiTaskMaxIter(maxIter int) MultiTaskOption {
	return func(m *MultiTaskElasticNet) { m.maxIter = maxIter }
}

// WithMultiTaskTol は収束許容誤差を設定する
func WithMultiTaskTol(tol float64) MultiTaskOption {
	return func(m *MultiTaskElasticNet) { m.tol = tol }
}

// WithMultiTaskFitIntercept は切片学習の有無を設定する
func WithMultiTaskFitIntercept(fit bool) MultiTaskOption {
	return func(m *MultiTaskElasticNet) { m.fitIntercept = fit }
}

// Fit はモデルをマルチタスク座標降下法で学習させる
// yは(nSamples × nTasks)
func (m *MultiTaskElasticNet) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "MultiTaskElasticNet.Fit")

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := validateXY("MultiTaskElasticNet.Fit", X, y); err != nil {
		return err
	}
	if m.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", m.alpha)
	}
	if m.l1Ratio < 0 || m.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", m.l1Ratio)
	}

	nSamples, nFeatures := X.Dims()
	_, nTasks := y.Dims()

	Xd := toDense(X)
	yd := toDense(y)
	XMean, yMean, XStd := centerData(Xd, yd, m.fitIntercept, m.normalize, nil)

	if !m.warmStart || m.coef_ == nil {
		m.coef_ = mat.NewDense(nTasks, nFeatures, nil)
	}

	l1 := m.alpha * m.l1Ratio * float64(nSamples)
	l2 := m.alpha * (1 - m.l1Ratio) * float64(nSamples)

	res := enetCoordinateDescentMultiTask(m.coef_, l1, l2, Xd, yd, m.maxIter, m.tol)
	m.dualGap_ = res.gap
	m.nIter_ = res.nIter
	m.converged_ = res.converged
	if !res.converged {
		warning := errors.NewConvergenceWarning("multi-task coordinate descent", res.nIter, "objective did not converge; you might want to increase the number of iterations")
		warning.Gap = res.gap
		errors.Warn(warning)
	}

	m.intercept_ = restoreIntercept(m.coef_, XMean, yMean, XStd)

	m.state.SetDimensions(nFeatures, nSamples)
	m.state.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
// 戻り値は(nSamples × nTasks)
func (m *MultiTaskElasticNet) Predict(X mat.Matrix) (mat.Matrix, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.state.RequireFitted("MultiTaskElasticNet", "Predict"); err != nil {
		return nil, err
	}
	_, cols := X.Dims()
	if _, nFeatures := m.coef_.Dims(); cols != nFeatures {
		return nil, errors.NewDimensionError("MultiTaskElasticNet.Predict", nFeatures, cols, 1)
	}
	return decisionFunction(X, m.coef_, m.intercept_), nil
}

// IsFitted はモデルが学習済みかどうかを返す
func (m *MultiTaskElasticNet) IsFitted() bool { return m.state.IsFitted() }

// Coef は学習された係数行列（nTasks × nFeatures）のコピーを返す
func (m *MultiTaskElasticNet) Coef() *mat.Dense {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return mat.DenseCopyOf(m.coef_)
}

// Intercepts は学習された切片を返す
func (m *MultiTaskElasticNet) Intercepts() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]float64, len(m.intercept_))
	copy(out, m.intercept_)
	return out
}

// DualGap は最適化終了時の双対ギャップを返す
func (m *MultiTaskElasticNet) DualGap() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dualGap_
}

// MultiTaskLasso はl1_ratio=1のMultiTaskElasticNet
type MultiTaskLasso struct {
	MultiTaskElasticNet
}

// NewMultiTaskLasso は新しいMultiTaskLassoを作成する
func NewMultiTaskLasso(options ...MultiTaskOption) *MultiTaskLasso {
	l := &MultiTaskLasso{}
	l.state = model.NewStateManager()
	l.alpha = 1.0
	l.fitIntercept = true
	l.maxIter = 1000
	l.tol = 1e-4
	for _, opt := range options {
		opt(&l.MultiTaskElasticNet)
	}
	l.l1Ratio = 1.0
	return l
}
