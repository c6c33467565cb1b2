package linear_model

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/metrics"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
	"github.com/YuminosukeSato/glearn/sklearn/cross_validation"
)

// GCVモードの種類
const (
	GCVModeAuto  = "auto"
	GCVModeSVD   = "svd"
	GCVModeEigen = "eigen"
)

// looResiduals は1つのalphaに対するleave-one-out残差 (nSamples×nTargets) を
// 閉形式で返す。looe[i] = y[i] - ŷ₋ᵢ[i] であり、二乗すればLOO誤差になる。
type gcvDecomposition interface {
	looResiduals(alpha float64, out *mat.Dense) error
}

// eigenGCV はグラム行列 K = XXᵀ の固有分解による経路
// 标本数に対して特徴量が多い場合や標本重み付きでも使える
type eigenGCV struct {
	vals []float64 // Kの固有値
	q    *mat.Dense
	qty  *mat.Dense // Qᵀy (nSamples×nTargets)
	y    *mat.Dense
}

func newEigenGCV(X, Y *mat.Dense, sqrtSW []float64) (*eigenGCV, error) {
	nSamples, _ := X.Dims()
	_, nTargets := Y.Dims()

	var kernel mat.SymDense
	kernel.SymOuterK(1, X)

	yw := mat.NewDense(nSamples, nTargets, nil)
	yw.Copy(Y)
	if sqrtSW != nil {
		for i := 0; i < nSamples; i++ {
			for t := 0; t < nTargets; t++ {
				yw.Set(i, t, yw.At(i, t)*sqrtSW[i])
			}
			for j := i; j < nSamples; j++ {
				kernel.SetSym(i, j, kernel.At(i, j)*sqrtSW[i]*sqrtSW[j])
			}
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(&kernel, true) {
		return nil, errors.NewValueError("RidgeGCV", "eigendecomposition of the kernel matrix failed")
	}
	q := &mat.Dense{}
	eig.VectorsTo(q)

	qty := mat.NewDense(nSamples, nTargets, nil)
	qty.Mul(q.T(), yw)

	return &eigenGCV{vals: eig.Values(nil), q: q, qty: qty, y: yw}, nil
}

func (e *eigenGCV) looResiduals(alpha float64, out *mat.Dense) error {
	nSamples, nTargets := e.y.Dims()

	w := make([]float64, len(e.vals))
	for k, v := range e.vals {
		w[k] = 1.0 / (v + alpha)
	}

	// c = Q diag(w) Qᵀy
	scaled := mat.NewDense(nSamples, nTargets, nil)
	for k := 0; k < nSamples; k++ {
		for t := 0; t < nTargets; t++ {
			scaled.Set(k, t, w[k]*e.qty.At(k, t))
		}
	}
	c := mat.NewDense(nSamples, nTargets, nil)
	c.Mul(e.q, scaled)

	// G_diag[i] = Σ_k w[k]·Q[i,k]²
	for i := 0; i < nSamples; i++ {
		gDiag := 0.0
		for k := 0; k < nSamples; k++ {
			qik := e.q.At(i, k)
			gDiag += w[k] * qik * qik
		}
		for t := 0; t < nTargets; t++ {
			out.Set(i, t, c.At(i, t)/gDiag)
		}
	}
	return nil
}

// svdGCV は X = USVᵀ の特異値分解による経路
// nSamples >= nFeatures かつ標本重みなしのときの既定経路で、固有分解より速い
type svdGCV struct {
	s   []float64
	u   *mat.Dense
	uty *mat.Dense // Uᵀy (k×nTargets)
	y   *mat.Dense
}

func newSVDGCV(X, Y *mat.Dense) (*svdGCV, error) {
	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDThin) {
		return nil, errors.NewValueError("RidgeGCV", "SVD factorization failed")
	}
	u := &mat.Dense{}
	svd.UTo(u)
	s := svd.Values(nil)

	_, nTargets := Y.Dims()
	uty := mat.NewDense(len(s), nTargets, nil)
	uty.Mul(u.T(), Y)
	return &svdGCV{s: s, u: u, uty: uty, y: Y}, nil
}

func (s *svdGCV) looResiduals(alpha float64, out *mat.Dense) error {
	if alpha <= 0 {
		return errors.NewValidationError("alpha", "the svd GCV mode requires alpha > 0", alpha)
	}
	nSamples, nTargets := s.y.Dims()
	k := len(s.s)

	// w_k = 1/(s_k²+α) − 1/α とすると (XXᵀ+αI)⁻¹ = U diag(w) Uᵀ + I/α
	invAlpha := 1.0 / alpha
	w := make([]float64, k)
	for i, sv := range s.s {
		w[i] = 1.0/(sv*sv+alpha) - invAlpha
	}

	scaled := mat.NewDense(k, nTargets, nil)
	for i := 0; i < k; i++ {
		for t := 0; t < nTargets; t++ {
			scaled.Set(i, t, w[i]*s.uty.At(i, t))
		}
	}
	c := mat.NewDense(nSamples, nTargets, nil)
	c.Mul(s.u, scaled)
	for i := 0; i < nSamples; i++ {
		for t := 0; t < nTargets; t++ {
			c.Set(i, t, c.At(i, t)+invAlpha*s.y.At(i, t))
		}
	}

	for i := 0; i < nSamples; i++ {
		gDiag := invAlpha
		for j := 0; j < k; j++ {
			uij := s.u.At(i, j)
			gDiag += w[j] * uij * uij
		}
		for t := 0; t < nTargets; t++ {
			out.Set(i, t, c.At(i, t)/gDiag)
		}
	}
	return nil
}

// RidgeGCV は一般化交差検証（閉形式のleave-one-out）でalphaを選ぶRidge回帰
// 候補alphaごとにモデルをn回学習し直す代わりに、1回の行列分解から
// 全標本のLOO残差を計算する
type RidgeGCV struct {
	state *model.StateManager
	mu    sync.RWMutex

	alphas        []float64
	fitIntercept  bool
	normalize     bool
	gcvMode       string
	scorer        *metrics.Scorer
	storeCVValues bool

	coef_      *mat.Dense
	intercept_ []float64
	alpha_     float64
	cvValues_  *mat.Dense
}

// RidgeGCVOption はRidgeGCVのオプション設定関数
type RidgeGCVOption func(*RidgeGCV)

// WithGCVAlphas は試すalpha候補を設定する（デフォルト: 0.1, 1.0, 10.0）
func WithGCVAlphas(alphas []float64) RidgeGCVOption {
	return func(r *RidgeGCV) { r.alphas = append([]float64(nil), alphas...) }
}

// WithGCVFitIntercept は切片を学習するかどうかを設定する
func WithGCVFitIntercept(fit bool) RidgeGCVOption {
	return func(r *RidgeGCV) { r.fitIntercept = fit }
}

// WithGCVNormalize は特徴量をL2ノルムで正規化するかどうかを設定する
func WithGCVNormalize(normalize bool) RidgeGCVOption {
	return func(r *RidgeGCV) { r.normalize = normalize }
}

// WithGCVMode は分解の方式を設定する
// autoは nSamples >= nFeatures かつ標本重みなしのときsvd、それ以外はeigen
func WithGCVMode(mode string) RidgeGCVOption {
	return func(r *RidgeGCV) { r.gcvMode = mode }
}

// WithGCVScorer はLOO予測の評価指標を設定する
// 未設定なら平均二乗LOO誤差を最小化する
func WithGCVScorer(scorer metrics.Scorer) RidgeGCVOption {
	return func(r *RidgeGCV) { r.scorer = &scorer }
}

// WithStoreCVValues はalphaごとの標本別LOO値を保持する
func WithStoreCVValues(store bool) RidgeGCVOption {
	return func(r *RidgeGCV) { r.storeCVValues = store }
}

// NewRidgeGCV は新しいRidgeGCVを作成する
func NewRidgeGCV(options ...RidgeGCVOption) *RidgeGCV {
	r := &RidgeGCV{
		state:        model.NewStateManager(),
		alphas:       []float64{0.1, 1.0, 10.0},
		fitIntercept: true,
		gcvMode:      GCVModeAuto,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Fit は全alpha候補のLOO誤差を閉形式で評価し、最良のalphaで学習する
func (r *RidgeGCV) Fit(X, y mat.Matrix) error {
	return r.FitWeighted(X, y, nil)
}

// FitWeighted は標本重み付きでRidgeGCVを学習する
// 重み付きの場合はeigenモードが使われる
func (r *RidgeGCV) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer errors.Recover(&err, "RidgeGCV.Fit")

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateXY("RidgeGCV.Fit", X, y); err != nil {
		return err
	}
	if len(r.alphas) == 0 {
		return errors.NewValidationError("alphas", "must be non-empty", 0)
	}
	for _, a := range r.alphas {
		if a < 0 {
			return errors.NewValidationError("alphas", "must be non-negative", a)
		}
	}

	nSamples, nFeatures := X.Dims()
	Xd := mat.NewDense(nSamples, nFeatures, nil)
	Xd.Copy(X)
	_, nTargets := y.Dims()
	Y := mat.NewDense(nSamples, nTargets, nil)
	Y.Copy(y)

	XMean, yMean, XStd := centerData(Xd, Y, r.fitIntercept, r.normalize, sampleWeight)

	mode := r.gcvMode
	if mode == "" || mode == GCVModeAuto {
		if nSamples >= nFeatures && sampleWeight == nil {
			mode = GCVModeSVD
		} else {
			mode = GCVModeEigen
		}
	}

	var decomp gcvDecomposition
	switch mode {
	case GCVModeSVD:
		if sampleWeight != nil {
			return errors.NewValidationError("gcv_mode", "svd mode does not support sample weights", mode)
		}
		decomp, err = newSVDGCV(Xd, Y)
	case GCVModeEigen:
		var sqrtSW []float64
		if sampleWeight != nil {
			sqrtSW = make([]float64, nSamples)
			for i, w := range sampleWeight {
				sqrtSW[i] = math.Sqrt(w)
			}
		}
		decomp, err = newEigenGCV(Xd, Y, sqrtSW)
	default:
		return errors.NewValidationError("gcv_mode", "unknown GCV mode; valid values are auto, svd, eigen", mode)
	}
	if err != nil {
		return err
	}

	// alphaごとの標本別の値（二乗LOO誤差、またはスコアラー値）
	var cvValues *mat.Dense
	if r.storeCVValues {
		cvValues = mat.NewDense(nSamples, len(r.alphas), nil)
	}

	looe := mat.NewDense(nSamples, nTargets, nil)
	bestAlpha := r.alphas[0]
	bestScore := math.Inf(-1)

	for a, alpha := range r.alphas {
		if err := decomp.looResiduals(alpha, looe); err != nil {
			return err
		}

		var score float64
		if r.scorer != nil {
			// LOO予測 ŷ₋ᵢ = yᵢ − looeᵢ に対してスコアラーを最大化する
			yTrue := mat.NewVecDense(nSamples*nTargets, nil)
			yPred := mat.NewVecDense(nSamples*nTargets, nil)
			for i := 0; i < nSamples; i++ {
				for t := 0; t < nTargets; t++ {
					yTrue.SetVec(i*nTargets+t, Y.At(i, t))
					yPred.SetVec(i*nTargets+t, Y.At(i, t)-looe.At(i, t))
				}
			}
			s, err := r.scorer.Score(yTrue, yPred)
			if err != nil {
				return err
			}
			if !r.scorer.GreaterIsBetter {
				s = -s
			}
			score = s
		} else {
			// 平均二乗LOO誤差の最小化
			sum := 0.0
			for i := 0; i < nSamples; i++ {
				for t := 0; t < nTargets; t++ {
					e := looe.At(i, t)
					sum += e * e
				}
			}
			score = -sum / float64(nSamples*nTargets)
		}

		if cvValues != nil {
			for i := 0; i < nSamples; i++ {
				v := 0.0
				for t := 0; t < nTargets; t++ {
					e := looe.At(i, t)
					v += e * e
				}
				cvValues.Set(i, a, v/float64(nTargets))
			}
		}

		if score > bestScore {
			bestScore = score
			bestAlpha = alpha
		}
	}

	// 最良alphaで中心化済みデータを解き直す
	coef, _, err := ridgeRegression(Xd, Y, []float64{bestAlpha}, RidgeSolverAuto, 0, 1e-3, sampleWeight)
	if err != nil {
		return err
	}
	r.intercept_ = restoreIntercept(coef, XMean, yMean, XStd)
	r.coef_ = coef
	r.alpha_ = bestAlpha
	r.cvValues_ = cvValues
	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()

	log.GetLoggerWithName("RidgeGCV").Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.AlphaKey, bestAlpha,
		"gcv_mode", mode,
	)
	return nil
}

// Predict は学習済みモデルで予測する
func (r *RidgeGCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.state.RequireFitted("RidgeGCV", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := r.state.ValidateFeatures("RidgeGCV.Predict", nFeatures); err != nil {
		return nil, err
	}
	return decisionFunction(X, r.coef_, r.intercept_), nil
}

// Score は決定係数R²を返す
func (r *RidgeGCV) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(r, X, y)
}

// IsFitted は学習済みかどうかを返す
func (r *RidgeGCV) IsFitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsFitted()
}

// Alpha は選択された正則化強度を返す
func (r *RidgeGCV) Alpha() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.alpha_
}

// Coef は係数行列 (nTargets×nFeatures) を返す
func (r *RidgeGCV) Coef() *mat.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coef_
}

// Intercepts はターゲットごとの切片を返す
func (r *RidgeGCV) Intercepts() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.intercept_...)
}

// CVValues はalphaごとの標本別LOO二乗誤差 (nSamples×nAlphas) を返す
// WithStoreCVValues(true) で学習した場合のみ有効
func (r *RidgeGCV) CVValues() *mat.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cvValues_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (r *RidgeGCV) Clone() model.Estimator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	options := []RidgeGCVOption{
		WithGCVAlphas(r.alphas),
		WithGCVFitIntercept(r.fitIntercept),
		WithGCVNormalize(r.normalize),
		WithGCVMode(r.gcvMode),
		WithStoreCVValues(r.storeCVValues),
	}
	if r.scorer != nil {
		options = append(options, WithGCVScorer(*r.scorer))
	}
	return NewRidgeGCV(options...)
}

// RidgeCV は交差検証でalphaを選ぶRidge回帰
// cvを指定しなければ効率的な一般化交差検証（RidgeGCV）に委譲し、
// 指定すればfoldごとの通常のグリッドサーチを行う
type RidgeCV struct {
	state *model.StateManager
	mu    sync.RWMutex

	alphas        []float64
	fitIntercept  bool
	normalize     bool
	cv            cross_validation.Splitter
	scorer        *metrics.Scorer
	storeCVValues bool

	coef_      *mat.Dense
	intercept_ []float64
	alpha_     float64
	cvValues_  *mat.Dense
}

// RidgeCVOption はRidgeCVのオプション設定関数
type RidgeCVOption func(*RidgeCV)

// WithRidgeCVAlphas は試すalpha候補を設定する（デフォルト: 0.1, 1.0, 10.0）
func WithRidgeCVAlphas(alphas []float64) RidgeCVOption {
	return func(r *RidgeCV) { r.alphas = append([]float64(nil), alphas...) }
}

// WithRidgeCVFitIntercept は切片を学習するかどうかを設定する
func WithRidgeCVFitIntercept(fit bool) RidgeCVOption {
	return func(r *RidgeCV) { r.fitIntercept = fit }
}

// WithRidgeCVNormalize は特徴量をL2ノルムで正規化するかどうかを設定する
func WithRidgeCVNormalize(normalize bool) RidgeCVOption {
	return func(r *RidgeCV) { r.normalize = normalize }
}

// WithRidgeCVSplitter は明示的なfold生成器を設定する
// 設定すると一般化交差検証の代わりにfoldごとのグリッドサーチになる
func WithRidgeCVSplitter(cv cross_validation.Splitter) RidgeCVOption {
	return func(r *RidgeCV) { r.cv = cv }
}

// WithRidgeCVScorer は評価指標を設定する
func WithRidgeCVScorer(scorer metrics.Scorer) RidgeCVOption {
	return func(r *RidgeCV) { r.scorer = &scorer }
}

// WithRidgeCVStoreValues はalphaごとの標本別LOO値を保持する（GCV経路のみ）
func WithRidgeCVStoreValues(store bool) RidgeCVOption {
	return func(r *RidgeCV) { r.storeCVValues = store }
}

// NewRidgeCV は新しいRidgeCVを作成する
func NewRidgeCV(options ...RidgeCVOption) *RidgeCV {
	r := &RidgeCV{
		state:        model.NewStateManager(),
		alphas:       []float64{0.1, 1.0, 10.0},
		fitIntercept: true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Fit は交差検証で最良のalphaを選び、全データで学習し直す
func (r *RidgeCV) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RidgeCV.Fit")

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cv == nil {
		return r.fitGCV(X, y)
	}
	return r.fitGridSearch(X, y)
}

// fitGCV は一般化交差検証に委譲する
func (r *RidgeCV) fitGCV(X, y mat.Matrix) error {
	options := []RidgeGCVOption{
		WithGCVAlphas(r.alphas),
		WithGCVFitIntercept(r.fitIntercept),
		WithGCVNormalize(r.normalize),
		WithStoreCVValues(r.storeCVValues),
	}
	if r.scorer != nil {
		options = append(options, WithGCVScorer(*r.scorer))
	}
	gcv := NewRidgeGCV(options...)
	if err := gcv.Fit(X, y); err != nil {
		return err
	}

	r.coef_ = gcv.coef_
	r.intercept_ = gcv.intercept_
	r.alpha_ = gcv.alpha_
	r.cvValues_ = gcv.cvValues_

	nSamples, nFeatures := X.Dims()
	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()
	return nil
}

// fitGridSearch は与えられたfoldでalphaごとのスコアを平均し、最良を選ぶ
func (r *RidgeCV) fitGridSearch(X, y mat.Matrix) error {
	if err := validateXY("RidgeCV.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	bestAlpha := r.alphas[0]
	bestScore := math.Inf(-1)

	for _, alpha := range r.alphas {
		ridge := NewRidge(
			WithRidgeAlpha(alpha),
			WithRidgeFitIntercept(r.fitIntercept),
			WithRidgeNormalize(r.normalize),
		)
		options := []cross_validation.CrossValOption{cross_validation.WithCV(r.cv)}
		if r.scorer != nil {
			options = append(options, cross_validation.WithScorer(*r.scorer))
		}
		scores, err := cross_validation.CrossValScore(ridge, X, y, options...)
		if err != nil {
			return err
		}
		// CrossValScoreは誤差指標を符号反転して返すので、常に最大化でよい
		mean := 0.0
		for _, s := range scores {
			mean += s
		}
		mean /= float64(len(scores))
		if mean > bestScore {
			bestScore = mean
			bestAlpha = alpha
		}
	}

	final := NewRidge(
		WithRidgeAlpha(bestAlpha),
		WithRidgeFitIntercept(r.fitIntercept),
		WithRidgeNormalize(r.normalize),
	)
	if err := final.Fit(X, y); err != nil {
		return err
	}

	r.coef_ = final.coef_
	r.intercept_ = final.intercept_
	r.alpha_ = bestAlpha
	r.cvValues_ = nil
	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()
	return nil
}

// Predict は学習済みモデルで予測する
func (r *RidgeCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.state.RequireFitted("RidgeCV", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := r.state.ValidateFeatures("RidgeCV.Predict", nFeatures); err != nil {
		return nil, err
	}
	return decisionFunction(X, r.coef_, r.intercept_), nil
}

// Score は決定係数R²を返す
func (r *RidgeCV) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(r, X, y)
}

// IsFitted は学習済みかどうかを返す
func (r *RidgeCV) IsFitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsFitted()
}

// Alpha は選択された正則化強度を返す
func (r *RidgeCV) Alpha() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.alpha_
}

// Coef は係数行列 (nTargets×nFeatures) を返す
func (r *RidgeCV) Coef() *mat.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coef_
}

// Intercepts はターゲットごとの切片を返す
func (r *RidgeCV) Intercepts() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.intercept_...)
}

// CVValues はGCV経路で保持した標本別LOO値を返す
func (r *RidgeCV) CVValues() *mat.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cvValues_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (r *RidgeCV) Clone() model.Estimator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	options := []RidgeCVOption{
		WithRidgeCVAlphas(r.alphas),
		WithRidgeCVFitIntercept(r.fitIntercept),
		WithRidgeCVNormalize(r.normalize),
		WithRidgeCVStoreValues(r.storeCVValues),
	}
	if r.cv != nil {
		options = append(options, WithRidgeCVSplitter(r.cv))
	}
	if r.scorer != nil {
		options = append(options, WithRidgeCVScorer(*r.scorer))
	}
	return NewRidgeCV(options...)
}

// RidgeClassifierCV は一般化交差検証でalphaを選ぶRidge分類器
// ±1に二値化したターゲットに対してLOO誤差を評価する
type RidgeClassifierCV struct {
	state *model.StateManager
	mu    sync.RWMutex

	alphas       []float64
	fitIntercept bool
	balanced     bool

	classifier *RidgeClassifier
	alpha_     float64
	classes_   []int
}

// RidgeClassifierCVOption はRidgeClassifierCVのオプション設定関数
type RidgeClassifierCVOption func(*RidgeClassifierCV)

// WithClassifierCVAlphas は試すalpha候補を設定する
func WithClassifierCVAlphas(alphas []float64) RidgeClassifierCVOption {
	return func(c *RidgeClassifierCV) { c.alphas = append([]float64(nil), alphas...) }
}

// WithClassifierCVFitIntercept は切片を学習するかどうかを設定する
func WithClassifierCVFitIntercept(fit bool) RidgeClassifierCVOption {
	return func(c *RidgeClassifierCV) { c.fitIntercept = fit }
}

// WithClassifierCVBalanced はクラス頻度の逆数で標本を重み付けする
func WithClassifierCVBalanced(balanced bool) RidgeClassifierCVOption {
	return func(c *RidgeClassifierCV) { c.balanced = balanced }
}

// NewRidgeClassifierCV は新しいRidgeClassifierCVを作成する
func NewRidgeClassifierCV(options ...RidgeClassifierCVOption) *RidgeClassifierCV {
	c := &RidgeClassifierCV{
		state:        model.NewStateManager(),
		alphas:       []float64{0.1, 1.0, 10.0},
		fitIntercept: true,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Fit は二値化ターゲットのLOO誤差で最良のalphaを選び、分類器を学習する
func (c *RidgeClassifierCV) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RidgeClassifierCV.Fit")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateXY("RidgeClassifierCV.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
	}
	counts := make(map[int]int)
	var classes []int
	for _, l := range labels {
		if counts[l] == 0 {
			classes = append(classes, l)
		}
		counts[l]++
	}
	sort.Ints(classes)
	if len(classes) < 2 {
		return errors.NewValueError("RidgeClassifierCV.Fit", "need at least 2 classes in the data")
	}

	var sampleWeight []float64
	if c.balanced {
		sampleWeight = make([]float64, nSamples)
		for i, l := range labels {
			sampleWeight[i] = float64(nSamples) / (float64(len(classes)) * float64(counts[l]))
		}
	}

	Y := classBinarize(labels, classes)
	gcv := NewRidgeGCV(WithGCVAlphas(c.alphas), WithGCVFitIntercept(c.fitIntercept))
	if err := gcv.FitWeighted(X, Y, sampleWeight); err != nil {
		return err
	}

	clf := NewRidgeClassifier(
		WithRidgeClassifierAlpha(gcv.Alpha()),
		WithRidgeClassifierFitIntercept(c.fitIntercept),
		WithBalancedClassWeight(c.balanced),
	)
	if err := clf.Fit(X, y); err != nil {
		return err
	}

	c.classifier = clf
	c.alpha_ = gcv.Alpha()
	c.classes_ = classes
	c.state.SetDimensions(nFeatures, nSamples)
	c.state.SetFitted()
	return nil
}

// Predict は各標本のクラスラベルを予測する
func (c *RidgeClassifierCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireFitted("RidgeClassifierCV", "Predict"); err != nil {
		return nil, err
	}
	return c.classifier.Predict(X)
}

// Score は正解率を返す
func (c *RidgeClassifierCV) Score(X, y mat.Matrix) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireFitted("RidgeClassifierCV", "Score"); err != nil {
		return 0, err
	}
	return c.classifier.Score(X, y)
}

// Alpha は選択された正則化強度を返す
func (c *RidgeClassifierCV) Alpha() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alpha_
}

// Classes は学習データ中のクラスラベルを昇順で返す
func (c *RidgeClassifierCV) Classes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.classes_...)
}

// IsFitted は学習済みかどうかを返す
func (c *RidgeClassifierCV) IsFitted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsFitted()
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (c *RidgeClassifierCV) Clone() model.Estimator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewRidgeClassifierCV(
		WithClassifierCVAlphas(c.alphas),
		WithClassifierCVFitIntercept(c.fitIntercept),
		WithClassifierCVBalanced(c.balanced),
	)
}
