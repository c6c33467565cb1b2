package linear_model

import (
	"math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

// Ridgeソルバーの種類
const (
	RidgeSolverAuto     = "auto"
	RidgeSolverCholesky = "cholesky"
	RidgeSolverSVD      = "svd"
	RidgeSolverLSQR     = "lsqr"
	RidgeSolverCG       = "sparse_cg"
)

// resolveAlphas はターゲット数に合わせてalphaを展開する
// 長さ1なら全ターゲットに同じ値、それ以外はターゲット数と一致すること
func resolveAlphas(alphas []float64, nTargets int) ([]float64, error) {
	if len(alphas) == 0 {
		return nil, errors.NewValidationError("alpha", "must be non-empty", len(alphas))
	}
	for _, a := range alphas {
		if a < 0 {
			return nil, errors.NewValidationError("alpha", "must be non-negative", a)
		}
	}
	switch len(alphas) {
	case 1:
		out := make([]float64, nTargets)
		for i := range out {
			out[i] = alphas[0]
		}
		return out, nil
	case nTargets:
		return append([]float64(nil), alphas...), nil
	default:
		return nil, errors.NewValidationError("alpha", "length must be 1 or match the number of targets", len(alphas))
	}
}

func allEqual(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// solveCholesky は正規方程式 (XᵀX + αI) w = Xᵀy をコレスキー分解で解く
// 行列が特異な場合は SingularMatrixError を返し、呼び出し側でSVDへフォールバックする
func solveCholesky(X, Y *mat.Dense, alphas []float64) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()
	_, nTargets := Y.Dims()

	var gram mat.SymDense
	gram.SymOuterK(1, X.T())

	xty := mat.NewDense(nFeatures, nTargets, nil)
	xty.Mul(X.T(), Y)

	coef := mat.NewDense(nTargets, nFeatures, nil)

	factorize := func(alpha float64) (*mat.Cholesky, error) {
		reg := mat.NewSymDense(nFeatures, nil)
		reg.CopySym(&gram)
		for i := 0; i < nFeatures; i++ {
			reg.SetSym(i, i, gram.At(i, i)+alpha)
		}
		var ch mat.Cholesky
		if !ch.Factorize(reg) {
			return nil, errors.NewSingularMatrixError("solveCholesky", nSamples, nFeatures)
		}
		return &ch, nil
	}

	if allEqual(alphas) {
		ch, err := factorize(alphas[0])
		if err != nil {
			return nil, err
		}
		var w mat.Dense
		if err := ch.SolveTo(&w, xty); err != nil {
			return nil, errors.NewSingularMatrixError("solveCholesky", nSamples, nFeatures)
		}
		coef.Copy(w.T())
		return coef, nil
	}

	for t := 0; t < nTargets; t++ {
		ch, err := factorize(alphas[t])
		if err != nil {
			return nil, err
		}
		b := mat.NewVecDense(nFeatures, nil)
		for i := 0; i < nFeatures; i++ {
			b.SetVec(i, xty.At(i, t))
		}
		var w mat.VecDense
		if err := ch.SolveVecTo(&w, b); err != nil {
			return nil, errors.NewSingularMatrixError("solveCholesky", nSamples, nFeatures)
		}
		for j := 0; j < nFeatures; j++ {
			coef.Set(t, j, w.AtVec(j))
		}
	}
	return coef, nil
}

// solveCholeskyKernel は双対問題 (XXᵀ + αI) c = y を解き w = Xᵀc で係数を得る
// nFeatures > nSamples のときや標本重み付きのRidgeで使う
// 標本重みは y と K を √w でスケールし、双対係数を √w で戻す
func solveCholeskyKernel(X, Y *mat.Dense, alphas, sampleWeight []float64) (*mat.Dense, error) {
	nSamples, nFeatures := X.Dims()
	_, nTargets := Y.Dims()

	var kernel mat.SymDense
	kernel.SymOuterK(1, X)

	yw := mat.NewDense(nSamples, nTargets, nil)
	yw.Copy(Y)

	var sqrtSW []float64
	if sampleWeight != nil {
		sqrtSW = make([]float64, nSamples)
		for i, w := range sampleWeight {
			sqrtSW[i] = math.Sqrt(w)
		}
		for i := 0; i < nSamples; i++ {
			for t := 0; t < nTargets; t++ {
				yw.Set(i, t, yw.At(i, t)*sqrtSW[i])
			}
			for j := i; j < nSamples; j++ {
				kernel.SetSym(i, j, kernel.At(i, j)*sqrtSW[i]*sqrtSW[j])
			}
		}
	}

	coef := mat.NewDense(nTargets, nFeatures, nil)
	dual := mat.NewVecDense(nSamples, nil)
	w := mat.NewVecDense(nFeatures, nil)

	solveOne := func(ch *mat.Cholesky, t int) error {
		b := mat.NewVecDense(nSamples, nil)
		for i := 0; i < nSamples; i++ {
			b.SetVec(i, yw.At(i, t))
		}
		if err := ch.SolveVecTo(dual, b); err != nil {
			return errors.NewSingularMatrixError("solveCholeskyKernel", nSamples, nFeatures)
		}
		if sqrtSW != nil {
			for i := 0; i < nSamples; i++ {
				dual.SetVec(i, dual.AtVec(i)*sqrtSW[i])
			}
		}
		w.MulVec(X.T(), dual)
		for j := 0; j < nFeatures; j++ {
			coef.Set(t, j, w.AtVec(j))
		}
		return nil
	}

	factorize := func(alpha float64) (*mat.Cholesky, error) {
		reg := mat.NewSymDense(nSamples, nil)
		reg.CopySym(&kernel)
		for i := 0; i < nSamples; i++ {
			reg.SetSym(i, i, kernel.At(i, i)+alpha)
		}
		var ch mat.Cholesky
		if !ch.Factorize(reg) {
			return nil, errors.NewSingularMatrixError("solveCholeskyKernel", nSamples, nFeatures)
		}
		return &ch, nil
	}

	if allEqual(alphas) {
		ch, err := factorize(alphas[0])
		if err != nil {
			return nil, err
		}
		for t := 0; t < nTargets; t++ {
			if err := solveOne(ch, t); err != nil {
				return nil, err
			}
		}
		return coef, nil
	}

	for t := 0; t < nTargets; t++ {
		ch, err := factorize(alphas[t])
		if err != nil {
			return nil, err
		}
		if err := solveOne(ch, t); err != nil {
			return nil, err
		}
	}
	return coef, nil
}

// solveSVD は特異値分解による解 w = V diag(s/(s²+α)) Uᵀy を計算する
// 特異行列でも安定して動くため、コレスキールートのフォールバック先になる
func solveSVD(X, Y *mat.Dense, alphas []float64) (*mat.Dense, error) {
	_, nFeatures := X.Dims()
	_, nTargets := Y.Dims()

	var svd mat.SVD
	if !svd.Factorize(X, mat.SVDThin) {
		return nil, errors.NewValueError("solveSVD", "SVD factorization failed")
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	uty := mat.NewDense(len(s), nTargets, nil)
	uty.Mul(u.T(), Y)

	coef := mat.NewDense(nTargets, nFeatures, nil)
	d := mat.NewVecDense(len(s), nil)
	w := mat.NewVecDense(nFeatures, nil)
	for t := 0; t < nTargets; t++ {
		for k, sk := range s {
			// ゼロに近い特異値は捨てる
			if sk > 1e-15 {
				d.SetVec(k, sk/(sk*sk+alphas[t])*uty.At(k, t))
			} else {
				d.SetVec(k, 0)
			}
		}
		w.MulVec(&v, d)
		for j := 0; j < nFeatures; j++ {
			coef.Set(t, j, w.AtVec(j))
		}
	}
	return coef, nil
}

// conjugateGradient solves the symmetric positive definite system
// apply(x) = b. Returns the solution and the iteration count.
func conjugateGradient(apply func(v, out []float64), b []float64, maxIter int, tol float64) ([]float64, int, bool) {
	n := len(b)
	x := make([]float64, n)
	r := append([]float64(nil), b...)
	p := append([]float64(nil), b...)
	ap := make([]float64, n)

	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		return x, 0, true
	}
	rs := floats.Dot(r, r)

	for iter := 1; iter <= maxIter; iter++ {
		apply(p, ap)
		pap := floats.Dot(p, ap)
		if pap <= 0 {
			return x, iter, false
		}
		step := rs / pap
		floats.AddScaled(x, step, p)
		floats.AddScaled(r, -step, ap)
		rsNew := floats.Dot(r, r)
		if math.Sqrt(rsNew) <= tol*bNorm {
			return x, iter, true
		}
		beta := rsNew / rs
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rs = rsNew
	}
	return x, maxIter, false
}

// solveCG は正規方程式を共役勾配法で解く
// nSamples >= nFeatures なら主問題、そうでなければ双対問題の小さい方を使う
// Xは mat.Matrix のままでよく、密行列化できない作用素にも適用できる
func solveCG(X mat.Matrix, y []float64, alpha float64, maxIter int, tol float64) ([]float64, int, error) {
	nSamples, nFeatures := X.Dims()
	if maxIter <= 0 {
		maxIter = 10 * (nSamples + nFeatures)
	}

	xt := X.T()

	if nSamples >= nFeatures {
		// (XᵀX + αI) w = Xᵀy
		b := make([]float64, nFeatures)
		yVec := mat.NewVecDense(nSamples, append([]float64(nil), y...))
		bVec := mat.NewVecDense(nFeatures, b)
		bVec.MulVec(xt, yVec)

		tmp := mat.NewVecDense(nSamples, nil)
		apply := func(v, out []float64) {
			vVec := mat.NewVecDense(nFeatures, v)
			outVec := mat.NewVecDense(nFeatures, out)
			tmp.MulVec(X, vVec)
			outVec.MulVec(xt, tmp)
			floats.AddScaled(out, alpha, v)
		}
		w, nIter, converged := conjugateGradient(apply, b, maxIter, tol)
		if !converged {
			errors.Warn(errors.NewConvergenceWarning("sparse_cg", nIter, "conjugate gradient did not converge; increase max_iter or tol"))
		}
		return w, nIter, nil
	}

	// (XXᵀ + αI) c = y, w = Xᵀc
	tmp := mat.NewVecDense(nFeatures, nil)
	apply := func(v, out []float64) {
		vVec := mat.NewVecDense(nSamples, v)
		outVec := mat.NewVecDense(nSamples, out)
		tmp.MulVec(xt, vVec)
		outVec.MulVec(X, tmp)
		floats.AddScaled(out, alpha, v)
	}
	c, nIter, converged := conjugateGradient(apply, append([]float64(nil), y...), maxIter, tol)
	if !converged {
		errors.Warn(errors.NewConvergenceWarning("sparse_cg", nIter, "conjugate gradient did not converge; increase max_iter or tol"))
	}

	w := make([]float64, nFeatures)
	wVec := mat.NewVecDense(nFeatures, w)
	wVec.MulVec(xt, mat.NewVecDense(nSamples, c))
	return w, nIter, nil
}

// solveLSQR はPaige-SaundersのLSQR法で減衰付き最小二乗 min ‖Xw-y‖² + damp²‖w‖² を解く
// Ridgeでは damp = √α を渡す
func solveLSQR(X mat.Matrix, y []float64, damp float64, maxIter int, tol float64) ([]float64, int, error) {
	nSamples, nFeatures := X.Dims()
	if maxIter <= 0 {
		maxIter = 2 * (nSamples + nFeatures)
	}
	xt := X.T()

	x := make([]float64, nFeatures)

	u := append([]float64(nil), y...)
	beta := floats.Norm(u, 2)
	if beta == 0 {
		return x, 0, nil
	}
	floats.Scale(1/beta, u)
	beta0 := beta

	v := make([]float64, nFeatures)
	mulVec(xt, u, v)
	alfa := floats.Norm(v, 2)
	if alfa == 0 {
		return x, 0, nil
	}
	floats.Scale(1/alfa, v)

	w := append([]float64(nil), v...)
	phibar := beta
	rhobar := alfa

	tmpN := make([]float64, nSamples)
	tmpP := make([]float64, nFeatures)

	for iter := 1; iter <= maxIter; iter++ {
		// 双対直交化: u = Xv - αu, v = Xᵀu - βv
		mulVec(X, v, tmpN)
		for i := range u {
			u[i] = tmpN[i] - alfa*u[i]
		}
		beta = floats.Norm(u, 2)
		if beta > 0 {
			floats.Scale(1/beta, u)
		}

		mulVec(xt, u, tmpP)
		for j := range v {
			v[j] = tmpP[j] - beta*v[j]
		}
		alfa = floats.Norm(v, 2)
		if alfa > 0 {
			floats.Scale(1/alfa, v)
		}

		// 減衰項を回転で消去
		rhobar1 := rhobar
		if damp > 0 {
			rhobar1 = math.Hypot(rhobar, damp)
			cs1 := rhobar / rhobar1
			phibar = cs1 * phibar
		}

		rho := math.Hypot(rhobar1, beta)
		cs := rhobar1 / rho
		sn := beta / rho
		theta := sn * alfa
		rhobar = -cs * alfa
		phi := cs * phibar
		phibar = sn * phibar

		floats.AddScaled(x, phi/rho, w)
		for j := range w {
			w[j] = v[j] - (theta/rho)*w[j]
		}

		if phibar <= tol*beta0 {
			return x, iter, nil
		}
	}

	errors.Warn(errors.NewConvergenceWarning("lsqr", maxIter, "LSQR did not converge; increase max_iter or tol"))
	return x, maxIter, nil
}

func mulVec(m mat.Matrix, v, out []float64) {
	outVec := mat.NewVecDense(len(out), out)
	outVec.MulVec(m, mat.NewVecDense(len(v), v))
}

// ridgeRegression はソルバーを選択してRidge回帰の係数行列 (nTargets×nFeatures) を求める
//
// autoの選択規則:
//   - 標本重み付き: cholesky(カーネル経路)
//   - 密行列: cholesky(特異ならSVDへフォールバック)
//   - それ以外(疎行列・作用素): sparse_cg
//
// cholesky経路では nFeatures > nSamples のとき自動的に双対カーネル解法へ切り替える
func ridgeRegression(X mat.Matrix, Y *mat.Dense, alphas []float64, solver string, maxIter int, tol float64, sampleWeight []float64) (*mat.Dense, int, error) {
	nSamples, nFeatures := X.Dims()
	_, nTargets := Y.Dims()

	alphas, err := resolveAlphas(alphas, nTargets)
	if err != nil {
		return nil, 0, err
	}

	dense, isDense := X.(*mat.Dense)

	if solver == "" || solver == RidgeSolverAuto {
		switch {
		case sampleWeight != nil:
			solver = RidgeSolverCholesky
		case isDense:
			solver = RidgeSolverCholesky
		default:
			solver = RidgeSolverCG
		}
	}

	if sampleWeight != nil && solver != RidgeSolverCholesky {
		return nil, 0, errors.NewValidationError("sample_weight", "sample weights are only supported by the cholesky solver", solver)
	}

	switch solver {
	case RidgeSolverCholesky:
		if !isDense {
			return nil, 0, errors.NewValidationError("solver", "cholesky requires a dense matrix; use sparse_cg or lsqr", solver)
		}
		var coef *mat.Dense
		var err error
		if sampleWeight != nil || nFeatures > nSamples {
			coef, err = solveCholeskyKernel(dense, Y, alphas, sampleWeight)
		} else {
			coef, err = solveCholesky(dense, Y, alphas)
		}
		if err == nil {
			return coef, 0, nil
		}
		var singular *errors.SingularMatrixError
		if !errors.As(err, &singular) {
			return nil, 0, err
		}
		// 特異な系は最小二乗解で代替する
		errors.Warn(errors.NewEfficiencyWarning("ridgeRegression", "singular system in cholesky solver, falling back to SVD"))
		coef, err = solveSVD(dense, Y, alphas)
		return coef, 0, err

	case RidgeSolverSVD:
		if !isDense {
			return nil, 0, errors.NewValidationError("solver", "svd requires a dense matrix", solver)
		}
		coef, err := solveSVD(dense, Y, alphas)
		return coef, 0, err

	case RidgeSolverLSQR, RidgeSolverCG:
		coef := mat.NewDense(nTargets, nFeatures, nil)
		yCol := make([]float64, nSamples)
		maxNIter := 0
		for t := 0; t < nTargets; t++ {
			for i := 0; i < nSamples; i++ {
				yCol[i] = Y.At(i, t)
			}
			var w []float64
			var nIter int
			var err error
			if solver == RidgeSolverLSQR {
				w, nIter, err = solveLSQR(X, yCol, math.Sqrt(alphas[t]), maxIter, tol)
			} else {
				w, nIter, err = solveCG(X, yCol, alphas[t], maxIter, tol)
			}
			if err != nil {
				return nil, 0, err
			}
			coef.SetRow(t, w)
			if nIter > maxNIter {
				maxNIter = nIter
			}
		}
		return coef, maxNIter, nil

	default:
		return nil, 0, errors.NewValidationError("solver", "unknown solver; valid values are auto, cholesky, svd, lsqr, sparse_cg", solver)
	}
}

// Ridge はL2正則化付き線形回帰
// 複数ターゲットとターゲット別alphaに対応する
type Ridge struct {
	state *model.StateManager
	mu    sync.RWMutex

	alphas       []float64
	solver       string
	fitIntercept bool
	normalize    bool
	maxIter      int
	tol          float64
	copyX        bool

	coef_      *mat.Dense
	intercept_ []float64
	nIter_     int
}

// RidgeOption はRidgeのオプション設定関数
type RidgeOption func(*Ridge)

// WithRidgeAlpha は正則化の強さを設定する（デフォルト: 1.0）
func WithRidgeAlpha(alpha float64) RidgeOption {
	return func(r *Ridge) { r.alphas = []float64{alpha} }
}

// WithRidgeAlphas はターゲット別の正則化強度を設定する
func WithRidgeAlphas(alphas []float64) RidgeOption {
	return func(r *Ridge) { r.alphas = append([]float64(nil), alphas...) }
}

// WithRidgeSolver はソルバーを設定する（デフォルト: auto）
func WithRidgeSolver(solver string) RidgeOption {
	return func(r *Ridge) { r.solver = solver }
}

// WithRidgeFitIntercept は切片を学習するかどうかを設定する（デフォルト: true）
func WithRidgeFitIntercept(fit bool) RidgeOption {
	return func(r *Ridge) { r.fitIntercept = fit }
}

// WithRidgeNormalize は特徴量をL2ノルムで正規化するかどうかを設定する
func WithRidgeNormalize(normalize bool) RidgeOption {
	return func(r *Ridge) { r.normalize = normalize }
}

// WithRidgeMaxIter は反復ソルバーの最大反復回数を設定する（0で自動）
func WithRidgeMaxIter(maxIter int) RidgeOption {
	return func(r *Ridge) { r.maxIter = maxIter }
}

// WithRidgeTol は反復ソルバーの収束判定許容値を設定する（デフォルト: 1e-3）
func WithRidgeTol(tol float64) RidgeOption {
	return func(r *Ridge) { r.tol = tol }
}

// WithRidgeCopyX はXをコピーせず破壊的に使うことを許可する
func WithRidgeCopyX(copyX bool) RidgeOption {
	return func(r *Ridge) { r.copyX = copyX }
}

// NewRidge は新しいRidge回帰モデルを作成する
func NewRidge(options ...RidgeOption) *Ridge {
	r := &Ridge{
		state:        model.NewStateManager(),
		alphas:       []float64{1.0},
		solver:       RidgeSolverAuto,
		fitIntercept: true,
		tol:          1e-3,
		copyX:        true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Fit はRidge回帰モデルを学習する
func (r *Ridge) Fit(X, y mat.Matrix) error {
	return r.FitWeighted(X, y, nil)
}

// FitWeighted は標本重み付きでRidge回帰モデルを学習する
// 重みを指定するとcholeskyカーネル経路が使われる
func (r *Ridge) FitWeighted(X, y mat.Matrix, sampleWeight []float64) (err error) {
	defer errors.Recover(&err, "Ridge.Fit")
	start := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateXY("Ridge.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()
	if sampleWeight != nil && len(sampleWeight) != nSamples {
		return errors.NewDimensionError("Ridge.Fit", nSamples, len(sampleWeight), 0)
	}

	Y := toDense(y)
	var coef *mat.Dense
	var nIter int

	if sparse, ok := X.(*CSCMatrix); ok {
		// 疎行列は中心化せず、切片は目的変数の平均だけで近似する
		if r.normalize {
			return errors.NewValidationError("normalize", "normalization is not supported for sparse input", true)
		}
		_, nTargets := Y.Dims()
		yMean := make([]float64, nTargets)
		yc := mat.NewDense(nSamples, nTargets, nil)
		yc.Copy(Y)
		if r.fitIntercept {
			for t := 0; t < nTargets; t++ {
				sum := 0.0
				for i := 0; i < nSamples; i++ {
					sum += yc.At(i, t)
				}
				yMean[t] = sum / float64(nSamples)
				for i := 0; i < nSamples; i++ {
					yc.Set(i, t, yc.At(i, t)-yMean[t])
				}
			}
		}
		coef, nIter, err = ridgeRegression(sparse, yc, r.alphas, r.solver, r.maxIter, r.tol, sampleWeight)
		if err != nil {
			return err
		}
		r.intercept_ = yMean
	} else {
		// copyXを無効にした場合は呼び出し元のDenseを直接中心化する
		var Xd *mat.Dense
		if d, ok := X.(*mat.Dense); ok && !r.copyX {
			Xd = d
		} else {
			Xd = toDense(X)
		}
		yc := mat.NewDense(nSamples, Y.RawMatrix().Cols, nil)
		yc.Copy(Y)

		XMean, yMean, XStd := centerData(Xd, yc, r.fitIntercept, r.normalize, sampleWeight)

		coef, nIter, err = ridgeRegression(Xd, yc, r.alphas, r.solver, r.maxIter, r.tol, sampleWeight)
		if err != nil {
			return err
		}
		r.intercept_ = restoreIntercept(coef, XMean, yMean, XStd)
	}

	r.coef_ = coef
	r.nIter_ = nIter
	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()

	logger := log.GetLoggerWithName("Ridge")
	logger.Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"solver", r.solver,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は学習済みモデルで予測する
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.state.RequireFitted("Ridge", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := r.state.ValidateFeatures("Ridge.Predict", nFeatures); err != nil {
		return nil, err
	}
	return decisionFunction(X, r.coef_, r.intercept_), nil
}

// Score は決定係数R²を返す
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(r, X, y)
}

// IsFitted は学習済みかどうかを返す
func (r *Ridge) IsFitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsFitted()
}

// Coef は係数行列 (nTargets×nFeatures) を返す
func (r *Ridge) Coef() *mat.Dense {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.coef_
}

// Weights は単一ターゲットの場合の係数ベクトルを返す
func (r *Ridge) Weights() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.coef_ == nil {
		return nil
	}
	return append([]float64(nil), r.coef_.RawRowView(0)...)
}

// Intercept は単一ターゲットの場合の切片を返す
func (r *Ridge) Intercept() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.intercept_) == 0 {
		return 0
	}
	return r.intercept_[0]
}

// Intercepts はターゲットごとの切片を返す
func (r *Ridge) Intercepts() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.intercept_...)
}

// NIter は反復ソルバーの反復回数を返す（直接法では0）
func (r *Ridge) NIter() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nIter_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (r *Ridge) Clone() model.Estimator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewRidge(
		WithRidgeAlphas(r.alphas),
		WithRidgeSolver(r.solver),
		WithRidgeFitIntercept(r.fitIntercept),
		WithRidgeNormalize(r.normalize),
		WithRidgeMaxIter(r.maxIter),
		WithRidgeTol(r.tol),
		WithRidgeCopyX(r.copyX),
	)
	return clone
}

// RidgeClassifier はRidge回帰を±1ラベルに適用する分類器
// 多クラスはone-vs-allのマルチターゲットRidgeとして一度に解く
type RidgeClassifier struct {
	state *model.StateManager
	mu    sync.RWMutex

	ridge    *Ridge
	balanced bool

	classes_ []int
}

// RidgeClassifierOption はRidgeClassifierのオプション設定関数
type RidgeClassifierOption func(*RidgeClassifier)

// WithRidgeClassifierAlpha は正則化の強さを設定する
func WithRidgeClassifierAlpha(alpha float64) RidgeClassifierOption {
	return func(c *RidgeClassifier) { c.ridge.alphas = []float64{alpha} }
}

// WithRidgeClassifierSolver はソルバーを設定する
func WithRidgeClassifierSolver(solver string) RidgeClassifierOption {
	return func(c *RidgeClassifier) { c.ridge.solver = solver }
}

// WithRidgeClassifierFitIntercept は切片を学習するかどうかを設定する
func WithRidgeClassifierFitIntercept(fit bool) RidgeClassifierOption {
	return func(c *RidgeClassifier) { c.ridge.fitIntercept = fit }
}

// WithBalancedClassWeight はクラス頻度の逆数で標本を重み付けする
func WithBalancedClassWeight(balanced bool) RidgeClassifierOption {
	return func(c *RidgeClassifier) { c.balanced = balanced }
}

// NewRidgeClassifier は新しいRidge分類器を作成する
func NewRidgeClassifier(options ...RidgeClassifierOption) *RidgeClassifier {
	c := &RidgeClassifier{
		state: model.NewStateManager(),
		ridge: NewRidge(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// classBinarize はラベル列を±1のターゲット行列に変換する
// 2クラスは1列、それ以上はクラス数分の列を作る
func classBinarize(labels []int, classes []int) *mat.Dense {
	n := len(labels)
	if len(classes) == 2 {
		Y := mat.NewDense(n, 1, nil)
		for i, l := range labels {
			if l == classes[1] {
				Y.Set(i, 0, 1)
			} else {
				Y.Set(i, 0, -1)
			}
		}
		return Y
	}
	Y := mat.NewDense(n, len(classes), nil)
	for i, l := range labels {
		for k, c := range classes {
			if l == c {
				Y.Set(i, k, 1)
			} else {
				Y.Set(i, k, -1)
			}
		}
	}
	return Y
}

// Fit はRidge分類器を学習する
// yは整数クラスラベルの1列行列であること
func (c *RidgeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "RidgeClassifier.Fit")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateXY("RidgeClassifier.Fit", X, y); err != nil {
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
		return errors.NewValueError("RidgeClassifier.Fit", "need at least 2 classes in the data")
	}

	var sampleWeight []float64
	if c.balanced {
		sampleWeight = make([]float64, nSamples)
		for i, l := range labels {
			sampleWeight[i] = float64(nSamples) / (float64(len(classes)) * float64(counts[l]))
		}
	}

	Y := classBinarize(labels, classes)
	if err := c.ridge.FitWeighted(X, Y, sampleWeight); err != nil {
		return err
	}

	c.classes_ = classes
	c.state.SetDimensions(nFeatures, nSamples)
	c.state.SetFitted()
	return nil
}

// DecisionFunction は各クラスに対する信頼度スコアを返す
// 2クラスでは1列（正ならclasses[1]）
func (c *RidgeClassifier) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireFitted("RidgeClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	pred, err := c.ridge.Predict(X)
	if err != nil {
		return nil, err
	}
	return pred.(*mat.Dense), nil
}

// Predict は各標本のクラスラベルを予測する
func (c *RidgeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	n, nCols := scores.Dims()
	out := mat.NewDense(n, 1, nil)
	if nCols == 1 {
		for i := 0; i < n; i++ {
			if scores.At(i, 0) > 0 {
				out.Set(i, 0, float64(c.classes_[1]))
			} else {
				out.Set(i, 0, float64(c.classes_[0]))
			}
		}
		return out, nil
	}
	for i := 0; i < n; i++ {
		best, bestScore := 0, math.Inf(-1)
		for k := 0; k < nCols; k++ {
			if s := scores.At(i, k); s > bestScore {
				best, bestScore = k, s
			}
		}
		out.Set(i, 0, float64(c.classes_[best]))
	}
	return out, nil
}

// Score は正解率を返す
func (c *RidgeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := c.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if int(y.At(i, 0)) == int(pred.At(i, 0)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes は学習データ中のクラスラベルを昇順で返す
func (c *RidgeClassifier) Classes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.classes_...)
}

// IsFitted は学習済みかどうかを返す
func (c *RidgeClassifier) IsFitted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsFitted()
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (c *RidgeClassifier) Clone() model.Estimator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	clone := NewRidgeClassifier(WithBalancedClassWeight(c.balanced))
	clone.ridge = c.ridge.Clone().(*Ridge)
	return clone
}
