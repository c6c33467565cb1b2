package linear_model

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

// 受動攻撃法の更新則
// 損失がゼロなら何もせず（受動）、正なら閉形式のステップで誤りを解消する（攻撃）
const (
	paLossEpsilonInsensitive        = "epsilon_insensitive"
	paLossSquaredEpsilonInsensitive = "squared_epsilon_insensitive"
	paLossHinge                     = "hinge"
	paLossSquaredHinge              = "squared_hinge"
)

type paConfig struct {
	c            float64
	loss         string
	epsilon      float64
	nIter        int
	fitIntercept bool
	shuffle      bool
	seed         uint64
	warmStart    bool
}

func (cfg *paConfig) validate(regression bool) error {
	if cfg.c <= 0 {
		return errors.NewValidationError("C", "aggressiveness parameter must be positive", cfg.c)
	}
	if cfg.nIter <= 0 {
		return errors.NewValidationError("n_iter", "number of epochs must be positive", cfg.nIter)
	}
	if regression {
		if cfg.loss != paLossEpsilonInsensitive && cfg.loss != paLossSquaredEpsilonInsensitive {
			return errors.NewValidationError("loss", "valid values are epsilon_insensitive, squared_epsilon_insensitive", cfg.loss)
		}
		if cfg.epsilon < 0 {
			return errors.NewValidationError("epsilon", "epsilon must be non-negative", cfg.epsilon)
		}
	} else {
		if cfg.loss != paLossHinge && cfg.loss != paLossSquaredHinge {
			return errors.NewValidationError("loss", "valid values are hinge, squared_hinge", cfg.loss)
		}
	}
	return nil
}

// PA-Iは損失/‖x‖²をCで頭打ちにし、PA-IIは分母に1/(2C)を加える
func (cfg *paConfig) stepSize(loss, xNormSq float64, squared bool) float64 {
	if squared {
		return loss / (xNormSq + 1.0/(2.0*cfg.c))
	}
	if xNormSq == 0 {
		return 0
	}
	tau := loss / xNormSq
	if tau > cfg.c {
		tau = cfg.c
	}
	return tau
}

// PassiveAggressiveRegressor はオンラインの受動攻撃回帰
// epsilon許容帯の外に出た標本だけで重みを更新する
type PassiveAggressiveRegressor struct {
	state *model.StateManager
	mu    sync.RWMutex

	cfg paConfig

	coef_       []float64
	intercept_  float64
	nIterRun_   int
	lastLoss_   float64
	lossHistory []float64
}

// PARegressorOption はPassiveAggressiveRegressorの設定オプション
type PARegressorOption func(*PassiveAggressiveRegressor)

// WithPARegressorC は攻撃性パラメータCを設定する（デフォルト: 1.0）
func WithPARegressorC(c float64) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.c = c }
}

// WithPARegressorLoss は損失関数を設定する
// epsilon_insensitiveはPA-I、squared_epsilon_insensitiveはPA-IIに対応する
func WithPARegressorLoss(loss string) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.loss = loss }
}

// WithPARegressorEpsilon は許容帯の幅を設定する（デフォルト: 0.1）
func WithPARegressorEpsilon(epsilon float64) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.epsilon = epsilon }
}

// WithPARegressorNIter はエポック数を設定する（デフォルト: 5）
func WithPARegressorNIter(nIter int) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.nIter = nIter }
}

// WithPARegressorFitIntercept は切片を学習するかどうかを設定する
func WithPARegressorFitIntercept(fit bool) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.fitIntercept = fit }
}

// WithPARegressorShuffle はエポックごとに標本順を乱すかどうかを設定する
func WithPARegressorShuffle(shuffle bool) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.shuffle = shuffle }
}

// WithPARegressorSeed は乱数シードを設定する
func WithPARegressorSeed(seed uint64) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.seed = seed }
}

// WithPARegressorWarmStart は前回の係数から学習を再開するかどうかを設定する
func WithPARegressorWarmStart(warm bool) PARegressorOption {
	return func(pa *PassiveAggressiveRegressor) { pa.cfg.warmStart = warm }
}

// NewPassiveAggressiveRegressor は新しいPassiveAggressiveRegressorを作成する
func NewPassiveAggressiveRegressor(options ...PARegressorOption) *PassiveAggressiveRegressor {
	pa := &PassiveAggressiveRegressor{
		state: model.NewStateManager(),
		cfg: paConfig{
			c:            1.0,
			loss:         paLossEpsilonInsensitive,
			epsilon:      DefaultEpsilon,
			nIter:        5,
			fitIntercept: true,
			shuffle:      true,
		},
	}
	for _, opt := range options {
		opt(pa)
	}
	return pa
}

func (pa *PassiveAggressiveRegressor) runEpochs(X *mat.Dense, y []float64, nIter int) {
	nSamples, nFeatures := X.Dims()
	squared := pa.cfg.loss == paLossSquaredEpsilonInsensitive
	track := EpsilonInsensitive{Epsilon: pa.cfg.epsilon}

	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(pa.cfg.seed, pa.cfg.seed+uint64(pa.nIterRun_)))

	x := make([]float64, nFeatures)
	for epoch := 0; epoch < nIter; epoch++ {
		if pa.cfg.shuffle {
			rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		sumLoss := 0.0

		for _, i := range order {
			mat.Row(x, i, X)
			pred := pa.intercept_
			xNormSq := 0.0
			for j, v := range x {
				pred += pa.coef_[j] * v
				xNormSq += v * v
			}
			if pa.cfg.fitIntercept {
				xNormSq++
			}

			sumLoss += track.Loss(pred, y[i])

			residual := y[i] - pred
			loss := math.Abs(residual) - pa.cfg.epsilon
			if loss <= 0 {
				continue
			}
			tau := pa.cfg.stepSize(loss, xNormSq, squared)
			if residual < 0 {
				tau = -tau
			}
			for j, v := range x {
				pa.coef_[j] += tau * v
			}
			if pa.cfg.fitIntercept {
				pa.intercept_ += tau
			}
		}

		pa.lastLoss_ = sumLoss / float64(nSamples)
		pa.lossHistory = append(pa.lossHistory, pa.lastLoss_)
	}
	pa.nIterRun_ += nIter
}

// Fit はモデルを学習する
// warm startが無効なら係数をゼロから学習し直す
func (pa *PassiveAggressiveRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "PassiveAggressiveRegressor.Fit")

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if err := pa.cfg.validate(true); err != nil {
		return err
	}
	if err := validateXY("PassiveAggressiveRegressor.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	if !pa.cfg.warmStart || pa.coef_ == nil {
		pa.coef_ = make([]float64, nFeatures)
		pa.intercept_ = 0
		pa.nIterRun_ = 0
		pa.lossHistory = nil
	}
	if len(pa.coef_) != nFeatures {
		return errors.NewDimensionError("PassiveAggressiveRegressor.Fit", len(pa.coef_), nFeatures, 1)
	}

	Xd, _ := toTrainingMatrix(X)
	pa.runEpochs(Xd, toVec(y), pa.cfg.nIter)

	pa.state.SetDimensions(nFeatures, nSamples)
	pa.state.SetFitted()

	log.GetLoggerWithName("PassiveAggressiveRegressor").Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, pa.nIterRun_,
		"loss", pa.lastLoss_,
	)
	return nil
}

// PartialFit はミニバッチで1エポックだけ学習を進める
func (pa *PassiveAggressiveRegressor) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "PassiveAggressiveRegressor.PartialFit")

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if err := pa.cfg.validate(true); err != nil {
		return err
	}
	if err := validateXY("PassiveAggressiveRegressor.PartialFit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	if pa.coef_ == nil {
		pa.coef_ = make([]float64, nFeatures)
	}
	if len(pa.coef_) != nFeatures {
		return errors.NewDimensionError("PassiveAggressiveRegressor.PartialFit", len(pa.coef_), nFeatures, 1)
	}

	Xd, _ := toTrainingMatrix(X)
	pa.runEpochs(Xd, toVec(y), 1)

	pa.state.SetDimensions(nFeatures, nSamples)
	pa.state.SetFitted()
	return nil
}

// FitStream はチャネルから届くバッチを順にPartialFitで学習する
func (pa *PassiveAggressiveRegressor) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "PassiveAggressiveRegressor.FitStream")
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil || batch.X == nil || batch.Y == nil {
				continue
			}
			if err := pa.PartialFit(batch.X, batch.Y, nil); err != nil {
				return err
			}
		}
	}
}

// Predict は入力に対する予測値を返す
func (pa *PassiveAggressiveRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveRegressor", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := pa.state.ValidateFeatures("PassiveAggressiveRegressor.Predict", nFeatures); err != nil {
		return nil, err
	}

	coef := mat.NewDense(1, len(pa.coef_), pa.coef_)
	return decisionFunction(X, coef, []float64{pa.intercept_}), nil
}

// Score は決定係数R²を返す
func (pa *PassiveAggressiveRegressor) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(pa, X, y)
}

// IsFitted は学習済みかどうかを返す
func (pa *PassiveAggressiveRegressor) IsFitted() bool {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.state.IsFitted()
}

// Weights は学習済みの係数のコピーを返す
func (pa *PassiveAggressiveRegressor) Weights() []float64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return append([]float64(nil), pa.coef_...)
}

// Intercept は学習済みの切片を返す
func (pa *PassiveAggressiveRegressor) Intercept() float64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.intercept_
}

// NIterations は実行済みのエポック数を返す
func (pa *PassiveAggressiveRegressor) NIterations() int {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.nIterRun_
}

// IsWarmStart はwarm startが有効かどうかを返す
func (pa *PassiveAggressiveRegressor) IsWarmStart() bool {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.cfg.warmStart
}

// SetWarmStart はwarm startの有効無効を切り替える
func (pa *PassiveAggressiveRegressor) SetWarmStart(warm bool) {
	pa.mu.Lock()
	defer pa.mu.Unlock()
	pa.cfg.warmStart = warm
}

// GetLoss は最後のエポックの平均損失を返す
func (pa *PassiveAggressiveRegressor) GetLoss() float64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.lastLoss_
}

// GetLossHistory はエポックごとの平均損失の履歴を返す
func (pa *PassiveAggressiveRegressor) GetLossHistory() []float64 {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return append([]float64(nil), pa.lossHistory...)
}

// GetConverged は損失が収束したかどうかを返す
func (pa *PassiveAggressiveRegressor) GetConverged() bool {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return lossConverged(pa.lossHistory)
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (pa *PassiveAggressiveRegressor) Clone() model.Estimator {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return &PassiveAggressiveRegressor{
		state: model.NewStateManager(),
		cfg:   pa.cfg,
	}
}

// PassiveAggressiveClassifier はオンラインの受動攻撃分類器
// 多クラスはone-versus-allで学習する
type PassiveAggressiveClassifier struct {
	state *model.StateManager
	mu    sync.RWMutex

	cfg paConfig

	classes_   []int
	coef_      *mat.Dense
	intercept_ []float64
	nIterRun_  int
}

// PAClassifierOption はPassiveAggressiveClassifierの設定オプション
type PAClassifierOption func(*PassiveAggressiveClassifier)

// WithPAClassifierC は攻撃性パラメータCを設定する（デフォルト: 1.0）
func WithPAClassifierC(c float64) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.c = c }
}

// WithPAClassifierLoss は損失関数を設定する
// hingeはPA-I、squared_hingeはPA-IIに対応する
func WithPAClassifierLoss(loss string) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.loss = loss }
}

// WithPAClassifierNIter はエポック数を設定する（デフォルト: 5）
func WithPAClassifierNIter(nIter int) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.nIter = nIter }
}

// WithPAClassifierFitIntercept は切片を学習するかどうかを設定する
func WithPAClassifierFitIntercept(fit bool) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.fitIntercept = fit }
}

// WithPAClassifierShuffle はエポックごとに標本順を乱すかどうかを設定する
func WithPAClassifierShuffle(shuffle bool) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.shuffle = shuffle }
}

// WithPAClassifierSeed は乱数シードを設定する
func WithPAClassifierSeed(seed uint64) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.seed = seed }
}

// WithPAClassifierWarmStart は前回の係数から学習を再開するかどうかを設定する
func WithPAClassifierWarmStart(warm bool) PAClassifierOption {
	return func(pa *PassiveAggressiveClassifier) { pa.cfg.warmStart = warm }
}

// NewPassiveAggressiveClassifier は新しいPassiveAggressiveClassifierを作成する
func NewPassiveAggressiveClassifier(options ...PAClassifierOption) *PassiveAggressiveClassifier {
	pa := &PassiveAggressiveClassifier{
		state: model.NewStateManager(),
		cfg: paConfig{
			c:            1.0,
			loss:         paLossHinge,
			nIter:        5,
			fitIntercept: true,
			shuffle:      true,
		},
	}
	for _, opt := range options {
		opt(pa)
	}
	return pa
}

// runProblem はひとつの二値問題（positiveクラス対その他）を学習する
func (pa *PassiveAggressiveClassifier) runProblem(X *mat.Dense, labels []int, positive int, w []float64, intercept *float64, nIter int, seed uint64) {
	nSamples, nFeatures := X.Dims()
	squared := pa.cfg.loss == paLossSquaredHinge

	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	x := make([]float64, nFeatures)
	for epoch := 0; epoch < nIter; epoch++ {
		if pa.cfg.shuffle {
			rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for _, i := range order {
			yi := -1.0
			if labels[i] == positive {
				yi = 1.0
			}

			mat.Row(x, i, X)
			pred := *intercept
			xNormSq := 0.0
			for j, v := range x {
				pred += w[j] * v
				xNormSq += v * v
			}
			if pa.cfg.fitIntercept {
				xNormSq++
			}

			loss := 1.0 - yi*pred
			if loss <= 0 {
				continue
			}
			tau := pa.cfg.stepSize(loss, xNormSq, squared) * yi
			for j, v := range x {
				w[j] += tau * v
			}
			if pa.cfg.fitIntercept {
				*intercept += tau
			}
		}
	}
}

func (pa *PassiveAggressiveClassifier) fitProblems(X *mat.Dense, labels []int, nIter int) {
	_, nFeatures := X.Dims()
	nProblems := len(pa.classes_)
	if nProblems == 2 {
		nProblems = 1
	}

	if pa.coef_ == nil {
		pa.coef_ = mat.NewDense(nProblems, nFeatures, nil)
		pa.intercept_ = make([]float64, nProblems)
	}

	for k := 0; k < nProblems; k++ {
		positive := pa.classes_[k]
		if nProblems == 1 {
			positive = pa.classes_[1]
		}
		seed := pa.cfg.seed + uint64(k) + uint64(pa.nIterRun_)
		pa.runProblem(X, labels, positive, pa.coef_.RawRowView(k), &pa.intercept_[k], nIter, seed)
	}
	pa.nIterRun_ += nIter
}

// Fit はモデルを学習する
func (pa *PassiveAggressiveClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "PassiveAggressiveClassifier.Fit")

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if err := pa.cfg.validate(false); err != nil {
		return err
	}
	if err := validateXY("PassiveAggressiveClassifier.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	labels := make([]int, nSamples)
	seen := make(map[int]bool)
	var classes []int
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
		if !seen[labels[i]] {
			seen[labels[i]] = true
			classes = append(classes, labels[i])
		}
	}
	sort.Ints(classes)
	if len(classes) < 2 {
		return errors.NewValueError("PassiveAggressiveClassifier.Fit", "need at least 2 classes in the data")
	}

	if !pa.cfg.warmStart || pa.coef_ == nil {
		pa.coef_ = nil
		pa.intercept_ = nil
		pa.nIterRun_ = 0
	}
	pa.classes_ = classes

	Xd, _ := toTrainingMatrix(X)
	pa.fitProblems(Xd, labels, pa.cfg.nIter)

	pa.state.SetDimensions(nFeatures, nSamples)
	pa.state.SetFitted()
	return nil
}

// PartialFit はミニバッチで1エポックだけ学習を進める
// 初回呼び出しではclassesに全クラスを渡すこと
func (pa *PassiveAggressiveClassifier) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "PassiveAggressiveClassifier.PartialFit")

	pa.mu.Lock()
	defer pa.mu.Unlock()

	if err := pa.cfg.validate(false); err != nil {
		return err
	}
	if err := validateXY("PassiveAggressiveClassifier.PartialFit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	if pa.classes_ == nil {
		if len(classes) < 2 {
			return errors.NewValidationError("classes", "the first PartialFit call must list all classes", len(classes))
		}
		pa.classes_ = append([]int(nil), classes...)
		sort.Ints(pa.classes_)
	}

	labels := make([]int, nSamples)
	known := make(map[int]bool, len(pa.classes_))
	for _, cl := range pa.classes_ {
		known[cl] = true
	}
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
		if !known[labels[i]] {
			return errors.NewValidationError("y", "label not announced in the first PartialFit call", labels[i])
		}
	}

	Xd, _ := toTrainingMatrix(X)
	pa.fitProblems(Xd, labels, 1)

	pa.state.SetDimensions(nFeatures, nSamples)
	pa.state.SetFitted()
	return nil
}

// DecisionFunction は各二値問題の信頼度スコアを返す
func (pa *PassiveAggressiveClassifier) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	pa.mu.RLock()
	defer pa.mu.RUnlock()

	if err := pa.state.RequireFitted("PassiveAggressiveClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := pa.state.ValidateFeatures("PassiveAggressiveClassifier.DecisionFunction", nFeatures); err != nil {
		return nil, err
	}
	return decisionFunction(X, pa.coef_, pa.intercept_), nil
}

// Predict は各標本のクラスラベルを予測する
func (pa *PassiveAggressiveClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := pa.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	pa.mu.RLock()
	defer pa.mu.RUnlock()

	n, nCols := scores.Dims()
	out := mat.NewDense(n, 1, nil)
	if nCols == 1 {
		for i := 0; i < n; i++ {
			if scores.At(i, 0) > 0 {
				out.Set(i, 0, float64(pa.classes_[1]))
			} else {
				out.Set(i, 0, float64(pa.classes_[0]))
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
		out.Set(i, 0, float64(pa.classes_[best]))
	}
	return out, nil
}

// Score は正解率を返す
func (pa *PassiveAggressiveClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := pa.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := y.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if int(pred.At(i, 0)) == int(y.At(i, 0)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes は学習で観測したクラスラベルを昇順で返す
func (pa *PassiveAggressiveClassifier) Classes() []int {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return append([]int(nil), pa.classes_...)
}

// IsFitted は学習済みかどうかを返す
func (pa *PassiveAggressiveClassifier) IsFitted() bool {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.state.IsFitted()
}

// NIterations は実行済みのエポック数を返す
func (pa *PassiveAggressiveClassifier) NIterations() int {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return pa.nIterRun_
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (pa *PassiveAggressiveClassifier) Clone() model.Estimator {
	pa.mu.RLock()
	defer pa.mu.RUnlock()
	return &PassiveAggressiveClassifier{
		state: model.NewStateManager(),
		cfg:   pa.cfg,
	}
}
