package linear_model

import (
	"context"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/core/model"
	"github.com/YuminosukeSato/glearn/core/parallel"
	"github.com/YuminosukeSato/glearn/pkg/errors"
	"github.com/YuminosukeSato/glearn/pkg/log"
)

// regressionLossFromName は回帰用の損失関数を名前から作る
func regressionLossFromName(name string, epsilon float64) (LossFunction, error) {
	switch name {
	case "squared_loss", "":
		return SquaredLoss{}, nil
	case "huber":
		return Huber{Epsilon: epsilon}, nil
	case "epsilon_insensitive":
		return EpsilonInsensitive{Epsilon: epsilon}, nil
	case "squared_epsilon_insensitive":
		return SquaredEpsilonInsensitive{Epsilon: epsilon}, nil
	default:
		return nil, errors.NewValidationError("loss", "valid regression losses are squared_loss, huber, epsilon_insensitive, squared_epsilon_insensitive", name)
	}
}

// classificationLossFromName は分類用の損失関数を名前から作る
func classificationLossFromName(name string, epsilon float64) (LossFunction, error) {
	switch name {
	case "hinge", "":
		return Hinge{Threshold: 1.0}, nil
	case "squared_hinge":
		return SquaredHinge{Threshold: 1.0}, nil
	case "perceptron":
		return NewPerceptron(), nil
	case "log":
		return Log{}, nil
	case "modified_huber":
		return ModifiedHuber{}, nil
	case "squared_loss":
		return SquaredLoss{}, nil
	case "huber":
		return Huber{Epsilon: epsilon}, nil
	default:
		return nil, errors.NewValidationError("loss", "valid classification losses are hinge, squared_hinge, perceptron, log, modified_huber, squared_loss, huber", name)
	}
}

// sgdConfig はSGD系推定器の共通ハイパーパラメータ
type sgdConfig struct {
	loss         string
	penalty      string
	alpha        float64
	l1Ratio      float64
	nIter        int
	fitIntercept bool
	shuffle      bool
	seed         uint64
	learningRate string
	eta0         float64
	powerT       float64
	epsilon      float64
	warmStart    bool
}

func (c *sgdConfig) validate() error {
	if c.alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", c.alpha)
	}
	if c.l1Ratio < 0 || c.l1Ratio > 1 {
		return errors.NewValidationError("l1_ratio", "must be in [0, 1]", c.l1Ratio)
	}
	if c.nIter <= 0 {
		return errors.NewValidationError("n_iter", "must be positive", c.nIter)
	}
	if c.learningRate == "constant" || c.learningRate == "invscaling" {
		if c.eta0 <= 0 {
			return errors.NewValidationError("eta0", "must be positive for constant and invscaling schedules", c.eta0)
		}
	}
	return nil
}

// toTrainingMatrix はXを密行列にし、疎入力なら切片減衰率も返す
func toTrainingMatrix(X mat.Matrix) (*mat.Dense, float64) {
	if sparse, ok := X.(*CSCMatrix); ok {
		rows, cols := sparse.Dims()
		dense := mat.NewDense(rows, cols, nil)
		for j := 0; j < cols; j++ {
			idx, vals := sparse.Column(j)
			for k, i := range idx {
				dense.Set(i, j, vals[k])
			}
		}
		return dense, sparseInterceptDecay
	}
	return toDense(X), 1.0
}

// SGDRegressor は確率的勾配降下法で学習する線形回帰
// 大規模データやストリーミングデータ向けで、PartialFitによる逐次学習に対応する
type SGDRegressor struct {
	state *model.StateManager
	mu    sync.RWMutex

	cfg sgdConfig

	coef_       []float64
	intercept_  float64
	t_          float64
	nIterRun_   int
	lastLoss_   float64
	lossHistory []float64
}

// SGDRegressorOption はSGDRegressorのオプション設定関数
type SGDRegressorOption func(*SGDRegressor)

// WithSGDRegressorLoss は損失関数を設定する
// squared_loss（デフォルト）、huber、epsilon_insensitive、squared_epsilon_insensitive
func WithSGDRegressorLoss(loss string) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.loss = loss }
}

// WithSGDRegressorPenalty は正則化の種類を設定する（デフォルト: l2）
func WithSGDRegressorPenalty(penalty string) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.penalty = penalty }
}

// WithSGDRegressorAlpha は正則化の強さを設定する（デフォルト: 1e-4）
func WithSGDRegressorAlpha(alpha float64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.alpha = alpha }
}

// WithSGDRegressorL1Ratio はelasticnetのL1比率を設定する（デフォルト: 0.15）
func WithSGDRegressorL1Ratio(l1Ratio float64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.l1Ratio = l1Ratio }
}

// WithSGDRegressorNIter はエポック数を設定する（デフォルト: 5）
func WithSGDRegressorNIter(nIter int) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.nIter = nIter }
}

// WithSGDRegressorFitIntercept は切片を学習するかどうかを設定する
func WithSGDRegressorFitIntercept(fit bool) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.fitIntercept = fit }
}

// WithSGDRegressorShuffle はエポックごとに標本順序をシャッフルするかを設定する
func WithSGDRegressorShuffle(shuffle bool) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.shuffle = shuffle }
}

// WithSGDRegressorSeed はシャッフルの乱数シードを設定する
func WithSGDRegressorSeed(seed uint64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.seed = seed }
}

// WithSGDRegressorLearningRate は学習率スケジュールを設定する
// 回帰のデフォルトはinvscaling（eta0=0.01, power_t=0.25）
func WithSGDRegressorLearningRate(schedule string) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.learningRate = schedule }
}

// WithSGDRegressorEta0 は初期学習率を設定する
func WithSGDRegressorEta0(eta0 float64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.eta0 = eta0 }
}

// WithSGDRegressorPowerT はinvscalingの指数を設定する
func WithSGDRegressorPowerT(powerT float64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.powerT = powerT }
}

// WithSGDRegressorEpsilon はhuber系損失の不感帯幅を設定する
func WithSGDRegressorEpsilon(epsilon float64) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.epsilon = epsilon }
}

// WithSGDRegressorWarmStart は前回の係数から学習を再開するかを設定する
func WithSGDRegressorWarmStart(warm bool) SGDRegressorOption {
	return func(r *SGDRegressor) { r.cfg.warmStart = warm }
}

// NewSGDRegressor は新しいSGD回帰モデルを作成する
func NewSGDRegressor(options ...SGDRegressorOption) *SGDRegressor {
	r := &SGDRegressor{
		state: model.NewStateManager(),
		cfg: sgdConfig{
			loss:         "squared_loss",
			penalty:      "l2",
			alpha:        1e-4,
			l1Ratio:      0.15,
			nIter:        5,
			fitIntercept: true,
			shuffle:      true,
			learningRate: "invscaling",
			eta0:         0.01,
			powerT:       0.25,
			epsilon:      DefaultEpsilon,
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// runEpochs は現在の係数から指定エポック数のSGDを実行する
func (r *SGDRegressor) runEpochs(X *mat.Dense, y []float64, interceptDecay float64, nIter int, initT bool) error {
	loss, err := regressionLossFromName(r.cfg.loss, r.cfg.epsilon)
	if err != nil {
		return err
	}
	penalty, err := penaltyTypeFromName(r.cfg.penalty)
	if err != nil {
		return err
	}
	schedule, err := learningRateFromName(r.cfg.learningRate)
	if err != nil {
		return err
	}

	if initT {
		if schedule == learningRateOptimal {
			r.t_ = optimalInit(loss, r.cfg.alpha)
		} else {
			r.t_ = 1.0
		}
	}

	intercept, t, epochLoss := plainSGD(r.coef_, r.intercept_, X, y, sgdParams{
		loss:           loss,
		penaltyType:    penalty,
		alpha:          r.cfg.alpha,
		l1Ratio:        r.cfg.l1Ratio,
		nIter:          nIter,
		fitIntercept:   r.cfg.fitIntercept,
		learningRate:   schedule,
		eta0:           r.cfg.eta0,
		powerT:         r.cfg.powerT,
		t:              r.t_,
		shuffle:        r.cfg.shuffle,
		seed:           r.cfg.seed,
		weightPos:      1,
		weightNeg:      1,
		interceptDecay: interceptDecay,
	})
	r.intercept_ = intercept
	r.t_ = t
	r.nIterRun_ += nIter
	r.lastLoss_ = epochLoss
	r.lossHistory = append(r.lossHistory, epochLoss)
	return nil
}

// Fit はSGD回帰モデルを学習する
// warm startが無効なら係数をゼロから学習し直す
func (r *SGDRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SGDRegressor.Fit")

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cfg.validate(); err != nil {
		return err
	}
	if err := validateXY("SGDRegressor.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	Xd, interceptDecay := toTrainingMatrix(X)
	yv := toVec(y)

	if !r.cfg.warmStart || r.coef_ == nil {
		r.coef_ = make([]float64, nFeatures)
		r.intercept_ = 0
		r.nIterRun_ = 0
		r.lossHistory = nil
	}
	if len(r.coef_) != nFeatures {
		return errors.NewDimensionError("SGDRegressor.Fit", len(r.coef_), nFeatures, 1)
	}

	if err := r.runEpochs(Xd, yv, interceptDecay, r.cfg.nIter, true); err != nil {
		return err
	}

	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()

	log.GetLoggerWithName("SGDRegressor").Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, r.nIterRun_,
		"loss", r.lastLoss_,
	)
	return nil
}

// PartialFit はミニバッチで1エポックだけ学習を進める
// 初回呼び出しで係数を初期化し、以降は学習率の歩数を引き継ぐ
func (r *SGDRegressor) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "SGDRegressor.PartialFit")

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cfg.validate(); err != nil {
		return err
	}
	if err := validateXY("SGDRegressor.PartialFit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	Xd, interceptDecay := toTrainingMatrix(X)
	yv := toVec(y)

	first := r.coef_ == nil
	if first {
		r.coef_ = make([]float64, nFeatures)
	}
	if len(r.coef_) != nFeatures {
		return errors.NewDimensionError("SGDRegressor.PartialFit", len(r.coef_), nFeatures, 1)
	}

	if err := r.runEpochs(Xd, yv, interceptDecay, 1, first); err != nil {
		return err
	}

	r.state.SetDimensions(nFeatures, nSamples)
	r.state.SetFitted()
	return nil
}

// FitStream はチャネルから届くバッチを順にPartialFitで学習する
// コンテキストのキャンセルで中断できる
func (r *SGDRegressor) FitStream(ctx context.Context, dataChan <-chan *model.Batch) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "SGDRegressor.FitStream")
		case batch, ok := <-dataChan:
			if !ok {
				return nil
			}
			if batch == nil || batch.X == nil || batch.Y == nil {
				continue
			}
			if err := r.PartialFit(batch.X, batch.Y, nil); err != nil {
				return err
			}
		}
	}
}

// PredictStream は入力チャネルの各行列を順に予測して返す
// 入力チャネルが閉じると出力チャネルも閉じる
func (r *SGDRegressor) PredictStream(ctx context.Context, inputChan <-chan mat.Matrix) <-chan mat.Matrix {
	out := make(chan mat.Matrix)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-inputChan:
				if !ok {
					return
				}
				pred, err := r.Predict(X)
				if err != nil {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- pred:
				}
			}
		}
	}()
	return out
}

// FitPredictStream はtest-then-train方式で、各バッチをまず予測してから学習する
func (r *SGDRegressor) FitPredictStream(ctx context.Context, dataChan <-chan *model.Batch) <-chan mat.Matrix {
	out := make(chan mat.Matrix)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-dataChan:
				if !ok {
					return
				}
				if batch == nil || batch.X == nil || batch.Y == nil {
					continue
				}
				if r.IsFitted() {
					if pred, err := r.Predict(batch.X); err == nil {
						select {
						case <-ctx.Done():
							return
						case out <- pred:
						}
					}
				}
				if err := r.PartialFit(batch.X, batch.Y, nil); err != nil {
					return
				}
			}
		}
	}()
	return out
}

// Predict は学習済みモデルで予測する
func (r *SGDRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.state.RequireFitted("SGDRegressor", "Predict"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := r.state.ValidateFeatures("SGDRegressor.Predict", nFeatures); err != nil {
		return nil, err
	}
	coef := mat.NewDense(1, len(r.coef_), append([]float64(nil), r.coef_...))
	return decisionFunction(X, coef, []float64{r.intercept_}), nil
}

// Score は決定係数R²を返す
func (r *SGDRegressor) Score(X, y mat.Matrix) (float64, error) {
	return r2ScoreForModel(r, X, y)
}

// IsFitted は学習済みかどうかを返す
func (r *SGDRegressor) IsFitted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.IsFitted()
}

// Weights は係数ベクトルを返す
func (r *SGDRegressor) Weights() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.coef_...)
}

// Intercept は切片を返す
func (r *SGDRegressor) Intercept() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.intercept_
}

// NIterations は実行済みエポック数を返す
func (r *SGDRegressor) NIterations() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nIterRun_
}

// IsWarmStart はwarm startが有効かどうかを返す
func (r *SGDRegressor) IsWarmStart() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg.warmStart
}

// SetWarmStart はwarm startの有効無効を切り替える
func (r *SGDRegressor) SetWarmStart(warm bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.warmStart = warm
}

// GetLoss は直近エポックの平均損失を返す
func (r *SGDRegressor) GetLoss() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastLoss_
}

// GetLossHistory はエポックごとの平均損失の履歴を返す
func (r *SGDRegressor) GetLossHistory() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.lossHistory...)
}

// GetConverged は直近2エポックの損失変化が十分小さいかどうかを返す
func (r *SGDRegressor) GetConverged() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lossConverged(r.lossHistory)
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (r *SGDRegressor) Clone() model.Estimator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &SGDRegressor{
		state: model.NewStateManager(),
		cfg:   r.cfg,
	}
	return clone
}

// SGDClassifier は確率的勾配降下法で学習する線形分類器
// 多クラスはone-vs-allで、クラスごとの二値問題を並列に解く
type SGDClassifier struct {
	state *model.StateManager
	mu    sync.RWMutex

	cfg      sgdConfig
	balanced bool
	nJobs    int

	coef_       *mat.Dense
	intercept_  []float64
	classes_    []int
	t_          []float64
	nIterRun_   int
	lastLoss_   float64
	lossHistory []float64
}

// SGDClassifierOption はSGDClassifierのオプション設定関数
type SGDClassifierOption func(*SGDClassifier)

// WithSGDClassifierLoss は損失関数を設定する
// hinge（デフォルト）、squared_hinge、perceptron、log、modified_huber など
func WithSGDClassifierLoss(loss string) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.loss = loss }
}

// WithSGDClassifierPenalty は正則化の種類を設定する（デフォルト: l2）
func WithSGDClassifierPenalty(penalty string) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.penalty = penalty }
}

// WithSGDClassifierAlpha は正則化の強さを設定する（デフォルト: 1e-4）
func WithSGDClassifierAlpha(alpha float64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.alpha = alpha }
}

// WithSGDClassifierL1Ratio はelasticnetのL1比率を設定する
func WithSGDClassifierL1Ratio(l1Ratio float64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.l1Ratio = l1Ratio }
}

// WithSGDClassifierNIter はエポック数を設定する（デフォルト: 5）
func WithSGDClassifierNIter(nIter int) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.nIter = nIter }
}

// WithSGDClassifierFitIntercept は切片を学習するかどうかを設定する
func WithSGDClassifierFitIntercept(fit bool) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.fitIntercept = fit }
}

// WithSGDClassifierShuffle はエポックごとに標本順序をシャッフルするかを設定する
func WithSGDClassifierShuffle(shuffle bool) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.shuffle = shuffle }
}

// WithSGDClassifierSeed はシャッフルの乱数シードを設定する
func WithSGDClassifierSeed(seed uint64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.seed = seed }
}

// WithSGDClassifierLearningRate は学習率スケジュールを設定する
// 分類のデフォルトはoptimal（損失の曲率から初期歩数を決める）
func WithSGDClassifierLearningRate(schedule string) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.learningRate = schedule }
}

// WithSGDClassifierEta0 は初期学習率を設定する
func WithSGDClassifierEta0(eta0 float64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.eta0 = eta0 }
}

// WithSGDClassifierPowerT はinvscalingの指数を設定する
func WithSGDClassifierPowerT(powerT float64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.powerT = powerT }
}

// WithSGDClassifierEpsilon はhuber系損失の不感帯幅を設定する
func WithSGDClassifierEpsilon(epsilon float64) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.epsilon = epsilon }
}

// WithSGDClassifierWarmStart は前回の係数から学習を再開するかを設定する
func WithSGDClassifierWarmStart(warm bool) SGDClassifierOption {
	return func(c *SGDClassifier) { c.cfg.warmStart = warm }
}

// WithSGDClassifierBalanced はクラス頻度の逆数で標本を重み付けする
func WithSGDClassifierBalanced(balanced bool) SGDClassifierOption {
	return func(c *SGDClassifier) { c.balanced = balanced }
}

// WithSGDClassifierNJobs はone-vs-all学習の並列数を設定する（0でCPU数）
func WithSGDClassifierNJobs(nJobs int) SGDClassifierOption {
	return func(c *SGDClassifier) { c.nJobs = nJobs }
}

// NewSGDClassifier は新しいSGD分類器を作成する
func NewSGDClassifier(options ...SGDClassifierOption) *SGDClassifier {
	c := &SGDClassifier{
		state: model.NewStateManager(),
		cfg: sgdConfig{
			loss:         "hinge",
			penalty:      "l2",
			alpha:        1e-4,
			l1Ratio:      0.15,
			nIter:        5,
			fitIntercept: true,
			shuffle:      true,
			learningRate: "optimal",
			eta0:         0.01,
			powerT:       0.5,
			epsilon:      DefaultEpsilon,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// sampleWeights はbalanced設定に応じた標本重みを返す（nilなら等重み）
func (c *SGDClassifier) sampleWeights(labels []int, classes []int) []float64 {
	if !c.balanced {
		return nil
	}
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	sw := make([]float64, len(labels))
	for i, l := range labels {
		sw[i] = float64(len(labels)) / (float64(len(classes)) * float64(counts[l]))
	}
	return sw
}

// fitBinaryProblems はクラスごとのone-vs-all二値問題を並列に学習する
// binary(2クラス)のときは1本だけ学習する
func (c *SGDClassifier) fitBinaryProblems(Xd *mat.Dense, labels []int, interceptDecay float64, nIter int, initT bool) error {
	loss, err := classificationLossFromName(c.cfg.loss, c.cfg.epsilon)
	if err != nil {
		return err
	}
	penalty, err := penaltyTypeFromName(c.cfg.penalty)
	if err != nil {
		return err
	}
	schedule, err := learningRateFromName(c.cfg.learningRate)
	if err != nil {
		return err
	}

	nSamples, nFeatures := Xd.Dims()
	nProblems := len(c.classes_)
	if nProblems == 2 {
		nProblems = 1
	}

	if c.coef_ == nil {
		c.coef_ = mat.NewDense(nProblems, nFeatures, nil)
		c.intercept_ = make([]float64, nProblems)
		c.t_ = make([]float64, nProblems)
	} else if rows, cols := c.coef_.Dims(); rows != nProblems || cols != nFeatures {
		return errors.NewDimensionError("SGDClassifier.Fit", rows*cols, nProblems*nFeatures, 0)
	}
	if initT {
		for k := range c.t_ {
			if schedule == learningRateOptimal {
				c.t_[k] = optimalInit(loss, c.cfg.alpha)
			} else {
				c.t_[k] = 1.0
			}
		}
	}

	sampleWeight := c.sampleWeights(labels, c.classes_)
	epochLosses := make([]float64, nProblems)

	err = parallel.MapError(nProblems, c.nJobs, func(k int) error {
		// one-vs-all: 対象クラスを+1、それ以外を-1にする
		positive := c.classes_[k]
		if len(c.classes_) == 2 {
			positive = c.classes_[1]
		}
		yk := make([]float64, nSamples)
		for i, l := range labels {
			if l == positive {
				yk[i] = 1
			} else {
				yk[i] = -1
			}
		}

		w := c.coef_.RawRowView(k)
		intercept, t, epochLoss := plainSGD(w, c.intercept_[k], Xd, yk, sgdParams{
			loss:           loss,
			penaltyType:    penalty,
			alpha:          c.cfg.alpha,
			l1Ratio:        c.cfg.l1Ratio,
			nIter:          nIter,
			fitIntercept:   c.cfg.fitIntercept,
			learningRate:   schedule,
			eta0:           c.cfg.eta0,
			powerT:         c.cfg.powerT,
			t:              c.t_[k],
			shuffle:        c.cfg.shuffle,
			seed:           c.cfg.seed + uint64(k),
			weightPos:      1,
			weightNeg:      1,
			sampleWeight:   sampleWeight,
			interceptDecay: interceptDecay,
		})
		c.intercept_[k] = intercept
		c.t_[k] = t
		epochLosses[k] = epochLoss
		return nil
	})
	if err != nil {
		return err
	}

	sum := 0.0
	for _, l := range epochLosses {
		sum += l
	}
	c.lastLoss_ = sum / float64(nProblems)
	c.lossHistory = append(c.lossHistory, c.lastLoss_)
	c.nIterRun_ += nIter
	return nil
}

// Fit はSGD分類器を学習する
// yは整数クラスラベルの1列行列であること
func (c *SGDClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "SGDClassifier.Fit")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.cfg.validate(); err != nil {
		return err
	}
	if err := validateXY("SGDClassifier.Fit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
	}
	seen := make(map[int]bool)
	var classes []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Ints(classes)
	if len(classes) < 2 {
		return errors.NewValueError("SGDClassifier.Fit", "need at least 2 classes in the data")
	}

	if !c.cfg.warmStart || c.coef_ == nil {
		c.coef_ = nil
		c.intercept_ = nil
		c.t_ = nil
		c.nIterRun_ = 0
		c.lossHistory = nil
	}
	c.classes_ = classes

	Xd, interceptDecay := toTrainingMatrix(X)
	if err := c.fitBinaryProblems(Xd, labels, interceptDecay, c.cfg.nIter, true); err != nil {
		return err
	}

	c.state.SetDimensions(nFeatures, nSamples)
	c.state.SetFitted()

	log.GetLoggerWithName("SGDClassifier").Debug("fit complete",
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		"classes", len(classes),
		"loss", c.lastLoss_,
	)
	return nil
}

// PartialFit はミニバッチで1エポックだけ学習を進める
// 初回呼び出しではclassesに全クラスを渡すこと
func (c *SGDClassifier) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "SGDClassifier.PartialFit")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.cfg.validate(); err != nil {
		return err
	}
	if err := validateXY("SGDClassifier.PartialFit", X, y); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()

	first := c.classes_ == nil
	if first {
		if len(classes) < 2 {
			return errors.NewValidationError("classes", "the first PartialFit call must list all classes", len(classes))
		}
		c.classes_ = append([]int(nil), classes...)
		sort.Ints(c.classes_)
	}

	labels := make([]int, nSamples)
	known := make(map[int]bool, len(c.classes_))
	for _, cl := range c.classes_ {
		known[cl] = true
	}
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
		if !known[labels[i]] {
			return errors.NewValidationError("y", "label not announced in the first PartialFit call", labels[i])
		}
	}

	Xd, interceptDecay := toTrainingMatrix(X)
	if err := c.fitBinaryProblems(Xd, labels, interceptDecay, 1, first); err != nil {
		return err
	}

	c.state.SetDimensions(nFeatures, nSamples)
	c.state.SetFitted()
	return nil
}

// DecisionFunction は各二値問題の信頼度スコア (nSamples×nProblems) を返す
func (c *SGDClassifier) DecisionFunction(X mat.Matrix) (*mat.Dense, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireFitted("SGDClassifier", "DecisionFunction"); err != nil {
		return nil, err
	}
	_, nFeatures := X.Dims()
	if err := c.state.ValidateFeatures("SGDClassifier.DecisionFunction", nFeatures); err != nil {
		return nil, err
	}
	return decisionFunction(X, c.coef_, c.intercept_), nil
}

// Predict は各標本のクラスラベルを予測する
func (c *SGDClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
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

// PredictProba はクラス所属確率を返す
// log損失はシグモイド、modified_huberは区分線形な推定を使う
// それ以外の損失は確率を定義できないためエラーになる
func (c *SGDClassifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	c.mu.RLock()
	lossName := c.cfg.loss
	c.mu.RUnlock()

	if lossName != "log" && lossName != "modified_huber" {
		return nil, errors.NewValueError("SGDClassifier.PredictProba", "probability estimates are only available for loss=log or loss=modified_huber")
	}

	scores, err := c.DecisionFunction(X)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	n, nCols := scores.Dims()
	nClasses := len(c.classes_)
	proba := mat.NewDense(n, nClasses, nil)

	pointwise := func(score float64) float64 {
		if lossName == "log" {
			return 1.0 / (1.0 + math.Exp(-score))
		}
		// modified_huber: スコアを[-1,1]に切り詰めて[0,1]へ写す
		if score < -1 {
			score = -1
		} else if score > 1 {
			score = 1
		}
		return (score + 1) / 2
	}

	if nCols == 1 {
		for i := 0; i < n; i++ {
			p := pointwise(scores.At(i, 0))
			proba.Set(i, 0, 1-p)
			proba.Set(i, 1, p)
		}
		return proba, nil
	}

	for i := 0; i < n; i++ {
		sum := 0.0
		for k := 0; k < nCols; k++ {
			p := pointwise(scores.At(i, k))
			proba.Set(i, k, p)
			sum += p
		}
		if sum > 0 {
			for k := 0; k < nCols; k++ {
				proba.Set(i, k, proba.At(i, k)/sum)
			}
		} else {
			// 全クラスが棄却された場合は一様分布にする
			for k := 0; k < nCols; k++ {
				proba.Set(i, k, 1.0/float64(nClasses))
			}
		}
	}
	return proba, nil
}

// Score は正解率を返す
func (c *SGDClassifier) Score(X, y mat.Matrix) (float64, error) {
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
func (c *SGDClassifier) Classes() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]int(nil), c.classes_...)
}

// Coef は二値問題ごとの係数行列を返す
func (c *SGDClassifier) Coef() *mat.Dense {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.coef_
}

// Intercepts は二値問題ごとの切片を返す
func (c *SGDClassifier) Intercepts() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]float64(nil), c.intercept_...)
}

// IsFitted は学習済みかどうかを返す
func (c *SGDClassifier) IsFitted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.IsFitted()
}

// NIterations は実行済みエポック数を返す
func (c *SGDClassifier) NIterations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nIterRun_
}

// IsWarmStart はwarm startが有効かどうかを返す
func (c *SGDClassifier) IsWarmStart() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.warmStart
}

// SetWarmStart はwarm startの有効無効を切り替える
func (c *SGDClassifier) SetWarmStart(warm bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.warmStart = warm
}

// GetLoss は直近エポックの問題平均損失を返す
func (c *SGDClassifier) GetLoss() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastLoss_
}

// GetLossHistory はエポックごとの平均損失の履歴を返す
func (c *SGDClassifier) GetLossHistory() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]float64(nil), c.lossHistory...)
}

// GetConverged は直近2エポックの損失変化が十分小さいかどうかを返す
func (c *SGDClassifier) GetConverged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lossConverged(c.lossHistory)
}

// lossConverged は損失履歴の末尾2点の相対変化で収束を判定する
func lossConverged(history []float64) bool {
	if len(history) < 2 {
		return false
	}
	prev := history[len(history)-2]
	last := history[len(history)-1]
	denom := math.Abs(prev)
	if denom < 1 {
		denom = 1
	}
	return math.Abs(last-prev)/denom < 1e-3
}

// Clone は同じハイパーパラメータを持つ未学習のコピーを返す
func (c *SGDClassifier) Clone() model.Estimator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &SGDClassifier{
		state:    model.NewStateManager(),
		cfg:      c.cfg,
		balanced: c.balanced,
		nJobs:    c.nJobs,
	}
}
