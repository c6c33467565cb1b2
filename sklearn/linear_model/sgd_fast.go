package linear_model

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// DefaultEpsilon is the default insensitivity width of the huber and
// epsilon-insensitive losses.
const DefaultEpsilon = 0.1

// sparseInterceptDecay shrinks intercept updates on sparse data, where the
// intercept would otherwise dominate the rare feature updates.
const sparseInterceptDecay = 0.01

// LossFunction is a pointwise loss with its derivative with respect to the
// prediction p. Classification losses receive y in {-1, +1}.
type LossFunction interface {
	Loss(p, y float64) float64
	Dloss(p, y float64) float64
}

// SquaredLoss is the squared error 0.5(p-y)².
type SquaredLoss struct{}

func (SquaredLoss) Loss(p, y float64) float64  { return 0.5 * (p - y) * (p - y) }
func (SquaredLoss) Dloss(p, y float64) float64 { return p - y }

// Huber is the squared error for residuals below Epsilon and linear above,
// making the fit robust to outliers.
type Huber struct {
	Epsilon float64
}

func (h Huber) Loss(p, y float64) float64 {
	r := p - y
	absR := math.Abs(r)
	if absR <= h.Epsilon {
		return 0.5 * r * r
	}
	return h.Epsilon*absR - 0.5*h.Epsilon*h.Epsilon
}

func (h Huber) Dloss(p, y float64) float64 {
	r := p - y
	if math.Abs(r) <= h.Epsilon {
		return r
	}
	if r > 0 {
		return h.Epsilon
	}
	return -h.Epsilon
}

// EpsilonInsensitive ignores residuals smaller than Epsilon, as in SVR.
type EpsilonInsensitive struct {
	Epsilon float64
}

func (e EpsilonInsensitive) Loss(p, y float64) float64 {
	l := math.Abs(y-p) - e.Epsilon
	if l > 0 {
		return l
	}
	return 0
}

func (e EpsilonInsensitive) Dloss(p, y float64) float64 {
	if y-p > e.Epsilon {
		return -1
	}
	if p-y > e.Epsilon {
		return 1
	}
	return 0
}

// SquaredEpsilonInsensitive squares the epsilon-insensitive residual,
// keeping the loss differentiable at the tube boundary.
type SquaredEpsilonInsensitive struct {
	Epsilon float64
}

func (e SquaredEpsilonInsensitive) Loss(p, y float64) float64 {
	l := math.Abs(y-p) - e.Epsilon
	if l > 0 {
		return l * l
	}
	return 0
}

func (e SquaredEpsilonInsensitive) Dloss(p, y float64) float64 {
	z := y - p
	if z > e.Epsilon {
		return -2 * (z - e.Epsilon)
	}
	if -z > e.Epsilon {
		return 2 * (-z - e.Epsilon)
	}
	return 0
}

// Hinge is the SVM loss max(0, threshold - p·y). Threshold 1.0 gives the
// standard soft-margin SVM; threshold 0.0 gives the perceptron.
type Hinge struct {
	Threshold float64
}

func (h Hinge) Loss(p, y float64) float64 {
	z := p * y
	if z <= h.Threshold {
		return h.Threshold - z
	}
	return 0
}

func (h Hinge) Dloss(p, y float64) float64 {
	if p*y <= h.Threshold {
		return -y
	}
	return 0
}

// NewPerceptron returns the perceptron loss, a hinge with zero threshold.
func NewPerceptron() Hinge { return Hinge{Threshold: 0} }

// SquaredHinge is max(0, threshold - p·y)².
type SquaredHinge struct {
	Threshold float64
}

func (h SquaredHinge) Loss(p, y float64) float64 {
	z := h.Threshold - p*y
	if z > 0 {
		return z * z
	}
	return 0
}

func (h SquaredHinge) Dloss(p, y float64) float64 {
	z := h.Threshold - p*y
	if z > 0 {
		return -2 * y * z
	}
	return 0
}

// Log is the logistic regression loss log(1 + exp(-p·y)).
type Log struct{}

func (Log) Loss(p, y float64) float64 {
	z := p * y
	// Guard the exponentials far from the decision boundary.
	if z > 18 {
		return math.Exp(-z)
	}
	if z < -18 {
		return -z
	}
	return math.Log(1 + math.Exp(-z))
}

func (Log) Dloss(p, y float64) float64 {
	z := p * y
	if z > 18 {
		return -y * math.Exp(-z)
	}
	if z < -18 {
		return -y
	}
	return -y / (1 + math.Exp(z))
}

// ModifiedHuber is Zhang's smoothed hinge, quadratic in [-1, 1] and linear
// below. It tolerates outliers and yields probability estimates.
type ModifiedHuber struct{}

func (ModifiedHuber) Loss(p, y float64) float64 {
	z := p * y
	switch {
	case z >= 1:
		return 0
	case z >= -1:
		return (1 - z) * (1 - z)
	default:
		return -4 * z
	}
}

func (ModifiedHuber) Dloss(p, y float64) float64 {
	z := p * y
	switch {
	case z >= 1:
		return 0
	case z >= -1:
		return -2 * y * (1 - z)
	default:
		return -4 * y
	}
}

// Penalty kinds.
const (
	penaltyNone = iota
	penaltyL1
	penaltyL2
	penaltyElasticNet
)

// Learning rate schedules.
const (
	learningRateConstant = iota + 1
	learningRateOptimal
	learningRateInvScaling
)

func penaltyTypeFromName(name string) (int, error) {
	switch name {
	case "none", "":
		return penaltyNone, nil
	case "l1":
		return penaltyL1, nil
	case "l2":
		return penaltyL2, nil
	case "elasticnet":
		return penaltyElasticNet, nil
	default:
		return 0, errors.NewValidationError("penalty", "valid values are none, l1, l2, elasticnet", name)
	}
}

func learningRateFromName(name string) (int, error) {
	switch name {
	case "constant":
		return learningRateConstant, nil
	case "optimal", "":
		return learningRateOptimal, nil
	case "invscaling":
		return learningRateInvScaling, nil
	default:
		return 0, errors.NewValidationError("learning_rate", "valid values are constant, optimal, invscaling", name)
	}
}

// optimalInit computes the initial step counter of the "optimal" schedule
// eta = 1/(alpha·t) so that the first step size matches the typical weight
// scale of the problem.
func optimalInit(loss LossFunction, alpha float64) float64 {
	typw := math.Sqrt(1.0 / math.Sqrt(alpha))
	d := loss.Dloss(-typw, 1.0)
	if d < 1 {
		d = 1
	}
	eta0 := typw / d
	return 1.0 / (eta0 * alpha)
}

// sgdParams bundles the knobs of one plainSGD run.
type sgdParams struct {
	loss         LossFunction
	penaltyType  int
	alpha        float64
	l1Ratio      float64
	nIter        int
	fitIntercept bool
	learningRate int
	eta0         float64
	powerT       float64
	t            float64
	shuffle      bool
	seed         uint64

	// Per-class weights for classification; both 1 for regression.
	weightPos float64
	weightNeg float64

	sampleWeight   []float64
	interceptDecay float64
}

// effectiveL1Ratio maps the penalty kind to the L1 share of the
// regularizer: 0 for L2, 1 for L1, the configured mix for elastic net.
func (p *sgdParams) effectiveL1Ratio() float64 {
	switch p.penaltyType {
	case penaltyL1:
		return 1
	case penaltyElasticNet:
		return p.l1Ratio
	default:
		return 0
	}
}

// plainSGD runs stochastic gradient descent over nIter epochs, updating w
// and the intercept in place. The L1 part of the penalty uses the
// cumulative truncation of Tsuruoka et al. so coefficients reach exact
// zero. Returns the final intercept, the advanced step counter and the
// average loss of the last epoch.
func plainSGD(w []float64, intercept float64, X *mat.Dense, y []float64, p sgdParams) (float64, float64, float64) {
	nSamples, nFeatures := X.Dims()
	l1Ratio := p.effectiveL1Ratio()

	order := make([]int, nSamples)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(p.seed, p.seed))

	// Cumulative L1 budget and the per-feature amount already applied.
	u := 0.0
	q := make([]float64, nFeatures)

	x := make([]float64, nFeatures)
	t := p.t
	lastEpochLoss := 0.0

	for epoch := 0; epoch < p.nIter; epoch++ {
		if p.shuffle {
			rng.Shuffle(nSamples, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		sumLoss := 0.0

		for _, i := range order {
			var eta float64
			switch p.learningRate {
			case learningRateConstant:
				eta = p.eta0
			case learningRateInvScaling:
				eta = p.eta0 / math.Pow(t, p.powerT)
			default:
				eta = 1.0 / (p.alpha * t)
			}

			mat.Row(x, i, X)
			pred := intercept
			for j, v := range x {
				pred += w[j] * v
			}

			weight := 1.0
			if p.sampleWeight != nil {
				weight = p.sampleWeight[i]
			}
			if y[i] > 0 {
				weight *= p.weightPos
			} else {
				weight *= p.weightNeg
			}

			sumLoss += p.loss.Loss(pred, y[i]) * weight
			grad := p.loss.Dloss(pred, y[i]) * weight

			// L2 shrinkage before the gradient step.
			if p.penaltyType == penaltyL2 || p.penaltyType == penaltyElasticNet {
				shrink := 1.0 - (1.0-l1Ratio)*eta*p.alpha
				if shrink < 0 {
					shrink = 0
				}
				for j := range w {
					w[j] *= shrink
				}
			}

			if grad != 0 {
				step := -eta * grad
				for j, v := range x {
					w[j] += step * v
				}
				if p.fitIntercept {
					intercept += step * p.interceptDecay
				}
			}

			// Cumulative L1 truncation clips weights to exact zero.
			if p.penaltyType == penaltyL1 || p.penaltyType == penaltyElasticNet {
				u += l1Ratio * eta * p.alpha
				for j := range w {
					z := w[j]
					if w[j] > 0 {
						w[j] = math.Max(0, w[j]-(u+q[j]))
					} else if w[j] < 0 {
						w[j] = math.Min(0, w[j]+(u-q[j]))
					}
					q[j] += w[j] - z
				}
			}

			t++
		}
		lastEpochLoss = sumLoss / float64(nSamples)
	}

	return intercept, t, lastEpochLoss
}
