package errors

import (
	"math"
)

// CheckNumericalStability は値列にNaNまたはInfが含まれていないか検査します。
// SGDの重み更新後などに呼ばれ、浮動小数点のオーバーフローを検出します。
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Newf("glearn: %s: floating-point under-/overflow occurred at iteration %d; scaling input data with StandardScaler or decreasing eta0 may help", operation, iteration)
		}
	}
	return nil
}

// CheckScalar は単一のスカラー値の数値安定性を検査します。
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Newf("glearn: %s: floating-point under-/overflow occurred at iteration %d; scaling input data with StandardScaler or decreasing eta0 may help", operation, iteration)
	}
	return nil
}

// SafeDivide はゼロ除算を保護した除算を行います。
// 分母がゼロに近い場合は0を返します。
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}

// StabilizeLog はlog(0)を保護した対数計算を行います。
// log(max(value, epsilon)) を返します。
func StabilizeLog(value float64) float64 {
	const epsilon = 1e-10
	if value < epsilon {
		return math.Log(epsilon)
	}
	return math.Log(value)
}

// StabilizeExp はオーバーフローを保護した指数計算を行います。
// 入力をクリップしてInfを返さないようにします。
func StabilizeExp(value float64) float64 {
	const maxExp = 700.0 // exp(700)はfloat64の上限に近い
	if value > maxExp {
		return math.Exp(maxExp)
	}
	if value < -maxExp {
		return 0
	}
	return math.Exp(value)
}
