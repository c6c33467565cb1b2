package linear_model

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// cdResult is the outcome of one coordinate-descent run.
type cdResult struct {
	gap       float64 // duality gap at termination
	scaledTol float64 // tolerance after scaling by the target norm
	nIter     int     // completed passes over the features
	converged bool    // gap < scaledTol at termination
}

func fsign(f float64) float64 {
	if f > 0 {
		return 1
	}
	if f < 0 {
		return -1
	}
	return 0
}

// softThreshold applies sign(x)·max(|x|-threshold, 0).
func softThreshold(x, threshold float64) float64 {
	return fsign(x) * math.Max(math.Abs(x)-threshold, 0)
}

// enetCoordinateDescent minimizes
//
//	(1/2)·||y - Xw||² + l1·||w||₁ + (l2/2)·||w||²
//
// by cyclic coordinate descent. w holds the starting point (warm start) and
// is updated in place. The tolerance is scaled by ||y||²; termination is
// certified by the elastic-net duality gap. With positive set, coefficients
// are clipped at zero.
func enetCoordinateDescent(w []float64, l1, l2 float64, X *mat.Dense, y []float64, maxIter int, tol float64, positive bool) cdResult {
	nSamples, nFeatures := X.Dims()

	// 列をスライスとして取り出しておく（列アクセスが支配的なため）
	cols := make([][]float64, nFeatures)
	normCols := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		col := make([]float64, nSamples)
		mat.Col(col, j, X)
		cols[j] = col
		normCols[j] = floats.Dot(col, col)
	}

	// R = y - Xw
	r := make([]float64, nSamples)
	copy(r, y)
	for j := 0; j < nFeatures; j++ {
		if w[j] != 0 {
			floats.AddScaled(r, -w[j], cols[j])
		}
	}

	scaledTol := tol * floats.Dot(y, y)
	res := cdResult{scaledTol: scaledTol}

	for iter := 0; iter < maxIter; iter++ {
		var wMax, dwMax float64

		for j := 0; j < nFeatures; j++ {
			if normCols[j] == 0 {
				continue
			}
			wPrev := w[j]

			// R += w[j]·X[:,j] で特徴jの寄与を一旦戻す
			if wPrev != 0 {
				floats.AddScaled(r, wPrev, cols[j])
			}

			tmp := floats.Dot(cols[j], r)
			if positive && tmp < 0 {
				w[j] = 0
			} else {
				w[j] = softThreshold(tmp, l1) / (normCols[j] + l2)
			}

			if w[j] != 0 {
				floats.AddScaled(r, -w[j], cols[j])
			}

			if d := math.Abs(w[j] - wPrev); d > dwMax {
				dwMax = d
			}
			if a := math.Abs(w[j]); a > wMax {
				wMax = a
			}
		}
		res.nIter = iter + 1

		if wMax == 0 || dwMax/wMax < tol || iter == maxIter-1 {
			// 双対ギャップで収束を証明する
			res.gap = enetDualGap(w, l1, l2, cols, y, r, positive)
			if res.gap < scaledTol {
				res.converged = true
				return res
			}
			if iter == maxIter-1 {
				return res
			}
		}
	}
	return res
}

// enetDualGap computes the elastic-net duality gap for the current residual.
func enetDualGap(w []float64, l1, l2 float64, cols [][]float64, y, r []float64, positive bool) float64 {
	// XtA = Xᵀ·R - l2·w
	dualNorm := math.Inf(-1)
	for j := range cols {
		xta := floats.Dot(cols[j], r) - l2*w[j]
		if positive {
			if xta > dualNorm {
				dualNorm = xta
			}
		} else if a := math.Abs(xta); a > dualNorm {
			dualNorm = a
		}
	}

	rNorm2 := floats.Dot(r, r)
	wNorm2 := floats.Dot(w, w)

	var gap, cnst float64
	if dualNorm > l1 {
		cnst = l1 / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*cnst*cnst)
	} else {
		cnst = 1
		gap = rNorm2
	}

	l1Norm := 0.0
	for _, wj := range w {
		l1Norm += math.Abs(wj)
	}

	gap += l1*l1Norm - cnst*floats.Dot(r, y) + 0.5*l2*(1+cnst*cnst)*wNorm2
	return gap
}

// sparseEnetCoordinateDescent is the CSC variant of enetCoordinateDescent.
// xMean, when non-nil, holds per-feature means which are applied virtually
// so the sparse matrix never has to be densified for centering.
func sparseEnetCoordinateDescent(w []float64, l1, l2 float64, X *CSCMatrix, y []float64, xMean []float64, maxIter int, tol float64, positive bool) cdResult {
	nSamples, nFeatures := X.Dims()
	center := xMean != nil

	normCols := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		_, vals := X.Column(j)
		var sum, sumSq float64
		for _, v := range vals {
			sum += v
			sumSq += v * v
		}
		if center {
			m := xMean[j]
			// Σ(x-m)² = Σx² - 2mΣx + n·m²
			normCols[j] = sumSq - 2*m*sum + float64(nSamples)*m*m
		} else {
			normCols[j] = sumSq
		}
	}

	// R = y - (X - 1·xMeanᵀ)w
	r := make([]float64, nSamples)
	copy(r, y)
	for j := 0; j < nFeatures; j++ {
		if w[j] == 0 {
			continue
		}
		rows, vals := X.Column(j)
		for k, i := range rows {
			r[i] -= vals[k] * w[j]
		}
		if center {
			offset := xMean[j] * w[j]
			for i := range r {
				r[i] += offset
			}
		}
	}

	scaledTol := tol * floats.Dot(y, y)
	res := cdResult{scaledTol: scaledTol}

	for iter := 0; iter < maxIter; iter++ {
		var wMax, dwMax float64

		for j := 0; j < nFeatures; j++ {
			if normCols[j] == 0 {
				continue
			}
			wPrev := w[j]
			rows, vals := X.Column(j)

			if wPrev != 0 {
				for k, i := range rows {
					r[i] += vals[k] * wPrev
				}
				if center {
					offset := xMean[j] * wPrev
					for i := range r {
						r[i] -= offset
					}
				}
			}

			var tmp float64
			for k, i := range rows {
				tmp += vals[k] * r[i]
			}
			if center {
				tmp -= xMean[j] * floats.Sum(r)
			}

			if positive && tmp < 0 {
				w[j] = 0
			} else {
				w[j] = softThreshold(tmp, l1) / (normCols[j] + l2)
			}

			if w[j] != 0 {
				for k, i := range rows {
					r[i] -= vals[k] * w[j]
				}
				if center {
					offset := xMean[j] * w[j]
					for i := range r {
						r[i] += offset
					}
				}
			}

			if d := math.Abs(w[j] - wPrev); d > dwMax {
				dwMax = d
			}
			if a := math.Abs(w[j]); a > wMax {
				wMax = a
			}
		}
		res.nIter = iter + 1

		if wMax == 0 || dwMax/wMax < tol || iter == maxIter-1 {
			res.gap = sparseEnetDualGap(w, l1, l2, X, y, r, xMean, positive)
			if res.gap < scaledTol {
				res.converged = true
				return res
			}
			if iter == maxIter-1 {
				return res
			}
		}
	}
	return res
}

func sparseEnetDualGap(w []float64, l1, l2 float64, X *CSCMatrix, y, r, xMean []float64, positive bool) float64 {
	_, nFeatures := X.Dims()
	center := xMean != nil
	rSum := floats.Sum(r)

	dualNorm := math.Inf(-1)
	for j := 0; j < nFeatures; j++ {
		rows, vals := X.Column(j)
		var xtr float64
		for k, i := range rows {
			xtr += vals[k] * r[i]
		}
		if center {
			xtr -= xMean[j] * rSum
		}
		xta := xtr - l2*w[j]
		if positive {
			if xta > dualNorm {
				dualNorm = xta
			}
		} else if a := math.Abs(xta); a > dualNorm {
			dualNorm = a
		}
	}

	rNorm2 := floats.Dot(r, r)
	wNorm2 := floats.Dot(w, w)

	var gap, cnst float64
	if dualNorm > l1 {
		cnst = l1 / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*cnst*cnst)
	} else {
		cnst = 1
		gap = rNorm2
	}

	l1Norm := 0.0
	for _, wj := range w {
		l1Norm += math.Abs(wj)
	}

	gap += l1*l1Norm - cnst*floats.Dot(r, y) + 0.5*l2*(1+cnst*cnst)*wNorm2
	return gap
}

// enetCoordinateDescentMultiTask minimizes
//
//	(1/2)·||Y - XWᵀ||²_F + l1·Σⱼ||W[:,j]||₂ + (l2/2)·||W||²_F
//
// where W is (nTasks × nFeatures). The l2,1 penalty couples the tasks: a
// feature is either selected for every task or zeroed for all of them.
func enetCoordinateDescentMultiTask(W *mat.Dense, l1, l2 float64, X, Y *mat.Dense, maxIter int, tol float64) cdResult {
	nSamples, nFeatures := X.Dims()
	_, nTasks := Y.Dims()

	cols := make([][]float64, nFeatures)
	normCols := make([]float64, nFeatures)
	for j := 0; j < nFeatures; j++ {
		col := make([]float64, nSamples)
		mat.Col(col, j, X)
		cols[j] = col
		normCols[j] = floats.Dot(col, col)
	}

	// R = Y - XWᵀ
	R := mat.NewDense(nSamples, nTasks, nil)
	var xwt mat.Dense
	xwt.Mul(X, W.T())
	R.Sub(Y, &xwt)

	yNorm2 := 0.0
	for i := 0; i < nSamples; i++ {
		for t := 0; t < nTasks; t++ {
			v := Y.At(i, t)
			yNorm2 += v * v
		}
	}
	scaledTol := tol * yNorm2
	res := cdResult{scaledTol: scaledTol}

	wCol := make([]float64, nTasks)
	tmp := make([]float64, nTasks)

	for iter := 0; iter < maxIter; iter++ {
		var wMax, dwMax float64

		for j := 0; j < nFeatures; j++ {
			if normCols[j] == 0 {
				continue
			}
			for t := 0; t < nTasks; t++ {
				wCol[t] = W.At(t, j)
			}

			// R += X[:,j]·wColᵀ
			if floats.Norm(wCol, 2) != 0 {
				for k, xi := range cols[j] {
					if xi == 0 {
						continue
					}
					for t := 0; t < nTasks; t++ {
						R.Set(k, t, R.At(k, t)+xi*wCol[t])
					}
				}
			}

			// tmp = X[:,j]ᵀ·R
			for t := 0; t < nTasks; t++ {
				tmp[t] = 0
			}
			for k, xi := range cols[j] {
				if xi == 0 {
					continue
				}
				for t := 0; t < nTasks; t++ {
					tmp[t] += xi * R.At(k, t)
				}
			}

			// 行ノルムに対するソフト閾値処理（タスク横断の同時選択）
			nn := floats.Norm(tmp, 2)
			shrink := 0.0
			if nn > 0 {
				shrink = math.Max(1-l1/nn, 0) / (normCols[j] + l2)
			}

			var newNorm float64
			for t := 0; t < nTasks; t++ {
				newW := tmp[t] * shrink
				if d := math.Abs(newW - wCol[t]); d > dwMax {
					dwMax = d
				}
				if a := math.Abs(newW); a > wMax {
					wMax = a
				}
				W.Set(t, j, newW)
				newNorm += newW * newW
			}

			if newNorm != 0 {
				for k, xi := range cols[j] {
					if xi == 0 {
						continue
					}
					for t := 0; t < nTasks; t++ {
						R.Set(k, t, R.At(k, t)-xi*W.At(t, j))
					}
				}
			}
		}
		res.nIter = iter + 1

		if wMax == 0 || dwMax/wMax < tol || iter == maxIter-1 {
			res.gap = multiTaskDualGap(W, l1, l2, cols, Y, R)
			if res.gap < scaledTol {
				res.converged = true
				return res
			}
			if iter == maxIter-1 {
				return res
			}
		}
	}
	return res
}

func multiTaskDualGap(W *mat.Dense, l1, l2 float64, cols [][]float64, Y, R *mat.Dense) float64 {
	nSamples, nTasks := Y.Dims()
	_, nFeatures := W.Dims()

	// dualNorm = maxⱼ ||X[:,j]ᵀR - l2·W[:,j]||₂
	dualNorm := math.Inf(-1)
	row := make([]float64, nTasks)
	for j := 0; j < nFeatures; j++ {
		for t := 0; t < nTasks; t++ {
			row[t] = -l2 * W.At(t, j)
		}
		for k, xi := range cols[j] {
			if xi == 0 {
				continue
			}
			for t := 0; t < nTasks; t++ {
				row[t] += xi * R.At(k, t)
			}
		}
		if n := floats.Norm(row, 2); n > dualNorm {
			dualNorm = n
		}
	}

	var rNorm2, wNorm2, rySum float64
	for i := 0; i < nSamples; i++ {
		for t := 0; t < nTasks; t++ {
			v := R.At(i, t)
			rNorm2 += v * v
			rySum += v * Y.At(i, t)
		}
	}
	for t := 0; t < nTasks; t++ {
		for j := 0; j < nFeatures; j++ {
			v := W.At(t, j)
			wNorm2 += v * v
		}
	}

	var gap, cnst float64
	if dualNorm > l1 {
		cnst = l1 / dualNorm
		gap = 0.5 * (rNorm2 + rNorm2*cnst*cnst)
	} else {
		cnst = 1
		gap = rNorm2
	}

	// l2,1ノルム: 特徴ごとの列ベクトルのL2ノルムの和
	l21Norm := 0.0
	colW := make([]float64, nTasks)
	for j := 0; j < nFeatures; j++ {
		for t := range colW {
			colW[t] = W.At(t, j)
		}
		l21Norm += floats.Norm(colW, 2)
	}

	gap += l1*l21Norm - cnst*rySum + 0.5*l2*(1+cnst*cnst)*wNorm2
	return gap
}
