// Package cross_validation provides dataset splitting utilities (k-fold,
// stratified, label-based and shuffle splits), cross-validated scoring, and
// learning curves. Semantics follow scikit-learn's cross_validation module.
package cross_validation

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/glearn/pkg/errors"
)

// Fold is one train/test partition of samples. The default representation
// is integer index lists; generators configured with WithIndicesAsMask emit
// boolean masks over [0, n) instead. The two forms convert losslessly.
type Fold struct {
	Train []int
	Test  []int

	TrainMask []bool
	TestMask  []bool
}

// IsMask reports whether the fold carries the boolean-mask representation.
func (f Fold) IsMask() bool { return f.TrainMask != nil || f.TestMask != nil }

// AsIndices returns the fold in integer-index form.
func (f Fold) AsIndices() Fold {
	if !f.IsMask() {
		return f
	}
	return Fold{Train: MaskToIndices(f.TrainMask), Test: MaskToIndices(f.TestMask)}
}

// AsMask returns the fold in boolean-mask form over n samples. Membership
// (every index in [0, n)) and train/test disjointness are validated, the
// same checks the index form gets.
func (f Fold) AsMask(n int) (Fold, error) {
	if f.IsMask() {
		if len(f.TrainMask) != n || len(f.TestMask) != n {
			return Fold{}, errors.NewValueError("Fold.AsMask", "mask length does not match the number of samples")
		}
		for i := 0; i < n; i++ {
			if f.TrainMask[i] && f.TestMask[i] {
				return Fold{}, errors.NewValueError("Fold.AsMask", "train and test sets overlap")
			}
		}
		return Fold{
			TrainMask: append([]bool(nil), f.TrainMask...),
			TestMask:  append([]bool(nil), f.TestMask...),
		}, nil
	}
	trainMask, err := IndicesToMask(f.Train, n)
	if err != nil {
		return Fold{}, err
	}
	testMask, err := IndicesToMask(f.Test, n)
	if err != nil {
		return Fold{}, err
	}
	for i := 0; i < n; i++ {
		if trainMask[i] && testMask[i] {
			return Fold{}, errors.NewValueError("Fold.AsMask", "train and test sets overlap")
		}
	}
	return Fold{TrainMask: trainMask, TestMask: testMask}, nil
}

// Splitter generates train/test folds over a dataset of N() samples.
// Split is idempotent: repeated calls return the same folds.
type Splitter interface {
	// Split returns the folds.
	Split() []Fold
	// NSplits returns the number of folds Split produces.
	NSplits() int
	// N returns the total number of samples.
	N() int
}

// IndicesToMask converts index form to a boolean mask of length n.
func IndicesToMask(indices []int, n int) ([]bool, error) {
	mask := make([]bool, n)
	for _, i := range indices {
		if i < 0 || i >= n {
			return nil, errors.NewValueError("IndicesToMask", "index out of range")
		}
		mask[i] = true
	}
	return mask, nil
}

// MaskToIndices converts a boolean mask to sorted index form.
func MaskToIndices(mask []bool) []int {
	var indices []int
	for i, m := range mask {
		if m {
			indices = append(indices, i)
		}
	}
	return indices
}

// copyFolds returns a deep copy so callers cannot corrupt the generator state.
func copyFolds(folds []Fold) []Fold {
	out := make([]Fold, len(folds))
	for i, f := range folds {
		out[i] = Fold{
			Train:     append([]int(nil), f.Train...),
			Test:      append([]int(nil), f.Test...),
			TrainMask: append([]bool(nil), f.TrainMask...),
			TestMask:  append([]bool(nil), f.TestMask...),
		}
	}
	return out
}

// emitFolds returns the folds in the representation the generator was
// configured with. Internal folds are stored index-form and validated at
// construction, so the mask conversion cannot fail here.
func emitFolds(folds []Fold, n int, asMask bool) []Fold {
	out := copyFolds(folds)
	if !asMask {
		return out
	}
	for i := range out {
		mf, err := out[i].AsMask(n)
		if err != nil {
			continue
		}
		out[i] = mf
	}
	return out
}

// complement returns all indices in [0, n) not marked in testMask.
func complement(testMask []bool) []int {
	var train []int
	for i, isTest := range testMask {
		if !isTest {
			train = append(train, i)
		}
	}
	return train
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// foldSizes splits n into k balanced parts; the first n%k parts get one
// extra element, so sizes differ by at most one.
func foldSizes(n, k int) []int {
	sizes := make([]int, k)
	base := n / k
	rem := n % k
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// SplitOption configures fold generator construction. All generators share
// the option type; each generator reads the fields that apply to it.
type SplitOption func(*splitConfig)

// KFoldOption configures KFold construction.
type KFoldOption = SplitOption

type splitConfig struct {
	shuffle       bool
	seed          int64
	nIter         int
	testSize      float64
	trainSize     float64 // 0 means "complement of test"
	indicesAsMask bool
}

// WithShuffle enables shuffling the sample order before splitting.
func WithShuffle(shuffle bool) SplitOption {
	return func(c *splitConfig) { c.shuffle = shuffle }
}

// WithSeed sets the seed for reproducible shuffling.
func WithSeed(seed int64) SplitOption {
	return func(c *splitConfig) { c.seed = seed }
}

// WithIndicesAsMask makes the generator emit folds as boolean masks over
// the sample range instead of integer index lists. Representation only;
// fold membership is unchanged.
func WithIndicesAsMask(asMask bool) SplitOption {
	return func(c *splitConfig) { c.indicesAsMask = asMask }
}

// KFold splits samples into k consecutive balanced folds.
type KFold struct {
	n      int
	k      int
	asMask bool
	folds  []Fold
}

// NewKFold creates a k-fold splitter over n samples. Without shuffling the
// folds are contiguous blocks whose sizes differ by at most one.
func NewKFold(n, k int, options ...KFoldOption) (*KFold, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}
	if k <= 1 {
		return nil, errors.NewValidationError("n_folds", "k-fold cross validation requires at least 2 folds", k)
	}
	if k > n {
		return nil, errors.NewValidationError("n_folds", "cannot have more folds than samples", k)
	}

	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if cfg.shuffle {
		rng := newRNG(cfg.seed)
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	folds := make([]Fold, k)
	offset := 0
	for f, size := range foldSizes(n, k) {
		test := append([]int(nil), order[offset:offset+size]...)
		train := make([]int, 0, n-size)
		train = append(train, order[:offset]...)
		train = append(train, order[offset+size:]...)
		folds[f] = Fold{Train: train, Test: test}
		offset += size
	}

	return &KFold{n: n, k: k, asMask: cfg.indicesAsMask, folds: folds}, nil
}

// Split returns the folds.
func (kf *KFold) Split() []Fold { return emitFolds(kf.folds, kf.n, kf.asMask) }

// NSplits returns the number of folds.
func (kf *KFold) NSplits() int { return kf.k }

// N returns the total number of samples.
func (kf *KFold) N() int { return kf.n }

// StratifiedKFold splits samples into k folds preserving the class
// proportions of labels in every fold.
type StratifiedKFold struct {
	n      int
	k      int
	asMask bool
	folds  []Fold
}

// NewStratifiedKFold creates a stratified k-fold splitter. When the least
// populated class has fewer than k members a StratificationWarning is raised
// and the class proportions cannot be preserved for that class.
func NewStratifiedKFold(labels []int, k int, options ...SplitOption) (*StratifiedKFold, error) {
	n := len(labels)
	if n == 0 {
		return nil, errors.NewValidationError("labels", "must be non-empty", n)
	}
	if k <= 1 {
		return nil, errors.NewValidationError("n_folds", "k-fold cross validation requires at least 2 folds", k)
	}
	if k > n {
		return nil, errors.NewValidationError("n_folds", "cannot have more folds than samples", k)
	}

	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	// Per-class sample positions, classes in sorted order.
	classIdx := make(map[int][]int)
	var classes []int
	for i, label := range labels {
		if _, seen := classIdx[label]; !seen {
			classes = append(classes, label)
		}
		classIdx[label] = append(classIdx[label], i)
	}
	sort.Ints(classes)

	minCount := n
	for _, c := range classes {
		if count := len(classIdx[c]); count < minCount {
			minCount = count
		}
	}
	if minCount < k {
		errors.Warn(errors.NewStratificationWarning(minCount, k))
	}

	// Assign a test fold to every sample by splitting each class into k
	// balanced contiguous blocks, mirroring plain k-fold within the class.
	testFold := make([]int, n)
	for _, c := range classes {
		members := classIdx[c]
		offset := 0
		for f, size := range foldSizes(len(members), k) {
			for _, i := range members[offset : offset+size] {
				testFold[i] = f
			}
			offset += size
		}
	}

	folds := make([]Fold, k)
	for f := 0; f < k; f++ {
		var train, test []int
		for i := 0; i < n; i++ {
			if testFold[i] == f {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		folds[f] = Fold{Train: train, Test: test}
	}

	return &StratifiedKFold{n: n, k: k, asMask: cfg.indicesAsMask, folds: folds}, nil
}

// Split returns the folds.
func (skf *StratifiedKFold) Split() []Fold { return emitFolds(skf.folds, skf.n, skf.asMask) }

// NSplits returns the number of folds.
func (skf *StratifiedKFold) NSplits() int { return skf.k }

// N returns the total number of samples.
func (skf *StratifiedKFold) N() int { return skf.n }

// LeaveOneOut holds each sample out as the test set in turn.
type LeaveOneOut struct {
	n      int
	asMask bool
}

// NewLeaveOneOut creates leave-one-out cross validation over n samples.
func NewLeaveOneOut(n int, options ...SplitOption) (*LeaveOneOut, error) {
	if n <= 1 {
		return nil, errors.NewValidationError("n", "leave-one-out requires at least 2 samples", n)
	}
	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}
	return &LeaveOneOut{n: n, asMask: cfg.indicesAsMask}, nil
}

// Split returns the folds.
func (l *LeaveOneOut) Split() []Fold {
	folds := make([]Fold, l.n)
	for i := 0; i < l.n; i++ {
		train := make([]int, 0, l.n-1)
		for j := 0; j < l.n; j++ {
			if j != i {
				train = append(train, j)
			}
		}
		folds[i] = Fold{Train: train, Test: []int{i}}
	}
	return emitFolds(folds, l.n, l.asMask)
}

// NSplits returns the number of folds.
func (l *LeaveOneOut) NSplits() int { return l.n }

// N returns the total number of samples.
func (l *LeaveOneOut) N() int { return l.n }

// LeavePOut holds every size-p subset out as the test set, enumerated in
// lexicographic order, giving C(n, p) folds.
type LeavePOut struct {
	n, p   int
	asMask bool
	folds  []Fold
}

// NewLeavePOut creates leave-p-out cross validation over n samples.
func NewLeavePOut(n, p int, options ...SplitOption) (*LeavePOut, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}
	if p <= 0 || p >= n {
		return nil, errors.NewValidationError("p", "must satisfy 0 < p < n", p)
	}
	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	lpo := &LeavePOut{n: n, p: p, asMask: cfg.indicesAsMask}
	combo := make([]int, p)
	var build func(start, depth int)
	build = func(start, depth int) {
		if depth == p {
			test := append([]int(nil), combo...)
			mask, _ := IndicesToMask(test, n)
			lpo.folds = append(lpo.folds, Fold{Train: complement(mask), Test: test})
			return
		}
		for i := start; i < n; i++ {
			combo[depth] = i
			build(i+1, depth+1)
		}
	}
	build(0, 0)
	return lpo, nil
}

// Split returns the folds.
func (l *LeavePOut) Split() []Fold { return emitFolds(l.folds, l.n, l.asMask) }

// NSplits returns the number of folds.
func (l *LeavePOut) NSplits() int { return len(l.folds) }

// N returns the total number of samples.
func (l *LeavePOut) N() int { return l.n }

// LeaveOneLabelOut holds out all samples of one label per fold. Labels are
// snapshotted at construction, so later mutation of the caller's slice does
// not change the folds.
type LeaveOneLabelOut struct {
	n      int
	asMask bool
	folds  []Fold
}

// NewLeaveOneLabelOut creates a splitter with one fold per distinct label.
func NewLeaveOneLabelOut(labels []int, options ...SplitOption) (*LeaveOneLabelOut, error) {
	n := len(labels)
	if n == 0 {
		return nil, errors.NewValidationError("labels", "must be non-empty", n)
	}
	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	snapshot := append([]int(nil), labels...)
	distinct := distinctSorted(snapshot)
	if len(distinct) < 2 {
		return nil, errors.NewValidationError("labels", "need at least 2 distinct labels", len(distinct))
	}

	folds := make([]Fold, 0, len(distinct))
	for _, label := range distinct {
		var train, test []int
		for i, l := range snapshot {
			if l == label {
				test = append(test, i)
			} else {
				train = append(train, i)
			}
		}
		folds = append(folds, Fold{Train: train, Test: test})
	}
	return &LeaveOneLabelOut{n: n, asMask: cfg.indicesAsMask, folds: folds}, nil
}

// Split returns the folds.
func (l *LeaveOneLabelOut) Split() []Fold { return emitFolds(l.folds, l.n, l.asMask) }

// NSplits returns the number of folds.
func (l *LeaveOneLabelOut) NSplits() int { return len(l.folds) }

// N returns the total number of samples.
func (l *LeaveOneLabelOut) N() int { return l.n }

// LeavePLabelOut holds out all samples of every size-p combination of
// distinct labels, enumerated lexicographically over the sorted labels.
type LeavePLabelOut struct {
	n      int
	asMask bool
	folds  []Fold
}

// NewLeavePLabelOut creates a splitter with C(L, p) folds for L distinct labels.
func NewLeavePLabelOut(labels []int, p int, options ...SplitOption) (*LeavePLabelOut, error) {
	n := len(labels)
	if n == 0 {
		return nil, errors.NewValidationError("labels", "must be non-empty", n)
	}
	cfg := &splitConfig{}
	for _, opt := range options {
		opt(cfg)
	}

	snapshot := append([]int(nil), labels...)
	distinct := distinctSorted(snapshot)
	if p <= 0 || p >= len(distinct) {
		return nil, errors.NewValidationError("p", "must satisfy 0 < p < number of distinct labels", p)
	}

	lplo := &LeavePLabelOut{n: n, asMask: cfg.indicesAsMask}
	combo := make([]int, p)
	var build func(start, depth int)
	build = func(start, depth int) {
		if depth == p {
			held := make(map[int]bool, p)
			for _, ci := range combo {
				held[distinct[ci]] = true
			}
			var train, test []int
			for i, l := range snapshot {
				if held[l] {
					test = append(test, i)
				} else {
					train = append(train, i)
				}
			}
			lplo.folds = append(lplo.folds, Fold{Train: train, Test: test})
			return
		}
		for i := start; i < len(distinct); i++ {
			combo[depth] = i
			build(i+1, depth+1)
		}
	}
	build(0, 0)
	return lplo, nil
}

// Split returns the folds.
func (l *LeavePLabelOut) Split() []Fold { return emitFolds(l.folds, l.n, l.asMask) }

// NSplits returns the number of folds.
func (l *LeavePLabelOut) NSplits() int { return len(l.folds) }

// N returns the total number of samples.
func (l *LeavePLabelOut) N() int { return l.n }

func distinctSorted(labels []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}

// resolveSize converts a fraction-or-count size spec to a sample count.
// Fractions in (0, 1) are rounded with ceil for test sizes and floor for
// train sizes, matching the original behavior.
func resolveSize(op string, size float64, n int, isTest bool) (int, error) {
	switch {
	case size <= 0:
		return 0, errors.NewValidationError(op, "size must be positive", size)
	case size < 1:
		if isTest {
			return int(math.Ceil(size * float64(n))), nil
		}
		return int(math.Floor(size * float64(n))), nil
	default:
		count := int(size)
		if float64(count) != size {
			return 0, errors.NewValidationError(op, "size must be a fraction in (0, 1) or an integer count", size)
		}
		if count > n {
			return 0, errors.NewValidationError(op, "size cannot exceed the number of samples", size)
		}
		return count, nil
	}
}

// ShuffleSplitOption configures ShuffleSplit-family construction.
type ShuffleSplitOption = SplitOption

// WithNIter sets the number of re-shuffling iterations.
func WithNIter(nIter int) SplitOption {
	return func(c *splitConfig) { c.nIter = nIter }
}

// WithTestSize sets the test size as a fraction in (0,1) or an absolute count.
func WithTestSize(size float64) SplitOption {
	return func(c *splitConfig) { c.testSize = size }
}

// WithTrainSize sets the train size as a fraction in (0,1) or an absolute count.
func WithTrainSize(size float64) SplitOption {
	return func(c *splitConfig) { c.trainSize = size }
}

// WithRandomState sets the seed for reproducible splits.
func WithRandomState(seed int64) SplitOption {
	return func(c *splitConfig) { c.seed = seed }
}

// ShuffleSplit yields independent random train/test splits.
type ShuffleSplit struct {
	n      int
	nTest  int
	nTrain int
	asMask bool
	folds  []Fold
}

// NewShuffleSplit creates a random permutation splitter. Defaults: 10
// iterations, test size 0.1, train size the complement of the test set.
func NewShuffleSplit(n int, options ...ShuffleSplitOption) (*ShuffleSplit, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}
	cfg := &splitConfig{nIter: 10, testSize: 0.1}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.nIter <= 0 {
		return nil, errors.NewValidationError("n_iter", "must be positive", cfg.nIter)
	}

	nTest, err := resolveSize("ShuffleSplit", cfg.testSize, n, true)
	if err != nil {
		return nil, err
	}
	nTrain := n - nTest
	if cfg.trainSize != 0 {
		nTrain, err = resolveSize("ShuffleSplit", cfg.trainSize, n, false)
		if err != nil {
			return nil, err
		}
	}
	if nTest+nTrain > n {
		return nil, errors.NewValidationError("test_size+train_size", "combined sizes exceed the number of samples", nTest+nTrain)
	}
	if nTest == 0 || nTrain == 0 {
		return nil, errors.NewValidationError("test_size", "resolved train or test set is empty", cfg.testSize)
	}

	ss := &ShuffleSplit{n: n, nTest: nTest, nTrain: nTrain, asMask: cfg.indicesAsMask}
	rng := newRNG(cfg.seed)
	for it := 0; it < cfg.nIter; it++ {
		perm := rng.Perm(n)
		test := append([]int(nil), perm[:nTest]...)
		train := append([]int(nil), perm[nTest:nTest+nTrain]...)
		ss.folds = append(ss.folds, Fold{Train: train, Test: test})
	}
	return ss, nil
}

// Split returns the folds.
func (s *ShuffleSplit) Split() []Fold { return emitFolds(s.folds, s.n, s.asMask) }

// NSplits returns the number of folds.
func (s *ShuffleSplit) NSplits() int { return len(s.folds) }

// N returns the total number of samples.
func (s *ShuffleSplit) N() int { return s.n }

// TestSize returns the resolved number of test samples.
func (s *ShuffleSplit) TestSize() int { return s.nTest }

// TrainSize returns the resolved number of train samples.
func (s *ShuffleSplit) TrainSize() int { return s.nTrain }

// StratifiedShuffleSplit yields random splits preserving class proportions.
type StratifiedShuffleSplit struct {
	n      int
	nTest  int
	nTrain int
	asMask bool
	folds  []Fold
}

// NewStratifiedShuffleSplit creates a label-aware random splitter. Every
// class must have at least 2 members, and the resolved train and test sizes
// must each be able to hold one sample of every class.
func NewStratifiedShuffleSplit(labels []int, options ...ShuffleSplitOption) (*StratifiedShuffleSplit, error) {
	n := len(labels)
	if n == 0 {
		return nil, errors.NewValidationError("labels", "must be non-empty", n)
	}
	cfg := &splitConfig{nIter: 10, testSize: 0.1}
	for _, opt := range options {
		opt(cfg)
	}

	nTest, err := resolveSize("StratifiedShuffleSplit", cfg.testSize, n, true)
	if err != nil {
		return nil, err
	}
	nTrain := n - nTest
	if cfg.trainSize != 0 {
		nTrain, err = resolveSize("StratifiedShuffleSplit", cfg.trainSize, n, false)
		if err != nil {
			return nil, err
		}
	}
	if nTest+nTrain > n {
		return nil, errors.NewValidationError("test_size+train_size", "combined sizes exceed the number of samples", nTest+nTrain)
	}

	classIdx := make(map[int][]int)
	var classes []int
	for i, label := range labels {
		if _, seen := classIdx[label]; !seen {
			classes = append(classes, label)
		}
		classIdx[label] = append(classIdx[label], i)
	}
	sort.Ints(classes)

	for _, c := range classes {
		if len(classIdx[c]) < 2 {
			return nil, errors.NewValidationError("labels", "the least populated class has only 1 member; stratified shuffling needs at least 2 per class", c)
		}
	}
	if nTrain < len(classes) || nTest < len(classes) {
		return nil, errors.NewValidationError("test_size", "train and test sizes must each cover every class", cfg.testSize)
	}

	sss := &StratifiedShuffleSplit{n: n, nTest: nTest, nTrain: nTrain, asMask: cfg.indicesAsMask}
	rng := newRNG(cfg.seed)

	for it := 0; it < cfg.nIter; it++ {
		var train, test []int
		var usedMask = make([]bool, n)

		// Proportional draw per class.
		for _, c := range classes {
			members := append([]int(nil), classIdx[c]...)
			rng.Shuffle(len(members), func(i, j int) { members[i], members[j] = members[j], members[i] })

			p := float64(len(members)) / float64(n)
			nI := int(math.Round(float64(nTrain) * p))
			tI := int(math.Round(float64(nTest) * p))
			if nI > len(members) {
				nI = len(members)
			}
			if nI+tI > len(members) {
				tI = len(members) - nI
			}
			for _, i := range members[:nI] {
				train = append(train, i)
				usedMask[i] = true
			}
			for _, i := range members[nI : nI+tI] {
				test = append(test, i)
				usedMask[i] = true
			}
		}

		// Rounding may leave the sets short; top up from unused samples.
		if len(train) < nTrain || len(test) < nTest {
			var unused []int
			for i := 0; i < n; i++ {
				if !usedMask[i] {
					unused = append(unused, i)
				}
			}
			rng.Shuffle(len(unused), func(i, j int) { unused[i], unused[j] = unused[j], unused[i] })
			for _, i := range unused {
				if len(train) < nTrain {
					train = append(train, i)
				} else if len(test) < nTest {
					test = append(test, i)
				}
			}
		}
		train = train[:nTrain]
		test = test[:nTest]

		sss.folds = append(sss.folds, Fold{Train: train, Test: test})
	}
	return sss, nil
}

// Split returns the folds.
func (s *StratifiedShuffleSplit) Split() []Fold { return emitFolds(s.folds, s.n, s.asMask) }

// NSplits returns the number of folds.
func (s *StratifiedShuffleSplit) NSplits() int { return len(s.folds) }

// N returns the total number of samples.
func (s *StratifiedShuffleSplit) N() int { return s.n }

// Bootstrap yields random splits where both sets are sampled with
// replacement out of disjoint halves of a permutation, so a sample never
// appears on both sides of the same fold.
type Bootstrap struct {
	n      int
	nTest  int
	nTrain int
	asMask bool
	folds  []Fold
}

// BootstrapOption configures Bootstrap construction.
type BootstrapOption = ShuffleSplitOption

// NewBootstrap creates a bootstrap splitter. Defaults: 3 iterations, train
// size half of the samples, test size the complement.
func NewBootstrap(n int, options ...BootstrapOption) (*Bootstrap, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "must be positive", n)
	}
	cfg := &splitConfig{nIter: 3, trainSize: 0.5}
	for _, opt := range options {
		opt(cfg)
	}

	nTrain, err := resolveSize("Bootstrap", cfg.trainSize, n, true)
	if err != nil {
		return nil, err
	}
	nTest := n - nTrain
	if cfg.testSize != 0 {
		nTest, err = resolveSize("Bootstrap", cfg.testSize, n, true)
		if err != nil {
			return nil, err
		}
	}
	if nTrain+nTest > n {
		return nil, errors.NewValidationError("test_size+train_size", "combined sizes exceed the number of samples", nTrain+nTest)
	}

	b := &Bootstrap{n: n, nTest: nTest, nTrain: nTrain, asMask: cfg.indicesAsMask}
	rng := newRNG(cfg.seed)
	for it := 0; it < cfg.nIter; it++ {
		perm := rng.Perm(n)
		trainPool := perm[:nTrain]
		testPool := perm[nTrain : nTrain+nTest]

		train := make([]int, nTrain)
		for i := range train {
			train[i] = trainPool[rng.IntN(nTrain)]
		}
		test := make([]int, nTest)
		for i := range test {
			test[i] = testPool[rng.IntN(nTest)]
		}
		b.folds = append(b.folds, Fold{Train: train, Test: test})
	}
	return b, nil
}

// Split returns the folds.
func (b *Bootstrap) Split() []Fold { return emitFolds(b.folds, b.n, b.asMask) }

// NSplits returns the number of folds.
func (b *Bootstrap) NSplits() int { return len(b.folds) }

// N returns the total number of samples.
func (b *Bootstrap) N() int { return b.n }

// TestSize returns the resolved number of test samples.
func (b *Bootstrap) TestSize() int { return b.nTest }

// TrainSize returns the resolved number of train samples.
func (b *Bootstrap) TrainSize() int { return b.nTrain }

// CheckCV resolves a possibly-nil cv specification. A non-nil cv is
// returned as-is. Otherwise nFolds (default 3 when <= 0) selects
// StratifiedKFold when classifier is true and labels are available, else
// plain KFold.
func CheckCV(cv Splitter, nFolds, n int, labels []int, classifier bool) (Splitter, error) {
	if cv != nil {
		return cv, nil
	}
	if nFolds <= 0 {
		nFolds = 3
	}
	if classifier && labels != nil {
		return NewStratifiedKFold(labels, nFolds)
	}
	return NewKFold(n, nFolds)
}

// TrainTestSplit splits X and y into random train and test subsets.
// testSize accepts a fraction in (0,1) or an absolute count; 0 means the
// default 0.25.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, _ := X.Dims()
	yn, _ := y.Dims()
	if n != yn {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, yn, 0)
	}
	if testSize == 0 {
		testSize = 0.25
	}

	ss, err := NewShuffleSplit(n, WithNIter(1), WithTestSize(testSize), WithRandomState(seed))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	fold := ss.Split()[0]

	return takeRows(X, fold.Train), takeRows(X, fold.Test), takeRows(y, fold.Train), takeRows(y, fold.Test), nil
}

// takeRows materializes the given rows of m into a new dense matrix.
func takeRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for outRow, i := range rows {
		for j := 0; j < c; j++ {
			out.Set(outRow, j, m.At(i, j))
		}
	}
	return out
}
