// Package model_selection provides k-fold splitters and cross-validation for
// text classifiers.
package model_selection

import (
	"math/rand/v2"
)

// DefaultSplits is used when NSplits is below 2.
const DefaultSplits = 5

// Fold は1つの分割（学習用と検証用のインデックス）
type Fold struct {
	TrainIndices []int `json:"trainIndices"`
	TestIndices  []int `json:"testIndices"`
}

// Splitter は例のラベル列から分割を作る
type Splitter interface {
	Split(labels []string) []Fold
	GetNSplits() int
}

// KFold implements k-fold cross-validation splitter
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewKFold creates a new k-fold splitter
func NewKFold(nSplits int, shuffle bool, seed uint64) *KFold {
	if nSplits < 2 {
		nSplits = DefaultSplits
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// GetNSplits returns the number of splits
func (kf *KFold) GetNSplits() int {
	return kf.NSplits
}

// Split assigns contiguous blocks of the (optionally shuffled) indices to
// test sets. The first len%k folds get one extra example. Folds with no test
// example are omitted, so fewer examples than splits yields fewer folds.
func (kf *KFold) Split(labels []string) []Fold {
	n := len(labels)
	indices := identity(n)
	if kf.Shuffle {
		shuffle(indices, kf.Seed)
	}

	k := kf.NSplits
	foldSize := n / k
	remainder := n % k

	folds := make([]Fold, 0, k)
	current := 0
	for i := 0; i < k; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		if testSize == 0 {
			continue
		}
		test := make([]int, testSize)
		copy(test, indices[current:current+testSize])
		folds = append(folds, Fold{
			TrainIndices: complement(n, test),
			TestIndices:  test,
		})
		current += testSize
	}
	return folds
}

// StratifiedKFold keeps label proportions roughly equal across folds.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// NewStratifiedKFold creates a new stratified k-fold splitter
func NewStratifiedKFold(nSplits int, shuffle bool, seed uint64) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = DefaultSplits
	}
	return &StratifiedKFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// GetNSplits returns the number of splits
func (skf *StratifiedKFold) GetNSplits() int {
	return skf.NSplits
}

// Split distributes the examples of every label across the folds. Labels are
// visited in first-encounter order so the result is deterministic for a seed.
func (skf *StratifiedKFold) Split(labels []string) []Fold {
	n := len(labels)

	// ラベルごとにインデックスをまとめる
	var order []string
	byLabel := make(map[string][]int)
	for i, label := range labels {
		if _, ok := byLabel[label]; !ok {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], i)
	}

	if skf.Shuffle {
		r := rand.New(rand.NewPCG(skf.Seed, skf.Seed))
		for _, label := range order {
			indices := byLabel[label]
			r.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
	}

	k := skf.NSplits
	tests := make([][]int, k)
	for _, label := range order {
		indices := byLabel[label]
		nClass := len(indices)
		foldSize := nClass / k
		remainder := nClass % k

		current := 0
		for i := 0; i < k; i++ {
			testSize := foldSize
			if i < remainder {
				testSize++
			}
			tests[i] = append(tests[i], indices[current:current+testSize]...)
			current += testSize
		}
	}

	folds := make([]Fold, 0, k)
	for _, test := range tests {
		if len(test) == 0 {
			continue
		}
		folds = append(folds, Fold{
			TrainIndices: complement(n, test),
			TestIndices:  test,
		})
	}
	return folds
}

func identity(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func shuffle(indices []int, seed uint64) {
	r := rand.New(rand.NewPCG(seed, seed))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})
}

// complement returns the indices of [0, n) not in test, in ascending order.
func complement(n int, test []int) []int {
	inTest := make(map[int]bool, len(test))
	for _, idx := range test {
		inTest[idx] = true
	}
	train := make([]int, 0, n-len(test))
	for j := 0; j < n; j++ {
		if !inTest[j] {
			train = append(train, j)
		}
	}
	return train
}
