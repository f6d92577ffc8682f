package naive_bayes

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/textnb/core/parallel"
	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// logLikelihood は log2 P(token | label) を返す
//
// smoothing が0のとき、語彙外のトークンとそのラベルで出現回数0のトークンは0を返す。
func (c *TextClassifier) logLikelihood(token, label string) float64 {
	s := c.settings.smoothing
	v := float64(len(c.vocabOrder))
	n := float64(c.count[label][token])
	w := float64(c.words[label])

	if s > 0 {
		return math.Log2((n + s) / (w + v*s))
	}
	if _, ok := c.vocab[token]; !ok || n == 0 {
		return 0
	}
	return math.Log2((n + 1) / (w + v))
}

// inverseLogLikelihood は log2 P(token | label 以外) を返す
//
// smoothing が0のときは1で平滑化する。
func (c *TextClassifier) inverseLogLikelihood(token, label string) float64 {
	s := c.settings.smoothing
	if s == 0 {
		s = 1
	}
	var n, w float64
	for _, other := range c.labels {
		if other == label {
			continue
		}
		n += float64(c.count[other][token])
		w += float64(c.words[other])
	}
	v := float64(len(c.vocabOrder))
	return math.Log2((n + s) / (w + v*s))
}

// odds は label の対数オッズ（尤度 − 逆尤度）を返す
//
// 語彙外のトークンは無視する。語彙内のトークンが1つもなければ0。
// 事前確率は尤度の和が0でないときだけ加える。
func (c *TextClassifier) odds(tokens []string, label string) float64 {
	var lh, ilh float64
	matched := 0
	for _, token := range tokens {
		if _, ok := c.vocab[token]; !ok {
			continue
		}
		matched++
		l := c.logLikelihood(token, label)
		if l == 0 {
			continue
		}
		lh += l
		ilh += c.inverseLogLikelihood(token, label)
	}
	if matched == 0 {
		return 0
	}

	if lh != 0 {
		total := float64(c.totalSamples)
		in := float64(c.samples[label])
		lh += math.Log2(in / total)
		ilh += math.Log2((total - in) / total)
	}
	return lh - ilh
}

// computeOdds は呼び出し側がロックを保持している前提
func (c *TextClassifier) computeOdds(op string, input any) ([]LabelOdds, error) {
	if err := c.state.RequireConsolidated(op); err != nil {
		return nil, err
	}
	tokens, err := runPipeline(op, c.prep, input)
	if err != nil {
		return nil, err
	}

	all := make([]LabelOdds, len(c.labels))
	for i, label := range c.labels {
		o := c.odds(tokens, label)
		if err := errors.CheckScalar("odds", label, o); err != nil {
			return nil, err
		}
		all[i] = LabelOdds{Label: label, Odds: o}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Odds > all[j].Odds
	})

	if all[0].Odds == 0 {
		return []LabelOdds{{Label: UnknownLabel, Odds: 0}}, nil
	}
	return all, nil
}

// ComputeOdds returns every label with its odds, highest first. Ties keep
// label encounter order. When the top odds is exactly 0 the result is the
// single pair (UnknownLabel, 0).
func (c *TextClassifier) ComputeOdds(input any) ([]LabelOdds, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.computeOdds("ComputeOdds", input)
}

// Predict returns the label with the highest odds, or UnknownLabel.
func (c *TextClassifier) Predict(input any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.predict("Predict", input)
}

func (c *TextClassifier) predict(op string, input any) (string, error) {
	all, err := c.computeOdds(op, input)
	if err != nil {
		return "", err
	}
	return all[0].Label, nil
}

// PredictBatch predicts every input. Large batches are spread across CPU
// cores, so prep tasks must tolerate concurrent calls. The first failing
// input (by position) determines the returned error.
func (c *TextClassifier) PredictBatch(inputs []any) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.state.RequireConsolidated("PredictBatch"); err != nil {
		return nil, err
	}

	out := make([]string, len(inputs))
	err := parallel.ForEach(len(inputs), c.parallelThreshold, func(i int) error {
		label, err := c.predict("PredictBatch", inputs[i])
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		out[i] = label
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("batch predicted", log.OperationKey, log.OperationPredict, log.BatchSizeKey, len(inputs))
	return out, nil
}
