package naive_bayes

import (
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/YuminosukeSato/textnb/pkg/errors"
	"github.com/YuminosukeSato/textnb/pkg/log"
)

// exportedConfig is the first element of the exported document.
type exportedConfig struct {
	ConsiderOnlyPresence bool    `json:"considerOnlyPresence"`
	SmoothingFactor      float64 `json:"smoothingFactor"`
}

// ExportJSON serializes the learnings as the five element JSON array
// [config, samples, count, words, vocabulary]. Label keys follow encounter
// order and tokens follow vocabulary order. Evaluation state is not exported.
func (c *TextClassifier) ExportJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exportJSON()
}

// exportJSON は呼び出し側がロックを保持している前提
func (c *TextClassifier) exportJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	cfg, err := json.Marshal(exportedConfig{
		ConsiderOnlyPresence: c.settings.presence,
		SmoothingFactor:      c.settings.smoothing,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	buf.Write(cfg)
	buf.WriteByte(',')

	if err := writeOrderedInts(&buf, c.labelOrder, c.samples); err != nil {
		return nil, err
	}
	buf.WriteByte(',')

	buf.WriteByte('{')
	for i, label := range c.labelOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, label); err != nil {
			return nil, err
		}
		if err := writeOrderedInts(&buf, c.vocabOrder, c.count[label]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	buf.WriteByte(',')

	if err := writeOrderedInts(&buf, c.labelOrder, c.words); err != nil {
		return nil, err
	}
	buf.WriteByte(',')

	vocab := c.vocabOrder
	if vocab == nil {
		vocab = []string{}
	}
	v, err := json.Marshal(vocab)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode vocabulary")
	}
	buf.Write(v)
	buf.WriteByte(']')

	c.logger.Debug("learnings exported",
		log.OperationKey, log.OperationExport,
		log.LabelsKey, len(c.labelOrder),
		log.VocabularyKey, len(c.vocabOrder),
	)
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return errors.Wrap(err, "failed to encode key")
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// writeOrderedInts writes the entries of values present in keys, in key order.
func writeOrderedInts(buf *bytes.Buffer, keys []string, values map[string]int) error {
	buf.WriteByte('{')
	first := true
	for _, k := range keys {
		n, ok := values[k]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeKey(buf, k); err != nil {
			return err
		}
		v, err := json.Marshal(n)
		if err != nil {
			return errors.Wrap(err, "failed to encode count")
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}

// importedConfig accepts a missing smoothing factor.
type importedConfig struct {
	ConsiderOnlyPresence bool     `json:"considerOnlyPresence"`
	SmoothingFactor      *float64 `json:"smoothingFactor"`
}

// imported is a fully validated document, ready to replace the learnings.
type imported struct {
	settings   settings
	labelOrder []string
	samples    map[string]int
	words      map[string]int
	count      map[string]map[string]int
	vocabOrder []string
	vocab      map[string]struct{}
}

// ImportJSON replaces the learnings with a document produced by ExportJSON.
// The document is fully validated first; on failure nothing changes. On
// success the classifier is reset, restored and marked as learned, so
// Consolidate must be called before predicting.
func (c *TextClassifier) ImportJSON(doc []byte) error {
	in, err := decodeDocument(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.settings = in.settings
	c.labelOrder = in.labelOrder
	c.samples = in.samples
	c.words = in.words
	c.count = in.count
	c.vocabOrder = in.vocabOrder
	c.vocab = in.vocab
	c.state.SetLearned()

	c.logger.Info("learnings imported",
		log.OperationKey, log.OperationImport,
		log.LabelsKey, len(in.labelOrder),
		log.VocabularyKey, len(in.vocabOrder),
	)
	return nil
}

func invalidDocument(format string, args ...interface{}) error {
	return errors.NewInvalidArgumentError("ImportJSON", "invalid JSON encountered: "+format, args...)
}

func decodeDocument(doc []byte) (*imported, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return nil, errors.NewInvalidArgumentError("ImportJSON", "empty JSON document, import failed")
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(doc, &parts); err != nil {
		return nil, invalidDocument("document must be an array: %v", err)
	}
	if len(parts) != 5 {
		return nil, invalidDocument("expected 5 elements, found %d", len(parts))
	}
	for i := 0; i < 4; i++ {
		if firstByte(parts[i]) != '{' {
			return nil, invalidDocument("element %d must be an object", i)
		}
	}
	if firstByte(parts[4]) != '[' {
		return nil, invalidDocument("element 4 must be an array")
	}

	var cfg importedConfig
	if err := json.Unmarshal(parts[0], &cfg); err != nil {
		return nil, invalidDocument("config: %v", err)
	}
	s, err := Config{ConsiderOnlyPresence: cfg.ConsiderOnlyPresence, SmoothingFactor: cfg.SmoothingFactor}.normalize()
	if err != nil {
		return nil, err
	}

	labelOrder, samples, err := decodeOrderedInts(parts[1])
	if err != nil {
		return nil, invalidDocument("samples: %v", err)
	}
	for _, label := range labelOrder {
		if label == "" || label == UnknownLabel {
			return nil, invalidDocument("label %q is not allowed", label)
		}
		if samples[label] == 0 {
			return nil, invalidDocument("label %q has no samples", label)
		}
	}

	countOrder, rawCounts, err := decodeOrderedObjects(parts[2])
	if err != nil {
		return nil, invalidDocument("count: %v", err)
	}

	_, words, err := decodeOrderedInts(parts[3])
	if err != nil {
		return nil, invalidDocument("words: %v", err)
	}

	var vocabList []string
	if err := json.Unmarshal(parts[4], &vocabList); err != nil {
		return nil, invalidDocument("vocabulary must be an array of strings")
	}
	vocab := make(map[string]struct{}, len(vocabList))
	vocabOrder := make([]string, 0, len(vocabList))
	for _, token := range vocabList {
		if _, dup := vocab[token]; dup {
			continue
		}
		vocab[token] = struct{}{}
		vocabOrder = append(vocabOrder, token)
	}

	count := make(map[string]map[string]int, len(countOrder))
	for _, label := range countOrder {
		if _, ok := samples[label]; !ok {
			return nil, invalidDocument("count has label %q missing from samples", label)
		}
		_, tokens, err := decodeOrderedInts(rawCounts[label])
		if err != nil {
			return nil, invalidDocument("count of %q: %v", label, err)
		}
		for token := range tokens {
			if _, ok := vocab[token]; !ok {
				return nil, invalidDocument("token %q of label %q is not in the vocabulary", token, label)
			}
		}
		count[label] = tokens
	}
	for label := range words {
		if _, ok := samples[label]; !ok {
			return nil, invalidDocument("words has label %q missing from samples", label)
		}
	}
	for _, label := range labelOrder {
		if _, ok := count[label]; !ok {
			count[label] = make(map[string]int)
		}
		if _, ok := words[label]; !ok {
			words[label] = 0
		}
	}

	return &imported{
		settings:   s,
		labelOrder: labelOrder,
		samples:    samples,
		words:      words,
		count:      count,
		vocabOrder: vocabOrder,
		vocab:      vocab,
	}, nil
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// decodeOrderedInts decodes an object of non-negative integers, keeping key order.
func decodeOrderedInts(raw json.RawMessage) ([]string, map[string]int, error) {
	keys, values, err := decodeOrdered(raw)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		if c := firstByte(values[k]); c != '-' && (c < '0' || c > '9') {
			return nil, nil, errors.Newf("value of %q is not a number", k)
		}
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(values[k]))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return nil, nil, errors.Newf("value of %q is not a number", k)
		}
		n, err := num.Int64()
		if err != nil || n < 0 || n > math.MaxInt32 {
			return nil, nil, errors.Newf("value of %q must be a non-negative integer, got %s", k, num)
		}
		out[k] = int(n)
	}
	return keys, out, nil
}

// decodeOrderedObjects decodes an object whose values are objects, keeping key order.
func decodeOrderedObjects(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	keys, values, err := decodeOrdered(raw)
	if err != nil {
		return nil, nil, err
	}
	for _, k := range keys {
		if firstByte(values[k]) != '{' {
			return nil, nil, errors.Newf("value of %q must be an object", k)
		}
	}
	return keys, values, nil
}

// decodeOrdered reads a JSON object token by token so that key order survives.
// Duplicate keys are rejected.
func decodeOrdered(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errors.New("expected an object")
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, errors.New("expected a string key")
		}
		if _, dup := values[key]; dup {
			return nil, nil, errors.Newf("duplicate key %q", key)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = value
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return keys, values, nil
}
