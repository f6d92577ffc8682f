// Package dataset reads labelled examples from TSV and JSON Lines files.
//
// TSV lines are "label<TAB>text". JSON Lines records are
// {"label": "...", "input": "..."} where input may also be an array of
// pre-tokenized strings. Blank lines and TSV lines starting with '#' are
// skipped.
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/textnb/core/model"
	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// Format is a dataset file format.
type Format string

const (
	FormatTSV   Format = "tsv"
	FormatJSONL Format = "jsonl"
)

// maxLine bounds a single record.
const maxLine = 1 << 20

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return FormatTSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	default:
		return "", errors.NewValidationError("data", "unsupported dataset extension, expected .tsv, .txt, .jsonl or .ndjson", path)
	}
}

// ReadFile reads every example of the file at path.
func ReadFile(path string) ([]model.Example, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open dataset %s", path)
	}
	defer f.Close()

	examples, err := Read(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset %s", path)
	}
	return examples, nil
}

// Read reads every example from r.
func Read(r io.Reader, format Format) ([]model.Example, error) {
	switch format {
	case FormatTSV:
		return ReadTSV(r)
	case FormatJSONL:
		return ReadJSONL(r)
	default:
		return nil, errors.NewValidationError("format", "unsupported dataset format", format)
	}
}

// ReadTSV reads "label<TAB>text" lines.
func ReadTSV(r io.Reader) ([]model.Example, error) {
	var out []model.Example
	err := scan(r, func(line int, text string) error {
		ex, skip, err := parseTSV(line, text)
		if err != nil || skip {
			return err
		}
		out = append(out, ex)
		return nil
	})
	return out, err
}

// ReadJSONL reads one JSON object per line.
func ReadJSONL(r io.Reader) ([]model.Example, error) {
	var out []model.Example
	err := scan(r, func(line int, text string) error {
		ex, skip, err := parseJSONL(line, text)
		if err != nil || skip {
			return err
		}
		out = append(out, ex)
		return nil
	})
	return out, err
}

// Stream parses r in a goroutine and sends the examples on the first channel.
// Both channels are closed when reading ends; at most one error is sent.
// Canceling ctx stops the reader.
func Stream(ctx context.Context, r io.Reader, format Format) (<-chan model.Example, <-chan error) {
	examples := make(chan model.Example)
	errc := make(chan error, 1)

	parse := parseTSV
	if format == FormatJSONL {
		parse = parseJSONL
	} else if format != FormatTSV {
		close(examples)
		errc <- errors.NewValidationError("format", "unsupported dataset format", format)
		close(errc)
		return examples, errc
	}

	go func() {
		defer close(errc)
		defer close(examples)
		err := scan(r, func(line int, text string) error {
			ex, skip, err := parse(line, text)
			if err != nil || skip {
				return err
			}
			select {
			case examples <- ex:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			errc <- err
		}
	}()
	return examples, errc
}

func scan(r io.Reader, fn func(line int, text string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for sc.Scan() {
		line++
		if err := fn(line, sc.Text()); err != nil {
			return err
		}
	}
	return errors.Wrap(sc.Err(), "scan dataset")
}

func parseTSV(line int, text string) (model.Example, bool, error) {
	text = strings.TrimRight(text, "\r")
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
		return model.Example{}, true, nil
	}
	label, input, ok := strings.Cut(text, "\t")
	label = strings.TrimSpace(label)
	if !ok {
		return model.Example{}, false, errors.NewInvalidArgumentError("ReadTSV", "line %d: missing tab between label and text", line)
	}
	if label == "" {
		return model.Example{}, false, errors.NewInvalidArgumentError("ReadTSV", "line %d: empty label", line)
	}
	return model.Example{Input: input, Label: label}, false, nil
}

type record struct {
	Label string          `json:"label"`
	Input json.RawMessage `json:"input"`
}

func parseJSONL(line int, text string) (model.Example, bool, error) {
	if strings.TrimSpace(text) == "" {
		return model.Example{}, true, nil
	}
	var rec record
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return model.Example{}, false, errors.NewInvalidArgumentError("ReadJSONL", "line %d: %v", line, err)
	}
	if rec.Label == "" {
		return model.Example{}, false, errors.NewInvalidArgumentError("ReadJSONL", "line %d: empty label", line)
	}

	if len(rec.Input) == 0 || string(rec.Input) == "null" {
		return model.Example{}, false, errors.NewInvalidArgumentError("ReadJSONL", "line %d: missing input", line)
	}
	var s string
	if err := json.Unmarshal(rec.Input, &s); err == nil {
		return model.Example{Input: s, Label: rec.Label}, false, nil
	}
	var tokens []string
	if err := json.Unmarshal(rec.Input, &tokens); err == nil && tokens != nil {
		return model.Example{Input: tokens, Label: rec.Label}, false, nil
	}
	return model.Example{}, false, errors.NewInvalidArgumentError("ReadJSONL", "line %d: input must be a string or an array of strings", line)
}
