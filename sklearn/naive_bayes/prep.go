package naive_bayes

import (
	"fmt"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// PrepTask is one stage of the input preparation pipeline. Stages run left to
// right; the last one must return []string.
type PrepTask func(input any) (any, error)

// StringTask adapts a string transformation into a PrepTask.
func StringTask(fn func(string) string) PrepTask {
	return func(input any) (any, error) {
		s, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", input)
		}
		return fn(s), nil
	}
}

// TokenizeTask adapts a tokenizer into a PrepTask.
func TokenizeTask(fn func(string) []string) PrepTask {
	return func(input any) (any, error) {
		s, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", input)
		}
		return fn(s), nil
	}
}

// TokensTask adapts a token list transformation into a PrepTask.
func TokensTask(fn func([]string) []string) PrepTask {
	return func(input any) (any, error) {
		tokens, ok := input.([]string)
		if !ok {
			return nil, fmt.Errorf("expected []string, got %T", input)
		}
		return fn(tokens), nil
	}
}

func validateTasks(op string, tasks []PrepTask) error {
	for i, task := range tasks {
		if task == nil {
			return errors.NewInvalidArgumentError(op, "prep task %d is nil", i)
		}
	}
	return nil
}

// runPipeline passes input through tasks. Task errors, task panics and a
// final output that is not []string are all InvalidArgument.
func runPipeline(op string, tasks []PrepTask, input any) (tokens []string, err error) {
	defer errors.RecoverAs(&err, op, errors.KindInvalidArgument)

	current := input
	for i, task := range tasks {
		out, terr := task(current)
		if terr != nil {
			return nil, errors.NewInvalidArgumentError(op, "prep task %d failed: %v", i, terr)
		}
		current = out
	}

	tokens, ok := current.([]string)
	if !ok {
		return nil, errors.NewInvalidArgumentError(op, "prep pipeline must produce []string, got %T", current)
	}
	return tokens, nil
}

func uniqueTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
