package model

import (
	"context"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// LearnStream feeds examples from a channel into learner until the channel is
// closed or ctx is canceled. It returns the number of examples learned.
//
// The first Learn error stops the stream; the error names the position of
// the offending example.
func LearnStream(ctx context.Context, learner Learner, examples <-chan Example) (int, error) {
	learned := 0
	for {
		select {
		case <-ctx.Done():
			return learned, errors.Wrap(ctx.Err(), "learn stream canceled")
		case ex, ok := <-examples:
			if !ok {
				return learned, nil
			}
			if err := learner.Learn(ex.Input, ex.Label); err != nil {
				return learned, errors.Wrapf(err, "example %d", learned)
			}
			learned++
		}
	}
}
