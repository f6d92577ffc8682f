package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifierErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		sentinel error
		wantMsg  string
	}{
		{
			name:     "invalid argument",
			err:      NewInvalidArgumentError("ImportJSON", "invalid JSON encountered"),
			kind:     KindInvalidArgument,
			sentinel: ErrInvalidArgument,
			wantMsg:  "textnb: ImportJSON: invalid JSON encountered",
		},
		{
			name:     "invalid state",
			err:      NewInvalidStateError("Predict", "learnings are not consolidated"),
			kind:     KindInvalidState,
			sentinel: ErrInvalidState,
			wantMsg:  "textnb: Predict: learnings are not consolidated",
		},
		{
			name:     "insufficient data",
			err:      NewInsufficientDataError("Consolidate", "need %d labels, found %d", 2, 1),
			kind:     KindInsufficientData,
			sentinel: ErrInsufficientData,
			wantMsg:  "textnb: Consolidate: need 2 labels, found 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.True(t, Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.kind, KindOf(tt.err))

			var ce *ClassifierError
			require.True(t, As(tt.err, &ce))
			assert.Equal(t, tt.kind, ce.Kind)

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", tt.err)
			assert.Contains(t, formatted, "errors_test.go")
		})
	}
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	base := NewInvalidStateError("Metrics", "metrics can not be computed before evaluation")
	wrapped := Wrapf(base, "fold %d", 3)

	assert.Equal(t, KindInvalidState, KindOf(wrapped))
	assert.True(t, strings.HasPrefix(wrapped.Error(), "fold 3: "))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestValidationErrorIsInvalidArgument(t *testing.T) {
	err := NewValidationError("smoothingFactor", "must be a finite number", "NaN")

	assert.True(t, Is(err, ErrInvalidArgument))
	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Equal(t, "textnb: validation failed for parameter 'smoothingFactor': must be a finite number (got: NaN)", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "InvalidArgument", KindInvalidArgument.String())
	assert.Equal(t, "InvalidState", KindInvalidState.String())
	assert.Equal(t, "InsufficientData", KindInsufficientData.String())
	assert.Equal(t, "Unknown", Kind(42).String())
}

func TestWarnRouting(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	SetZerologWarnFunc(nil)
	t.Cleanup(func() {
		SetWarningHandler(func(error) {})
	})

	Warn(NewUndefinedMetricWarning("precision", "prepay", "no predicted samples", 0))
	require.Len(t, got, 1)
	assert.Equal(t, `'precision' is ill-defined for label "prepay" and being set to 0 due to no predicted samples.`, got[0].Error())

	var zl []error
	SetZerologWarnFunc(func(w error) { zl = append(zl, w) })
	t.Cleanup(func() { SetZerologWarnFunc(nil) })
	Warn(NewUndefinedMetricWarning("recall", "", "no true samples", 0))
	assert.Len(t, zl, 1)
	assert.Len(t, got, 1, "zerolog func takes precedence over the handler")
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "in ReadTSV")

	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.Contains(t, wrapped.Error(), "in ReadTSV")
}

func TestNumericalHelpers(t *testing.T) {
	assert.Equal(t, 0.0, SafeDivide(0, 0))
	assert.Equal(t, 0.0, SafeDivide(3, 0))
	assert.Equal(t, 0.5, SafeDivide(1, 2))

	assert.Equal(t, 1.0, ClipValue(3, 0, 1))
	assert.Equal(t, 0.0, ClipValue(-0.2, 0, 1))
	assert.Equal(t, 0.3, ClipValue(0.3, 0, 1))

	assert.NoError(t, CheckScalar("odds", "prepay", -12.5))
	err := CheckScalar("odds", "prepay", math.Inf(1))
	var nie *NumericalInstabilityError
	require.True(t, As(err, &nie))
	assert.Equal(t, "prepay", nie.Label)
}
