package imgerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_MatchesSentinelOfSameKind(t *testing.T) {
	err := New(DimensionMismatch, "remap", "map is %dx%d", 3, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Error("error should match its kind's sentinel")
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Error("error should not match another kind's sentinel")
	}
	if got, want := err.Error(), "remap: map is 3x4"; got != want {
		t.Errorf("Error(): got %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", New(ComputationError, "lens", "singular"), ComputationError},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(OutOfRange, "raster", "index")), OutOfRange},
		{"foreign", errors.New("boom"), Unknown},
		{"nil", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	if Wrap(InvalidArgument, "op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	cause := errors.New("disk on fire")
	err := Wrap(InvalidArgument, "load", cause)
	if !errors.Is(err, cause) {
		t.Error("wrapped error should still match its cause")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("wrapped error should match its kind")
	}
	if !strings.HasPrefix(err.Error(), "load: ") {
		t.Errorf("Error(): got %q", err.Error())
	}

	// An Unknown wrapper does not hide the kind beneath it.
	inner := New(UnsupportedMode, "parse", "bad mode")
	if got := KindOf(Wrap(Unknown, "outer", inner)); got != UnsupportedMode {
		t.Errorf("KindOf outer wrap: got %v, want UnsupportedMode", got)
	}
	if !errors.Is(Wrap(Unknown, "outer", inner), ErrUnsupportedMode) {
		t.Error("outer wrap should still match the inner kind")
	}
}

func TestKindString(t *testing.T) {
	if got := ComputationError.String(); got != "ComputationError" {
		t.Errorf("got %q", got)
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("got %q", got)
	}
}
