package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := Newf(KindDegenerateCrop, "crop is %dx%d", 0, 49)
	want := "[degenerate_crop] crop is 0x49"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("model blew up")
	err := Wrap(cause, KindEngineFailure, "recognize failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should satisfy errors.Is")
	}
	if !IsKind(err, KindEngineFailure) {
		t.Error("IsKind should match KindEngineFailure")
	}
	if IsKind(err, KindNoFrame) {
		t.Error("IsKind should not match a different kind")
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := New(KindMarketUnavailable, "502 from api")
	outer := fmt.Errorf("fetch items: %w", inner)

	if KindOf(outer) != KindMarketUnavailable {
		t.Errorf("KindOf = %v, want KindMarketUnavailable", KindOf(outer))
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{New(KindMarketUnavailable, "timeout"), true},
		{New(KindMarketDecode, "bad json"), false},
		{New(KindEngineFailure, "ocr"), false},
		{errors.New("plain"), false},
	}
	for _, c := range cases {
		if got := IsRetryable(c.err); got != c.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestWithMetadata(t *testing.T) {
	err := New(KindUnsupportedPixelFormat, "cannot convert").WithMetadata("format", "NV12")
	if err.Metadata["format"] != "NV12" {
		t.Errorf("metadata not attached: %v", err.Metadata)
	}
}
