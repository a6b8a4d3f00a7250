package zerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByKindOnly(t *testing.T) {
	a := New(InvalidImageSize, "width %d too small", 0)
	sentinel := Sentinel(InvalidImageSize)
	if !errors.Is(a, sentinel) {
		t.Fatal("errors.Is should match same Kind regardless of Message")
	}
	if errors.Is(a, Sentinel(OutOfMemory)) {
		t.Fatal("errors.Is should not match a different Kind")
	}
}

func TestKindOfUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", New(BitDepthOverflow, "depth 20 exceeds maximum"))
	kind, ok := KindOf(wrapped)
	if !ok || kind != BitDepthOverflow {
		t.Fatalf("KindOf(wrapped) = %v, %v", kind, ok)
	}
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatal("KindOf should report false for a non-tagged error")
	}
}
