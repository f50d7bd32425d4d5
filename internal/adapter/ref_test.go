package adapter

import (
	"math/big"
	"testing"
)

func TestNewPoolReferenceValidation(t *testing.T) {
	if _, err := NewPoolReference(0, 1, 6); err != nil {
		t.Fatalf("valid reference rejected: %v", err)
	}
	if _, err := NewPoolReference(1, 0, 18); err != nil {
		t.Fatalf("valid reference rejected: %v", err)
	}

	bad := []struct {
		name            string
		stableIndex     int
		counterIndex    int
		counterDecimals uint8
	}{
		{"stable index too high", 2, 0, 6},
		{"stable index negative", -1, 0, 6},
		{"counter index too high", 0, 2, 6},
		{"same index", 0, 0, 6},
		{"decimals out of range", 0, 1, 37},
	}
	for _, tc := range bad {
		if _, err := NewPoolReference(tc.stableIndex, tc.counterIndex, tc.counterDecimals); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestToStableUnits(t *testing.T) {
	ref, err := NewPoolReference(0, 1, 6)
	if err != nil {
		t.Fatalf("new reference: %v", err)
	}

	// 1.5 counter units at 6 decimals scale to 1.5 at 18 decimals.
	got := ref.ToStableUnits(big.NewInt(1_500_000))
	want, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Fatalf("got %s, want %s", got, want)
	}

	if got := ref.ToStableUnits(nil); got.Sign() != 0 {
		t.Fatalf("nil amount scaled to %s, want 0", got)
	}
}

func TestScaleUnitsDown(t *testing.T) {
	// Scaling down divides with flooring.
	got := scaleUnits(big.NewInt(1_999_999), 6, 0)
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("got %s, want 1", got)
	}
	same := scaleUnits(big.NewInt(42), 6, 6)
	if same.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("got %s, want 42", same)
	}
}
