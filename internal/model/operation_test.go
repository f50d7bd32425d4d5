package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOperationRecordJSONRoundTrip(t *testing.T) {
	original := OperationRecord{
		Kind:         OpRemoveLiquidity,
		Caller:       "0x1111111111111111111111111111111111111111",
		SharesIn:     "5000000000000000000",
		Proceeds:     "10000000000000000000",
		Profit:       "250000000000000000",
		Burned:       "4750000000000000000",
		TotalMinted:  "95250000000000000000",
		TotalRevenue: "250000000000000000",
		ExecutedAt:   "2024-01-01T00:00:00Z",
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded OperationRecord
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestOperationRecordAmountsAreStrings(t *testing.T) {
	record := OperationRecord{
		Kind:         OpAddLiquidity,
		Caller:       "0x2222222222222222222222222222222222222222",
		CounterIn:    "100000",
		StableMinted: "100000000000000000",
		TotalMinted:  "100000000000000000",
		TotalRevenue: "0",
		ExecutedAt:   "2024-01-01T00:00:00Z",
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["counter_in"].(string); !ok {
		t.Fatalf("counter_in should be string")
	}
	if _, ok := decoded["stable_minted"].(string); !ok {
		t.Fatalf("stable_minted should be string")
	}
	if _, ok := decoded["total_minted"].(string); !ok {
		t.Fatalf("total_minted should be string")
	}
}
