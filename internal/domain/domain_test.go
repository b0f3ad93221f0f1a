package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// ─── Kind Tests ─────────────────────────────────────────────────────────────

func TestKindValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindExpense, true},
		{KindIncome, true},
		{Kind("transfer"), false},
		{Kind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

// ─── Input Validation Tests ─────────────────────────────────────────────────

func TestTransactionInputValidate(t *testing.T) {
	valid := TransactionInput{
		Description: "Lunch at cafe",
		Amount:      decimal.NewFromInt(250),
		Kind:        KindExpense,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TransactionInput)
		wantErr error
	}{
		{"empty description", func(in *TransactionInput) { in.Description = "" }, ErrEmptyDescription},
		{"blank description", func(in *TransactionInput) { in.Description = "   " }, ErrEmptyDescription},
		{"negative amount", func(in *TransactionInput) { in.Amount = decimal.NewFromInt(-5) }, ErrNegativeAmount},
		{"unknown kind", func(in *TransactionInput) { in.Kind = "refund" }, ErrInvalidKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateZeroAmountAllowed(t *testing.T) {
	in := TransactionInput{
		Description: "Free sample",
		Amount:      decimal.Zero,
		Kind:        KindExpense,
	}
	if err := in.Validate(); err != nil {
		t.Errorf("zero amount should validate, got: %v", err)
	}
}

// ─── Codec Tests ────────────────────────────────────────────────────────────

func TestEncodeQueueEmpty(t *testing.T) {
	blob, err := EncodeQueue(nil)
	if err != nil {
		t.Fatalf("EncodeQueue(nil) error: %v", err)
	}
	if blob != EmptyQueueBlob {
		t.Errorf("EncodeQueue(nil) = %q, want %q", blob, EmptyQueueBlob)
	}
}

func TestQueueCodecRoundTrip(t *testing.T) {
	amt, _ := decimal.NewFromString("149.50")
	records := []QueuedTransaction{
		{
			ID:          "txn_1700000000000_ab12cd34",
			Description: "UPI-SWIGGY BANGALORE",
			Amount:      amt,
			Kind:        KindExpense,
			Category:    "Food & Dining",
			CapturedAt:  1700000000000,
		},
		{
			ID:          "txn_1700000000500_ef56ab78",
			Description: "Salary credit",
			Amount:      decimal.NewFromInt(50000),
			Kind:        KindIncome,
			CapturedAt:  1700000000500,
			Attempts:    2,
		},
	}

	blob, err := EncodeQueue(records)
	if err != nil {
		t.Fatalf("EncodeQueue() error: %v", err)
	}

	decoded, err := DecodeQueue(blob)
	if err != nil {
		t.Fatalf("DecodeQueue() error: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("DecodeQueue() returned %d records, want 2", len(decoded))
	}
	if decoded[0].ID != records[0].ID {
		t.Errorf("id = %q, want %q", decoded[0].ID, records[0].ID)
	}
	if !decoded[0].Amount.Equal(records[0].Amount) {
		t.Errorf("amount = %s, want %s", decoded[0].Amount, records[0].Amount)
	}
	// Trailing zeros survive the round trip (decimal keeps the exponent)
	if decoded[0].Amount.String() != "149.50" {
		t.Errorf("amount string = %q, want %q", decoded[0].Amount.String(), "149.50")
	}
	if decoded[1].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", decoded[1].Attempts)
	}

	// Byte-stable: re-encoding the decoded queue reproduces the blob exactly
	blob2, err := EncodeQueue(decoded)
	if err != nil {
		t.Fatalf("re-EncodeQueue() error: %v", err)
	}
	if blob2 != blob {
		t.Errorf("re-encoded blob differs:\n first: %s\nsecond: %s", blob, blob2)
	}
}

func TestDecodeQueueCorrupt(t *testing.T) {
	tests := []string{
		"{not json",
		`{"id":"x"}`, // object, not array
		"",
	}
	for _, blob := range tests {
		if _, err := DecodeQueue(blob); !errors.Is(err, ErrCorruptQueue) {
			t.Errorf("DecodeQueue(%q) = %v, want ErrCorruptQueue", blob, err)
		}
	}
}

func TestDecodeQueueOldSchemaMissingAttempts(t *testing.T) {
	// A blob written before the attempts field existed must still decode.
	blob := `[{"id":"txn_1_aa","description":"Bus fare","amount":"20","kind":"expense","capturedAt":1,"synced":false}]`
	records, err := DecodeQueue(blob)
	if err != nil {
		t.Fatalf("DecodeQueue() error: %v", err)
	}
	if records[0].Attempts != 0 {
		t.Errorf("attempts = %d, want 0", records[0].Attempts)
	}
	if records[0].Synced {
		t.Error("synced should be false")
	}
}
