package categorize

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"UPI-SWIGGY BANGALORE", "Food & Dining"},
		{"ZOMATO ONLINE ORDER", "Food & Dining"},
		{"UPI-BIGBASKET", "Groceries"},
		{"UBER TRIP 4821", "Transport"},
		{"IRCTC E-TICKETING", "Transport"},
		{"AMAZON PAY INDIA", "Shopping"},
		{"NETFLIX.COM SUBSCRIPTION", "Entertainment"},
		{"AIRTEL PREPAID RECHARGE", "Bills & Utilities"},
		{"APOLLO PHARMACY LTD", "Health"},
		{"RENT MARCH NOBROKER", "Rent"},
		{"HOUSE RENT APRIL", "Rent"},
		{"COURSERA PLUS ANNUAL", "Education"},
		{"UNKNOWN MERCHANT XYZ", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if got := Categorize(tt.description); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	if got := Categorize("swiggy instamart"); got != "Food & Dining" {
		t.Errorf("lowercase match failed: got %q", got)
	}
	if got := Categorize("SwIgGy"); got != "Food & Dining" {
		t.Errorf("mixed-case match failed: got %q", got)
	}
}

func TestCategorizeWordBoundary(t *testing.T) {
	// Short generic keywords must match whole words only: "rent" should not
	// fire inside "CURRENT" or "PARENT", and "ola" not inside "GRANOLA".
	tests := []struct {
		description string
		notWant     string
	}{
		{"CURRENT BILL PAYMENT", "Rent"},
		{"PARENT TEACHER MEET", "Rent"},
		{"GRANOLA BAR SNACK", "Transport"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.description); got == tt.notWant {
			t.Errorf("Categorize(%q) = %q, want anything else", tt.description, got)
		}
	}
	// Punctuation still counts as a boundary.
	if got := Categorize("RENT/MAY-2025"); got != "Rent" {
		t.Errorf("Categorize(\"RENT/MAY-2025\") = %q, want Rent", got)
	}
}

func TestCategorizeFirstRuleWins(t *testing.T) {
	// "swiggy" (Food & Dining) appears before "store" (Shopping) in the table.
	if got := Categorize("SWIGGY STORE"); got != "Food & Dining" {
		t.Errorf("Categorize(\"SWIGGY STORE\") = %q, want Food & Dining", got)
	}
}

func TestCategoriesEnumeration(t *testing.T) {
	cats := Categories()
	if len(cats) == 0 {
		t.Fatal("Categories() returned empty")
	}
	if cats[len(cats)-1] != DefaultCategory {
		t.Errorf("last category = %q, want %q", cats[len(cats)-1], DefaultCategory)
	}
	if cats[0] != "Food & Dining" {
		t.Errorf("first category = %q, want Food & Dining", cats[0])
	}
}
