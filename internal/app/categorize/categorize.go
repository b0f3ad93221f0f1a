// Package categorize assigns a spending category to a transaction from its
// free-text description. Classification is best-effort: a fixed keyword table
// scanned in a fixed order, first hit wins, no hit falls through to Other.
//
// This is a pure function by design — no state, no I/O, no learning. The
// keyword table is tuned for bank/UPI narration strings ("UPI-SWIGGY
// BANGALORE", "POS AMAZON PAY"), which are upper-cased merchant soup.
package categorize

import "strings"

// DefaultCategory is returned when no keyword matches.
const DefaultCategory = "Other"

// rule binds a category to its match terms. Order matters twice over: rules
// are evaluated top to bottom, and within a rule terms are ordered from most
// to least specific. Distinctive brand names match as case-insensitive
// substrings; short generic words match only on word boundaries, so "rent"
// does not fire inside "CURRENT" or "PARENT".
type rule struct {
	category string
	keywords []string // substring match
	words    []string // whole-word match against the tokenized description
}

var rules = []rule{
	{"Food & Dining", []string{"swiggy", "zomato", "dominos", "mcdonald", "kfc", "restaurant", "eatery", "dining"}, []string{"cafe"}},
	{"Groceries", []string{"bigbasket", "blinkit", "zepto", "grofers", "dmart", "grocery", "supermarket", "kirana"}, nil},
	{"Transport", []string{"uber", "rapido", "irctc", "redbus", "fuel", "petrol", "parking"}, []string{"ola", "metro"}},
	{"Shopping", []string{"amazon", "flipkart", "myntra", "ajio", "nykaa"}, []string{"mall", "store"}},
	{"Entertainment", []string{"netflix", "spotify", "hotstar", "prime video", "bookmyshow", "cinema"}, []string{"pvr"}},
	{"Bills & Utilities", []string{"electricity", "broadband", "airtel", "jio", "vodafone", "recharge", "dth", "water bill", "gas bill"}, nil},
	{"Health", []string{"pharmacy", "apollo", "medplus", "hospital", "clinic", "diagnostic", "1mg", "pharmeasy"}, nil},
	{"Rent", []string{"nobroker", "landlord"}, []string{"rent"}},
	{"Education", []string{"udemy", "coursera", "tuition", "school fee", "college"}, nil},
}

// Categorize returns the category for a transaction description.
// Unrecognized descriptions map to DefaultCategory.
func Categorize(description string) string {
	desc := strings.ToLower(description)
	tokens := " " + tokenize(desc) + " "
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
		for _, w := range r.words {
			if strings.Contains(tokens, " "+w+" ") {
				return r.category
			}
		}
	}
	return DefaultCategory
}

// tokenize replaces every non-alphanumeric run with a single space, turning
// "UPI-SWIGGY/BLR" into "upi swiggy blr" for word-boundary matching.
func tokenize(desc string) string {
	var b strings.Builder
	b.Grow(len(desc))
	space := false
	for _, r := range desc {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Categories returns the fixed category enumeration, in evaluation order,
// with DefaultCategory last.
func Categories() []string {
	out := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, r.category)
	}
	return append(out, DefaultCategory)
}
