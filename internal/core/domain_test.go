package core

import "testing"

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in  string
		ok  bool
		out TransactionType
	}{
		{"income", true, Income},
		{"outcome", true, Outcome},
		{"Income", false, ""},
		{"transfer", false, ""},
		{"", false, ""},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Title:    "Rent",
		Value:    Money{Cents: 120000},
		Type:     Outcome,
		Category: Category{Title: "Housing"},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Title: "", Value: Money{Cents: 1}, Type: Income, Category: Category{Title: "c"}},
		{Title: "a", Value: Money{Cents: 0}, Type: Income, Category: Category{Title: "c"}},
		{Title: "a", Value: Money{Cents: 1}, Type: "refund", Category: Category{Title: "c"}},
		{Title: "a", Value: Money{Cents: 1}, Type: Income, Category: Category{Title: ""}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
