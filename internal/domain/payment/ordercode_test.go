package payment

import "testing"

func TestExtractOrderCode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"prefixed", "TT CLINIC1023 chuyen tien", "CLINIC1023", true},
		{"prefixed no space", "TTCLINIC55", "CLINIC55", true},
		{"bare", "thanh toan CLINIC1001", "CLINIC1001", true},
		{"lowercase", "tt clinic77 abc", "CLINIC77", true},
		{"mixed case", "Tt ClInIc900", "CLINIC900", true},
		{"surrounded by bank noise", "MBVCB.123456.CLINIC2002.CT tu 0123 toi 0456", "CLINIC2002", true},
		{"digits glued to more text", "TT CLINIC1001abc", "CLINIC1001", true},
		{"no match", "no matching pattern", "", false},
		{"clinic without digits", "TT CLINIC pending", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractOrderCode(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractOrderCode(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestContainsOrderCode(t *testing.T) {
	if !ContainsOrderCode("MBVCB tt clinic2002 xyz", "CLINIC2002") {
		t.Fatal("expected case-insensitive substring match")
	}
	if ContainsOrderCode("CLINIC2002", "") {
		t.Fatal("empty order code must never match")
	}
	if ContainsOrderCode("CLINIC200", "CLINIC2002") {
		t.Fatal("partial code must not match")
	}
}
