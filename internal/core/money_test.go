package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"1000", 100000, true},
		{"1000.00", 100000, true},
		{"50.25", 5025, true},
		{"50,25", 5025, true},
		{"12.345", 1234, true}, // rounds down
		{"12.346", 1235, true}, // rounds up
		{"0.01", 1, true},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-5", 0, false},
		{"+5", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}
	for i, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("case %d (%q) expected ok, got %v", i, tc.in, err)
			}
			if got != tc.cents {
				t.Fatalf("case %d (%q) expected %d cents, got %d", i, tc.in, tc.cents, got)
			}
		} else if err != ErrInvalidAmount {
			t.Fatalf("case %d (%q) expected ErrInvalidAmount, got %v", i, tc.in, err)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{100000, "1000.00"},
		{5025, "50.25"},
		{1, "0.01"},
		{0, "0.00"},
		{-4975, "-49.75"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}
