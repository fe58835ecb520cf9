package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRailByName(t *testing.T) {
	r, ok := RailByName("touchngo")
	if !ok {
		t.Fatal("expected a case-insensitive match")
	}
	if r.ID != "tng" || r.Type != RailTypeWallet {
		t.Errorf("unexpected rail %+v", r)
	}

	if _, ok := RailByName("SomePayNobodyKnows"); ok {
		t.Error("unknown names must not match")
	}
}

func TestUniversalRails(t *testing.T) {
	if !IsUniversalRail("DuitNow") {
		t.Error("DuitNow is the universal transfer rail")
	}
	for _, name := range []string{"TouchNGo", "GrabPay", "Maybank", "Visa", "Atome"} {
		if IsUniversalRail(name) {
			t.Errorf("%s must not be universal", name)
		}
	}
	if IsUniversalRail("Unknown") {
		t.Error("unknown rails must not be universal")
	}
}

func TestCatalogIsACopy(t *testing.T) {
	c := Catalog()
	if len(c) == 0 {
		t.Fatal("catalog must not be empty")
	}
	c[0].Name = "Mutated"
	if _, ok := RailByName("Mutated"); ok {
		t.Error("mutating the returned slice must not affect the catalog")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		currency string
		amount   int64
		want     string
	}{
		{"MYR", 30, "RM 30.00"},
		{"myr", 12, "RM 12.00"},
		{"", 5, "RM 5.00"},
		{"SGD", 8, "SGD 8.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.currency, decimal.NewFromInt(tc.amount)); got != tc.want {
			t.Errorf("FormatAmount(%q, %d) = %q, want %q", tc.currency, tc.amount, got, tc.want)
		}
	}
}

func TestFundingSourceUsable(t *testing.T) {
	src := FundingSource{IsLinked: true, IsAvailable: true}
	if !src.Usable() {
		t.Error("linked and available should be usable")
	}
	src.IsAvailable = false
	if src.Usable() {
		t.Error("unavailable sources are not usable")
	}
	src = FundingSource{IsLinked: false, IsAvailable: true}
	if src.Usable() {
		t.Error("unlinked sources are not usable")
	}
}
