package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseFabricRequirements(t *testing.T) {
	req := ParseFabricRequirements(`{"fabrics":{"cotton":2,"lining":0.5},"is_printed":true}`)
	if req == nil {
		t.Fatal("expected a parsed requirement")
	}
	if !req.IsPrinted {
		t.Error("expected is_printed to be true")
	}
	if len(req.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(req.Lines))
	}
	if req.Lines[0].FabricName != "cotton" || !req.Lines[0].Meters.Equal(decimal.NewFromInt(2)) {
		t.Errorf("unexpected first line: %+v", req.Lines[0])
	}
	if req.Lines[1].FabricName != "lining" || !req.Lines[1].Meters.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("unexpected second line: %+v", req.Lines[1])
	}
}

func TestParseFabricRequirementsPreservesKeyOrder(t *testing.T) {
	req := ParseFabricRequirements(`{"fabrics":{"zeta":1,"alpha":2,"mid":3}}`)
	if req == nil {
		t.Fatal("expected a parsed requirement")
	}
	got := []string{}
	for _, line := range req.Lines {
		got = append(got, line.FabricName)
	}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line order %v, want %v", got, want)
		}
	}
}

func TestParseFabricRequirementsFailOpen(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"not json", "not json at all"},
		{"truncated", `{"fabrics":{"cotton":2`},
		{"array root", `["cotton"]`},
		{"missing fabrics key", `{"is_printed":true}`},
		{"fabrics not an object", `{"fabrics":[1,2]}`},
		{"non-numeric meters", `{"fabrics":{"cotton":"two"}}`},
		{"trailing garbage", `{"fabrics":{"cotton":2}} extra`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if req := ParseFabricRequirements(tc.raw); req != nil {
				t.Errorf("ParseFabricRequirements(%q) = %+v, want nil", tc.raw, req)
			}
		})
	}
}

func TestParseFabricRequirementsIgnoresUnknownKeys(t *testing.T) {
	req := ParseFabricRequirements(`{"fabrics":{"silk":1.25},"notes":"hand wash","version":2}`)
	if req == nil {
		t.Fatal("expected a parsed requirement")
	}
	if req.IsPrinted {
		t.Error("is_printed should default to false")
	}
	meters, ok := req.Meters("SILK")
	if !ok || !meters.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("Meters(SILK) = %s, %v", meters, ok)
	}
}

func TestMetersOnNilRequirement(t *testing.T) {
	var req *FabricRequirements
	meters, ok := req.Meters("cotton")
	if ok || !meters.IsZero() {
		t.Errorf("nil requirement should report zero meters, got %s, %v", meters, ok)
	}
}
