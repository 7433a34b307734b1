package models

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// RequirementLine is one fabric consumed by a product, in the order the
// requirement payload listed it.
type RequirementLine struct {
	FabricName string          `json:"fabric_name"`
	Meters     decimal.Decimal `json:"meters"`
}

// FabricRequirements is the parsed form of a product's fabric_requirements
// metafield. A nil *FabricRequirements means "no requirement": the product
// carries no fabric cost and no stock is consumed for it.
type FabricRequirements struct {
	Lines     []RequirementLine `json:"lines"`
	IsPrinted bool              `json:"is_printed"`
}

// Meters returns the required length for a fabric name, case-insensitively.
func (r *FabricRequirements) Meters(fabricName string) (decimal.Decimal, bool) {
	if r == nil {
		return decimal.Zero, false
	}
	for _, line := range r.Lines {
		if strings.EqualFold(line.FabricName, fabricName) {
			return line.Meters, true
		}
	}
	return decimal.Zero, false
}

// ParseFabricRequirements decodes the metafield payload:
//
//	{"fabrics": {"cotton": 2, "lining": 0.5}, "is_printed": true}
//
// Empty or malformed payloads return nil rather than an error. An
// unparseable requirement means the product is treated as fabric-cost-free;
// it never blocks order processing or product listing.
//
// The fabrics object is walked with a token decoder so the line order
// matches the payload's key order; cost breakdowns preserve it.
func ParseFabricRequirements(raw string) *FabricRequirements {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	req := &FabricRequirements{}
	sawFabrics := false

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}

		switch key {
		case "fabrics":
			lines, ok := decodeRequirementLines(dec)
			if !ok {
				return nil
			}
			req.Lines = lines
			sawFabrics = true
		case "is_printed":
			var printed bool
			if err := dec.Decode(&printed); err != nil {
				return nil
			}
			req.IsPrinted = printed
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil
	}
	// Nothing may follow the root object.
	if _, err := dec.Token(); err != io.EOF {
		return nil
	}
	if !sawFabrics {
		return nil
	}
	return req
}

func decodeRequirementLines(dec *json.Decoder) ([]RequirementLine, bool) {
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, false
	}

	lines := make([]RequirementLine, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, false
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return nil, false
		}
		meters, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, false
		}

		lines = append(lines, RequirementLine{FabricName: name, Meters: meters})
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	return lines, true
}
