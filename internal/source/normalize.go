package source

import (
	"strings"
	"unicode"

	"github.com/JonMunkholm/evdash/internal/core"
)

// fieldAliases maps folded header spellings to canonical field names.
// Keys are lower-cased with everything but letters and digits removed.
var fieldAliases = map[string]string{
	"vin":                 core.FieldVIN,
	"vinonetoten":         core.FieldVIN,
	"vin110":              core.FieldVIN,
	"make":                core.FieldMake,
	"model":               core.FieldModel,
	"modelyear":           core.FieldModelYear,
	"year":                core.FieldModelYear,
	"electricvehicletype": core.FieldVehicleType,
	"evtype":              core.FieldVehicleType,
	"type":                core.FieldVehicleType,
	"electricrange":       core.FieldRange,
	"range":               core.FieldRange,
	"county":              core.FieldCounty,
}

// foldKey lower-cases key and drops punctuation and spaces, so
// "VIN (1-10)" and "vin_1_10" fold to the same key.
func foldKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CanonicalField returns the canonical field for a header or key, or the
// trimmed key itself when it is not a known alias.
func CanonicalField(key string) string {
	if field, ok := fieldAliases[foldKey(key)]; ok {
		return field
	}
	return strings.TrimSpace(key)
}

// Normalize renames aliased keys to canonical fields. When a record holds
// both a canonical key and an alias of it, the canonical key wins.
func Normalize(raw map[string]any) core.Record {
	rec := make(core.Record, len(raw))
	for k, v := range raw {
		if CanonicalField(k) == k {
			rec[k] = v
		}
	}
	for k, v := range raw {
		field := CanonicalField(k)
		if field == k {
			continue
		}
		if _, exists := rec[field]; !exists {
			rec[field] = v
		}
	}
	return rec
}
