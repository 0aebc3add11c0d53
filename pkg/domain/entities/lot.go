package entities

import (
	"strings"
)

// LotKey represents a canonical lot identifier shared by all three sources
type LotKey string

// IsEmpty reports whether the key carries no usable identifier
func (k LotKey) IsEmpty() bool {
	return k == ""
}

// String returns the key as a plain string
func (k LotKey) String() string {
	return string(k)
}

// NormalizeLot canonicalizes a raw lot identifier so that LOT-1, lot_1 and
// "Lot 1" compare equal. Missing or unstringifiable input yields the empty key.
func NormalizeLot(raw any) LotKey {
	s, ok := stringify(raw)
	if !ok {
		return ""
	}

	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	return LotKey(s)
}
