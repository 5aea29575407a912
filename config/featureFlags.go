package config

import (
	"os"
	"strings"
)

// StockNettingEnabled controls whether the shopping list nets ingredient
// demand against on-hand stock before package quantization.
//
// Enabled by default. Set via env:
// - STOCK_NETTING=false (or 0/no/n/off) to quantize the gross demand instead.
func StockNettingEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STOCK_NETTING")))
	switch v {
	case "0", "false", "no", "n", "off":
		return false
	}
	return true
}
