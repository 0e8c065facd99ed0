package configs

import (
	"log"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultFreeShippingMinimum = "50.00"
	defaultFlatShippingFee     = "5.95"
	defaultSyncDebounce        = 500 * time.Millisecond
)

// PricingConfig carries the shipping policy constants. Prices are
// VAT-inclusive; there is no separate tax line.
type PricingConfig struct {
	FreeShippingMinimum decimal.Decimal
	FlatShippingFee     decimal.Decimal
}

// LoadPricingConfig reads the shipping constants from the environment,
// falling back to the defaults on missing or malformed values.
func LoadPricingConfig() PricingConfig {
	return PricingConfig{
		FreeShippingMinimum: envDecimal("FREE_SHIPPING_MINIMUM", LoadENV.FREE_SHIPPING_MINIMUM, defaultFreeShippingMinimum),
		FlatShippingFee:     envDecimal("FLAT_SHIPPING_FEE", LoadENV.FLAT_SHIPPING_FEE, defaultFlatShippingFee),
	}
}

// LoadSyncDebounce reads the remote-write debounce window.
func LoadSyncDebounce() time.Duration {
	raw := LoadENV.CART_SYNC_DEBOUNCE_MS
	if raw == "" {
		return defaultSyncDebounce
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 {
		log.Printf("Warning: invalid CART_SYNC_DEBOUNCE_MS %q, using default", raw)
		return defaultSyncDebounce
	}
	return time.Duration(ms) * time.Millisecond
}

func envDecimal(name, raw, fallback string) decimal.Decimal {
	if raw == "" {
		raw = fallback
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using default %s", name, raw, fallback)
		value, _ = decimal.NewFromString(fallback)
	}
	return value
}
