package payment

import (
	"fmt"
	"strings"
)

// UPIConfig configures payment-intent QR artifacts
type UPIConfig struct {
	Scheme    string // URI scheme of the intent, "upi" by default
	Currency  string // ISO 4217 code
	Size      int    // image edge in pixels
	KeyPrefix string // storage directory for rendered images
}

// DefaultUPIConfig returns the standard UPI settings
func DefaultUPIConfig() UPIConfig {
	return UPIConfig{
		Scheme:    "upi",
		Currency:  "INR",
		Size:      400,
		KeyPrefix: "qrs",
	}
}

// Validate checks the configuration
func (c *UPIConfig) Validate() error {
	if strings.TrimSpace(c.Scheme) == "" {
		return fmt.Errorf("payment scheme is required")
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter ISO code, got %q", c.Currency)
	}
	if c.Size <= 0 {
		return fmt.Errorf("qr size must be positive, got %d", c.Size)
	}
	return nil
}
