package paynow

import "strings"

const (
	hostProduction = "api.paynow.pl"
	hostSandbox    = "api.sandbox.paynow.pl"
)

// Config carries everything the gateway needs to talk to paynow. It is an
// explicit value passed into constructors; there is no process-wide plugin
// state.
type Config struct {
	APIKey              string
	SignatureKey        string
	Sandbox             bool
	SupportedCurrencies []string
}

func (c Config) Host() string {
	if c.Sandbox {
		return hostSandbox
	}
	return hostProduction
}

func (c Config) Supports(currency string) bool {
	for _, cur := range c.SupportedCurrencies {
		if cur == currency {
			return true
		}
	}
	return false
}

// ParseCurrencies splits a comma-separated currency allow-list, the format
// the host platform stores it in.
func ParseCurrencies(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
