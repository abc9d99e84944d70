package approval

import (
	"fmt"
	"strings"

	"go-payables/internal/features/organization"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ClassifyAmount maps a monetary amount to a tier. Thresholds are ceilings:
// amount <= low is the low tier, amount <= medium is the medium tier,
// anything above is high. Medium and high may be configured equal, which
// collapses the medium band; that is legal configuration, not a bug.
func ClassifyAmount(amount float64, t organization.AmountThresholds) Tier {
	switch {
	case amount <= t.Low:
		return TierLow
	case amount <= t.Medium:
		return TierMedium
	default:
		return TierHigh
	}
}

// RequiredForTier returns the configured approver count for a tier
func RequiredForTier(r organization.RequiredApprovers, tier Tier) int {
	switch tier {
	case TierLow:
		return r.Low
	case TierMedium:
		return r.Medium
	default:
		return r.High
	}
}

// ShouldAutoApprove checks the organization's auto-approval conditions
// against a payable: feature enabled, amount under the limit, vendor and
// category whitelisted (an empty whitelist is no constraint), and the
// optional condition script agreeing. A script failure never auto-approves.
func ShouldAutoApprove(cfg organization.AutoApprove, p PayableInfo) (bool, error) {
	if !cfg.Enabled {
		return false, nil
	}
	if p.Amount > cfg.AmountLimit {
		return false, nil
	}
	if !whitelisted(cfg.VendorWhitelist, p.Vendor) {
		return false, nil
	}
	if !whitelisted(cfg.CategoryWhitelist, p.Category) {
		return false, nil
	}

	if cfg.Script != "" {
		ok, err := runConditionScript(cfg.Script, p)
		if err != nil {
			// Fail closed: a broken script must not bypass approval
			return false, err
		}
		return ok, nil
	}

	return true, nil
}

func whitelisted(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

// runConditionScript evaluates a tengo script with the payable's fields
// bound as globals. The script must assign a boolean to "approve".
func runConditionScript(src string, p PayableInfo) (bool, error) {
	script := tengo.NewScript([]byte(src))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times"))

	_ = script.Add("amount", p.Amount)
	_ = script.Add("currency", p.Currency)
	_ = script.Add("vendor", p.Vendor)
	_ = script.Add("category", p.Category)
	_ = script.Add("description", p.Description)
	_ = script.Add("approve", false)

	compiled, err := script.Run()
	if err != nil {
		return false, fmt.Errorf("auto-approve script: %w", err)
	}

	result := compiled.Get("approve")
	if result == nil {
		return false, fmt.Errorf("auto-approve script did not set approve")
	}
	return result.Bool(), nil
}
