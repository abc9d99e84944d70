package approval

import (
	"testing"

	"go-payables/internal/features/organization"
)

func TestClassifyAmount(t *testing.T) {
	thresholds := organization.AmountThresholds{Low: 100, Medium: 1000}

	tests := []struct {
		name   string
		amount float64
		want   Tier
	}{
		{name: "Well below low", amount: 10, want: TierLow},
		{name: "Exactly low threshold", amount: 100, want: TierLow},
		{name: "Just above low", amount: 100.01, want: TierMedium},
		{name: "Exactly medium threshold", amount: 1000, want: TierMedium},
		{name: "Just above medium", amount: 1000.01, want: TierHigh},
		{name: "Large amount", amount: 1e9, want: TierHigh},
		{name: "Zero", amount: 0, want: TierLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAmount(tt.amount, thresholds); got != tt.want {
				t.Errorf("ClassifyAmount(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

// Equal medium and high thresholds are legal and collapse the medium band
func TestClassifyAmountCollapsedMediumBand(t *testing.T) {
	thresholds := organization.AmountThresholds{Low: 500, Medium: 500}

	if got := ClassifyAmount(500, thresholds); got != TierLow {
		t.Errorf("at threshold: got %v, want %v", got, TierLow)
	}
	if got := ClassifyAmount(500.01, thresholds); got != TierHigh {
		t.Errorf("above threshold: got %v, want %v", got, TierHigh)
	}
}

func TestClassifyAmountMonotonic(t *testing.T) {
	thresholds := organization.AmountThresholds{Low: 100, Medium: 1000}
	rank := map[Tier]int{TierLow: 0, TierMedium: 1, TierHigh: 2}

	prev := TierLow
	for _, amount := range []float64{0, 50, 100, 101, 500, 1000, 1001, 5000} {
		got := ClassifyAmount(amount, thresholds)
		if rank[got] < rank[prev] {
			t.Fatalf("tier decreased from %v to %v at amount %v", prev, got, amount)
		}
		prev = got
	}
}

func TestRequiredForTier(t *testing.T) {
	r := organization.RequiredApprovers{Low: 1, Medium: 2, High: 3}

	if got := RequiredForTier(r, TierLow); got != 1 {
		t.Errorf("low: got %d, want 1", got)
	}
	if got := RequiredForTier(r, TierMedium); got != 2 {
		t.Errorf("medium: got %d, want 2", got)
	}
	if got := RequiredForTier(r, TierHigh); got != 3 {
		t.Errorf("high: got %d, want 3", got)
	}
}

func TestShouldAutoApprove(t *testing.T) {
	base := PayableInfo{
		Vendor:   "Acme Supplies",
		Category: "office",
		Amount:   50,
	}

	tests := []struct {
		name    string
		cfg     organization.AutoApprove
		payable PayableInfo
		want    bool
		wantErr bool
	}{
		{
			name:    "Disabled",
			cfg:     organization.AutoApprove{Enabled: false, AmountLimit: 100},
			payable: base,
			want:    false,
		},
		{
			name:    "Enabled and under limit",
			cfg:     organization.AutoApprove{Enabled: true, AmountLimit: 100},
			payable: base,
			want:    true,
		},
		{
			name:    "Over limit",
			cfg:     organization.AutoApprove{Enabled: true, AmountLimit: 40},
			payable: base,
			want:    false,
		},
		{
			name: "Vendor whitelisted case-insensitive",
			cfg: organization.AutoApprove{
				Enabled:         true,
				AmountLimit:     100,
				VendorWhitelist: []string{"ACME SUPPLIES"},
			},
			payable: base,
			want:    true,
		},
		{
			name: "Vendor not whitelisted",
			cfg: organization.AutoApprove{
				Enabled:         true,
				AmountLimit:     100,
				VendorWhitelist: []string{"Other Vendor"},
			},
			payable: base,
			want:    false,
		},
		{
			name: "Category not whitelisted",
			cfg: organization.AutoApprove{
				Enabled:           true,
				AmountLimit:       100,
				CategoryWhitelist: []string{"travel"},
			},
			payable: base,
			want:    false,
		},
		{
			name: "Empty whitelists are no constraint",
			cfg: organization.AutoApprove{
				Enabled:           true,
				AmountLimit:       100,
				VendorWhitelist:   []string{},
				CategoryWhitelist: []string{},
			},
			payable: base,
			want:    true,
		},
		{
			name: "Script approves",
			cfg: organization.AutoApprove{
				Enabled:     true,
				AmountLimit: 100,
				Script:      `approve = amount < 60.0`,
			},
			payable: base,
			want:    true,
		},
		{
			name: "Script declines",
			cfg: organization.AutoApprove{
				Enabled:     true,
				AmountLimit: 100,
				Script:      `approve = amount < 10.0`,
			},
			payable: base,
			want:    false,
		},
		{
			name: "Script error fails closed",
			cfg: organization.AutoApprove{
				Enabled:     true,
				AmountLimit: 100,
				Script:      `approve = undefined_variable + 1`,
			},
			payable: base,
			want:    false,
			wantErr: true,
		},
		{
			name: "Script never setting approve declines",
			cfg: organization.AutoApprove{
				Enabled:     true,
				AmountLimit: 100,
				Script:      `x := 1`,
			},
			payable: base,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShouldAutoApprove(tt.cfg, tt.payable)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
