package approval

import (
	"go-payables/internal/features/organization"
)

// ResolvedApprover is one concrete identity selected for a workflow slot
type ResolvedApprover struct {
	UserID     string
	Email      string
	Role       string
	IsFallback bool
}

// ResolveApprovers selects `required` approver identities from the
// organization's membership for a payable issued by issuerID.
//
// Dedicated approvers are active members whose role can approve (owner,
// admin, approver), with the issuer excluded while enough others exist.
// A shortfall is filled from the configured fallback list in order, those
// slots marked as fallback. When exclusion of the issuer would leave fewer
// candidates than required, the issuer is re-admitted: an unapprovable
// payable is worse than a weakened self-approval control. When the combined
// pool is still smaller than required, selection wraps around the pool so
// the workflow always carries exactly `required` steps.
//
// Returns ErrConfiguration when no eligible approver, dedicated or
// fallback, exists at all.
func ResolveApprovers(org *organization.Organization, issuerID string, required int) ([]ResolvedApprover, error) {
	if required <= 0 {
		return nil, nil
	}

	var dedicated []ResolvedApprover
	var issuer *ResolvedApprover

	for _, m := range org.Members {
		if m.Status != organization.MemberActive || !m.Role.CanApprove() {
			continue
		}
		candidate := ResolvedApprover{
			UserID: m.UserID.Hex(),
			Email:  m.Email,
			Role:   string(m.Role),
		}
		if m.UserID.Hex() == issuerID {
			issuer = &candidate
			continue
		}
		dedicated = append(dedicated, candidate)
	}

	fallback := resolveFallbacks(org, issuerID, dedicated)

	// Deadlock avoidance: let the issuer approve their own submission when
	// excluding them leaves too few approvers organization-wide
	if issuer != nil && len(dedicated)+len(fallback) < required {
		dedicated = append(dedicated, *issuer)
	}

	pool := append(append([]ResolvedApprover{}, dedicated...), fallback...)
	if len(pool) == 0 {
		return nil, ErrConfiguration
	}

	selected := make([]ResolvedApprover, 0, required)
	for i := 0; i < required; i++ {
		selected = append(selected, pool[i%len(pool)])
	}
	return selected, nil
}

// resolveFallbacks maps the configured fallback user ids onto active
// members, keeping the configured order and skipping anyone already counted
// as a dedicated approver
func resolveFallbacks(org *organization.Organization, issuerID string, dedicated []ResolvedApprover) []ResolvedApprover {
	taken := make(map[string]bool, len(dedicated))
	for _, d := range dedicated {
		taken[d.UserID] = true
	}

	var out []ResolvedApprover
	for _, id := range org.ApprovalSettings.FallbackApprovers {
		if id == issuerID || taken[id] {
			continue
		}
		m := org.FindMember(id)
		if m == nil || m.Status != organization.MemberActive {
			continue
		}
		out = append(out, ResolvedApprover{
			UserID:     id,
			Email:      m.Email,
			Role:       string(m.Role),
			IsFallback: true,
		})
		taken[id] = true
	}
	return out
}
