package patch

import (
	"leavedesk/internal/cacheview"

	"github.com/shopspring/decimal"
)

func copyLeaves(ls []cacheview.LeaveView) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, len(ls))
	copy(out, ls)
	return out
}

func appendLeave(ls []cacheview.LeaveView, lv cacheview.LeaveView) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, 0, len(ls)+1)
	out = append(out, ls...)
	out = append(out, lv)
	return out
}

// mapLeaveByID replaces the leave matching id via fn. The input slice is
// returned unchanged when the id is absent.
func mapLeaveByID(
	ls []cacheview.LeaveView,
	id string,
	fn func(cacheview.LeaveView) cacheview.LeaveView,
) ([]cacheview.LeaveView, bool) {
	matched := false
	for _, lv := range ls {
		if lv.ID == id {
			matched = true
			break
		}
	}
	if !matched {
		return ls, false
	}

	out := make([]cacheview.LeaveView, len(ls))
	for i, lv := range ls {
		if lv.ID == id {
			lv = fn(lv)
		}
		out[i] = lv
	}
	return out, true
}

func dropLeave(ls []cacheview.LeaveView, id string) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, 0, len(ls))
	for _, lv := range ls {
		if lv.ID != id {
			out = append(out, lv)
		}
	}
	return out
}

// dropPending keeps only terminal leaves.
func dropPending(ls []cacheview.LeaveView) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, 0, len(ls))
	for _, lv := range ls {
		if lv.Status != cacheview.LeavePending {
			out = append(out, lv)
		}
	}
	return out
}

// dropPendingOf keeps terminal leaves plus pending leaves of other employees.
func dropPendingOf(ls []cacheview.LeaveView, employeeID string) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, 0, len(ls))
	for _, lv := range ls {
		if lv.Status == cacheview.LeavePending && lv.EmployeeID == employeeID {
			continue
		}
		out = append(out, lv)
	}
	return out
}

// clearPendingActionBy nils action_by on pending leaves pointed at managerID.
// The input is returned untouched when no leave matches.
func clearPendingActionBy(ls []cacheview.LeaveView, managerID string) []cacheview.LeaveView {
	matched := false
	for _, lv := range ls {
		if lv.Status == cacheview.LeavePending &&
			lv.ActionByID != nil && *lv.ActionByID == managerID {
			matched = true
			break
		}
	}
	if !matched {
		return ls
	}

	out := make([]cacheview.LeaveView, len(ls))
	for i, lv := range ls {
		if lv.Status == cacheview.LeavePending &&
			lv.ActionByID != nil && *lv.ActionByID == managerID {
			lv.ActionByID = nil
		}
		out[i] = lv
	}
	return out
}

func appendMembers(existing []cacheview.MemberView, add []cacheview.MemberView) []cacheview.MemberView {
	out := make([]cacheview.MemberView, 0, len(existing)+len(add))
	out = append(out, existing...)
	for _, m := range add {
		dup := false
		for _, have := range existing {
			if have.ID == m.ID {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, m)
		}
	}
	return out
}

func dropMember(ms []cacheview.MemberView, id string) []cacheview.MemberView {
	out := make([]cacheview.MemberView, 0, len(ms))
	for _, m := range ms {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// dropMembers filters every member whose id is in ids; the input is returned
// untouched when none is present.
func dropMembers(ms []cacheview.MemberView, ids map[string]bool) []cacheview.MemberView {
	matched := false
	for _, m := range ms {
		if ids[m.ID] {
			matched = true
			break
		}
	}
	if !matched {
		return ms
	}

	out := make([]cacheview.MemberView, 0, len(ms))
	for _, m := range ms {
		if !ids[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// debitBalance subtracts amount from the entry matching policyName. Plain
// decimal subtraction; the 0.5-day unit is whatever the caller computed.
func debitBalance(bs []cacheview.BalanceView, policyName string, amount decimal.Decimal) []cacheview.BalanceView {
	out := make([]cacheview.BalanceView, len(bs))
	for i, b := range bs {
		if b.PolicyName == policyName {
			b.Balance = b.Balance.Sub(amount)
		}
		out[i] = b
	}
	return out
}
