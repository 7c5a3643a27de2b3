// Package patch rewrites cached collections in response to a described
// mutation, without any I/O. Every function returns fresh slices and leaves
// its inputs untouched, matches targets by id only, and treats an absent id
// as a no-op so that patching a stale snapshot is always safe.
//
// The same functions back both the server-side cache sync and any
// client-side optimistic updater, so the duplication rules for the nested
// employee views live in exactly one place.
package patch

import (
	"leavedesk/internal/cacheview"

	"github.com/shopspring/decimal"
)

// EmployeeCreate appends a newly hired employee to the collection. When the
// hire already reports to a manager, the manager's assign_members gains the
// matching entry so both sides of the relationship land together.
func EmployeeCreate(emps []cacheview.EmployeeView, v cacheview.EmployeeView) []cacheview.EmployeeView {
	out := make([]cacheview.EmployeeView, 0, len(emps)+1)
	for _, e := range emps {
		if v.ReportManagerID != nil && e.ID == *v.ReportManagerID {
			e.AssignMembers = appendMembers(e.AssignMembers, []cacheview.MemberView{{
				ID:       v.ID,
				FullName: v.FullName,
				Email:    v.Email,
				Role:     v.Role,
			}})
		}
		out = append(out, e)
	}
	return append(out, v)
}

// RoleChange replaces the employee's role. Leaving REPORT_MANAGER detaches
// the manager relationship everywhere it is duplicated: the manager's
// assign_members and pending leaves_actioned are cleared, every member
// reporting to them loses its manager reference, and pending leaves pointed
// at them lose action_by. Terminal (APPROVED/REJECTED) actioned history is
// kept.
func RoleChange(
	emps []cacheview.EmployeeView,
	leaves []cacheview.LeaveView,
	employeeID, newRole string,
) ([]cacheview.EmployeeView, []cacheview.LeaveView) {
	detach := false
	for _, e := range emps {
		if e.ID == employeeID {
			detach = e.Role == cacheview.RoleReportManager && newRole != cacheview.RoleReportManager
		}
	}

	outEmps := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		if e.ID == employeeID {
			e.Role = newRole
			if detach {
				e.AssignMembers = []cacheview.MemberView{}
				e.LeavesActioned = dropPending(e.LeavesActioned)
			}
		} else if detach && e.ReportManagerID != nil && *e.ReportManagerID == employeeID {
			e.ReportManagerID = nil
		}
		if detach {
			// Same predicate as the database cascade: a pending leave loses
			// its action_by wherever it points at the demoted manager, even
			// when the applicant has since moved to another manager.
			e.LeavesApplied = clearPendingActionBy(e.LeavesApplied, employeeID)
		}
		outEmps[i] = e
	}

	if !detach {
		return outEmps, copyLeaves(leaves)
	}
	return outEmps, clearPendingActionBy(leaves, employeeID)
}

// StatusChange flips an employee's employment status.
func StatusChange(emps []cacheview.EmployeeView, employeeID, newStatus string) []cacheview.EmployeeView {
	out := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		if e.ID == employeeID {
			e.Status = newStatus
		}
		out[i] = e
	}
	return out
}

// LeaveCreate inserts a new leave into the standalone list, the applicant's
// leaves_applied, and (when an actioner is assigned) that manager's
// leaves_actioned.
func LeaveCreate(
	emps []cacheview.EmployeeView,
	leaves []cacheview.LeaveView,
	lv cacheview.LeaveView,
) ([]cacheview.EmployeeView, []cacheview.LeaveView) {
	outLeaves := make([]cacheview.LeaveView, 0, len(leaves)+1)
	outLeaves = append(outLeaves, leaves...)
	outLeaves = append(outLeaves, lv)

	outEmps := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		if e.ID == lv.EmployeeID {
			e.LeavesApplied = appendLeave(e.LeavesApplied, lv)
		}
		if lv.ActionByID != nil && e.ID == *lv.ActionByID {
			e.LeavesActioned = appendLeave(e.LeavesActioned, lv)
		}
		outEmps[i] = e
	}
	return outEmps, outLeaves
}

// LeaveStatusPatch describes a decided leave.
type LeaveStatusPatch struct {
	LeaveID         string
	EmployeeID      string
	ActionByID      *string
	NewStatus       string
	PolicyName      string
	DeductedBalance decimal.Decimal
	RejectReason    *string
}

// LeaveStatusChange updates a leave's status in every cached copy. On
// approval the applicant's balance for the leave's policy is debited by
// DeductedBalance; rejection attaches the reason and never touches balances.
func LeaveStatusChange(
	emps []cacheview.EmployeeView,
	leaves []cacheview.LeaveView,
	p LeaveStatusPatch,
) ([]cacheview.EmployeeView, []cacheview.LeaveView) {
	upd := func(lv cacheview.LeaveView) cacheview.LeaveView {
		lv.Status = p.NewStatus
		if p.NewStatus == cacheview.LeaveRejected {
			lv.RejectReason = p.RejectReason
		}
		return lv
	}

	outLeaves, _ := mapLeaveByID(leaves, p.LeaveID, upd)

	outEmps := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		var applied bool
		e.LeavesApplied, applied = mapLeaveByID(e.LeavesApplied, p.LeaveID, upd)
		e.LeavesActioned, _ = mapLeaveByID(e.LeavesActioned, p.LeaveID, upd)
		// The debit is gated on the leave actually being in this snapshot, so
		// replaying the patch against a stale copy stays a no-op.
		if applied && e.ID == p.EmployeeID && p.NewStatus == cacheview.LeaveApproved {
			e.LeaveBalances = debitBalance(e.LeaveBalances, p.PolicyName, p.DeductedBalance)
		}
		outEmps[i] = e
	}
	return outEmps, outLeaves
}

// LeaveDelete removes a leave from every cached copy. Only PENDING leaves
// are deletable upstream; the patch itself just filters by id.
func LeaveDelete(
	emps []cacheview.EmployeeView,
	leaves []cacheview.LeaveView,
	leaveID string,
) ([]cacheview.EmployeeView, []cacheview.LeaveView) {
	outLeaves := dropLeave(leaves, leaveID)

	outEmps := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		e.LeavesApplied = dropLeave(e.LeavesApplied, leaveID)
		e.LeavesActioned = dropLeave(e.LeavesActioned, leaveID)
		outEmps[i] = e
	}
	return outEmps, outLeaves
}

// MemberAssignment appends members to the manager's assign_members and sets
// the back-reference on each assigned member. Ids absent from the collection
// are skipped. A member moving from another manager is removed from that
// manager's assign_members; report_manager_id and assign_members membership
// always move together.
func MemberAssignment(emps []cacheview.EmployeeView, managerID string, memberIDs []string) []cacheview.EmployeeView {
	assigned := make(map[string]bool, len(memberIDs))
	members := make([]cacheview.MemberView, 0, len(memberIDs))
	for _, id := range memberIDs {
		for _, e := range emps {
			if e.ID == id {
				assigned[id] = true
				members = append(members, cacheview.MemberView{
					ID:       e.ID,
					FullName: e.FullName,
					Email:    e.Email,
					Role:     e.Role,
				})
			}
		}
	}

	out := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		if e.ID == managerID {
			e.AssignMembers = appendMembers(e.AssignMembers, members)
		} else {
			e.AssignMembers = dropMembers(e.AssignMembers, assigned)
			if assigned[e.ID] {
				id := managerID
				e.ReportManagerID = &id
			}
		}
		out[i] = e
	}
	return out
}

// MemberRemoval is the inverse of MemberAssignment. Pending leaves the member
// had pointed at that manager lose their action_by reference everywhere.
func MemberRemoval(
	emps []cacheview.EmployeeView,
	leaves []cacheview.LeaveView,
	managerID, memberID string,
) ([]cacheview.EmployeeView, []cacheview.LeaveView) {
	outEmps := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		switch e.ID {
		case managerID:
			e.AssignMembers = dropMember(e.AssignMembers, memberID)
			e.LeavesActioned = dropPendingOf(e.LeavesActioned, memberID)
		case memberID:
			if e.ReportManagerID != nil && *e.ReportManagerID == managerID {
				e.ReportManagerID = nil
			}
			e.LeavesApplied = clearPendingActionBy(e.LeavesApplied, managerID)
		}
		outEmps[i] = e
	}

	outLeaves := make([]cacheview.LeaveView, len(leaves))
	for i, lv := range leaves {
		if lv.EmployeeID == memberID &&
			lv.Status == cacheview.LeavePending &&
			lv.ActionByID != nil && *lv.ActionByID == managerID {
			lv.ActionByID = nil
		}
		outLeaves[i] = lv
	}
	return outEmps, outLeaves
}

// HolidayCreate appends a holiday.
func HolidayCreate(hs []cacheview.HolidayView, v cacheview.HolidayView) []cacheview.HolidayView {
	out := make([]cacheview.HolidayView, 0, len(hs)+1)
	out = append(out, hs...)
	out = append(out, v)
	return out
}

// HolidayEdit replaces the holiday with the same id.
func HolidayEdit(hs []cacheview.HolidayView, v cacheview.HolidayView) []cacheview.HolidayView {
	out := make([]cacheview.HolidayView, len(hs))
	for i, h := range hs {
		if h.ID == v.ID {
			h = v
		}
		out[i] = h
	}
	return out
}

// HolidayDelete filters the holiday with the given id.
func HolidayDelete(hs []cacheview.HolidayView, id string) []cacheview.HolidayView {
	out := make([]cacheview.HolidayView, 0, len(hs))
	for _, h := range hs {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}
