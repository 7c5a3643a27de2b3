package employee

import (
	"leavedesk/internal/cacheview"
	"leavedesk/internal/leave"
)

// ToView maps an expanded employee row into the denormalized cache shape.
func ToView(e Employee) cacheview.EmployeeView {
	v := cacheview.EmployeeView{
		ID:             e.ID.String(),
		FullName:       e.FullName,
		Email:          e.Email,
		Role:           e.Role,
		Status:         e.Status,
		LeaveBalances:  make([]cacheview.BalanceView, 0, len(e.LeaveBalances)),
		LeavesApplied:  leave.ToViewList(e.LeavesApplied),
		LeavesActioned: leave.ToViewList(e.LeavesActioned),
		AssignMembers:  make([]cacheview.MemberView, 0, len(e.AssignMembers)),
	}
	if e.ReportManagerID != nil {
		id := e.ReportManagerID.String()
		v.ReportManagerID = &id
	}
	for _, b := range e.LeaveBalances {
		v.LeaveBalances = append(v.LeaveBalances, cacheview.BalanceView{
			EmployeeID: b.EmployeeID.String(),
			PolicyName: b.PolicyName,
			Balance:    b.Balance,
		})
	}
	for _, m := range e.AssignMembers {
		v.AssignMembers = append(v.AssignMembers, cacheview.MemberView{
			ID:       m.ID.String(),
			FullName: m.FullName,
			Email:    m.Email,
			Role:     m.Role,
		})
	}
	return v
}

func ToViewList(emps []Employee) []cacheview.EmployeeView {
	out := make([]cacheview.EmployeeView, len(emps))
	for i, e := range emps {
		out[i] = ToView(e)
	}
	return out
}
