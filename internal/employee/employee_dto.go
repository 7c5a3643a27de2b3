package employee

type CreateEmployeeRequest struct {
	FullName        string  `json:"full_name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Role            string  `json:"role" binding:"required,oneof=ADMIN SUB_ADMIN REPORT_MANAGER MEMBER"`
	Status          string  `json:"status" binding:"omitempty,oneof=Active Probation InActive"`
	ReportManagerID *string `json:"report_manager_id" binding:"omitempty,uuid"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=ADMIN SUB_ADMIN REPORT_MANAGER MEMBER"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Active Probation InActive"`
}

type AssignMembersRequest struct {
	MemberIDs []string `json:"member_ids" binding:"required,min=1,dive,uuid"`
}
