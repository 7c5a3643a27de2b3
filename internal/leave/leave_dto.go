package leave

type ApplyLeaveRequest struct {
	PolicyName      string  `json:"policy_name" binding:"required"`
	StartDate       string  `json:"start_date" binding:"required"`
	EndDate         *string `json:"end_date"`
	StartAbsentType string  `json:"start_absent_type" binding:"required,oneof=FULL_DAY FIRST_HALF SECOND_HALF"`
	EndAbsentType   *string `json:"end_absent_type" binding:"omitempty,oneof=FULL_DAY FIRST_HALF SECOND_HALF"`
	Reason          string  `json:"reason"`
}

type RejectLeaveRequest struct {
	RejectReason string `json:"reject_reason" binding:"required"`
}
