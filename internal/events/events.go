// Package events declares the job payloads handed to the notification
// publisher, one topic per lifecycle event.
package events

import "time"

const (
	EmployeeCreatedTopic = "leave.employee.created.v1"
	LeaveAppliedTopic    = "leave.request.applied.v1"
	LeaveActionedTopic   = "leave.request.actioned.v1"
)

type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LeaveAppliedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	ActionByID string    `json:"action_by_employee_id,omitempty"`
	PolicyName string    `json:"policy_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

type LeaveActionedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id,omitempty"`
	LeaveID      string    `json:"leave_id"`
	EmployeeID   string    `json:"employee_id"`
	Status       string    `json:"status"`
	RejectReason string    `json:"reject_reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
