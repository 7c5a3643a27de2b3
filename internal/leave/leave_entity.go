package leave

import (
	"time"

	"leavedesk/internal/cacheview"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee"`
	PolicyName string    `gorm:"type:varchar(60);not null"`

	StartDate       time.Time  `gorm:"type:date;not null"`
	EndDate         *time.Time `gorm:"type:date"`
	StartAbsentType string     `gorm:"type:varchar(20);not null;default:'FULL_DAY'"`
	EndAbsentType   *string    `gorm:"type:varchar(20)"`

	Status string `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leaves_status"`
	Reason string `gorm:"type:text"`

	// ActionByID is the manager expected to decide this leave while it is
	// PENDING; kept for history once the status is terminal.
	ActionByID   *uuid.UUID `gorm:"column:action_by_employee_id;type:uuid;index:idx_leaves_action_by"`
	RejectReason *string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leaves_deleted_at"`
}

const dateLayout = "2006-01-02"

// ToView maps the entity to its cached/denormalized projection.
func ToView(l Leave) cacheview.LeaveView {
	v := cacheview.LeaveView{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		PolicyName:      l.PolicyName,
		StartDate:       l.StartDate.Format(dateLayout),
		StartAbsentType: l.StartAbsentType,
		Status:          l.Status,
		Reason:          l.Reason,
		RejectReason:    l.RejectReason,
	}
	if l.EndDate != nil {
		d := l.EndDate.Format(dateLayout)
		v.EndDate = &d
	}
	v.EndAbsentType = l.EndAbsentType
	if l.ActionByID != nil {
		id := l.ActionByID.String()
		v.ActionByID = &id
	}
	return v
}

func ToViewList(leaves []Leave) []cacheview.LeaveView {
	out := make([]cacheview.LeaveView, len(leaves))
	for i, l := range leaves {
		out[i] = ToView(l)
	}
	return out
}
