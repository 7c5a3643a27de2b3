package holiday

import (
	"time"

	"leavedesk/internal/cacheview"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type Holiday struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Date      time.Time `gorm:"type:date;not null;uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}

func ToView(h Holiday) cacheview.HolidayView {
	return cacheview.HolidayView{
		ID:   h.ID.String(),
		Name: h.Name,
		Date: h.Date.Format(dateLayout),
	}
}

func ToViewList(hs []Holiday) []cacheview.HolidayView {
	views := make([]cacheview.HolidayView, len(hs))
	for i, h := range hs {
		views[i] = ToView(h)
	}
	return views
}
