package models

import "time"

// Period is the atomic bookable unit of the weekly grid: one fixed time range
// on one weekday. A session occupies exactly one period in one room.
type Period struct {
	ID        string    `db:"id" json:"id"`
	DayOfWeek string    `db:"day_of_week" json:"day_of_week"`
	Number    int       `db:"number" json:"number"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
