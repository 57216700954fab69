package models

import "time"

// Course groups sections under a shared credit count. Credits drive weekly
// session demand: three or more credits means two sessions per week.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseSection is one teachable instance of a course with an assigned
// teacher and enrollment bounds. Credits is joined from the owning course.
type CourseSection struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	MinStudents int       `db:"min_students" json:"min_students"`
	Credits     int       `db:"credits" json:"credits"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SessionsNeeded returns the weekly session count demanded by the section's
// credit load.
func (s CourseSection) SessionsNeeded() int {
	if s.Credits >= 3 {
		return 2
	}
	return 1
}
