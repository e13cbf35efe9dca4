package model

import "time"

type Student struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	CPF  string `json:"cpf"`
}

type Professor struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Discipline struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	WorkloadHours int    `json:"workload_hours"`
	Syllabus      string `json:"syllabus,omitempty"`
}

// Class is one offering of a discipline taught by a professor in a given period.
type Class struct {
	ID           int64  `json:"id"`
	DisciplineID int64  `json:"discipline_id"`
	ProfessorID  int64  `json:"professor_id"`
	Year         int    `json:"year"`
	Period       string `json:"period"`
}

// Enrollment links a student to a class. The student is its owner.
type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	ClassID    int64     `json:"class_id"`
	EnrolledOn time.Time `json:"enrolled_on"`
	Active     bool      `json:"active"`
}

// Grade is a student's mark in a class. The student is its owner.
type Grade struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"student_id"`
	ClassID   int64   `json:"class_id"`
	Value     float64 `json:"value"`
	Note      string  `json:"note,omitempty"`
}

const (
	MinGradeValue = 0.0
	MaxGradeValue = 10.0
)
