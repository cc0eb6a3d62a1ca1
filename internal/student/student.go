// Package student is the tenant-scoped sample resource behind the
// student_management module.
package student

import (
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	studentDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/student"
)

const dateLayout = "2006-01-02"

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusGraduated Status = "graduated"
)

var (
	ErrNotFound       = internal.NewNotFoundError("Student not found", internal.ErrCodeNotFound)
	ErrAdmissionTaken = internal.NewConflictError("Admission number is already in use", internal.ErrCodeConflict)
)

type Student struct {
	ID              string    `json:"id"`
	SchoolID        string    `json:"schoolId"`
	AdmissionNumber string    `json:"admissionNumber"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ClassID         *string   `json:"classId,omitempty"`
	DateOfBirth     *string   `json:"dateOfBirth,omitempty"`
	GuardianEmail   string    `json:"guardianEmail,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromDataModel(s *studentDatamodel.Student) *Student {
	if s == nil {
		return nil
	}
	out := &Student{
		ID:              s.ID,
		SchoolID:        s.SchoolID,
		AdmissionNumber: s.AdmissionNumber,
		FirstName:       s.FirstName,
		LastName:        s.LastName,
		ClassID:         s.ClassID,
		GuardianEmail:   s.GuardianEmail,
		Status:          Status(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.DateOfBirth != nil {
		dob := s.DateOfBirth.Format(dateLayout)
		out.DateOfBirth = &dob
	}
	return out
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
