package student

import (
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/common/validation"
)

type CreateDTO struct {
	AdmissionNumber string  `json:"admissionNumber" validate:"required,max=50"`
	FirstName       string  `json:"firstName" validate:"required,max=100"`
	LastName        string  `json:"lastName" validate:"required,max=100"`
	ClassID         *string `json:"classId" validate:"omitempty,uuid"`
	DateOfBirth     *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	GuardianEmail   string  `json:"guardianEmail" validate:"omitempty,email"`
}

func (d *CreateDTO) Normalize() {
	d.AdmissionNumber = strings.TrimSpace(d.AdmissionNumber)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.GuardianEmail = strings.ToLower(strings.TrimSpace(d.GuardianEmail))
}

func (d CreateDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

// UpdateDTO is a partial update; nil fields are left unchanged.
type UpdateDTO struct {
	AdmissionNumber *string `json:"admissionNumber" validate:"omitempty,min=1,max=50"`
	FirstName       *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName        *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	ClassID         *string `json:"classId" validate:"omitempty,uuid"`
	DateOfBirth     *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	GuardianEmail   *string `json:"guardianEmail" validate:"omitempty,email"`
	Status          *string `json:"status" validate:"omitempty,oneof=active inactive graduated"`
}

func (d *UpdateDTO) Normalize() {
	trim(d.AdmissionNumber)
	trim(d.FirstName)
	trim(d.LastName)
	trim(d.ClassID)
	trim(d.DateOfBirth)
	trim(d.Status)
	if d.GuardianEmail != nil {
		*d.GuardianEmail = strings.ToLower(strings.TrimSpace(*d.GuardianEmail))
	}
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func (d UpdateDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

type ListResponse struct {
	Students []*Student `json:"students"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
