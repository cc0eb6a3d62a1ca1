package student

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amit1797/Eduadmin-sub000/internal"
	studentDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/student"
)

// Repository scopes every statement by school id, so a row of another
// school reads as missing. Lookups return (nil, nil) when nothing matches.
// Create and Update return ErrAdmissionTaken when the unique index rejects
// the admission number.
type Repository interface {
	Create(ctx context.Context, s *studentDatamodel.Student) error
	GetByID(ctx context.Context, schoolID, id string) (*studentDatamodel.Student, error)
	List(ctx context.Context, schoolID string, limit, offset int) ([]studentDatamodel.Student, error)
	Update(ctx context.Context, s *studentDatamodel.Student) error
	Delete(ctx context.Context, schoolID, id string) (bool, error)
	AdmissionTaken(ctx context.Context, schoolID, admissionNumber, excludeID string) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, schoolID string, dto CreateDTO) (*Student, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dob, err := parseDate(dto.DateOfBirth)
	if err != nil {
		return nil, internal.NewValidationFieldError("dateOfBirth", "dateOfBirth is invalid", internal.ErrCodeValidationFailed)
	}

	if err := s.checkAdmission(ctx, schoolID, dto.AdmissionNumber, ""); err != nil {
		return nil, err
	}

	row := &studentDatamodel.Student{
		SchoolID:        schoolID,
		AdmissionNumber: dto.AdmissionNumber,
		FirstName:       dto.FirstName,
		LastName:        dto.LastName,
		ClassID:         dto.ClassID,
		DateOfBirth:     dob,
		GuardianEmail:   dto.GuardianEmail,
		Status:          string(StatusActive),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrAdmissionTaken) {
			return nil, ErrAdmissionTaken
		}
		return nil, internal.NewInternalError("failed to create student", err)
	}

	s.logger.Debug("student created", "school_id", schoolID, "student_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, schoolID, id string) (*Student, error) {
	row, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Snapshot returns the current state of a student for audit pre-images.
func (s *Service) Snapshot(ctx context.Context, schoolID, id string) (interface{}, error) {
	return s.Get(ctx, schoolID, id)
}

func (s *Service) List(ctx context.Context, schoolID string, limit, offset int) ([]*Student, error) {
	rows, err := s.repo.List(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list students", err)
	}
	out := make([]*Student, 0, len(rows))
	for i := range rows {
		out = append(out, FromDataModel(&rows[i]))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, schoolID, id string, dto UpdateDTO) (*Student, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	row, err := s.load(ctx, schoolID, id)
	if err != nil {
		return nil, err
	}

	if dto.AdmissionNumber != nil && *dto.AdmissionNumber != row.AdmissionNumber {
		if err := s.checkAdmission(ctx, schoolID, *dto.AdmissionNumber, id); err != nil {
			return nil, err
		}
		row.AdmissionNumber = *dto.AdmissionNumber
	}
	if dto.FirstName != nil {
		row.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		row.LastName = *dto.LastName
	}
	if dto.ClassID != nil {
		row.ClassID = dto.ClassID
	}
	if dto.DateOfBirth != nil {
		dob, err := parseDate(dto.DateOfBirth)
		if err != nil {
			return nil, internal.NewValidationFieldError("dateOfBirth", "dateOfBirth is invalid", internal.ErrCodeValidationFailed)
		}
		row.DateOfBirth = dob
	}
	if dto.GuardianEmail != nil {
		row.GuardianEmail = *dto.GuardianEmail
	}
	if dto.Status != nil {
		row.Status = *dto.Status
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if errors.Is(err, ErrAdmissionTaken) {
			return nil, ErrAdmissionTaken
		}
		return nil, internal.NewInternalError("failed to update student", err)
	}
	return FromDataModel(row), nil
}

// Delete soft-deletes the student.
func (s *Service) Delete(ctx context.Context, schoolID, id string) error {
	deleted, err := s.repo.Delete(ctx, schoolID, id)
	if err != nil {
		return internal.NewInternalError("failed to delete student", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, schoolID, id string) (*studentDatamodel.Student, error) {
	row, err := s.repo.GetByID(ctx, schoolID, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load student", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (s *Service) checkAdmission(ctx context.Context, schoolID, number, excludeID string) error {
	taken, err := s.repo.AdmissionTaken(ctx, schoolID, number, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check admission number", err)
	}
	if taken {
		return ErrAdmissionTaken
	}
	return nil
}
