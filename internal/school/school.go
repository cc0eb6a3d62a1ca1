// Package school manages tenants and their module entitlements.
package school

import (
	"strings"
	"time"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/access"
	schoolDatamodel "github.com/amit1797/Eduadmin-sub000/internal/core/datamodel/school"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	ErrNotFound  = internal.NewNotFoundError("School not found", internal.ErrCodeNotFound)
	ErrCodeTaken = internal.NewConflictError("School code is already in use", internal.ErrCodeConflict)
)

type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ModuleStatus is one entry of a school's entitlement list.
type ModuleStatus struct {
	Module  access.Module `json:"module"`
	Enabled bool          `json:"enabled"`
}

// NormalizeCode upper-cases codes so lookups ignore case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func FromDataModel(s *schoolDatamodel.School) *School {
	if s == nil {
		return nil
	}
	return &School{
		ID:        s.ID,
		Name:      s.Name,
		Code:      s.Code,
		Status:    Status(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ModuleList expands stored flags to the full closed module set; modules
// without a row are disabled.
func ModuleList(flags map[access.Module]bool) []ModuleStatus {
	out := make([]ModuleStatus, 0, len(access.Modules()))
	for _, m := range access.Modules() {
		out = append(out, ModuleStatus{Module: m, Enabled: flags[m]})
	}
	return out
}
