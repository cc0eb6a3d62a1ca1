package school

import (
	"strings"

	"github.com/amit1797/Eduadmin-sub000/internal"
	"github.com/amit1797/Eduadmin-sub000/internal/core/common/validation"
	"github.com/amit1797/Eduadmin-sub000/internal/user"
)

// AdminDTO describes the first school_admin created during onboarding.
type AdminDTO struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// OnboardDTO finalizes a new tenant: the school, its enabled modules and
// its first administrator.
type OnboardDTO struct {
	Name    string   `json:"name" validate:"required,max=200"`
	Code    string   `json:"code" validate:"required,min=2,max=32,alphanum"`
	Modules []string `json:"modules" validate:"dive,module"`
	Admin   AdminDTO `json:"admin"`
}

func (d *OnboardDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Code = NormalizeCode(d.Code)
	for i, m := range d.Modules {
		d.Modules[i] = strings.ToLower(strings.TrimSpace(m))
	}
	d.Admin.Email = strings.ToLower(strings.TrimSpace(d.Admin.Email))
}

func (d OnboardDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

type SetModuleDTO struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (d SetModuleDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

type OnboardResponse struct {
	School  *School              `json:"school"`
	Modules []ModuleStatus       `json:"modules"`
	Admin   *user.InviteResponse `json:"admin"`
}
