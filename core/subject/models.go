package subject

import (
	"time"

	"github.com/PeaceIshola/eduhub/core"
)

// Subject is one JSS curriculum subject, e.g. "BST" (Basic Science &
// Technology) or "PVS" (Pre-Vocational Studies).
type Subject struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Code        string `json:"code" validate:"required,subjectcode"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ns *NewSubject) Validate(svc *Service) error {
	ns.Code = core.CleanString(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ns.Code)
}
