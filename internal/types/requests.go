package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// EditRequest addresses a single string-valued field of the document.
// Path examples: "personalInfo.fullName", "summary", "skills", "experience.2.title".
type EditRequest struct {
	Path  string `json:"path" validate:"required"`
	Value string `json:"value"`
}

// DraftRequest asks the assistant to write or rewrite section content.
type DraftRequest struct {
	Section SectionType `json:"section" validate:"required"`
	Context string      `json:"context"`
	Current string      `json:"current"`
}

// JobDescriptionRequest carries pasted job description text; empty clears it.
type JobDescriptionRequest struct {
	JobDescription string `json:"jobDescription" validate:"max=100000"`
}

// JobURLRequest asks the server to fetch a job posting.
type JobURLRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Refresh bool   `json:"refresh,omitempty"` // ignore a cached copy
}

// ReferenceRequest carries the payment reference number typed by the user.
type ReferenceRequest struct {
	Reference string `json:"reference"`
}

// DragStartRequest starts a reorder gesture.
type DragStartRequest struct {
	List   ListKind `json:"list" validate:"required,oneof=experience education projects"`
	Index  int      `json:"index" validate:"gte=0"`
	Region string   `json:"region" validate:"required"`
}

// DragDropRequest completes a reorder gesture.
type DragDropRequest struct {
	List  ListKind `json:"list" validate:"required"`
	Index int      `json:"index" validate:"gte=0"`
}

// SkillRequest adds a single skill or merges a comma-separated suggestion.
type SkillRequest struct {
	Skill string `json:"skill" validate:"required"`
}

// Validate validates the EditRequest using the validator.
func (r *EditRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the DraftRequest using the validator.
func (r *DraftRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the JobDescriptionRequest using the validator.
func (r *JobDescriptionRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the JobURLRequest using the validator.
func (r *JobURLRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the DragStartRequest using the validator.
func (r *DragStartRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the DragDropRequest using the validator.
func (r *DragDropRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SkillRequest using the validator.
func (r *SkillRequest) Validate() error {
	return validate.Struct(r)
}

// ValidateReference checks a payment reference number against the minimum length.
func ValidateReference(reference string, minLength int) error {
	return validate.Var(reference, fmt.Sprintf("required,min=%d", minLength))
}
