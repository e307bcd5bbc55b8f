package types

import "strings"

// RegisterCandidateRequest is the payload for candidate sign-up.
type RegisterCandidateRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
}

// RegisterEmployerRequest is the payload for employer sign-up.
type RegisterEmployerRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	CompanyName string `json:"company_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,strongpassword"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the principal it identifies.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UpdateProfileRequest edits the caller's own profile. CompanyName applies to employers only.
type UpdateProfileRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	CompanyName string `json:"company_name,omitempty" validate:"max=100"`
}

// Profile is the caller's own account view.
type Profile struct {
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	Name        string `json:"name,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	// Token is reissued when the email changes, since tokens carry it.
	Token string `json:"token,omitempty"`
}

// JobInput is the editable part of a job.
type JobInput struct {
	Title              string   `json:"title" validate:"required,max=50"`
	Description        string   `json:"description" validate:"max=255"`
	Location           string   `json:"location" validate:"required"`
	ExperienceRequired *int     `json:"experience_required,omitempty" validate:"omitempty,min=0,max=40"`
	CategoryID         int64    `json:"category_id" validate:"required"`
	OpenFrom           Date     `json:"open_from"`
	Vacancy            int      `json:"vacancy" validate:"gt=0"`
	Skills             []string `json:"skills" validate:"dive,required"`
}

// ApplicationInput is what a candidate declares when applying.
type ApplicationInput struct {
	Experience int    `json:"experience" validate:"min=0,max=40"`
	Note       string `json:"note" validate:"max=500"`
}

// PreferenceInput is the editable part of a job preference.
type PreferenceInput struct {
	CategoryID int64  `json:"category_id" validate:"required"`
	Experience *int   `json:"experience,omitempty" validate:"omitempty,min=0,max=40"`
	Location   string `json:"location" validate:"required"`
}

// NameInput creates or renames a skill, category or status.
type NameInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

// Normalized trims surrounding whitespace.
func (n NameInput) Normalized() string {
	return strings.TrimSpace(n.Name)
}
