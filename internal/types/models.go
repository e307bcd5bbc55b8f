package types

import "time"

// User is a login identity. Candidates and employers each own exactly one.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Employer is the company-side profile attached to a user.
type Employer struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
}

// Candidate is the applicant-side profile attached to a user.
type Candidate struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Skill is administrative reference data linked to jobs.
type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Category is administrative reference data grouping jobs.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Status is a named step in the application workflow.
type Status struct {
	ID   int64      `json:"id"`
	Name string     `json:"name"`
	Role StatusRole `json:"role"`
}

// Job is an employer-authored posting.
type Job struct {
	ID                 int64     `json:"id"`
	EmployerID         int64     `json:"employer_id"`
	CompanyName        string    `json:"company_name,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Location           string    `json:"location"`
	ExperienceRequired *int      `json:"experience_required,omitempty"`
	CategoryID         int64     `json:"category_id"`
	CategoryName       string    `json:"category_name,omitempty"`
	OpenFrom           Date      `json:"open_from"`
	Vacancy            int       `json:"vacancy"`
	IsActive           bool      `json:"is_active"`
	IsDeleted          bool      `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	Skills             []Skill   `json:"skills"`
	IsApplied          bool      `json:"is_applied,omitempty"`
}

// RequiredExperience returns the experience requirement, treating unset as zero.
func (j *Job) RequiredExperience() int {
	if j.ExperienceRequired == nil {
		return 0
	}
	return *j.ExperienceRequired
}

// Application is a candidate's submission against one job.
type Application struct {
	ID              int64      `json:"id"`
	CandidateID     int64      `json:"candidate_id"`
	JobID           int64      `json:"job_id"`
	Experience      int        `json:"experience"`
	Note            string     `json:"note,omitempty"`
	CoverLetterName string     `json:"cover_letter_name,omitempty"`
	ResumeName      string     `json:"resume_name,omitempty"`
	StatusID        int64      `json:"status_id"`
	AppliedAt       time.Time  `json:"applied_at"`
	StatusName      string     `json:"status"`
	StatusRole      StatusRole `json:"status_role"`
	JobTitle        string     `json:"job_title,omitempty"`
	JobLocation     string     `json:"job_location,omitempty"`
	EmployerID      int64      `json:"employer_id,omitempty"`
	CompanyName     string     `json:"company_name,omitempty"`
	CandidateName   string     `json:"candidate_name,omitempty"`
	CandidateEmail  string     `json:"candidate_email,omitempty"`
}

// JobPreference is a candidate's standing interest used for matching new jobs.
type JobPreference struct {
	ID             int64     `json:"id"`
	CandidateID    int64     `json:"candidate_id"`
	CategoryID     int64     `json:"category_id"`
	CategoryName   string    `json:"category_name,omitempty"`
	Experience     *int      `json:"experience,omitempty"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	CandidateName  string    `json:"-"`
	CandidateEmail string    `json:"-"`
}

// MinimumExperience returns the preference threshold, treating unset as zero.
func (p *JobPreference) MinimumExperience() int {
	if p.Experience == nil {
		return 0
	}
	return *p.Experience
}

// AdminDashboard summarizes the whole portal.
type AdminDashboard struct {
	TotalEmployers     int           `json:"total_employers"`
	TotalJobs          int           `json:"total_jobs"`
	TotalCandidates    int           `json:"total_candidates"`
	TotalApplications  int           `json:"total_applications"`
	LatestJobs         []Job         `json:"latest_jobs"`
	LatestApplications []Application `json:"latest_applications"`
	LatestUsers        []User        `json:"latest_users"`
}

// EmployerDashboard summarizes one employer's postings.
type EmployerDashboard struct {
	TotalJobs          int           `json:"total_jobs"`
	TotalApplications  int           `json:"total_applications"`
	NewApplications    int           `json:"new_applications"`
	LatestJobs         []Job         `json:"latest_jobs"`
	LatestApplications []Application `json:"latest_applications"`
}
