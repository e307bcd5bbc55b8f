package types

const (
	// DefaultJobPageSize is used when a job listing names no page size.
	DefaultJobPageSize = 2
	// DefaultApplicationPageSize is used when an application listing names no page size.
	DefaultApplicationPageSize = 5
	// MaxPageSize caps any listing.
	MaxPageSize = 100
)

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}

// Pagination selects a page. Page numbers start at 1.
type Pagination struct {
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}

// Normalize fills defaults and clamps out-of-range values.
func (p Pagination) Normalize(defaultSize int) Pagination {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// JobQuery holds caller-supplied job listing filters.
type JobQuery struct {
	Search        string
	Skill         string
	Location      string
	Category      string
	MaxExperience *int
	Pagination
}

// JobFilter is a JobQuery plus the visibility rules the caller's role implies.
type JobFilter struct {
	JobQuery
	// OnlyActive excludes inactive jobs.
	OnlyActive bool
	// OpenBy, when set, hides jobs opening after this day unless owned by VisibleTo.
	OpenBy *Date
	// VisibleTo lets an employer see its own future-dated jobs.
	VisibleTo int64
	// EmployerID restricts the listing to one employer.
	EmployerID int64
}

// ApplicationQuery holds caller-supplied application listing filters.
type ApplicationQuery struct {
	Search string
	Status string
	Pagination
}

// ApplicationFilter is an ApplicationQuery scoped by owner.
type ApplicationFilter struct {
	ApplicationQuery
	JobID       int64
	CandidateID int64
	EmployerID  int64
	// ExcludeRoles hides applications whose status carries one of these roles.
	ExcludeRoles []StatusRole
	// OnlyRoles keeps applications whose status carries one of these roles.
	OnlyRoles []StatusRole
}
