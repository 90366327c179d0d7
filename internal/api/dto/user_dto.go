package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/user-directory/internal/domain"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

// CreateUserRequest payload for POST /api/users.
type CreateUserRequest struct {
	FirstName   string  `json:"firstName" validate:"required,min=2,max=100"`
	LastName    string  `json:"lastName" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
}

// Validate checks field constraints.
func (r *CreateUserRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.PhoneNumber = trimOptional(r.PhoneNumber)
	return validateStruct(r)
}

// Changes converts the request into domain input.
func (r CreateUserRequest) Changes() domain.UserChanges {
	return domain.UserChanges{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		IsActive:    true,
	}
}

// UpdateUserRequest payload for PUT /api/users/{id}. IsActive defaults to true.
type UpdateUserRequest struct {
	FirstName   string  `json:"firstName" validate:"required,min=2,max=100"`
	LastName    string  `json:"lastName" validate:"required,min=2,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`
	IsActive    *bool   `json:"isActive"`
}

// Validate checks field constraints.
func (r *UpdateUserRequest) Validate() error {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.PhoneNumber = trimOptional(r.PhoneNumber)
	return validateStruct(r)
}

// Changes converts the request into domain input.
func (r UpdateUserRequest) Changes() domain.UserChanges {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return domain.UserChanges{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		IsActive:    active,
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// UserResponse is the wire form of a user.
type UserResponse struct {
	ID          int        `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber *string    `json:"phoneNumber"`
	DateCreated time.Time  `json:"dateCreated"`
	DateUpdated *time.Time `json:"dateUpdated"`
	IsActive    bool       `json:"isActive"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		DateCreated: u.DateCreated,
		DateUpdated: u.DateUpdated,
		IsActive:    u.IsActive,
	}
}

// PagedUsersResponse is the wire form of a listing page.
type PagedUsersResponse struct {
	Data            []UserResponse `json:"data"`
	TotalCount      int            `json:"totalCount"`
	Page            int            `json:"page"`
	PageSize        int            `json:"pageSize"`
	TotalPages      int            `json:"totalPages"`
	HasNextPage     bool           `json:"hasNextPage"`
	HasPreviousPage bool           `json:"hasPreviousPage"`
}

// NewPagedUsersResponse maps a paged result.
func NewPagedUsersResponse(p domain.PagedResult) PagedUsersResponse {
	data := make([]UserResponse, 0, len(p.Data))
	for _, u := range p.Data {
		data = append(data, NewUserResponse(u))
	}
	return PagedUsersResponse{
		Data:            data,
		TotalCount:      p.TotalCount,
		Page:            p.Page,
		PageSize:        p.PageSize,
		TotalPages:      p.TotalPages(),
		HasNextPage:     p.HasNextPage(),
		HasPreviousPage: p.HasPreviousPage(),
	}
}

// ListUsersQuery captures listing parameters for GET /api/users.
type ListUsersQuery struct {
	Page      int    `json:"page" validate:"gte=1"`
	PageSize  int    `json:"pageSize" validate:"gte=1,lte=100"`
	Search    string `json:"search"`
	IsActive  *bool  `json:"isActive"`
	SortBy    string `json:"sortBy" validate:"oneof=firstName lastName email dateCreated"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

// ParseListUsersQuery reads and validates listing parameters through get,
// which returns the raw value of a query parameter or "".
func ParseListUsersQuery(get func(key string) string) (domain.QueryShape, error) {
	def := domain.DefaultQueryShape()
	q := ListUsersQuery{
		Page:      def.Page,
		PageSize:  def.PageSize,
		Search:    get("search"),
		SortBy:    string(def.SortBy),
		SortOrder: string(def.SortOrder),
	}

	var violations []apperrors.FieldViolation
	parseInt := func(key string, dst *int) {
		raw := strings.TrimSpace(get(key))
		if raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			violations = append(violations, apperrors.FieldViolation{Field: key, Message: key + " must be an integer"})
			return
		}
		*dst = v
	}
	parseInt("page", &q.Page)
	parseInt("pageSize", &q.PageSize)

	if raw := strings.TrimSpace(get("isActive")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			violations = append(violations, apperrors.FieldViolation{Field: "isActive", Message: "isActive must be true or false"})
		} else {
			q.IsActive = &v
		}
	}
	if raw := strings.TrimSpace(get("sortBy")); raw != "" {
		q.SortBy = raw
	}
	if raw := strings.TrimSpace(get("sortOrder")); raw != "" {
		q.SortOrder = raw
	}

	if err := validateStruct(q, violations...); err != nil {
		return domain.QueryShape{}, err
	}
	return domain.QueryShape{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Search:    q.Search,
		IsActive:  q.IsActive,
		SortBy:    domain.SortField(q.SortBy),
		SortOrder: domain.SortOrder(q.SortOrder),
	}, nil
}
