package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/civic-report-service/internal/authz"
	"github.com/spec-kit/civic-report-service/internal/domain"
	"github.com/spec-kit/civic-report-service/internal/repository"
	apperrors "github.com/spec-kit/civic-report-service/pkg/util"
)

// DirectoryService administers users and issue categories. All writes
// are manager-gated.
type DirectoryService struct {
	users      repository.UserRepository
	teams      repository.TeamRepository
	categories repository.CategoryRepository
	districts  repository.DistrictRepository
	tickets    repository.TicketRepository
}

// DirectoryDependencies bundles collaborators.
type DirectoryDependencies struct {
	UserRepo     repository.UserRepository
	TeamRepo     repository.TeamRepository
	CategoryRepo repository.CategoryRepository
	DistrictRepo repository.DistrictRepository
	TicketRepo   repository.TicketRepository
}

// UserInput describes user create/update payloads.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	TeamID   *string
}

// CategoryInput describes category create/update payloads.
type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		users:      deps.UserRepo,
		teams:      deps.TeamRepo,
		categories: deps.CategoryRepo,
		districts:  deps.DistrictRepo,
		tickets:    deps.TicketRepo,
	}
}

// CreateUser registers a principal. SUPPORT users must belong to a team;
// the password is hashed before it ever reaches storage.
func (s *DirectoryService) CreateUser(ctx context.Context, actor *domain.User, input UserInput) (*domain.User, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	if err := s.validateUserInput(ctx, input, true); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Role:         input.Role,
		TeamID:       input.TeamID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser changes a principal's profile, role or team.
func (s *DirectoryService) UpdateUser(ctx context.Context, actor *domain.User, userID string, input UserInput) (*domain.User, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.validateUserInput(ctx, input, false); err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" {
		user.Email = email
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	user.TeamID = input.TeamID
	if user.Role == domain.RoleSupport && user.TeamID == nil {
		return nil, apperrors.NewValidationError("support users require a team", nil)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeactivateUser disables a principal. Records are never deleted so the
// audit trail keeps its authors.
func (s *DirectoryService) DeactivateUser(ctx context.Context, actor *domain.User, userID string) error {
	if err := authz.Authorize(actor, authz.ActionManageUsers, authz.Resource{}); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.Active = false
	return apperrors.MapError(s.users.Update(ctx, user))
}

// GetUser fetches a principal.
func (s *DirectoryService) GetUser(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsersByRole lists active principals with a given role.
func (s *DirectoryService) ListUsersByRole(ctx context.Context, actor *domain.User, role domain.Role) ([]domain.User, error) {
	if err := authz.Authorize(actor, authz.ActionManageUsers, authz.Resource{}); err != nil {
		return nil, err
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// CreateCategory registers a new issue category, active by default.
func (s *DirectoryService) CreateCategory(ctx context.Context, actor *domain.User, input CategoryInput) (*domain.Category, error) {
	if err := authz.Authorize(actor, authz.ActionManageCategories, authz.Resource{}); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name required", nil)
	}

	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// UpdateCategory changes a category's name, description or active flag.
// Deactivating stops new tickets without touching existing ones.
func (s *DirectoryService) UpdateCategory(ctx context.Context, actor *domain.User, categoryID string, input CategoryInput) (*domain.Category, error) {
	if err := authz.Authorize(actor, authz.ActionManageCategories, authz.Resource{}); err != nil {
		return nil, err
	}
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		category.Name = name
	}
	category.Description = strings.TrimSpace(input.Description)
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// DeleteCategory removes a category that no ticket references.
func (s *DirectoryService) DeleteCategory(ctx context.Context, actor *domain.User, categoryID string) error {
	if err := authz.Authorize(actor, authz.ActionManageCategories, authz.Resource{}); err != nil {
		return err
	}
	count, err := s.tickets.CountByCategory(ctx, categoryID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewProtectedResource("category is referenced by tickets")
	}
	return apperrors.MapError(s.categories.Delete(ctx, categoryID))
}

// ListCategories returns all categories including inactive ones.
func (s *DirectoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

// ListDistricts returns the city's districts.
func (s *DirectoryService) ListDistricts(ctx context.Context) ([]domain.District, error) {
	districts, err := s.districts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return districts, nil
}

func (s *DirectoryService) validateUserInput(ctx context.Context, input UserInput, creating bool) error {
	if creating {
		if strings.TrimSpace(input.Name) == "" {
			return apperrors.NewValidationError("name required", nil)
		}
		if !strings.Contains(input.Email, "@") {
			return apperrors.NewValidationError("valid email required", nil)
		}
		if len(input.Password) < 8 {
			return apperrors.NewValidationError("password must be at least 8 characters", nil)
		}
		switch input.Role {
		case domain.RoleCitizen, domain.RoleSupport, domain.RoleManager:
		default:
			return apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
		}
		if input.Role == domain.RoleSupport && input.TeamID == nil {
			return apperrors.NewValidationError("support users require a team", nil)
		}
	}
	if input.TeamID != nil {
		if _, err := s.teams.GetByID(ctx, *input.TeamID); err != nil {
			return apperrors.MapError(err)
		}
	}
	return nil
}
