package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/employee"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/password"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
)

type EmployeeServiceImpl struct {
	user.UserRepository
	company.CompanyRepository
	transactor  postgresql.Transactor
	resolver    access.Resolver
	fileService file.FileService
	metrics     *metrics.Metrics
}

func NewEmployeeService(
	transactor postgresql.Transactor,
	userRepository user.UserRepository,
	companyRepository company.CompanyRepository,
	resolver access.Resolver,
	fileService file.FileService,
	m *metrics.Metrics,
) *EmployeeServiceImpl {
	return &EmployeeServiceImpl{
		UserRepository:    userRepository,
		CompanyRepository: companyRepository,
		transactor:        transactor,
		resolver:          resolver,
		fileService:       fileService,
		metrics:           m,
	}
}

// targetCompany decides which company a new user joins.
func (s *EmployeeServiceImpl) targetCompany(ctx context.Context, caller user.Caller, role user.Role, requested *string) (*string, error) {
	if requested != nil && *requested == "" {
		requested = nil
	}

	if caller.IsSuperAdmin() {
		if role == user.RoleSuperAdmin {
			if requested != nil {
				return nil, employee.ErrCompanyNotAllowed
			}
			return nil, nil
		}
		if requested == nil {
			return nil, employee.ErrCompanyRequired
		}
		return requested, nil
	}

	if requested == nil {
		return caller.CompanyID, nil
	}
	scope, err := s.resolver.ResolveScope(ctx, caller, nil)
	if err != nil {
		return nil, err
	}
	if err := scope.RequireCompany(requested); err != nil {
		return nil, err
	}
	return requested, nil
}

// checkEmployeeQuota must run inside the transaction holding the company row lock.
func (s *EmployeeServiceImpl) checkEmployeeQuota(ctx context.Context, c company.Company) error {
	if c.EmployeeQuotaUnlimited() {
		return nil
	}
	count, err := s.UserRepository.CountByCompanyAndRole(ctx, c.ID, user.RoleEmployee)
	if err != nil {
		return fmt.Errorf("failed to count employees: %w", err)
	}
	if count >= int64(c.AllowedEmployees) {
		s.metrics.QuotaRejected(company.QuotaEmployees)
		slog.Warn("employee quota exceeded", "company_id", c.ID, "allowed", c.AllowedEmployees)
		return &company.QuotaExceededError{Resource: company.QuotaEmployees, Allowed: c.AllowedEmployees}
	}
	return nil
}

func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, caller user.Caller, req employee.CreateEmployeeRequest) (employee.CreateEmployeeResponse, error) {
	if !caller.Role.IsManager() {
		return employee.CreateEmployeeResponse{}, access.ErrPermissionDenied
	}
	if !caller.IsSuperAdmin() && !caller.HasCompany() {
		return employee.CreateEmployeeResponse{}, access.ErrPermissionDenied
	}
	if err := req.Validate(); err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	role := user.Role(req.Role)
	if !caller.Role.CanCreate(role) {
		return employee.CreateEmployeeResponse{}, employee.ErrRoleNotAllowed
	}
	companyID, err := s.targetCompany(ctx, caller, role, req.CompanyID)
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	var tempPassword *string
	plain := ""
	if req.Password != nil {
		plain = *req.Password
	} else {
		generated, err := password.GenerateTemporary()
		if err != nil {
			return employee.CreateEmployeeResponse{}, err
		}
		plain = generated
		tempPassword = &generated
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	var created user.User
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if companyID != nil {
			c, err := s.CompanyRepository.GetByIDForUpdate(ctx, *companyID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return company.ErrCompanyNotFound
				}
				return fmt.Errorf("failed to lock company: %w", err)
			}
			if role == user.RoleEmployee {
				if err := s.checkEmployeeQuota(ctx, c); err != nil {
					return err
				}
			}
		}

		email := validator.NormalizeEmail(req.Email)
		exists, err := s.UserRepository.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return user.ErrUserEmailExists
		}

		created, err = s.UserRepository.Create(ctx, user.User{
			FullName:     strings.TrimSpace(req.FullName),
			NationalID:   req.NationalID,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			CompanyID:    companyID,
			JobTitle:     req.JobTitle,
			PhoneNumber:  req.PhoneNumber,
			Status:       user.StatusActive,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return err
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.CreateEmployeeResponse{}, err
	}

	slog.Info("user created", "user_id", created.ID, "role", created.Role, "by", caller.UserID)
	return employee.CreateEmployeeResponse{Employee: created.ToResponse(), TemporaryPassword: tempPassword}, nil
}

// visibleUser loads a user inside the caller's scope.
func (s *EmployeeServiceImpl) visibleUser(ctx context.Context, caller user.Caller, id string) (user.User, error) {
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, employee.ErrEmployeeNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	scope, err := s.resolver.ResolveScope(ctx, caller, nil)
	if err != nil {
		return user.User{}, err
	}
	if err := scope.RequireUser(u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// manageableUser loads a user the caller may change: in scope and of a lower role.
func (s *EmployeeServiceImpl) manageableUser(ctx context.Context, caller user.Caller, id string) (user.User, error) {
	if !caller.Role.IsManager() {
		return user.User{}, access.ErrPermissionDenied
	}
	u, err := s.visibleUser(ctx, caller, id)
	if err != nil {
		return user.User{}, err
	}
	if !caller.IsSuperAdmin() && !caller.Role.Outranks(u.Role) {
		return user.User{}, user.ErrCannotModifyHigherRole
	}
	return u, nil
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, caller user.Caller, id string) (user.UserResponse, error) {
	u, err := s.visibleUser(ctx, caller, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, caller user.Caller, id string, req employee.UpdateEmployeeRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	var u user.User
	var err error
	if id == caller.UserID && caller.Role.IsManager() {
		u, err = s.visibleUser(ctx, caller, id)
	} else {
		u, err = s.manageableUser(ctx, caller, id)
	}
	if err != nil {
		return user.UserResponse{}, err
	}

	req.ApplyTo(&u)
	updated, err := s.UserRepository.Update(ctx, u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.UserResponse{}, employee.ErrEmployeeNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to update user: %w", err)
	}
	return updated.ToResponse(), nil
}

func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, caller user.Caller, id string) error {
	if id == caller.UserID {
		return user.ErrCannotModifySelf
	}
	u, err := s.manageableUser(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.UserRepository.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if u.AttachmentPath != nil {
		s.fileService.ReplaceCleanup(ctx, u.AttachmentPath)
	}

	slog.Info("user deleted", "user_id", u.ID, "by", caller.UserID)
	return nil
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, caller user.Caller, filter employee.EmployeeFilter) (employee.ListEmployeeResponse, error) {
	if err := filter.Validate(); err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	scope, err := s.resolver.ResolveScope(ctx, caller, filter.CompanyID)
	if err != nil {
		return employee.ListEmployeeResponse{}, err
	}

	resp := employee.ListEmployeeResponse{Page: filter.Page, Limit: filter.Limit, Employees: []user.UserResponse{}}
	if scope.IsEmpty() {
		return resp, nil
	}

	listFilter := user.ListFilter{
		AllCompanies: scope.All,
		CompanyIDs:   scope.CompanyIDs,
		Search:       filter.Search,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}
	if scope.IsSelf() {
		listFilter.UserID = &scope.UserID
	}
	if filter.Role != nil {
		listFilter.Roles = []user.Role{user.Role(*filter.Role)}
	}

	users, total, err := s.UserRepository.List(ctx, listFilter)
	if err != nil {
		return employee.ListEmployeeResponse{}, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		resp.Employees = append(resp.Employees, u.ToResponse())
	}
	resp.TotalCount = total
	resp.TotalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	return resp, nil
}

func (s *EmployeeServiceImpl) SuspendEmployee(ctx context.Context, caller user.Caller, id string) (employee.SuspendResponse, error) {
	if id == caller.UserID {
		return employee.SuspendResponse{}, user.ErrCannotModifySelf
	}
	u, err := s.manageableUser(ctx, caller, id)
	if err != nil {
		return employee.SuspendResponse{}, err
	}

	suspended := !u.IsSuspended
	if err := s.UserRepository.SetSuspended(ctx, u.ID, suspended); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.SuspendResponse{}, employee.ErrEmployeeNotFound
		}
		return employee.SuspendResponse{}, fmt.Errorf("failed to update suspension: %w", err)
	}

	slog.Info("user suspension toggled", "user_id", u.ID, "is_suspended", suspended, "by", caller.UserID)
	return employee.SuspendResponse{ID: u.ID, IsSuspended: suspended}, nil
}

func (s *EmployeeServiceImpl) UploadAttachment(ctx context.Context, caller user.Caller, req employee.UploadAttachmentRequest) (user.UserResponse, error) {
	if err := company.ValidateAttachment(req.FileHeader); err != nil {
		return user.UserResponse{}, err
	}
	u, err := s.manageableUser(ctx, caller, req.EmployeeID)
	if err != nil {
		return user.UserResponse{}, err
	}

	path, err := s.fileService.UploadEmployeeAttachment(ctx, u.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := s.UserRepository.UpdateAttachment(ctx, u.ID, path); err != nil {
		_ = s.fileService.DeleteFile(ctx, path)
		if errors.Is(err, pgx.ErrNoRows) {
			return user.UserResponse{}, employee.ErrEmployeeNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to update user attachment: %w", err)
	}
	s.fileService.ReplaceCleanup(ctx, u.AttachmentPath)

	u.AttachmentPath = &path
	return u.ToResponse(), nil
}
