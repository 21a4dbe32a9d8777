package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/company"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/metrics"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/password"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/pkg/validator"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/repository/postgresql"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/service/file"
)

type CompanyServiceImpl struct {
	company.CompanyRepository
	user.UserRepository
	transactor  postgresql.Transactor
	resolver    access.Resolver
	fileService file.FileService
	metrics     *metrics.Metrics

	now func() time.Time
	loc *time.Location
}

func NewCompanyService(
	transactor postgresql.Transactor,
	companyRepository company.CompanyRepository,
	userRepository user.UserRepository,
	resolver access.Resolver,
	fileService file.FileService,
	m *metrics.Metrics,
	loc *time.Location,
) *CompanyServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &CompanyServiceImpl{
		CompanyRepository: companyRepository,
		UserRepository:    userRepository,
		transactor:        transactor,
		resolver:          resolver,
		fileService:       fileService,
		metrics:           m,
		now:               time.Now,
		loc:               loc,
	}
}

func (s *CompanyServiceImpl) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *CompanyServiceImpl) toResponse(c company.Company) company.CompanyResponse {
	resp := c.ToResponse()
	if c.AttachmentPath != nil {
		url := s.fileService.GetFileURL(*c.AttachmentPath)
		resp.AttachmentURL = &url
	}
	return resp
}

func (s *CompanyServiceImpl) getCompany(ctx context.Context, id string) (company.Company, error) {
	c, err := s.CompanyRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// scopedCompany loads a company the caller may manage.
func (s *CompanyServiceImpl) scopedCompany(ctx context.Context, caller user.Caller, id string) (company.Company, error) {
	if !caller.Role.IsManager() {
		return company.Company{}, access.ErrPermissionDenied
	}
	c, err := s.getCompany(ctx, id)
	if err != nil {
		return company.Company{}, err
	}
	scope, err := s.resolver.ResolveScope(ctx, caller, nil)
	if err != nil {
		return company.Company{}, err
	}
	if err := scope.RequireCompany(&c.ID); err != nil {
		return company.Company{}, err
	}
	return c, nil
}

// Create registers a top-level company. When the company email is not yet
// registered, a company admin account is created for it with a temporary password.
func (s *CompanyServiceImpl) Create(ctx context.Context, caller user.Caller, req company.CreateCompanyRequest) (company.CreateCompanyResponse, error) {
	if !caller.IsSuperAdmin() {
		return company.CreateCompanyResponse{}, access.ErrPermissionDenied
	}
	if err := req.Validate(); err != nil {
		return company.CreateCompanyResponse{}, err
	}

	var resp company.CreateCompanyResponse
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		newCompany, err := s.CompanyRepository.Create(ctx, req.ToCompany())
		if err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		resp.Company = s.toResponse(newCompany)

		if req.Email == nil || validator.IsEmpty(*req.Email) {
			return nil
		}
		email := validator.NormalizeEmail(*req.Email)
		exists, err := s.UserRepository.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("failed to check admin email: %w", err)
		}
		if exists {
			slog.Info("company email already registered, no admin account created", "company_id", newCompany.ID)
			return nil
		}

		tempPassword, err := password.GenerateTemporary()
		if err != nil {
			return err
		}
		hash, err := password.Hash(tempPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		fullName := newCompany.Name
		if req.AdminFullName != nil && !validator.IsEmpty(*req.AdminFullName) {
			fullName = *req.AdminFullName
		} else if req.ResponsiblePerson != nil && !validator.IsEmpty(*req.ResponsiblePerson) {
			fullName = *req.ResponsiblePerson
		}

		admin, err := s.UserRepository.Create(ctx, user.User{
			FullName:     fullName,
			Email:        email,
			PasswordHash: hash,
			Role:         user.RoleCompanyAdmin,
			CompanyID:    &newCompany.ID,
			PhoneNumber:  req.PhoneNumber,
			Status:       user.StatusActive,
		})
		if err != nil {
			return fmt.Errorf("failed to create company admin: %w", err)
		}
		adminResp := admin.ToResponse()
		resp.Admin = &adminResp
		resp.TemporaryPassword = &tempPassword
		return nil
	})
	if err != nil {
		return company.CreateCompanyResponse{}, err
	}

	slog.Info("company created", "company_id", resp.Company.ID, "admin_created", resp.Admin != nil)
	return resp, nil
}

// CreateSub adds a sub-company under a top-level parent, guarded by the
// parent's sub-account quota.
func (s *CompanyServiceImpl) CreateSub(ctx context.Context, caller user.Caller, parentID string, req company.CreateSubCompanyRequest) (company.CompanyResponse, error) {
	if !caller.IsSuperAdmin() && caller.Role != user.RoleCompanyAdmin {
		return company.CompanyResponse{}, access.ErrPermissionDenied
	}
	if !caller.IsSuperAdmin() && (!caller.HasCompany() || *caller.CompanyID != parentID) {
		return company.CompanyResponse{}, access.ErrPermissionDenied
	}
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	var created company.Company
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		parent, err := s.CompanyRepository.GetByIDForUpdate(ctx, parentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return company.ErrCompanyNotFound
			}
			return fmt.Errorf("failed to lock parent company: %w", err)
		}
		if !parent.IsTopLevel() {
			return company.ErrNestingTooDeep
		}

		count, err := s.CompanyRepository.CountSubCompanies(ctx, parent.ID)
		if err != nil {
			return fmt.Errorf("failed to count sub-companies: %w", err)
		}
		if count >= int64(parent.AllowedSubAccounts) {
			s.metrics.QuotaRejected(company.QuotaSubAccounts)
			slog.Warn("sub-account quota exceeded", "company_id", parent.ID, "allowed", parent.AllowedSubAccounts)
			return &company.QuotaExceededError{Resource: company.QuotaSubAccounts, Allowed: parent.AllowedSubAccounts}
		}

		today := s.today()
		sub := company.Company{
			ParentCompanyID:              &parent.ID,
			SubscriptionStartDate:        &today,
			SubscriptionEndDate:          parent.SubscriptionEndDate,
			NotificationDaysBeforeExpiry: parent.NotificationDaysBeforeExpiry,
			AllowedEmployees:             req.AllowedEmployees,
			AllowedSubAccounts:           0,
			PricePerEmployee:             req.PricePerEmployee,
			TaxRate:                      req.TaxRate,
		}
		req.CompanyProfile.ApplyTo(&sub)
		sub.RecomputeTotalPrice()

		created, err = s.CompanyRepository.Create(ctx, sub)
		if err != nil {
			return fmt.Errorf("failed to create sub-company: %w", err)
		}
		return nil
	})
	if err != nil {
		return company.CompanyResponse{}, err
	}

	slog.Info("sub-company created", "company_id", created.ID, "parent_id", parentID)
	return s.toResponse(created), nil
}

func (s *CompanyServiceImpl) List(ctx context.Context, caller user.Caller, filter company.ListCompanyFilter) (company.ListCompanyResponse, error) {
	if !caller.Role.IsManager() {
		return company.ListCompanyResponse{}, access.ErrPermissionDenied
	}
	if err := filter.Validate(); err != nil {
		return company.ListCompanyResponse{}, err
	}

	scope, err := s.resolver.ResolveScope(ctx, caller, filter.CompanyID)
	if err != nil {
		return company.ListCompanyResponse{}, err
	}

	resp := company.ListCompanyResponse{Page: filter.Page, Limit: filter.Limit, Companies: []company.CompanyResponse{}}
	if scope.IsEmpty() {
		return resp, nil
	}

	companies, total, err := s.CompanyRepository.List(ctx, company.ListFilter{
		AllCompanies: scope.All,
		CompanyIDs:   scope.CompanyIDs,
		TopLevelOnly: filter.TopLevelOnly,
		Search:       filter.Search,
		Page:         filter.Page,
		Limit:        filter.Limit,
	})
	if err != nil {
		return company.ListCompanyResponse{}, fmt.Errorf("failed to list companies: %w", err)
	}

	for _, c := range companies {
		resp.Companies = append(resp.Companies, s.toResponse(c))
	}
	resp.TotalCount = total
	resp.TotalPages = int(math.Ceil(float64(total) / float64(filter.Limit)))
	return resp, nil
}

// GetByID returns the company with its direct sub-companies and employee count.
func (s *CompanyServiceImpl) GetByID(ctx context.Context, caller user.Caller, id string) (company.CompanyResponse, error) {
	c, err := s.scopedCompany(ctx, caller, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	subs, err := s.CompanyRepository.ListSubCompanyIDs(ctx, c.ID)
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to list sub-companies: %w", err)
	}
	employees, err := s.UserRepository.CountByCompanyAndRole(ctx, c.ID, user.RoleEmployee)
	if err != nil {
		return company.CompanyResponse{}, fmt.Errorf("failed to count employees: %w", err)
	}

	resp := s.toResponse(c)
	resp.SubCompanyIDs = subs
	resp.EmployeeCount = &employees
	return resp, nil
}

// Update edits a company in the caller's scope. Subscription terms belong to
// super admins; a company admin may also set them on its direct sub-companies
// within the parent's limits. Everyone else edits the profile only.
func (s *CompanyServiceImpl) Update(ctx context.Context, caller user.Caller, id string, req company.UpdateCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}
	c, err := s.scopedCompany(ctx, caller, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	expected := c.UpdatedAt
	if req.UpdatedAt != nil {
		expected = *req.UpdatedAt
	}

	switch {
	case caller.IsSuperAdmin():
		req.ApplyTo(&c)
	case caller.Role == user.RoleCompanyAdmin && caller.HasCompany() &&
		c.ParentCompanyID != nil && *c.ParentCompanyID == *caller.CompanyID:
		parent, err := s.getCompany(ctx, *c.ParentCompanyID)
		if err != nil {
			return company.CompanyResponse{}, err
		}
		req.ApplyTo(&c)
		if err := c.WithinLimitsOf(parent); err != nil {
			return company.CompanyResponse{}, err
		}
	default:
		if req.ChangesTerms(c) {
			slog.Warn("subscription terms change refused", "company_id", c.ID, "by", caller.UserID)
			return company.CompanyResponse{}, company.ErrSubscriptionTermsLocked
		}
		req.CompanyProfile.ApplyTo(&c)
	}

	updated, err := s.CompanyRepository.Update(ctx, c, expected)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.CompanyResponse{}, company.ErrConcurrencyConflict
		}
		return company.CompanyResponse{}, fmt.Errorf("failed to update company: %w", err)
	}
	return s.toResponse(updated), nil
}

// ToggleSuspend flips is_suspended. Super admins may suspend any company;
// company admins only their direct sub-companies.
func (s *CompanyServiceImpl) ToggleSuspend(ctx context.Context, caller user.Caller, id string) (company.SuspendResponse, error) {
	c, err := s.getCompany(ctx, id)
	if err != nil {
		return company.SuspendResponse{}, err
	}

	switch {
	case caller.IsSuperAdmin():
	case caller.Role == user.RoleCompanyAdmin && caller.HasCompany() &&
		c.ParentCompanyID != nil && *c.ParentCompanyID == *caller.CompanyID:
	default:
		return company.SuspendResponse{}, access.ErrPermissionDenied
	}

	suspended := !c.IsSuspended
	if err := s.CompanyRepository.SetSuspended(ctx, c.ID, suspended); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.SuspendResponse{}, company.ErrCompanyNotFound
		}
		return company.SuspendResponse{}, fmt.Errorf("failed to update suspension: %w", err)
	}

	slog.Info("company suspension toggled", "company_id", c.ID, "is_suspended", suspended, "by", caller.UserID)
	return company.SuspendResponse{ID: c.ID, IsSuspended: suspended}, nil
}

func (s *CompanyServiceImpl) Delete(ctx context.Context, caller user.Caller, id string) error {
	if !caller.IsSuperAdmin() {
		return access.ErrPermissionDenied
	}
	if err := s.CompanyRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.ErrCompanyNotFound
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}
	slog.Info("company deleted", "company_id", id, "by", caller.UserID)
	return nil
}

func (s *CompanyServiceImpl) UploadAttachment(ctx context.Context, caller user.Caller, req company.UploadAttachmentRequest) (company.AttachmentResponse, error) {
	if err := req.Validate(); err != nil {
		return company.AttachmentResponse{}, err
	}
	c, err := s.scopedCompany(ctx, caller, req.CompanyID)
	if err != nil {
		return company.AttachmentResponse{}, err
	}

	path, err := s.fileService.UploadCompanyAttachment(ctx, c.ID, req.File, req.FileHeader.Filename)
	if err != nil {
		return company.AttachmentResponse{}, err
	}
	if err := s.CompanyRepository.UpdateAttachment(ctx, c.ID, path); err != nil {
		_ = s.fileService.DeleteFile(ctx, path)
		if errors.Is(err, pgx.ErrNoRows) {
			return company.AttachmentResponse{}, company.ErrCompanyNotFound
		}
		return company.AttachmentResponse{}, fmt.Errorf("failed to update company attachment: %w", err)
	}
	s.fileService.ReplaceCleanup(ctx, c.AttachmentPath)

	return company.AttachmentResponse{AttachmentURL: s.fileService.GetFileURL(path)}, nil
}
