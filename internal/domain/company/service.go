package company

import (
	"context"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
)

type CompanyService interface {
	Create(ctx context.Context, caller user.Caller, req CreateCompanyRequest) (CreateCompanyResponse, error)
	CreateSub(ctx context.Context, caller user.Caller, parentID string, req CreateSubCompanyRequest) (CompanyResponse, error)
	List(ctx context.Context, caller user.Caller, filter ListCompanyFilter) (ListCompanyResponse, error)
	GetByID(ctx context.Context, caller user.Caller, id string) (CompanyResponse, error)
	Update(ctx context.Context, caller user.Caller, id string, req UpdateCompanyRequest) (CompanyResponse, error)
	ToggleSuspend(ctx context.Context, caller user.Caller, id string) (SuspendResponse, error)
	Delete(ctx context.Context, caller user.Caller, id string) error
	UploadAttachment(ctx context.Context, caller user.Caller, req UploadAttachmentRequest) (AttachmentResponse, error)
}
