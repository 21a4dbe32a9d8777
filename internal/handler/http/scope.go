package http

import (
	"net/http"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/access"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

type ScopeHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type scopeHandlerImpl struct {
	resolver access.Resolver
}

func NewScopeHandler(resolver access.Resolver) ScopeHandler {
	return &scopeHandlerImpl{resolver: resolver}
}

// Get returns the companies the caller may see, optionally narrowed by company_id.
func (h *scopeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentCaller(w, r)
	if !ok {
		return
	}
	scope, err := h.resolver.ResolveScope(r.Context(), caller, queryPtr(r, "company_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, scope.ToResponse())
}
