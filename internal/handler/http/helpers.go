package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/auth"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/domain/user"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/middleware"
	"github.com/nabd-altamayyuz/hr-backend-go/internal/handler/http/response"
)

const maxUploadSize = 10 << 20

var errBadRequest = errors.New("bad request")

// currentCaller writes 401 and returns false when the request is unauthenticated.
func currentCaller(w http.ResponseWriter, r *http.Request) (user.Caller, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return user.Caller{}, false
	}
	return caller, true
}

// decodeJSON writes 400 and returns false on a malformed body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// decodeMultipart reads the JSON 'data' field into dst and returns the
// optional file under fileField.
func decodeMultipart(r *http.Request, dst interface{}, fileField string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, errBadRequest
	}
	if dataJSON := r.FormValue("data"); dataJSON != "" {
		if err := json.Unmarshal([]byte(dataJSON), dst); err != nil {
			return nil, nil, errBadRequest
		}
	}
	file, header, err := r.FormFile(fileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, errBadRequest
	}
	return file, header, nil
}

// requireFile reads the mandatory upload under field.
func requireFile(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return nil, nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		response.BadRequest(w, "Field '"+field+"' is required", nil)
		return nil, nil, false
	}
	return file, header, true
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryPtr(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// sessionFrom records where a login came from.
func sessionFrom(r *http.Request) auth.SessionTrackingRequest {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return auth.SessionTrackingRequest{IPAddress: ip, UserAgent: r.UserAgent()}
}
