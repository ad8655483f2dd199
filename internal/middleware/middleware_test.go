package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentadmin/internal/app/models"
	"github.com/yigit/studentadmin/internal/app/models/dto"
	"github.com/yigit/studentadmin/internal/pkg/apperrors"
	"github.com/yigit/studentadmin/internal/pkg/auth"
)

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "studentadmin"})
}

func newRouter(jwt *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(jwt)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/secure", m.JWTAuth(), m.RoleRequired(models.RoleSuperAdmin, models.RoleAdmin), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwt := newJWT()
	r := newRouter(jwt)

	admin, _ := jwt.GenerateAccessToken(7, "admin@uni.edu", string(models.RoleAdmin))
	student, _ := jwt.GenerateAccessToken(8, "s@uni.edu", string(models.RoleStudent))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Token abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "role not allowed", header: "Bearer " + student, want: http.StatusForbidden},
		{name: "allowed role", header: "Bearer " + admin, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if w.Header().Get(HeaderRequestID) == "" {
				t.Error("response is missing the request id")
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{apperrors.ErrStudentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Student not found"},
		{fmt.Errorf("wrapped: %w", apperrors.ErrMatricNumberExists), http.StatusConflict, dto.ErrorCodeConflict, "Student with this matric number already exists"},
		{apperrors.NewInvalidQueryError("limit must be a positive integer"), http.StatusBadRequest, dto.ErrorCodeInvalidQuery, "limit must be a positive integer"},
		{apperrors.NewDecodeError("Error parsing CSV file", nil), http.StatusBadRequest, dto.ErrorCodeDecodeFailed, "Error parsing CSV file"},
		{apperrors.NewInvalidFormatError("Only CSV files are allowed"), http.StatusBadRequest, dto.ErrorCodeInvalidFormat, "Only CSV files are allowed"},
		{apperrors.NewValidationError("file", "file is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "file is required"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(c, tt.err)

		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
		}
		var resp dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if resp.Success || resp.Error == nil || resp.Error.Code != tt.code || resp.Error.Message != tt.message {
			t.Errorf("%v: unexpected body %s", tt.err, w.Body.String())
		}
	}
}
