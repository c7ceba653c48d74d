package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	pkgAuth "github.com/printflow/printflow/internal/pkg/auth"
	testhelpers "github.com/printflow/printflow/internal/test"
)

type userDirectoryStub struct {
	user *model.User
	err  error
}

func (s userDirectoryStub) UserByID(context.Context, uuid.UUID) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func newAuthedEngine(parser TokenParser, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired(parser)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		id, _ := c.Get(UserIDContextKey)
		c.String(http.StatusOK, "%v", id)
	})
	engine.GET("/protected", chain...)
	return engine
}

func TestAuthRequiredAcceptsBearerHeader(t *testing.T) {
	userID := uuid.New()
	engine := newAuthedEngine(testhelpers.TokenParserStub{ID: userID})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != userID.String() {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAuthRequiredAcceptsCookie(t *testing.T) {
	engine := newAuthedEngine(testhelpers.TokenParserStub{ID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "printflow_token", Value: "cookie-token"})
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	engine := newAuthedEngine(testhelpers.TokenParserStub{ID: uuid.New()})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRequiredRejectsInvalidToken(t *testing.T) {
	engine := newAuthedEngine(testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthRequiredInternalErrorOnParserFailure(t *testing.T) {
	engine := newAuthedEngine(testhelpers.TokenParserStub{Err: errors.New("backend down")})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	admin := &model.User{ID: uuid.New(), Role: model.UserRoleAdmin}

	cases := []struct {
		name   string
		users  userDirectoryStub
		roles  []model.UserRole
		status int
	}{
		{"allowed", userDirectoryStub{user: admin}, []model.UserRole{model.UserRoleAdmin}, http.StatusOK},
		{"one of several", userDirectoryStub{user: admin}, []model.UserRole{model.UserRoleValidator, model.UserRoleAdmin}, http.StatusOK},
		{"forbidden", userDirectoryStub{user: admin}, []model.UserRole{model.UserRolePrintShop}, http.StatusForbidden},
		{"lookup failed", userDirectoryStub{err: domainErrors.ErrNotFound}, []model.UserRole{model.UserRoleAdmin}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newAuthedEngine(testhelpers.TokenParserStub{ID: admin.ID}, RequireRole(tc.users, tc.roles...))
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer t")
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestDecompressRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(DecompressRequest())
	engine.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("payload")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	zw.Close()

	req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "payload" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestDecompressRequestRejectsBadGzip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(DecompressRequest())
	engine.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
}
