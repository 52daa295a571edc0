package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"surfaceflow/internal/fixture"
	"surfaceflow/internal/version"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "SurfaceFlow AI System"

// The login endpoint is a stand-in until real credential issuance exists.
const stubToken = "mock-jwt-token-12345"

type healthResp struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type loginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResp struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

type loginResp struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	User    userResp `json:"user"`
}

// Health godoc
// @Summary Liveness probe
// @Tags platform
// @Produce json
// @Success 200 {object} healthResp
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResp{
		Status:    "healthy",
		Service:   ServiceName,
		Version:   version.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Login godoc
// @Summary Stub login
// @Description Accepts any non-empty email/password pair and returns a fixed token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body loginDTO true "credentials"
// @Success 200 {object} loginResp
// @Failure 401 {object} apiError
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto loginDTO
	if err := decodeBody(r, &dto); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if dto.Email == "" || dto.Password == "" {
		writeErr(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, loginResp{
		Success: true,
		Token:   stubToken,
		User:    userResp{ID: 1, Email: dto.Email, Name: "Demo User", Role: "admin"},
	})
}

// Logout godoc
// @Summary Stub logout
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// CurrentUser godoc
// @Summary Stub current user
// @Tags auth
// @Produce json
// @Success 200 {object} userResp
// @Router /auth/me [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userResp{
		ID:          1,
		Email:       "demo@surfaceflow.ai",
		Name:        "Demo User",
		Role:        "admin",
		Permissions: []string{"modules.view", "modules.manage", "automations.run"},
	})
}

// ListModules godoc
// @Summary List automation modules
// @Tags modules
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /modules [get]
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules := fixture.Modules()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"modules": modules,
		"total":   len(modules),
	})
}

// ModuleDetail godoc
// @Summary Get module configuration and statistics
// @Tags modules
// @Produce json
// @Param id path string true "module id, e.g. AM-002"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} apiError
// @Router /modules/{id} [get]
func (h *Handler) ModuleDetail(w http.ResponseWriter, r *http.Request) {
	m, ok := fixture.ModuleDetail(chi.URLParam(r, "id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "Module not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"module":  m,
	})
}
