package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/server/httpserver"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
)

// Reasons returned in the error body, as the production backend words them.
const (
	ReasonBadLogin        = "Username atau password salah"
	ReasonWrongPassword   = "Password lama tidak benar"
	ReasonUserNotFound    = "User tidak ditemukan"
	ReasonTokenInvalid    = "Token tidak valid atau sudah kedaluwarsa"
	ReasonTokenOwner      = "Username tidak sesuai dengan pemilik token!"
	ReasonInvalidBody     = "invalid request body"
	ReasonPasswordChanged = "Password berhasil diubah"
)

// Audit log page size bounds.
const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

func (s *Server) routes() http.Handler {
	base := strings.TrimRight(s.cfg.HTTP.APIBase, "/")
	auth := httpserver.Auth(s.validate)
	protect := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+base+"/auth/login", s.handleLogin)
	mux.Handle("POST "+base+"/auth/change-password", protect(s.handleChangePassword))
	mux.Handle("GET "+base+"/users", protect(s.handleListUsers))
	mux.Handle("GET "+base+"/users/{id}", protect(s.handleGetUser))
	mux.Handle("POST "+base+"/tokens/generate", protect(s.handleGenerateToken))
	mux.HandleFunc("POST "+base+"/tokens/use", s.handleUseToken)
	mux.Handle("GET "+base+"/audit-logs", protect(s.handleAuditLogs))
	mux.HandleFunc("GET "+base+"/health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	middlewares := []httpserver.Middleware{
		httpserver.Recover(s.log),
		httpserver.RequestID(),
	}
	if rl := s.cfg.RateLimit; rl.RPS > 0 {
		middlewares = append(middlewares, httpserver.RateLimit(rl.RPS, rl.Burst))
	}
	middlewares = append(middlewares, httpserver.Audit(s.log, s.metrics.ServerRequests))

	return httpserver.Chain(mux, middlewares...)
}

// Wire shapes.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	FullName           string `json:"full_name"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userJSON struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

type generateRequest struct {
	UserID          int64 `json:"user_id"`
	DurationMinutes *int  `json:"duration_minutes"`
}

type useRequest struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type auditJSON struct {
	ID           int64          `json:"id"`
	Action       string         `json:"action"`
	AdminID      *int64         `json:"admin_id"`
	TargetUserID *int64         `json:"target_user_id"`
	Details      map[string]any `json:"details"`
	ClientHost   string         `json:"client_host"`
	CreatedAt    string         `json:"created_at"`
}

func toUserJSON(u domain.UserRecord) userJSON {
	return userJSON{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Department: u.Department,
		Role:       u.Role,
		IsActive:   u.IsActive,
		CreatedAt:  formatTime(u.CreatedAt),
	}
}

// caller returns the admin stored by the Auth middleware.
func caller(r *http.Request) domain.Identity {
	id, _ := httpserver.PrincipalFromContext(r.Context()).(domain.Identity)
	return id
}

// reqLog returns the server logger tagged with the request ID and, on
// protected routes, the calling admin.
func (s *Server) reqLog(r *http.Request) logger.Logger {
	ctx := logger.WithLogger(r.Context(), s.log)
	if id := caller(r); id.Username != "" {
		ctx = logger.WithActor(ctx, id.Username)
	}
	return logger.L(ctx)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpserver.DecodeJSON(r, &req); err != nil {
		httpserver.WriteError(w, http.StatusUnprocessableEntity, ReasonInvalidBody)
		return
	}

	host := httpserver.ClientIP(r)
	id, ok := s.users.authenticate(req.Username, req.Password)
	if !ok {
		s.audit.record(s.now(), domain.AuditLogin, 0, 0, host, map[string]any{
			"username": req.Username,
			"success":  false,
			"reason":   "Invalid credentials",
		})
		httpserver.WriteError(w, http.StatusUnauthorized, ReasonBadLogin)
		return
	}

	credential, err := s.openSession(id.ID)
	if err != nil {
		s.reqLog(r).Error("open session failed", "error", err)
		httpserver.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.audit.record(s.now(), domain.AuditLogin, id.ID, 0, host, map[string]any{
		"username":   id.Username,
		"success":    true,
		"user_agent": r.UserAgent(),
	})

	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": credential,
		"token_type":   "bearer",
		"user": loginUser{
			ID:                 id.ID,
			Username:           id.Username,
			FullName:           id.FullName,
			Role:               id.Role,
			MustChangePassword: id.MustChangePassword,
		},
	})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := httpserver.DecodeJSON(r, &req); err != nil {
		httpserver.WriteError(w, http.StatusUnprocessableEntity, ReasonInvalidBody)
		return
	}
	if req.NewPassword == "" {
		httpserver.WriteError(w, http.StatusBadRequest, "Password baru wajib diisi")
		return
	}

	admin := caller(r)
	first, err := s.users.changePassword(admin.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, errWrongPassword):
		httpserver.WriteError(w, http.StatusBadRequest, ReasonWrongPassword)
		return
	case err != nil:
		s.reqLog(r).Error("change password failed", "user_id", admin.ID, "error", err)
		httpserver.WriteError(w, http.StatusInternalServerError, "Gagal mengganti password")
		return
	}

	s.audit.record(s.now(), domain.AuditPasswordChanged, admin.ID, admin.ID, httpserver.ClientIP(r), map[string]any{
		"first_time_change": first,
	})
	httpserver.WriteJSON(w, http.StatusOK, map[string]string{"message": ReasonPasswordChanged})
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	users := s.users.list()
	out := make([]userJSON, 0, len(users))
	for _, u := range users {
		out = append(out, toUserJSON(u))
	}
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpserver.WriteError(w, http.StatusUnprocessableEntity, "user_id must be an integer")
		return
	}
	u, ok := s.users.get(id)
	if !ok {
		httpserver.WriteError(w, http.StatusNotFound, ReasonUserNotFound)
		return
	}
	httpserver.WriteJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpserver.DecodeJSON(r, &req); err != nil {
		httpserver.WriteError(w, http.StatusUnprocessableEntity, ReasonInvalidBody)
		return
	}
	minutes := domain.DefaultTokenDurationMinutes
	if req.DurationMinutes != nil {
		minutes = *req.DurationMinutes
	}

	if _, ok := s.users.get(req.UserID); !ok {
		httpserver.WriteError(w, http.StatusNotFound, ReasonUserNotFound)
		return
	}
	if limit := s.cfg.Token.MaxDurationMinutes; minutes > limit {
		httpserver.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Durasi maksimal %d menit", limit))
		return
	}
	if minutes < 1 {
		httpserver.WriteError(w, http.StatusBadRequest, "Durasi minimal 1 menit")
		return
	}

	admin := caller(r)
	tok, expiresAt, err := s.tokens.issue(req.UserID, admin.ID, minutes, s.now())
	if err != nil {
		s.reqLog(r).Error("issue token failed", "error", err)
		httpserver.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	s.metrics.TokensIssued.Inc()
	s.audit.record(s.now(), domain.AuditTokenGenerated, admin.ID, req.UserID, httpserver.ClientIP(r), map[string]any{
		"duration_minutes": minutes,
		"expires_at":       formatTime(expiresAt),
	})

	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"token":            tok,
		"expires_at":       formatTime(expiresAt),
		"duration_minutes": minutes,
		"user_id":          req.UserID,
	})
}

func (s *Server) handleUseToken(w http.ResponseWriter, r *http.Request) {
	var req useRequest
	if err := httpserver.DecodeJSON(r, &req); err != nil {
		httpserver.WriteError(w, http.StatusUnprocessableEntity, ReasonInvalidBody)
		return
	}

	username := strings.TrimSpace(req.Username)
	owns := func(userID int64) bool {
		if username == "" {
			return true
		}
		u, ok := s.users.get(userID)
		return ok && u.Username == username
	}

	now := s.now()
	rec, err := s.tokens.redeem(strings.TrimSpace(req.Token), now, owns)
	switch {
	case errors.Is(err, errTokenOwner):
		s.reqLog(r).Warn("token presented by another employee", "claimed_username", username)
		httpserver.WriteError(w, http.StatusForbidden, ReasonTokenOwner)
		return
	case err != nil:
		s.reqLog(r).Debug("token rejected", "error", err)
		httpserver.WriteError(w, http.StatusNotFound, ReasonTokenInvalid)
		return
	}

	id, secret, ok := s.users.secret(rec.userID)
	if !ok {
		httpserver.WriteError(w, http.StatusNotFound, ReasonUserNotFound)
		return
	}
	s.metrics.TokensConsumed.Inc()

	host := httpserver.ClientIP(r)
	requestID := httpserver.GetRequestIDFromContext(r.Context())
	s.audit.record(now, domain.AuditTokenUsed, rec.adminID, rec.userID, host, map[string]any{
		"request_id":        requestID,
		"original_duration": rec.minutes,
	})
	s.audit.record(now, domain.AuditPasswordViewed, rec.adminID, rec.userID, host, map[string]any{
		"request_id": requestID,
		"username":   id.Username,
	})

	httpserver.WriteJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":         id.ID,
			"username":   id.Username,
			"full_name":  id.FullName,
			"department": id.Department,
		},
		"password": secret,
	})
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpserver.WriteError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}
	switch {
	case limit < 1:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}

	entries := s.audit.recent(limit)
	out := make([]auditJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, auditJSON{
			ID:           e.ID,
			Action:       e.Action,
			AdminID:      e.AdminID,
			TargetUserID: e.TargetUserID,
			Details:      e.Details,
			ClientHost:   e.ClientHost,
			CreatedAt:    formatTime(e.CreatedAt),
		})
	}
	httpserver.WriteJSON(w, http.StatusOK, map[string]any{"logs": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httpserver.WriteJSON(w, http.StatusOK, map[string]string{
		"status":            "healthy",
		"timestamp":         formatTime(s.now()),
		"encryption_status": "ok",
	})
}
