package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/hr-portal/internal/transport"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO) Result
	Register(ctx context.Context, dto RegisterDTO) Result
	Logout(ctx context.Context, token string) Result
	Session(ctx context.Context, token string) Result
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	cookies CookieConfig
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI, cookies CookieConfig) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
		cookies:     cookies,
	}
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res := h.Service.Login(r.Context(), dto)
	if res.Success {
		http.SetCookie(w, h.cookies.sessionCookie(res.Token))
	}
	h.WriteJSON(w, res.Code, res)
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res := h.Service.Register(r.Context(), dto)
	if res.Success {
		http.SetCookie(w, h.cookies.sessionCookie(res.Token))
	}
	h.WriteJSON(w, res.Code, res)
}

// Logout handles POST /api/auth/logout. The cookie is cleared whatever the
// token state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.Service.Logout(r.Context(), TokenFromRequest(r))
	http.SetCookie(w, h.cookies.clearedCookie())
	h.WriteJSON(w, http.StatusOK, res)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	res := h.Service.Session(r.Context(), TokenFromRequest(r))
	h.WriteJSON(w, res.Code, res)
}
