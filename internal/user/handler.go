// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fullcourthq/fullcourt-api/internal/core"
	"github.com/fullcourthq/fullcourt-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Get("/community", h.Community)
		r.Get("/{userID}", h.GetUser)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Post("/recalculate-stats", h.RecalculateStats)
		r.Put("/badges", h.BulkAssignBadge)
		r.Put("/{userID}/badge", h.AssignBadge)
		r.Put("/{userID}/verify", h.SetVerified)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, h.withReferrer(r, user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateMe(
		r.Context(), middleware.GetUserID(r.Context()), req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, h.withReferrer(r, user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToPublicUserResponse(user))
}

func (h *Handler) Community(w http.ResponseWriter, r *http.Request) {
	community, err := h.service.Community(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, community)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Search: r.URL.Query().Get("search"),
		Badge:  r.URL.Query().Get("badge"),
	}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if size, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		params.PageSize = size
	}
	if v := r.URL.Query().Get("verified"); v != "" {
		verified := v == "true"
		params.Verified = &verified
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) AssignBadge(w http.ResponseWriter, r *http.Request) {
	var req AssignBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.AssignBadge(
		r.Context(), chi.URLParam(r, "userID"), req.Badge, req.ReferredBy,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, h.withReferrer(r, user))
}

func (h *Handler) BulkAssignBadge(w http.ResponseWriter, r *http.Request) {
	var req BulkAssignBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	users, err := h.service.BulkAssignBadge(r.Context(), req.UserIDs, req.Badge)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, UserListResponse{Users: ToUserResponseList(users)})
}

func (h *Handler) SetVerified(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.SetVerified(
		r.Context(), chi.URLParam(r, "userID"), req.Verified,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) RecalculateStats(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.RecalculateStats(r.Context())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]int64{"users_updated": updated})
}

// withReferrer annotates a response with the referrer's username when the
// user holds a sponsored badge. Best-effort display only.
func (h *Handler) withReferrer(r *http.Request, u *User) UserResponse {
	resp := ToUserResponse(u)

	if u.ReferredBy != nil {
		if referrer, err := h.service.GetUser(r.Context(), *u.ReferredBy); err == nil {
			resp.ReferrerUsername = &referrer.Username
		}
	}

	return resp
}
