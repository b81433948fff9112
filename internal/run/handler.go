// AngelaMos | 2026
// handler.go

package run

import (
	"encoding/json"
	"net/http"

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
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/runs", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.ListRuns)
			r.Get("/{runID}", h.GetRun)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/mine", h.MyRuns)
			r.Post("/{runID}/rsvp", h.SetRSVP)
			r.Delete("/{runID}/rsvp", h.RemoveRSVP)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/runs", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/", h.CreateRun)
		r.Post("/import", h.ImportRuns)
		r.Put("/{runID}", h.UpdateRun)
		r.Delete("/{runID}", h.DeleteRun)
		r.Post("/{runID}/complete", h.CompleteRun)
		r.Put("/{runID}/participants/{userID}", h.AdminSetRSVP)
		r.Delete("/{runID}/participants/{userID}", h.AdminRemoveRSVP)
	})
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	runs, err := h.service.List(r.Context(), viewerID, middleware.IsAdmin(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, runs)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.GetUserID(r.Context())

	run, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "runID"),
		viewerID,
		middleware.IsAdmin(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) MyRuns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	runs, err := h.service.MyRuns(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, runs)
}

// SetRSVP records the caller's own RSVP. Unverified accounts may browse
// but not claim a spot.
func (h *Handler) SetRSVP(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsVerified(r.Context()) && !middleware.IsAdmin(r.Context()) {
		core.JSONError(w, core.ForbiddenError("account is not verified"))
		return
	}

	var req RSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	run, err := h.service.SetRSVP(
		r.Context(),
		chi.URLParam(r, "runID"),
		middleware.GetUserID(r.Context()),
		req.Status,
		false,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) RemoveRSVP(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.RemoveRSVP(
		r.Context(),
		chi.URLParam(r, "runID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	run, err := h.service.Create(
		r.Context(), middleware.GetUserID(r.Context()), &req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, run)
}

func (h *Handler) UpdateRun(w http.ResponseWriter, r *http.Request) {
	var req UpdateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	run, err := h.service.Update(r.Context(), chi.URLParam(r, "runID"), &req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "runID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) CompleteRun(w http.ResponseWriter, r *http.Request) {
	var req CompleteRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	run, err := h.service.Complete(
		r.Context(),
		chi.URLParam(r, "runID"),
		middleware.GetUserID(r.Context()),
		&req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

// AdminSetRSVP sets any user's RSVP and waives the capacity limit.
func (h *Handler) AdminSetRSVP(w http.ResponseWriter, r *http.Request) {
	var req AdminRSVPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	run, err := h.service.SetRSVP(
		r.Context(),
		chi.URLParam(r, "runID"),
		chi.URLParam(r, "userID"),
		req.Status,
		true,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) AdminRemoveRSVP(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.RemoveRSVP(
		r.Context(),
		chi.URLParam(r, "runID"),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, run)
}

func (h *Handler) ImportRuns(w http.ResponseWriter, r *http.Request) {
	var req ImportRunsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Import(
		r.Context(), middleware.GetUserID(r.Context()), &req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, result)
}
