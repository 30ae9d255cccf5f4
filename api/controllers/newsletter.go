package controllers

import (
	"net/http"

	"github.com/afrifood/afrifood-backend/api/responses"
	"github.com/afrifood/afrifood-backend/api/validators"
	"github.com/afrifood/afrifood-backend/internal/newsletter"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

type subscribeRequest struct {
	Email string `json:"email" validate:"required,max=254"`
	// Position is the browser geolocation fix, absent when the visitor
	// refused or the browser has no geolocation.
	Position      *newsletter.Coordinates `json:"position"`
	PositionError string                  `json:"positionError" validate:"max=200"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

func PublicNewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := svc.Subscribe(r.Context(), newsletter.SubscribeInput{
			Email:         req.Email,
			Position:      req.Position,
			PositionError: validators.SanitizeString(req.PositionError, 200),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// PublicWelcomeEmail sends the welcome email on demand.
func PublicWelcomeEmail(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SendWelcome(r.Context(), req.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"sent": true})
	}
}

func AdminListSubscribers(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": list})
	}
}

func AdminAddSubscriber(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := svc.AddManual(r.Context(), req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"id": id})
	}
}

func AdminEditSubscriber(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "subscriberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req emailRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Edit(r.Context(), id, req.Email); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id})
	}
}

func AdminDeleteSubscriber(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "subscriberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
