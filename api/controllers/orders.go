package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afrifood/afrifood-backend/api/responses"
	"github.com/afrifood/afrifood-backend/api/validators"
	"github.com/afrifood/afrifood-backend/internal/orders"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type createOrderRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,max=40"`
	Address  string `json:"address" validate:"max=200"`
	Item     string `json:"item" validate:"required,max=120"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=50"`
	Notes    string `json:"notes" validate:"max=500"`
}

type createReservationRequest struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required,max=40"`
	Date   string `json:"date" validate:"required"`
	Time   string `json:"time" validate:"required"`
	Guests *int   `json:"guests" validate:"omitempty,min=1,max=8"`
	Notes  string `json:"notes" validate:"max=500"`
	// Message is the field name the storefront form uses for notes.
	Message string `json:"message" validate:"max=500"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func PublicCreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receipt, err := svc.CreateOrder(r.Context(), orders.OrderInput{
			Name:     validators.SanitizeString(req.Name, 120),
			Phone:    validators.SanitizeString(req.Phone, 40),
			Address:  validators.SanitizeString(req.Address, 200),
			Item:     validators.SanitizeString(req.Item, 120),
			Quantity: req.Quantity,
			Notes:    validators.SanitizeString(req.Notes, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// PublicTrackOrder serves the order-status lookup behind the contact links.
func PublicTrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracking, err := svc.TrackOrder(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tracking)
	}
}

func PublicCreateReservation(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notes := req.Notes
		if strings.TrimSpace(notes) == "" {
			notes = req.Message
		}
		reservation, err := svc.CreateReservation(r.Context(), orders.ReservationInput{
			Name:   validators.SanitizeString(req.Name, 120),
			Email:  validators.SanitizeString(req.Email, 254),
			Phone:  validators.SanitizeString(req.Phone, 40),
			Date:   strings.TrimSpace(req.Date),
			Time:   strings.TrimSpace(req.Time),
			Guests: req.Guests,
			Notes:  validators.SanitizeString(notes, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListOrders(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminListReservations(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListReservations(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminSetOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetOrderStatus(r.Context(), id, req.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "status": req.Status})
	}
}

func AdminSetReservationStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetReservationStatus(r.Context(), id, req.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "status": req.Status})
	}
}

func parseListFilters(r *http.Request) (orders.ListFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		return orders.ListFilters{}, err
	}
	filters := orders.ListFilters{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseRecordStatus(raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "unknown status filter").
				WithDetails(map[string]any{"status": raw, "allowed": enums.RecordStatuses()})
		}
		filters.Status = &status
	}
	return filters, nil
}
