package controllers

import (
	"net/http"

	"github.com/afrifood/afrifood-backend/api/responses"
	"github.com/afrifood/afrifood-backend/internal/menu"
)

// PublicMenu lists the catalog with FCFA prices.
func PublicMenu(catalog *menu.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"items": catalog.Items()})
	}
}
