package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yarinh5/cyber-threat-intel-dashboard/internal/usecase/threats"
)

// ThreatsHandler handles threat intelligence HTTP requests
type ThreatsHandler struct {
	service *threats.Service
}

// NewThreatsHandler creates a new threats handler
func NewThreatsHandler(service *threats.Service) *ThreatsHandler {
	return &ThreatsHandler{service: service}
}

// CheckRequest is the body accepted by Check
type CheckRequest struct {
	Query string `json:"query"`
}

// BatchCheckRequest is the body accepted by BatchCheck
type BatchCheckRequest struct {
	Queries []string `json:"queries"`
}

// Check evaluates the indicator given in the request body
// POST /api/check
func (h *ThreatsHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		DecodeError(w, err)
		return
	}

	h.check(w, r, req.Query)
}

// CheckIndicator evaluates the indicator given in the URL
// GET /api/v1/threats/check/{indicator}
func (h *ThreatsHandler) CheckIndicator(w http.ResponseWriter, r *http.Request) {
	h.check(w, r, chi.URLParam(r, "indicator"))
}

func (h *ThreatsHandler) check(w http.ResponseWriter, r *http.Request, query string) {
	result, err := h.service.CheckIndicator(r.Context(), query)
	if err != nil {
		DetailResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	JSONResponse(w, http.StatusOK, result)
}

// BatchCheck evaluates several indicators in one request
// POST /api/v1/threats/batch
func (h *ThreatsHandler) BatchCheck(w http.ResponseWriter, r *http.Request) {
	var req BatchCheckRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		DecodeError(w, err)
		return
	}

	results, err := h.service.BatchCheck(r.Context(), req.Queries)
	if err != nil {
		DetailResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	JSONResponse(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// GetProviders returns the status of all threat intel providers
// GET /api/v1/threats/providers
func (h *ThreatsHandler) GetProviders(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, http.StatusOK, map[string]interface{}{
		"providers": h.service.GetProviderStatus(),
	})
}
