package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/internal/domain/ports"
	"exchange-form-service/internal/metrics"
	"exchange-form-service/internal/service"
	"exchange-form-service/pkg/logger"
	"exchange-form-service/pkg/utils"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Handler struct {
	rates   ports.RateService
	forms   ports.FormService
	refresh ports.RefreshTrigger
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(rates ports.RateService, forms ports.FormService, refresh ports.RefreshTrigger,
	log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		rates:   rates,
		forms:   forms,
		refresh: refresh,
		log:     log,
		metrics: metrics,
	}
}

type formResponse struct {
	ID    uuid.UUID        `json:"id"`
	State *model.FormState `json:"state"`
}

type amountRequest struct {
	Side   string   `json:"side"`
	Amount *float64 `json:"amount"`
}

type focusRequest struct {
	Side string `json:"side"`
}

type currencyRequest struct {
	Side     string `json:"side"`
	Currency string `json:"currency"`
}

func (h *Handler) GetRatesHandler(w http.ResponseWriter, r *http.Request) {
	state, err := h.rates.RateState(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, state)
}

// RefreshRatesHandler signals a refresh and returns without waiting for it.
func (h *Handler) RefreshRatesHandler(w http.ResponseWriter, r *http.Request) {
	started := h.refresh.RequestRefresh(context.WithoutCancel(r.Context()))
	if !started {
		h.metrics.RecordRefresh(metrics.OutcomeDropped)
	}
	h.sendResponse(w, http.StatusAccepted, map[string]bool{"started": started})
}

func (h *Handler) ConvertCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := model.ParseCurrency(query.Get("from"))
	to := model.ParseCurrency(query.Get("to"))

	if from == "" || to == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: from and to")
		return
	}

	amount := 1.0
	parsed, err := utils.ParseAmount(query.Get("amount"))
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid amount parameter")
		return
	}
	if parsed != nil {
		amount = *parsed
	}

	precision, err := utils.ParsePrecision(query.Get("precision"))
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid precision parameter")
		return
	}

	result, err := h.rates.Convert(r.Context(), model.ConversionRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       amount,
		Precision:    precision,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, result)
}

func (h *Handler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	balances, err := h.rates.Balances(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, balances)
}

func (h *Handler) OpenFormHandler(w http.ResponseWriter, r *http.Request) {
	id, state, err := h.forms.Open(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendResponse(w, http.StatusCreated, formResponse{ID: id, State: state})
}

func (h *Handler) GetFormHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	state, err := h.forms.State(r.Context(), id)
	h.sendFormState(w, id, state, err)
}

func (h *Handler) SetAmountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}

	var body amountRequest
	if !h.decodeBody(w, r, &body) {
		return
	}
	side, err := parseSide(body.Side)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	state, err := h.forms.SetAmount(r.Context(), id, side, body.Amount)
	h.sendFormState(w, id, state, err)
}

func (h *Handler) FocusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}

	var body focusRequest
	if !h.decodeBody(w, r, &body) {
		return
	}
	side, err := parseSide(body.Side)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	state, err := h.forms.Focus(r.Context(), id, side)
	h.sendFormState(w, id, state, err)
}

func (h *Handler) SelectCurrencyHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}

	var body currencyRequest
	if !h.decodeBody(w, r, &body) {
		return
	}
	side, err := parseSide(body.Side)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	state, err := h.forms.SelectCurrency(r.Context(), id, side, model.ParseCurrency(body.Currency))
	h.sendFormState(w, id, state, err)
}

// SubmitHandler reports a rejected exchange as an error but still returns
// the submitted request and the reset form.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}

	submitted, err := h.forms.Submit(r.Context(), id)
	if err != nil {
		statusCode, message := errorStatus(err)
		h.log.Error("Service error", "error", err, "status_code", statusCode)
		h.writeJSON(w, statusCode, Response{Success: false, Data: submitted, Error: message})
		return
	}
	h.sendSuccessResponse(w, submitted)
}

func (h *Handler) CloseFormHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	if err := h.forms.Close(id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) formID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid form id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseSide(s string) (model.Side, error) {
	side, err := model.ParseSide(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrInvalidSide, err)
	}
	return side, nil
}

func (h *Handler) sendFormState(w http.ResponseWriter, id uuid.UUID, state *model.FormState, err error) {
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, formResponse{ID: id, State: state})
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	h.sendResponse(w, http.StatusOK, data)
}

func (h *Handler) sendResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	h.writeJSON(w, statusCode, Response{
		Success: true,
		Data:    data,
	})
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, Response{
		Success: false,
		Error:   message,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode, message := errorStatus(err)
	if statusCode >= http.StatusInternalServerError {
		h.log.Error("Service error", "error", err, "status_code", statusCode)
	} else {
		h.log.Debug("Request rejected", "error", err, "status_code", statusCode)
	}
	h.sendErrorResponse(w, statusCode, message)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		return http.StatusBadRequest, "invalid currency"
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid amount"
	case errors.Is(err, service.ErrInvalidSide):
		return http.StatusBadRequest, "invalid side, use sell or buy"
	case errors.Is(err, service.ErrSameCurrency):
		return http.StatusBadRequest, "sell and buy currency must differ"
	case errors.Is(err, service.ErrFormNotFound):
		return http.StatusNotFound, "form not found"
	case errors.Is(err, service.ErrUnconvertiblePair):
		return http.StatusUnprocessableEntity, "currency pair cannot be converted"
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "Insufficient funds"
	case errors.Is(err, service.ErrRatesLoading):
		return http.StatusServiceUnavailable, "exchange rates are loading"
	case errors.Is(err, service.ErrRatesUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, service.ErrStoreFailure):
		return http.StatusServiceUnavailable, "state store unavailable"
	}
	return http.StatusInternalServerError, "internal server error"
}
