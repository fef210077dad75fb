package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	payapp "github.com/payflow-labs/payflow/internal/application/payment"
	"github.com/payflow-labs/payflow/internal/domain/event"
	"github.com/payflow-labs/payflow/internal/domain/payment"
)

// EventLog is the slice of the bus surface the API exposes.
type EventLog interface {
	History() []event.Event
	ClearHistory()
}

type PaymentHandler struct {
	Service *payapp.Service
	Events  EventLog
}

type CreatePaymentRequest struct {
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Method        payment.Method    `json:"method"`
	Description   string            `json:"description"`
	CustomerID    string            `json:"customerId"`
	MerchantID    string            `json:"merchantId"`
	Metadata      map[string]string `json:"metadata"`
	TransactionID string            `json:"transactionId"`
}

type UpdatePaymentRequest struct {
	Status        *payment.Status   `json:"status"`
	Description   *string           `json:"description"`
	FailureReason *string           `json:"failureReason"`
	TransactionID *string           `json:"transactionId"`
	Metadata      map[string]string `json:"metadata"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason"`
}

type RefundPaymentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Reason string           `json:"reason"`
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreatePayment(payapp.CreateRequest{
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method:        req.Method,
		Description:   req.Description,
		CustomerID:    req.CustomerID,
		MerchantID:    req.MerchantID,
		Metadata:      req.Metadata,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetPayment(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Service.ListPayments()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if payments == nil {
		payments = []*payment.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.UpdatePayment(r.PathValue("id"), payapp.UpdateRequest{
		Status:        req.Status,
		Description:   req.Description,
		FailureReason: req.FailureReason,
		TransactionID: req.TransactionID,
		Metadata:      req.Metadata,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	var req CancelPaymentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	p, err := h.Service.CancelPayment(r.PathValue("id"), req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req RefundPaymentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	p, err := h.Service.RefundPayment(r.PathValue("id"), req.Amount, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePayment(r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Events.History())
}

func (h *PaymentHandler) ClearEvents(w http.ResponseWriter, r *http.Request) {
	h.Events.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payment.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, payment.ErrIllegalTransition),
		errors.Is(err, payment.ErrDuplicatePayment):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrProcessing):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
