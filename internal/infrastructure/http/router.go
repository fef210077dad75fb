package httpapi

import "net/http"

func NewRouter(handler *PaymentHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /payments", handler.CreatePayment)
	mux.HandleFunc("GET /payments", handler.ListPayments)
	mux.HandleFunc("GET /payments/{id}", handler.GetPayment)
	mux.HandleFunc("PATCH /payments/{id}", handler.UpdatePayment)
	mux.HandleFunc("POST /payments/{id}/cancel", handler.CancelPayment)
	mux.HandleFunc("POST /payments/{id}/refund", handler.RefundPayment)
	mux.HandleFunc("DELETE /payments/{id}", handler.DeletePayment)
	mux.HandleFunc("GET /events", handler.ListEvents)
	mux.HandleFunc("DELETE /events", handler.ClearEvents)

	return mux
}
