package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payapp "github.com/payflow-labs/payflow/internal/application/payment"
	"github.com/payflow-labs/payflow/internal/infrastructure/eventbus"
	httpapi "github.com/payflow-labs/payflow/internal/infrastructure/http"
	"github.com/payflow-labs/payflow/internal/infrastructure/persistence/inmemory"
)

func newServer(t *testing.T) (*httptest.Server, *eventbus.Bus) {
	t.Helper()

	bus := eventbus.New(eventbus.Options{
		HistoryEnabled: true,
		MaxHistorySize: 100,
		RetryAttempts:  1,
		RetryBaseDelay: time.Millisecond,
	})
	service := &payapp.Service{
		Repo: inmemory.NewPaymentRepository(),
		Bus:  bus,
	}

	handler := &httpapi.PaymentHandler{Service: service, Events: bus}
	srv := httptest.NewServer(httpapi.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, bus
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const createBody = `{
	"amount": "99.99",
	"currency": "USD",
	"method": "credit_card",
	"customerId": "cust-1",
	"merchantId": "merch-1"
}`

func TestCreatePayment_Created(t *testing.T) {
	srv, bus := newServer(t)

	resp := post(t, srv.URL+"/payments", createBody)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, bus.History(), 1)
}

func TestCreatePayment_BadBody(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv.URL+"/payments", `{"amount": `)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePayment_BusinessRuleViolation(t *testing.T) {
	srv, _ := newServer(t)

	resp := post(t, srv.URL+"/payments", strings.Replace(createBody, "USD", "DOGE", 1))

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetPayment_NotFound(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/payments/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDuplicateTransactionID_Conflict(t *testing.T) {
	srv, _ := newServer(t)

	withTxn := strings.Replace(createBody, `"merchantId": "merch-1"`,
		`"merchantId": "merch-1", "transactionId": "TXN-1"`, 1)

	first := post(t, srv.URL+"/payments", withTxn)
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := post(t, srv.URL+"/payments", withTxn)
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestRefundPending_Conflict(t *testing.T) {
	srv, bus := newServer(t)

	post(t, srv.URL+"/payments", createBody)
	id := bus.History()[0].PaymentID

	resp := post(t, srv.URL+"/payments/"+id+"/refund", `{}`)

	assert.Equal(t, http.StatusConflict, resp.StatusCode, "PENDING -> REFUNDED is not in the table")
}

func TestEventsEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	post(t, srv.URL+"/payments", createBody)

	resp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/events", nil)
	require.NoError(t, err)
	clear, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer clear.Body.Close()
	assert.Equal(t, http.StatusNoContent, clear.StatusCode)
}
