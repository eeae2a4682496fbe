package ynab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", zerolog.Nop())
	require.NoError(t, err)
	client.SetBaseURL(server.URL)

	return client
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient("", zerolog.Nop())
	assert.Error(t, err)
}

func TestRequest_BearerAndAcceptHeaders(t *testing.T) {
	var capturedAuth, capturedAccept string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		capturedAuth = r.Header.Get("Authorization")
		capturedAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"data":{"budgets":[]}}`))
	})

	_, err := client.ListBudgets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", capturedAuth)
	assert.Equal(t, "application/json", capturedAccept)
}

func TestGetBudget_UnwrapsDataEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/budgets/budget-1", r.URL.Path)
		w.Write([]byte(`{"data":{"budget":{"id":"budget-1","name":"Household"}}}`))
	})

	budget, err := client.GetBudget(context.Background(), "budget-1")
	require.NoError(t, err)

	assert.Equal(t, "budget-1", budget.ID)
	assert.Equal(t, "Household", budget.Name)
}

func TestErrorMapping_NotFoundKinds(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"name":"not_found"}}`))
	})

	ctx := context.Background()

	_, err := client.GetBudget(ctx, "missing")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "budget", notFound.Kind)

	_, err = client.GetAccount(ctx, "budget-1", "missing")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "account", notFound.Kind)

	_, err = client.GetTransaction(ctx, "budget-1", "missing")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "transaction", notFound.Kind)
}

func TestErrorMapping_BadRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"name":"bad_request"}}`))
	})

	_, err := client.CreateTransaction(context.Background(), "budget-1", CreateTransaction{})

	var badReq *BadRequestError
	assert.ErrorAs(t, err, &badReq)
}

func TestErrorMapping_MissingEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"budgets":[]}`))
	})

	_, err := client.ListBudgets(context.Background())

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestListTransactions_DeltaParamsAndServerKnowledge(t *testing.T) {
	var capturedQuery map[string]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = map[string]string{
			"since_id":                 r.URL.Query().Get("since_id"),
			"last_knowledge_of_server": r.URL.Query().Get("last_knowledge_of_server"),
		}
		w.Write([]byte(`{"data":{"transactions":[{"id":"tx-1","amount":-12340}],"server_knowledge":77}}`))
	})

	transactions, knowledge, err := client.ListTransactions(context.Background(), "budget-1", ListTransactionsOptions{
		SinceID:               "tx-0",
		LastKnowledgeOfServer: 42,
	})
	require.NoError(t, err)

	assert.Equal(t, "tx-0", capturedQuery["since_id"])
	assert.Equal(t, "42", capturedQuery["last_knowledge_of_server"])
	assert.Equal(t, int64(77), knowledge)
	require.Len(t, transactions, 1)
	assert.Equal(t, int64(-12340), transactions[0].Amount)
}

func TestCreateTransaction(t *testing.T) {
	var capturedPayload struct {
		Transaction CreateTransaction `json:"transaction"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/budgets/budget-1/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedPayload))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"transaction":{"id":"tx-1","amount":-12340,"import_id":"PLGY:src-1"}}}`))
	})

	created, err := client.CreateTransaction(context.Background(), "budget-1", CreateTransaction{
		AccountID: "acc-1",
		Date:      "2024-03-05",
		Amount:    -12340,
		ImportID:  "PLGY:src-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "acc-1", capturedPayload.Transaction.AccountID)
	assert.Equal(t, int64(-12340), capturedPayload.Transaction.Amount)
	assert.Equal(t, "tx-1", created.ID)
}

func TestCreateTransaction_DuplicateImportIDInResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"transaction_ids":[],"duplicate_import_ids":["PLGY:src-1"]}}`))
	})

	_, err := client.CreateTransaction(context.Background(), "budget-1", CreateTransaction{
		AccountID: "acc-1",
		ImportID:  "PLGY:src-1",
	})

	assert.ErrorIs(t, err, ErrDuplicateImport)
}

func TestCreateTransaction_ConflictStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"name":"conflict","detail":"Import id already used"}}`))
	})

	_, err := client.CreateTransaction(context.Background(), "budget-1", CreateTransaction{
		AccountID: "acc-1",
		ImportID:  "PLGY:src-1",
	})

	assert.ErrorIs(t, err, ErrDuplicateImport)
}

func TestUpdateTransaction_OmitsNilFields(t *testing.T) {
	var rawPayload map[string]map[string]interface{}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawPayload))
		w.Write([]byte(`{"data":{"transaction":{"id":"tx-1","memo":"updated"}}}`))
	})

	memo := "updated"
	updated, err := client.UpdateTransaction(context.Background(), "budget-1", "tx-1", UpdateTransaction{Memo: &memo})
	require.NoError(t, err)

	assert.Equal(t, "updated", updated.Memo)
	assert.Contains(t, rawPayload["transaction"], "memo")
	assert.NotContains(t, rawPayload["transaction"], "amount")
}

func TestDeleteTransaction(t *testing.T) {
	var capturedMethod, capturedPath string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		capturedMethod = r.Method
		capturedPath = r.URL.Path
		w.Write([]byte(`{"data":{"transaction":{"id":"tx-1","deleted":true}}}`))
	})

	require.NoError(t, client.DeleteTransaction(context.Background(), "budget-1", "tx-1"))

	assert.Equal(t, http.MethodDelete, capturedMethod)
	assert.Equal(t, "/budgets/budget-1/transactions/tx-1", capturedPath)
}
