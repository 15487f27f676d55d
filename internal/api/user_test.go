package api

import (
	"fmt"
	"ledger_service/internal/domain"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser_ReturnsProfile(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 75)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ProfileResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, 75.0, resp.Balance)
}

func TestGetUser_NotFound(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())

	w := doJSON(t, r, http.MethodGet, "/api/user/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/user/not-a-number", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPay_DebitsBalanceAndRecordsLedgerRow(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 50)

	w := doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
		"user_id": user.ID, "value": 30,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		NewBalance float64 `json:"new_balance"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 20.0, resp.NewBalance)

	// The ledger row is appended with the debit negated
	var tx domain.Transaction
	require.NoError(t, gdb.Where("user_id = ?", user.ID).First(&tx).Error)
	assert.Equal(t, -30.0, tx.Amount)
	assert.Equal(t, domain.TxPayment, tx.Type)
	assert.NotZero(t, tx.CreatedAt)
}

func TestPay_InsufficientBalance(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 10)

	w := doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
		"user_id": user.ID, "value": 10.01,
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Balance untouched, no ledger row written
	var fresh domain.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.Equal(t, 10.0, fresh.Balance)
	var count int64
	require.NoError(t, gdb.Model(&domain.Transaction{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPay_ExactBalanceSucceeds(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 10)

	// Spending the whole balance is allowed, the floor is zero
	w := doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
		"user_id": user.ID, "value": 10,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var fresh domain.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.Equal(t, 0.0, fresh.Balance)
}

func TestPay_UnknownUser(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())

	w := doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
		"user_id": 999, "value": 5,
	}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPay_RejectsNonPositiveValue(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 50)

	for _, value := range []float64{0, -5} {
		w := doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
			"user_id": user.ID, "value": value,
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestPay_InvalidatesCachedProfile(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())
	user := createTestUser(t, gdb, "alice", "password1", "user", 50)

	// Warm the profile cache
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/user/pay", map[string]any{
		"user_id": user.ID, "value": 20,
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The next read must see the post-payment balance, not the cached one
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/user/%d", user.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ProfileResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, 30.0, resp.Balance)
}

func TestHealth_ReportsAlive(t *testing.T) {
	gdb, rdb := setupTestEnv(t)
	r := newTestRouter(gdb, rdb, testConfig())

	w := doJSON(t, r, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, "alive", resp.Status)
}
