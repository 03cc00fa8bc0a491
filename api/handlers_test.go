package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waste2give/marketplace/api"
	"github.com/waste2give/marketplace/auth"
	"github.com/waste2give/marketplace/donation"
	"github.com/waste2give/marketplace/donation/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	donorID    = "user-123" // donor@example.com
	receiverID = "user-456" // receiver@example.com
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	s := store.NewMemory()
	ledger := donation.NewLedger(s, donation.NewImpactGenerator())
	history := donation.NewAggregator(s)

	authSvc := auth.NewService("test-secret")
	require.NoError(t, authSvc.SeedDemoUsers())

	h := api.NewHandler(ledger, history, authSvc, zerolog.Nop())
	ts := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(ts.Close)
	return ts
}

func signIn(t *testing.T, ts *httptest.Server, email, password string) string {
	t.Helper()

	var resp api.AuthResponse
	status := doJSON(t, ts, http.MethodPost, "/api/auth/signin", "",
		api.SignInRequest{Email: email, Password: password}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func donorToken(t *testing.T, ts *httptest.Server) string {
	return signIn(t, ts, "donor@example.com", "password123")
}

func receiverToken(t *testing.T, ts *httptest.Server) string {
	return signIn(t, ts, "receiver@example.com", "password456")
}

// doJSON performs a request and decodes the response body into out (when
// non-nil), returning the status code.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func breadRequest() api.CreateDonationRequest {
	return api.CreateDonationRequest{
		Item:       "Bread",
		Quantity:   2,
		Weight:     3,
		PickupTime: "2024-01-01T10:00",
		Address:    "1 Main St",
	}
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth_SignInAndMe(t *testing.T) {
	ts := newTestServer(t)
	token := donorToken(t, ts)

	var me api.MeResponse
	status := doJSON(t, ts, http.MethodGet, "/api/auth/me", token, nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, donorID, me.User.ID)
	assert.Equal(t, "donor@example.com", me.User.Email)
}

func TestAuth_BadCredentials(t *testing.T) {
	ts := newTestServer(t)

	var resp api.ErrorResponse
	status := doJSON(t, ts, http.MethodPost, "/api/auth/signin", "",
		api.SignInRequest{Email: "donor@example.com", Password: "wrong"}, &resp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", resp.Error)
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	// No Authorization header at all.
	status := doJSON(t, ts, http.MethodGet, "/api/donations", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Wrong scheme is rejected before verification.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/donations", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Token abc")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Well-formed header, invalid token.
	status = doJSON(t, ts, http.MethodGet, "/api/donations", "bogus.token.here", nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAuth_SignUpIssuesWorkingToken(t *testing.T) {
	ts := newTestServer(t)

	var resp api.AuthResponse
	status := doJSON(t, ts, http.MethodPost, "/api/auth/signup", "",
		api.SignUpRequest{Name: "Cafe Sol", Email: "cafe@example.com", Password: "hunter2"}, &resp)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, ts, http.MethodGet, "/api/donations", resp.Token, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

// =============================================================================
// DONATIONS
// =============================================================================

func TestDonations_CreateListClaimFlow(t *testing.T) {
	// The full Bread scenario: create -> list -> claim -> list again.

	ts := newTestServer(t)
	donor := donorToken(t, ts)
	receiver := receiverToken(t, ts)

	var created api.CreateDonationResponse
	status := doJSON(t, ts, http.MethodPost, "/api/donations", donor, breadRequest(), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, created.DonationID)
	assert.Equal(t, 6.0, created.PoundsSaved)
	assert.NotEmpty(t, created.AiMessage)

	var available []api.DonationDTO
	status = doJSON(t, ts, http.MethodGet, "/api/donations", receiver, nil, &available)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, available, 1)
	assert.Equal(t, created.DonationID, available[0].ID)
	assert.Equal(t, 6.0, available[0].Lbs)
	assert.Equal(t, donorID, available[0].DonorID)

	var claimed api.ClaimResponse
	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", receiver,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: receiverID}, &claimed)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, claimed.Success)
	assert.True(t, claimed.Donation.Claimed)
	assert.Equal(t, receiverID, claimed.Donation.ReceiverID)
	assert.NotEmpty(t, claimed.Donation.ClaimedAt)

	status = doJSON(t, ts, http.MethodGet, "/api/donations", receiver, nil, &available)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, available, "claimed donation leaves the available list")
}

func TestDonations_ValidationErrorNamesField(t *testing.T) {
	ts := newTestServer(t)
	donor := donorToken(t, ts)

	bad := breadRequest()
	bad.Quantity = -1

	var resp api.ErrorResponse
	status := doJSON(t, ts, http.MethodPost, "/api/donations", donor, bad, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "quantity", resp.Field)

	var available []api.DonationDTO
	status = doJSON(t, ts, http.MethodGet, "/api/donations", donor, nil, &available)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, available, "rejected create must not append")
}

func TestDonations_ClaimConflicts(t *testing.T) {
	ts := newTestServer(t)
	donor := donorToken(t, ts)
	receiver := receiverToken(t, ts)

	var created api.CreateDonationResponse
	status := doJSON(t, ts, http.MethodPost, "/api/donations", donor, breadRequest(), &created)
	require.Equal(t, http.StatusCreated, status)

	// Self-claim via the payload id.
	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", donor,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: donorID}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Self-claim via the authenticated identity, with a forged payload id.
	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", donor,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: "someone-else"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Unknown donation.
	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", receiver,
		api.ClaimRequest{DonationID: "no-such-id", ReceiverID: receiverID}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// First real claim wins, second conflicts.
	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", receiver,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: receiverID}, nil)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", receiver,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: receiverID}, nil)
	assert.Equal(t, http.StatusConflict, status)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_OwnHistoryWithStats(t *testing.T) {
	ts := newTestServer(t)
	donor := donorToken(t, ts)
	receiver := receiverToken(t, ts)

	var created api.CreateDonationResponse
	status := doJSON(t, ts, http.MethodPost, "/api/donations", donor, breadRequest(), &created)
	require.Equal(t, http.StatusCreated, status)

	status = doJSON(t, ts, http.MethodPost, "/api/donations/claim", receiver,
		api.ClaimRequest{DonationID: created.DonationID, ReceiverID: receiverID}, nil)
	require.Equal(t, http.StatusOK, status)

	var donorHist api.HistoryResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/users/%s/history", donorID), donor, nil, &donorHist)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, donorID, donorHist.UserID)
	require.Len(t, donorHist.History.Posted, 1)
	assert.Equal(t, 6.0, donorHist.Stats.TotalPoundsSaved,
		"donor stat unaffected by the claim")
	assert.Equal(t, 1, donorHist.Stats.TotalTransactions)

	var recvHist api.HistoryResponse
	status = doJSON(t, ts, http.MethodGet, fmt.Sprintf("/api/users/%s/history", receiverID), receiver, nil, &recvHist)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, recvHist.History.Received, 1)
	assert.Equal(t, 6.0, recvHist.History.Received[0].Lbs)
	assert.Equal(t, 6.0, recvHist.Stats.TotalPoundsReceived)
}

func TestHistory_OtherUsersHistoryIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	donor := donorToken(t, ts)

	status := doJSON(t, ts, http.MethodGet,
		fmt.Sprintf("/api/users/%s/history", receiverID), donor, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

// =============================================================================
// IMPACT
// =============================================================================

func TestImpact_TieredByWeight(t *testing.T) {
	ts := newTestServer(t)
	donor := donorToken(t, ts)

	var resp api.ImpactResponse
	status := doJSON(t, ts, http.MethodPost, "/api/ai/impact", donor,
		api.ImpactRequest{Lbs: 60}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, resp.ImpactMessage, "Incredible")

	status = doJSON(t, ts, http.MethodPost, "/api/ai/impact", donor,
		api.ImpactRequest{Lbs: 0}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
