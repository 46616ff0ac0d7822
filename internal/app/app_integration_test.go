//go:build integration

package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/uzdenov777/shareit/internal/booking/http"
	"github.com/uzdenov777/shareit/internal/db/dbtest"
	itemHttp "github.com/uzdenov777/shareit/internal/item/http"
	"github.com/uzdenov777/shareit/internal/pkg/clock"
	"github.com/uzdenov777/shareit/internal/pkg/response"
	"github.com/uzdenov777/shareit/internal/pkg/storage"
	userHttp "github.com/uzdenov777/shareit/internal/user/http"
)

type testApp struct {
	router *gin.Engine
	clock  *clock.Manual
}

func newTestApp(t *testing.T, rejectOverlap bool) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pool := dbtest.Start(t)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	clk := clock.NewManual(time.Now().UTC().Truncate(time.Second))
	container := NewContainer(Config{
		DBPool:                pool,
		Storage:               store,
		Clock:                 clk,
		JWTSecret:             "integration-secret",
		JWTTTL:                30 * time.Minute,
		BcryptCost:            4, // Lower cost for testing purposes
		RejectApprovedOverlap: rejectOverlap,
		MaxUploadBytes:        1 << 20,
		DefaultPageSize:       10,
	})
	return &testApp{router: container.Router, clock: clk}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signUp registers and logs in, returning the user id and token.
func (a *testApp) signUp(t *testing.T, name string) (int64, string) {
	t.Helper()
	email := name + "@example.com"
	w := a.do(http.MethodPost, "/v1/auth/register", userHttp.RegisterRequest{
		Email: email, Password: "password123", Name: name,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/v1/auth/login", userHttp.LoginRequest{Email: email, Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[userHttp.LoginResponse](t, w)
	return login.User.ID, login.AccessToken
}

func (a *testApp) book(t *testing.T, token string, itemID int64, from, to time.Duration) bookingHttp.BookingResponse {
	t.Helper()
	now := a.clock.Now()
	w := a.do(http.MethodPost, "/v1/bookings", gin.H{
		"item_id": itemID,
		"start":   now.Add(from),
		"end":     now.Add(to),
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[bookingHttp.BookingResponse](t, w)
}

func TestBookingLifecycle(t *testing.T) {
	a := newTestApp(t, false)
	_, ownerToken := a.signUp(t, "owner")
	bookerID, bookerToken := a.signUp(t, "booker")
	_, strangerToken := a.signUp(t, "stranger")

	w := a.do(http.MethodPost, "/v1/items", gin.H{
		"name": "Drill", "description": "Cordless drill", "available": true,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	drill := decode[itemHttp.ItemResponse](t, w)

	var b bookingHttp.BookingResponse
	t.Run("Create", func(t *testing.T) {
		w := a.do(http.MethodPost, "/v1/bookings", gin.H{
			"item_id": drill.ID,
			"start":   a.clock.Now().Add(time.Hour),
			"end":     a.clock.Now().Add(2 * time.Hour),
		}, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code, "owner cannot book own item")

		b = a.book(t, bookerToken, drill.ID, time.Hour, 2*time.Hour)
		assert.Equal(t, "WAITING", b.Status)
		assert.Equal(t, bookerID, b.Booker.ID)
		assert.Equal(t, "Drill", b.Item.Name)
	})

	t.Run("Visibility", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d", b.ID)
		assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, nil, bookerToken).Code)
		assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, nil, ownerToken).Code)
		assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, nil, strangerToken).Code)
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, path, nil, "").Code)
	})

	t.Run("Decide", func(t *testing.T) {
		path := fmt.Sprintf("/v1/bookings/%d?approved=true", b.ID)
		assert.Equal(t, http.StatusForbidden, a.do(http.MethodPatch, path, nil, bookerToken).Code)

		w := a.do(http.MethodPatch, path, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "APPROVED", decode[bookingHttp.BookingResponse](t, w).Status)

		w = a.do(http.MethodPatch, path, nil, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Lists", func(t *testing.T) {
		w := a.do(http.MethodGet, "/v1/bookings?state=FUTURE", nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
		require.Len(t, page.Items, 1)
		assert.Equal(t, b.ID, page.Items[0].ID)

		w = a.do(http.MethodGet, "/v1/bookings/owner?state=WAITING", nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[response.PageResponse[bookingHttp.BookingResponse]](t, w).Items)

		w = a.do(http.MethodGet, "/v1/bookings?state=UNSUPPORTED_STATUS", nil, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Unknown state: UNSUPPORTED_STATUS", decode[response.ErrorResponse](t, w).Error)
	})

	t.Run("CommentAfterReturn", func(t *testing.T) {
		path := fmt.Sprintf("/v1/items/%d/comment", drill.ID)
		w := a.do(http.MethodPost, path, gin.H{"text": "Great drill"}, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rental has not ended")

		a.clock.Advance(3 * time.Hour)

		w = a.do(http.MethodGet, "/v1/bookings?state=PAST", nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[response.PageResponse[bookingHttp.BookingResponse]](t, w).Items, 1)

		w = a.do(http.MethodPost, path, gin.H{"text": "Great drill"}, bookerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.do(http.MethodGet, fmt.Sprintf("/v1/items/%d", drill.ID), nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[itemHttp.ItemDetailResponse](t, w)
		require.NotNil(t, detail.LastBooking)
		assert.Equal(t, b.ID, detail.LastBooking.ID)
		assert.Nil(t, detail.NextBooking)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "booker", detail.Comments[0].AuthorName)
	})
}

func TestBookingPagination(t *testing.T) {
	a := newTestApp(t, false)
	_, ownerToken := a.signUp(t, "owner")
	_, bookerToken := a.signUp(t, "booker")

	w := a.do(http.MethodPost, "/v1/items", gin.H{
		"name": "Tent", "description": "Two person", "available": true,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	tent := decode[itemHttp.ItemResponse](t, w)

	var created []int64
	for i := range 12 {
		start := time.Duration(i+1) * time.Hour
		created = append(created, a.book(t, bookerToken, tent.ID, start, start+30*time.Minute).ID)
	}

	w = a.do(http.MethodGet, "/v1/bookings?from=5&size=5", nil, bookerToken)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 5, page.From)
	require.Len(t, page.Items, 5)
	// Newest first, so offset 5 starts at the 7th booking created.
	assert.Equal(t, created[6], page.Items[0].ID)
	assert.Equal(t, created[2], page.Items[4].ID)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/bookings?from=-1", nil, bookerToken).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/bookings/owner?size=0", nil, ownerToken).Code)
}

func TestOverlapPolicyReject(t *testing.T) {
	a := newTestApp(t, true)
	_, ownerToken := a.signUp(t, "owner")
	_, firstToken := a.signUp(t, "first")
	_, secondToken := a.signUp(t, "second")

	w := a.do(http.MethodPost, "/v1/items", gin.H{
		"name": "Kayak", "description": "Sea kayak", "available": true,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	kayak := decode[itemHttp.ItemResponse](t, w)

	first := a.book(t, firstToken, kayak.ID, time.Hour, 3*time.Hour)
	second := a.book(t, secondToken, kayak.ID, 2*time.Hour, 4*time.Hour)

	w = a.do(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=true", first.ID), nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=true", second.ID), nil, ownerToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode[response.ErrorResponse](t, w).Kind)
}

func TestDeletingUserKeepsBookingHistory(t *testing.T) {
	a := newTestApp(t, false)
	ownerID, ownerToken := a.signUp(t, "owner")
	bookerID, bookerToken := a.signUp(t, "booker")
	idleID, idleToken := a.signUp(t, "idle")

	w := a.do(http.MethodPost, "/v1/items", gin.H{
		"name": "Ladder", "description": "Three metres", "available": true,
	}, ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	ladder := decode[itemHttp.ItemResponse](t, w)

	b := a.book(t, bookerToken, ladder.ID, time.Hour, 2*time.Hour)
	w = a.do(http.MethodPatch, fmt.Sprintf("/v1/bookings/%d?approved=true", b.ID), nil, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	a.clock.Advance(3 * time.Hour)

	w = a.do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", ownerID), nil, ownerToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user has bookings", decode[response.ErrorResponse](t, w).Error)

	w = a.do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", bookerID), nil, bookerToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/v1/bookings?state=PAST", nil, bookerToken)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[response.PageResponse[bookingHttp.BookingResponse]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, b.ID, page.Items[0].ID)

	w = a.do(http.MethodPost, fmt.Sprintf("/v1/items/%d/comment", ladder.ID), gin.H{"text": "Sturdy"}, bookerToken)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", idleID), nil, idleToken)
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
}
