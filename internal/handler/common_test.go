package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-gin-invitation/internal/handler"
	"go-gin-invitation/internal/model"
	"go-gin-invitation/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin = "https://undangan.example.com"
	validToken = "valid-token"
)

var InvalidJSON = `{"invalid": json}`

type testServices struct {
	auth        *mocks.AuthServiceMock
	events      *mocks.EventServiceMock
	guests      *mocks.GuestServiceMock
	wishes      *mocks.WishServiceMock
	invitations *mocks.InvitationServiceMock
}

func setupTestRouter() (*gin.Engine, *testServices) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	s := &testServices{
		auth:        new(mocks.AuthServiceMock),
		events:      new(mocks.EventServiceMock),
		guests:      new(mocks.GuestServiceMock),
		wishes:      new(mocks.WishServiceMock),
		invitations: new(mocks.InvitationServiceMock),
	}
	guard := handler.NewGuard(s.auth, s.events)

	handler.NewAuthHandler(s.auth).RegisterRoutes(router)
	handler.NewEventHandler(s.events, guard).RegisterRoutes(router)
	handler.NewGuestHandler(s.guests, s.invitations, guard, testOrigin).RegisterRoutes(router)
	handler.NewWishHandler(s.wishes, guard).RegisterRoutes(router)
	handler.NewInvitationHandler(s.invitations, guard, nil).RegisterRoutes(router)

	return router, s
}

// signedIn 讓 validToken 對應到一個 session
func (s *testServices) signedIn(userID uuid.UUID) *model.Session {
	session := &model.Session{ID: uuid.New(), UserID: userID, Email: "host@example.com", AccessToken: validToken}
	s.auth.On("GetSession", mock.Anything, validToken).Return(session, nil)
	return session
}

// owns 讓 GetOwned 回傳 event
func (s *testServices) owns(userID uuid.UUID, event *model.Event) {
	s.events.On("GetOwned", mock.Anything, userID, event.ID).Return(event, nil)
}

func createJSONRequest(data interface{}) *bytes.Buffer {
	if raw, ok := data.(string); ok {
		return bytes.NewBufferString(raw)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

func newRequest(method, url string, data interface{}, authorized bool) *http.Request {
	var req *http.Request
	if data == nil {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, createJSONRequest(data))
		req.Header.Set("Content-Type", "application/json")
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
