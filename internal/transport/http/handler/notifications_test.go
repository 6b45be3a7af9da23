package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-social-nosql/internal/domain"
)

func TestListNotifications_OK(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotificationSvc{}
	svc.On("ListForUser", mock.Anything, "u1").Return([]domain.NotificationView{
		{NotificationID: "n2", Type: domain.NotificationLike, Sender: domain.UserSummary{UserID: "u3", Username: "carol"}},
		{NotificationID: "n1", Type: domain.NotificationFollow, Sender: domain.UserSummary{UserID: "u2", Username: "bob"}},
	}, nil)
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	serveAuthed(p, h.List, rr, bearerReq(t, p, http.MethodGet, "/v1/notifications", "u1", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	list := decodeEnvelope(t, rr)["notifications"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].(map[string]interface{})["id"])
	assert.Equal(t, "carol", list[0].(map[string]interface{})["sender"].(map[string]interface{})["username"])
}

func TestListNotifications_UserGone(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockNotificationSvc{}
	svc.On("ListForUser", mock.Anything, "u1").Return(nil, fmt.Errorf("user not found: %w", domain.ErrNotFound))
	h := NewNotificationHandler(svc)

	rr := httptest.NewRecorder()
	serveAuthed(p, h.List, rr, bearerReq(t, p, http.MethodGet, "/v1/notifications", "u1", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
