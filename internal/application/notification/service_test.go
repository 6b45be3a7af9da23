package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-social-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationStore) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]domain.Notification)
	return list, args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSummaries struct{ mock.Mock }

func (m *mockSummaries) Summaries(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	args := m.Called(ctx, userIDs)
	out, _ := args.Get(0).(map[string]domain.UserSummary)
	return out, args.Error(1)
}

func TestCreate_StoresUnreadNotification(t *testing.T) {
	ns := &mockNotificationStore{}
	var stored *domain.Notification
	ns.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Notification) }).
		Return(nil)

	nid, err := NewService(ServiceDeps{NotificationRepo: ns}).
		Create(context.Background(), "b", "a", domain.NotificationFollow, "alice started following you.")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, stored.NotificationID, nid)
	assert.Equal(t, "b", stored.UserID)
	assert.Equal(t, "a", stored.SenderID)
	assert.False(t, stored.IsRead)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestCreate_StoreFailure(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Put", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	_, err := NewService(ServiceDeps{NotificationRepo: ns}).
		Create(context.Background(), "b", "a", domain.NotificationLike, "x")

	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestListForUser_NewestFirstWithSenders(t *testing.T) {
	ns, us, sum := &mockNotificationStore{}, &mockUserStore{}, &mockSummaries{}
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	us.On("Get", mock.Anything, "b").Return(&domain.User{UserID: "b"}, nil)
	ns.On("ListByUser", mock.Anything, "b").Return([]domain.Notification{
		{NotificationID: "n1", SenderID: "a", Type: domain.NotificationFollow, CreatedAt: base},
		{NotificationID: "n3", SenderID: "c", Type: domain.NotificationLike, CreatedAt: base.Add(time.Minute)},
		{NotificationID: "n2", SenderID: "a", Type: domain.NotificationLike, CreatedAt: base},
	}, nil)
	sum.On("Summaries", mock.Anything, mock.Anything).Return(map[string]domain.UserSummary{
		"a": {UserID: "a", Username: "alice"},
		"c": {UserID: "c", Username: "carol"},
	}, nil)

	svc := NewService(ServiceDeps{NotificationRepo: ns, UserRepo: us, Summaries: sum})
	views, err := svc.ListForUser(context.Background(), "b")

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{"n3", "n2", "n1"}, []string{views[0].NotificationID, views[1].NotificationID, views[2].NotificationID})
	assert.Equal(t, "carol", views[0].Sender.Username)
	assert.Equal(t, "alice", views[2].Sender.Username)
	for i := 1; i < len(views); i++ {
		assert.False(t, views[i].CreatedAt.After(views[i-1].CreatedAt))
	}
}

func TestListForUser_UnknownUser(t *testing.T) {
	ns, us := &mockNotificationStore{}, &mockUserStore{}
	us.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := NewService(ServiceDeps{NotificationRepo: ns, UserRepo: us}).ListForUser(context.Background(), "ghost")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	ns.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestListForUser_Empty(t *testing.T) {
	ns, us, sum := &mockNotificationStore{}, &mockUserStore{}, &mockSummaries{}
	us.On("Get", mock.Anything, "b").Return(&domain.User{UserID: "b"}, nil)
	ns.On("ListByUser", mock.Anything, "b").Return(nil, nil)
	sum.On("Summaries", mock.Anything, []string{}).Return(map[string]domain.UserSummary{}, nil)

	views, err := NewService(ServiceDeps{NotificationRepo: ns, UserRepo: us, Summaries: sum}).
		ListForUser(context.Background(), "b")

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}
