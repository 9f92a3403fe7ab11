package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/smallbiznis/zoonova/internal/contact/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) MessageReceived(ctx context.Context, msg domain.Message) {
	m.Called(ctx, msg)
}

func setup(t *testing.T) (domain.Service, *clock.FakeClock, *notifierMock) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Message{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC))
	notifier := &notifierMock{}
	notifier.On("MessageReceived", mock.Anything, mock.Anything).Return()

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Notifier: notifier,
	})
	return svc, fake, notifier
}

func validRequest() domain.CreateRequest {
	return domain.CreateRequest{
		FirstName: "Léa",
		LastName:  "Martin",
		Email:     "Lea@Example.com",
		Subject:   "Dédicace",
		Message:   "Bonjour, est-il possible d'obtenir une dédicace ?",
	}
}

func TestCreateNotifies(t *testing.T) {
	svc, _, notifier := setup(t)

	resp, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "lea@example.com", resp.Email)
	assert.Equal(t, "Léa Martin", resp.FullName)
	assert.False(t, resp.IsRead)

	notifier.AssertCalled(t, "MessageReceived", mock.Anything, mock.MatchedBy(func(m domain.Message) bool {
		return m.Subject == "Dédicace"
	}))
}

func TestCreateValidation(t *testing.T) {
	svc, _, notifier := setup(t)
	ctx := context.Background()

	req := validRequest()
	req.Message = "  trop court "
	_, err := svc.Create(ctx, req)
	assert.NoError(t, err)

	req.Message = "court"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrMessageTooShort)

	req = validRequest()
	req.Email = "nope"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	req = validRequest()
	req.LastName = " "
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	notifier.AssertNumberOfCalls(t, "MessageReceived", 1)
}

func TestReadStateTransitions(t *testing.T) {
	svc, fake, _ := setup(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	read, err := svc.MarkRead(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := svc.MarkUnread(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, unread.IsRead)

	fake.Advance(time.Hour)
	replied, err := svc.MarkReplied(ctx, created.ID, "répondu par téléphone")
	require.NoError(t, err)
	assert.True(t, replied.IsRead)
	require.NotNil(t, replied.RepliedAt)
	assert.True(t, fake.Now().Equal(*replied.RepliedAt))
	assert.Equal(t, "répondu par téléphone", replied.AdminNotes)

	again, err := svc.MarkReplied(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "répondu par téléphone", again.AdminNotes)

	_, err = svc.MarkRead(ctx, "1790000000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestBulkMarkReadAndStatistics(t *testing.T) {
	svc, fake, _ := setup(t)
	ctx := context.Background()

	fake.Set(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	old, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	fake.Set(time.Date(2024, 6, 19, 9, 0, 0, 0, time.UTC))
	a, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	b, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	fake.Set(time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC))
	n, err := svc.BulkMarkRead(ctx, []string{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.MarkReplied(ctx, old.ID, "")
	require.NoError(t, err)

	_, err = svc.BulkMarkRead(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrEmptySelection)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.Statistics{
		TotalMessages:   3,
		UnreadMessages:  0,
		RepliedMessages: 1,
		PendingMessages: 2,
		LastSevenDays:   2,
	}, stats)

	unread := false
	list, err := svc.List(ctx, domain.ListRequest{IsRead: &unread})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.List(ctx, domain.ListRequest{Search: "DÉDICACE"})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
