package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/testutil"
)

// failingNotifications fails inserts for the listed recipients
type failingNotifications struct {
	repository.NotificationRepository
	failFor map[string]bool
}

func (f *failingNotifications) CreateNotification(ctx context.Context, n *models.Notification) error {
	if f.failFor[n.RecipientID] {
		return errors.New("insert refused")
	}
	return f.NotificationRepository.CreateNotification(ctx, n)
}

type failingAnnouncements struct {
	repository.AnnouncementRepository
}

func (failingAnnouncements) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return errors.New("log unavailable")
}

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) ListUserIDs(ctx context.Context) ([]string, error) {
	return nil, errors.New("users unavailable")
}

type NotificationsTestSuite struct {
	suite.Suite
	ctx         context.Context
	store       *sqlstore.Store
	creator     *Creator
	inbox       *Inbox
	broadcaster *Broadcaster
	admin       *models.User
}

func (s *NotificationsTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.creator = NewCreator(s.store.Notifications())
	s.inbox = NewInbox(s.store.Notifications())
	s.broadcaster = NewBroadcaster(s.store)
	s.admin = testutil.CreateUser(s.T(), s.store, "Admin")
}

func (s *NotificationsTestSuite) announce(mode models.TargetMode) BroadcastRequest {
	return BroadcastRequest{
		Admin:       s.admin.Summary(),
		Title:       "Scheduled maintenance",
		Description: "We will be down for ten minutes",
		TargetMode:  mode,
	}
}

func (s *NotificationsTestSuite) TestSelfNotificationIsSuppressed() {
	user := testutil.CreateUser(s.T(), s.store, "Solo")

	n, err := s.creator.Create(s.ctx, NewNotification{
		RecipientID: user.ID,
		Type:        models.NotificationLike,
		Actor:       user.Summary(),
	})
	s.NoError(err)
	s.Nil(n)

	count, err := s.inbox.UnreadCount(s.ctx, user.ID)
	s.NoError(err)
	s.Zero(count)
}

func (s *NotificationsTestSuite) TestCreateStoresUnreadNotification() {
	author := testutil.CreateUser(s.T(), s.store, "Author")
	fan := testutil.CreateUser(s.T(), s.store, "Fan")
	post := testutil.CreatePost(s.T(), s.store, author, "design")

	n, err := s.creator.Create(s.ctx, NewNotification{
		RecipientID: author.ID,
		Type:        models.NotificationComment,
		Post:        PostRefOf(post),
		Actor:       fan.Summary(),
	})
	s.Require().NoError(err)
	s.Require().NotNil(n)
	s.False(n.IsRead)

	list, total, err := s.inbox.List(s.ctx, author.ID, 0, 0)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal(post.ID, list[0].Post.ID)
	s.Equal(fan.ID, list[0].Actor.ID)
}

func (s *NotificationsTestSuite) TestInboxOperationsAreIdempotent() {
	owner := testutil.CreateUser(s.T(), s.store, "Owner")
	other := testutil.CreateUser(s.T(), s.store, "Other")

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := s.creator.Create(s.ctx, NewNotification{RecipientID: owner.ID, Type: models.NotificationLike, Actor: other.Summary()})
		s.Require().NoError(err)
		ids = append(ids, n.ID)
	}

	changed, err := s.inbox.MarkRead(s.ctx, ids[0], other.ID)
	s.NoError(err)
	s.False(changed, "another user cannot mark the owner's notification")

	changed, err = s.inbox.MarkRead(s.ctx, ids[0], owner.ID)
	s.NoError(err)
	s.True(changed)
	changed, err = s.inbox.MarkRead(s.ctx, ids[0], owner.ID)
	s.NoError(err)
	s.False(changed)

	unread, err := s.inbox.UnreadCount(s.ctx, owner.ID)
	s.NoError(err)
	s.EqualValues(2, unread)

	marked, err := s.inbox.MarkAllRead(s.ctx, owner.ID)
	s.NoError(err)
	s.EqualValues(2, marked)

	deleted, err := s.inbox.Delete(s.ctx, ids[1], owner.ID)
	s.NoError(err)
	s.True(deleted)
	deleted, err = s.inbox.Delete(s.ctx, ids[1], owner.ID)
	s.NoError(err)
	s.False(deleted)

	removed, err := s.inbox.DeleteAll(s.ctx, owner.ID)
	s.NoError(err)
	s.EqualValues(2, removed)
}

func (s *NotificationsTestSuite) TestDispatchValidation() {
	cases := map[string]struct {
		mutate func(*BroadcastRequest)
		field  string
	}{
		"missing title":    {func(r *BroadcastRequest) { r.Title = "  " }, "title"},
		"unknown mode":     {func(r *BroadcastRequest) { r.TargetMode = "everyone" }, "target_mode"},
		"specific no ids":  {func(r *BroadcastRequest) { r.TargetMode = models.TargetSpecific; r.UserIDs = []string{" "} }, "user_ids"},
		"unknown category": {func(r *BroadcastRequest) { r.TargetMode = models.TargetCategory; r.Category = "astrology" }, "category"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			req := s.announce(models.TargetAll)
			tc.mutate(&req)
			summary, err := s.broadcaster.Dispatch(s.ctx, req)
			s.Nil(summary)
			var apiErr *apierrors.APIError
			s.Require().ErrorAs(err, &apiErr)
			s.Equal(tc.field, apiErr.Field)
		})
	}
}

func (s *NotificationsTestSuite) TestDispatchAllSkipsSendingAdmin() {
	one := testutil.CreateUser(s.T(), s.store, "One")
	testutil.CreateUser(s.T(), s.store, "Two")

	summary, err := s.broadcaster.Dispatch(s.ctx, s.announce(models.TargetAll))
	s.Require().NoError(err)
	s.Equal(2, summary.TotalTargeted)
	s.Equal(2, summary.SuccessCount)
	s.Equal(models.BroadcastCompleted, summary.Status)
	s.True(summary.Logged)

	own, _, err := s.inbox.List(s.ctx, s.admin.ID, 10, 0)
	s.Require().NoError(err)
	s.Empty(own)

	list, _, err := s.inbox.List(s.ctx, one.ID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(models.NotificationAnnouncement, list[0].Type)
	s.Equal(summary.BroadcastID, list[0].BroadcastID)
	s.Equal("Scheduled maintenance", list[0].Title)
	s.Equal(s.admin.ID, list[0].Actor.ID)
}

func (s *NotificationsTestSuite) TestDispatchSpecificSkipsSendingAdmin() {
	a := testutil.CreateUser(s.T(), s.store, "A")

	req := s.announce(models.TargetSpecific)
	req.UserIDs = []string{s.admin.ID, a.ID}
	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(1, summary.TotalTargeted)

	entry, err := s.broadcaster.GetAnnouncement(s.ctx, summary.BroadcastID)
	s.Require().NoError(err)
	s.Equal([]string{a.ID}, entry.TargetUserIDs)

	unread, err := s.inbox.UnreadCount(s.ctx, s.admin.ID)
	s.Require().NoError(err)
	s.Zero(unread)
}

func (s *NotificationsTestSuite) TestDispatchSpecificDedupesIDs() {
	a := testutil.CreateUser(s.T(), s.store, "A")
	b := testutil.CreateUser(s.T(), s.store, "B")

	req := s.announce(models.TargetSpecific)
	req.UserIDs = []string{a.ID, b.ID, a.ID, " "}
	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(2, summary.TotalTargeted)

	entry, err := s.broadcaster.GetAnnouncement(s.ctx, summary.BroadcastID)
	s.Require().NoError(err)
	s.Equal([]string{a.ID, b.ID}, entry.TargetUserIDs)
	s.Equal(models.TargetSpecific, entry.TargetMode)
}

func (s *NotificationsTestSuite) TestDispatchCategoryTargetsDistinctAuthors() {
	authors := []*models.User{
		testutil.CreateUser(s.T(), s.store, "Ana"),
		testutil.CreateUser(s.T(), s.store, "Ben"),
		testutil.CreateUser(s.T(), s.store, "Cy"),
	}
	for _, a := range authors {
		testutil.CreatePost(s.T(), s.store, a, "technology")
	}
	testutil.CreatePost(s.T(), s.store, authors[0], "technology")
	testutil.CreatePost(s.T(), s.store, s.admin, "technology")
	testutil.CreatePost(s.T(), s.store, s.admin, "travel")

	req := s.announce(models.TargetCategory)
	req.Category = "technology"
	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(3, summary.TotalTargeted)
	s.Equal(3, summary.SuccessCount)
	s.Equal(models.BroadcastCompleted, summary.Status)

	total, err := s.store.Notifications().CountNotifications(s.ctx)
	s.NoError(err)
	s.EqualValues(3, total)

	log, count, err := s.broadcaster.ListAnnouncements(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.EqualValues(1, count)
	s.Equal(3, log[0].TotalTargeted)
	s.Equal("technology", log[0].Category)
}

func (s *NotificationsTestSuite) TestDispatchCountsPartialFailures() {
	var ids []string
	for _, name := range []string{"P", "Q", "R", "S", "T"} {
		ids = append(ids, testutil.CreateUser(s.T(), s.store, name).ID)
	}
	s.broadcaster.notifications = &failingNotifications{
		NotificationRepository: s.store.Notifications(),
		failFor:                map[string]bool{ids[1]: true, ids[3]: true},
	}

	req := s.announce(models.TargetSpecific)
	req.UserIDs = ids
	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(5, summary.TotalTargeted)
	s.Equal(3, summary.SuccessCount)
	s.Equal(2, summary.ErrorCount)
	s.Equal(models.BroadcastPartialFailure, summary.Status)

	entry, err := s.broadcaster.GetAnnouncement(s.ctx, summary.BroadcastID)
	s.Require().NoError(err)
	s.Equal(models.BroadcastPartialFailure, entry.Status)
	s.Equal(2, entry.ErrorCount)
}

func (s *NotificationsTestSuite) TestDispatchAllFailuresIsFailed() {
	u := testutil.CreateUser(s.T(), s.store, "Lonely")
	s.broadcaster.notifications = &failingNotifications{
		NotificationRepository: s.store.Notifications(),
		failFor:                map[string]bool{u.ID: true},
	}
	req := s.announce(models.TargetSpecific)
	req.UserIDs = []string{u.ID}

	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(models.BroadcastFailed, summary.Status)
	s.Equal(0, summary.SuccessCount)
}

func (s *NotificationsTestSuite) TestDispatchEmptyAudienceCompletes() {
	req := s.announce(models.TargetCategory)
	req.Category = "food"

	summary, err := s.broadcaster.Dispatch(s.ctx, req)
	s.Require().NoError(err)
	s.Zero(summary.TotalTargeted)
	s.Equal(models.BroadcastCompleted, summary.Status)
}

func (s *NotificationsTestSuite) TestDispatchSurvivesLogFailure() {
	testutil.CreateUser(s.T(), s.store, "Reader")
	s.broadcaster.announcements = failingAnnouncements{s.store.Announcements()}

	summary, err := s.broadcaster.Dispatch(s.ctx, s.announce(models.TargetAll))
	s.Require().NoError(err)
	s.False(summary.Logged)
	s.Equal(1, summary.SuccessCount)
}

func (s *NotificationsTestSuite) TestDispatchAudienceFailureIsHardError() {
	s.broadcaster.users = failingUsers{s.store.Users()}

	summary, err := s.broadcaster.Dispatch(s.ctx, s.announce(models.TargetAll))
	s.Nil(summary)
	s.ErrorIs(err, ErrAudienceResolution)
}

func (s *NotificationsTestSuite) TestDeleteBroadcast() {
	testutil.CreateUser(s.T(), s.store, "Reader")
	summary, err := s.broadcaster.Dispatch(s.ctx, s.announce(models.TargetAll))
	s.Require().NoError(err)

	n, err := s.broadcaster.DeleteBroadcast(s.ctx, summary.BroadcastID)
	s.NoError(err)
	s.EqualValues(1, n)

	_, err = s.broadcaster.DeleteBroadcast(s.ctx, s.store.NewID())
	s.ErrorIs(err, repository.ErrNotFound)
}

func TestNotificationsTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationsTestSuite))
}

func TestDedupeKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, dedupe([]string{"b", " a ", "b", "", "c", "a"}))
	assert.Equal(t, []string{"a", "c"}, without([]string{"a", "admin", "c"}, "admin"))
	assert.Empty(t, without([]string{"admin"}, "admin"))
}

func TestBroadcastStatus(t *testing.T) {
	require.Equal(t, models.BroadcastCompleted, broadcastStatus(0, 0))
	require.Equal(t, models.BroadcastCompleted, broadcastStatus(4, 0))
	require.Equal(t, models.BroadcastPartialFailure, broadcastStatus(4, 1))
	require.Equal(t, models.BroadcastFailed, broadcastStatus(4, 4))
}
