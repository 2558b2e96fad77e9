package interactions

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/testutil"
)

type brokenNotifications struct {
	repository.NotificationRepository
}

func (brokenNotifications) CreateNotification(ctx context.Context, n *models.Notification) error {
	return errors.New("notifications offline")
}

type brokenInvalidator struct{}

func (brokenInvalidator) InvalidatePaths(ctx context.Context, paths ...string) error {
	return errors.New("redis offline")
}

type EngineTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *sqlstore.Store
	engine *Engine
	author *models.User
	reader *models.User
	post   *models.Post
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.engine = NewEngine(s.store, notifications.NewCreator(s.store.Notifications()), nil)
	s.author = testutil.CreateUser(s.T(), s.store, "Author")
	s.reader = testutil.CreateUser(s.T(), s.store, "Reader")
	s.post = testutil.CreatePost(s.T(), s.store, s.author, "technology")
}

func (s *EngineTestSuite) inbox(userID string) []*models.Notification {
	list, _, err := s.store.Notifications().ListNotifications(s.ctx, userID, 50, 0)
	s.Require().NoError(err)
	return list
}

// P1 by A at likes=0; U1 likes then unlikes
func (s *EngineTestSuite) TestLikeThenUnlike() {
	res, err := s.engine.ToggleLike(s.ctx, s.post.ID, s.reader)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Equal(1, res.Post.Likes)
	s.Equal([]string{s.reader.ID}, res.Post.LikedBy)

	inbox := s.inbox(s.author.ID)
	s.Require().Len(inbox, 1)
	s.Equal(models.NotificationLike, inbox[0].Type)
	s.Equal(s.reader.ID, inbox[0].Actor.ID)
	s.Equal(s.post.ID, inbox[0].Post.ID)
	s.False(inbox[0].IsRead)

	res, err = s.engine.ToggleLike(s.ctx, s.post.ID, s.reader)
	s.Require().NoError(err)
	s.False(res.Liked)
	s.Equal(0, res.Post.Likes)
	s.Empty(res.Post.LikedBy)
	s.Len(s.inbox(s.author.ID), 1, "unlike sends nothing")
}

func (s *EngineTestSuite) TestSelfLikeDoesNotNotify() {
	res, err := s.engine.ToggleLike(s.ctx, s.post.ID, s.author)
	s.Require().NoError(err)
	s.True(res.Liked)
	s.Empty(s.inbox(s.author.ID))
}

func (s *EngineTestSuite) TestLikeCounterMatchesSet() {
	users := []*models.User{s.reader, s.author, testutil.CreateUser(s.T(), s.store, "Third")}
	sequence := []int{0, 1, 2, 0, 2, 2, 1, 0, 0}
	for _, i := range sequence {
		_, err := s.engine.ToggleLike(s.ctx, s.post.ID, users[i])
		s.Require().NoError(err)
	}
	post, err := s.store.Posts().GetPost(s.ctx, s.post.ID)
	s.Require().NoError(err)
	s.Equal(len(post.LikedBy), post.Likes)
	// odd toggle counts end liked: users[0] 4, users[1] 2, users[2] 3
	s.Equal([]string{users[2].ID}, post.LikedBy)
	s.Equal(1, post.Likes)
}

func (s *EngineTestSuite) TestConcurrentTogglesKeepInvariant() {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.engine.ToggleLike(s.ctx, s.post.ID, s.reader)
		}()
	}
	wg.Wait()

	post, err := s.store.Posts().GetPost(s.ctx, s.post.ID)
	s.Require().NoError(err)
	s.Equal(len(post.LikedBy), post.Likes)
	s.Zero(post.Likes, "an even number of toggles restores the baseline")
}

func (s *EngineTestSuite) TestToggleUnknownPost() {
	_, err := s.engine.ToggleLike(s.ctx, s.store.NewID(), s.reader)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *EngineTestSuite) TestNotificationFailureDoesNotFailLike() {
	engine := NewEngine(s.store, notifications.NewCreator(brokenNotifications{s.store.Notifications()}), brokenInvalidator{})

	res, err := engine.ToggleLike(s.ctx, s.post.ID, s.reader)
	s.Require().NoError(err)
	s.True(res.Liked)

	post, err := engine.AddComment(s.ctx, s.post.ID, s.reader, "still works")
	s.Require().NoError(err)
	s.Len(post.Comments, 1)
}

func (s *EngineTestSuite) TestAddComment() {
	post, err := s.engine.AddComment(s.ctx, s.post.ID, s.reader, "  Nice post!  ")
	s.Require().NoError(err)
	s.Require().Len(post.Comments, 1)
	comment := post.Comments[0]
	s.Equal("Nice post!", comment.Text)
	s.Equal(s.reader.Summary(), comment.Author)
	s.NotEmpty(comment.ID)

	post, err = s.engine.AddComment(s.ctx, s.post.ID, s.author, "Thanks")
	s.Require().NoError(err)
	s.Require().Len(post.Comments, 2)
	s.Equal("Thanks", post.Comments[1].Text, "comments stay oldest first")

	inbox := s.inbox(s.author.ID)
	s.Require().Len(inbox, 1, "the author's own comment is not notified")
	s.Equal(models.NotificationComment, inbox[0].Type)
}

func (s *EngineTestSuite) TestAddCommentValidation() {
	for _, text := range []string{"", "   ", strings.Repeat("x", MaxCommentLength+1)} {
		_, err := s.engine.AddComment(s.ctx, s.post.ID, s.reader, text)
		var apiErr *apierrors.APIError
		s.Require().ErrorAs(err, &apiErr)
		s.Equal("text", apiErr.Field)
	}
	_, err := s.engine.AddComment(s.ctx, s.post.ID, s.reader, strings.Repeat("x", MaxCommentLength))
	s.NoError(err)
}

func (s *EngineTestSuite) TestCommentLengthCountsRunesAfterTrim() {
	text := "  " + strings.Repeat("é", MaxCommentLength) + "\n"
	post, err := s.engine.AddComment(s.ctx, s.post.ID, s.reader, text)
	s.Require().NoError(err)
	s.Equal(strings.Repeat("é", MaxCommentLength), post.Comments[len(post.Comments)-1].Text)
}

func (s *EngineTestSuite) TestAddCommentUnknownPost() {
	_, err := s.engine.AddComment(s.ctx, s.store.NewID(), s.reader, "hello")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *EngineTestSuite) TestIncrementShare() {
	for want := 1; want <= 3; want++ {
		post, err := s.engine.IncrementShare(s.ctx, s.post.ID)
		s.Require().NoError(err)
		s.Equal(want, post.Shares)
	}
	s.Empty(s.inbox(s.author.ID))

	_, err := s.engine.IncrementShare(s.ctx, s.store.NewID())
	s.ErrorIs(err, repository.ErrNotFound)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
