package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/testutil"
)

type UserServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *sqlstore.Store
	service *Service
	admin   *models.User
}

func (s *UserServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.service = NewService(s.store, posts.NewService(s.store, nil), nil)

	s.admin = testutil.CreateUser(s.T(), s.store, "Admin")
	role := models.RoleAdmin
	var err error
	s.admin, err = s.store.Users().UpdateUser(s.ctx, s.admin.ID, repository.UserPatch{Role: &role})
	s.Require().NoError(err)
}

func (s *UserServiceTestSuite) TestUpdateProfileRefreshesSnapshots() {
	user := testutil.CreateUser(s.T(), s.store, "Old")
	post := testutil.CreatePost(s.T(), s.store, user, "food")
	_, err := s.store.Posts().AppendComment(s.ctx, post.ID, &models.Comment{ID: s.store.NewID(), Author: user.Summary(), Text: "first"})
	s.Require().NoError(err)

	first, image := "New", "https://img.example.com/me.png"
	updated, err := s.service.UpdateProfile(s.ctx, user, ProfileInput{FirstName: &first, ProfileImage: &image})
	s.Require().NoError(err)
	s.Equal("New Tester", updated.DisplayName())

	got, err := s.store.Posts().GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(updated.Summary(), got.Author)
	s.Equal(updated.Summary(), got.Comments[0].Author)
}

func (s *UserServiceTestSuite) TestUpdateProfileRejectsBlankFirstName() {
	user := testutil.CreateUser(s.T(), s.store, "Keep")
	blank := "  "
	_, err := s.service.UpdateProfile(s.ctx, user, ProfileInput{FirstName: &blank})
	s.Error(err)
}

func (s *UserServiceTestSuite) TestModeration() {
	user := testutil.CreateUser(s.T(), s.store, "Target")

	blocked, err := s.service.SetBlocked(s.ctx, s.admin, user.ID, true)
	s.Require().NoError(err)
	s.True(blocked.IsBlocked)

	promoted, err := s.service.SetRole(s.ctx, s.admin, user.ID, models.RoleAdmin)
	s.Require().NoError(err)
	s.True(promoted.IsAdmin())

	_, err = s.service.SetRole(s.ctx, s.admin, user.ID, "owner")
	s.ErrorIs(err, ErrInvalidRole)

	_, err = s.service.SetBlocked(s.ctx, s.admin, s.admin.ID, true)
	s.ErrorIs(err, ErrSelfModeration)
	_, err = s.service.SetRole(s.ctx, s.admin, s.admin.ID, models.RoleUser)
	s.ErrorIs(err, ErrSelfModeration)

	_, err = s.service.SetBlocked(s.ctx, s.admin, s.store.NewID(), true)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *UserServiceTestSuite) TestCreateUser() {
	user, err := s.service.CreateUser(s.ctx, CreateInput{
		Email: "Made@Example.com", Password: "secret1", FirstName: "Made",
	})
	s.Require().NoError(err)
	s.Equal("made@example.com", user.Email)
	s.Equal(models.ProviderAdminCreated, user.Provider)
	s.Equal(models.RoleUser, user.Role)
	s.Require().NotNil(user.Password)
	s.True(auth.CheckPassword(*user.Password, "secret1"))

	_, err = s.service.CreateUser(s.ctx, CreateInput{Email: "made@example.com", Password: "secret1", FirstName: "Again"})
	s.ErrorIs(err, auth.ErrEmailTaken)
}

func (s *UserServiceTestSuite) TestDeleteRemovesPostsAndInbox() {
	user := testutil.CreateUser(s.T(), s.store, "Leaving")
	testutil.CreatePost(s.T(), s.store, user, "travel")
	creator := notifications.NewCreator(s.store.Notifications())
	_, err := creator.Create(s.ctx, notifications.NewNotification{RecipientID: user.ID, Type: models.NotificationLike, Actor: s.admin.Summary()})
	s.Require().NoError(err)

	s.ErrorIs(s.service.Delete(s.ctx, s.admin, s.admin.ID), ErrSelfModeration)
	s.Require().NoError(s.service.Delete(s.ctx, s.admin, user.ID))

	_, err = s.store.Users().GetUser(s.ctx, user.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	_, total, err := s.store.Posts().ListPosts(s.ctx, repository.PostQuery{AuthorID: user.ID, Limit: 10})
	s.NoError(err)
	s.Zero(total)
	count, err := s.store.Notifications().CountNotifications(s.ctx)
	s.NoError(err)
	s.Zero(count)
}

func (s *UserServiceTestSuite) TestListAndStats() {
	a := testutil.CreateUser(s.T(), s.store, "Alpha")
	testutil.CreateUser(s.T(), s.store, "Beta")
	_, err := s.service.SetBlocked(s.ctx, s.admin, a.ID, true)
	s.Require().NoError(err)
	testutil.CreatePost(s.T(), s.store, a, "health")

	blocked := true
	list, total, err := s.service.List(s.ctx, repository.UserQuery{Blocked: &blocked})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal(a.ID, list[0].ID)

	stats, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(3, stats.Users)
	s.EqualValues(1, stats.Admins)
	s.EqualValues(1, stats.Blocked)
	s.EqualValues(1, stats.Posts)
	s.Equal([]repository.CategoryCount{{Category: "health", Count: 1}}, stats.Categories)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
