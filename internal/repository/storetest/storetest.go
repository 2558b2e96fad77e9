// Package storetest holds the behavioural suite every repository.Store
// implementation must pass.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// StoreSuite runs the contract against the store returned by Open
type StoreSuite struct {
	suite.Suite
	Open  func() (repository.Store, error)
	store repository.Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	store, err := s.Open()
	if err != nil {
		s.T().Skipf("Skipping store tests: store not available (%v)", err)
		return
	}
	s.store = store
	s.ctx = context.Background()
	s.Require().NoError(s.store.Clean(s.ctx))
}

func (s *StoreSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Clean(s.ctx)
		_ = s.store.Close(s.ctx)
	}
}

func (s *StoreSuite) createUser(email string) *models.User {
	u := &models.User{
		ID:        s.store.NewID(),
		Email:     email,
		FirstName: "Test",
		LastName:  email,
		Role:      models.RoleUser,
		Provider:  models.ProviderEmail,
	}
	s.Require().NoError(s.store.Users().CreateUser(s.ctx, u))
	return u
}

func (s *StoreSuite) createPost(author *models.User, category string) *models.Post {
	id := s.store.NewID()
	p := &models.Post{
		ID:       id,
		Slug:     "post-" + id,
		Title:    "Post " + id,
		Content:  "<p>hello</p>",
		Excerpt:  "hello",
		Category: category,
		Author:   author.Summary(),
	}
	s.Require().NoError(s.store.Posts().CreatePost(s.ctx, p))
	return p
}

func (s *StoreSuite) TestUserEmailIsUnique() {
	s.createUser("dup@example.com")
	err := s.store.Users().CreateUser(s.ctx, &models.User{
		ID:        s.store.NewID(),
		Email:     "DUP@example.com",
		FirstName: "Other",
		Role:      models.RoleUser,
		Provider:  models.ProviderEmail,
	})
	s.ErrorIs(err, repository.ErrConflict)
}

func (s *StoreSuite) TestGetUserByEmailIgnoresCase() {
	u := s.createUser("mixed@example.com")
	got, err := s.store.Users().GetUserByEmail(s.ctx, "  Mixed@Example.COM ")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	_, err = s.store.Users().GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *StoreSuite) TestUpdateUserPatch() {
	u := s.createUser("patch@example.com")
	bio := "writes about go"
	blocked := true
	got, err := s.store.Users().UpdateUser(s.ctx, u.ID, repository.UserPatch{Bio: &bio, IsBlocked: &blocked})
	s.Require().NoError(err)
	s.Equal(bio, got.Bio)
	s.True(got.IsBlocked)
	s.Equal("Test", got.FirstName)

	n, err := s.store.Users().CountUsers(s.ctx, "", true)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *StoreSuite) TestListUsersSearch() {
	s.createUser("alice@example.com")
	s.createUser("bob@example.com")
	users, total, err := s.store.Users().ListUsers(s.ctx, repository.UserQuery{Search: "ALICE"})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(users, 1)
	s.Equal("alice@example.com", users[0].Email)
}

func (s *StoreSuite) TestToggleLikePairRestoresBaseline() {
	author := s.createUser("author@example.com")
	liker := s.createUser("liker@example.com")
	post := s.createPost(author, "technology")

	p, liked, err := s.store.Posts().ToggleLike(s.ctx, post.ID, liker.ID)
	s.Require().NoError(err)
	s.True(liked)
	s.Equal(1, p.Likes)
	s.Equal([]string{liker.ID}, p.LikedBy)

	p, liked, err = s.store.Posts().ToggleLike(s.ctx, post.ID, liker.ID)
	s.Require().NoError(err)
	s.False(liked)
	s.Equal(0, p.Likes)
	s.Empty(p.LikedBy)
}

func (s *StoreSuite) TestToggleLikeCounterMatchesSet() {
	author := s.createUser("author@example.com")
	post := s.createPost(author, "design")
	likers := []*models.User{
		s.createUser("a@example.com"),
		s.createUser("b@example.com"),
		s.createUser("c@example.com"),
	}

	sequence := []int{0, 1, 0, 2, 1, 1, 2, 0}
	for _, i := range sequence {
		p, _, err := s.store.Posts().ToggleLike(s.ctx, post.ID, likers[i].ID)
		s.Require().NoError(err)
		s.Equal(len(p.LikedBy), p.Likes)
	}

	p, err := s.store.Posts().GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(len(p.LikedBy), p.Likes)
	s.ElementsMatch([]string{likers[0].ID, likers[1].ID}, p.LikedBy)
}

func (s *StoreSuite) TestToggleLikeConcurrent() {
	author := s.createUser("author@example.com")
	post := s.createPost(author, "design")
	liker := s.createUser("racer@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.store.Posts().ToggleLike(s.ctx, post.ID, liker.ID)
		}()
	}
	wg.Wait()

	p, err := s.store.Posts().GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(len(p.LikedBy), p.Likes)
	s.LessOrEqual(p.Likes, 1)
}

func (s *StoreSuite) TestToggleLikeUnknownPost() {
	u := s.createUser("u@example.com")
	_, _, err := s.store.Posts().ToggleLike(s.ctx, s.store.NewID(), u.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *StoreSuite) TestAppendCommentKeepsOrder() {
	author := s.createUser("author@example.com")
	post := s.createPost(author, "travel")

	for i := 0; i < 3; i++ {
		c := &models.Comment{
			ID:        s.store.NewID(),
			Author:    author.Summary(),
			Text:      fmt.Sprintf("comment %d", i),
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}
		p, err := s.store.Posts().AppendComment(s.ctx, post.ID, c)
		s.Require().NoError(err)
		s.Len(p.Comments, i+1)
		s.Equal(c.Text, p.Comments[i].Text)
	}

	_, err := s.store.Posts().AppendComment(s.ctx, s.store.NewID(), &models.Comment{
		ID: s.store.NewID(), Author: author.Summary(), Text: "x", CreatedAt: time.Now().UTC(),
	})
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *StoreSuite) TestIncrementShares() {
	author := s.createUser("author@example.com")
	post := s.createPost(author, "food")
	for i := 1; i <= 3; i++ {
		p, err := s.store.Posts().IncrementShares(s.ctx, post.ID)
		s.Require().NoError(err)
		s.Equal(i, p.Shares)
	}
}

func (s *StoreSuite) TestDeletePostRemovesComments() {
	author := s.createUser("author@example.com")
	post := s.createPost(author, "food")
	_, err := s.store.Posts().AppendComment(s.ctx, post.ID, &models.Comment{
		ID: s.store.NewID(), Author: author.Summary(), Text: "bye", CreatedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.store.Posts().DeletePost(s.ctx, post.ID))
	_, err = s.store.Posts().GetPost(s.ctx, post.ID)
	s.ErrorIs(err, repository.ErrNotFound)
	s.ErrorIs(s.store.Posts().DeletePost(s.ctx, post.ID), repository.ErrNotFound)
}

func (s *StoreSuite) TestListPostsFilters() {
	a := s.createUser("a@example.com")
	b := s.createUser("b@example.com")
	s.createPost(a, "technology")
	s.createPost(a, "design")
	s.createPost(b, "technology")

	posts, total, err := s.store.Posts().ListPosts(s.ctx, repository.PostQuery{Category: "technology"})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(posts, 2)

	posts, total, err = s.store.Posts().ListPosts(s.ctx, repository.PostQuery{AuthorID: a.ID, Limit: 1})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(posts, 1)
}

func (s *StoreSuite) TestCategoryAggregates() {
	a := s.createUser("a@example.com")
	b := s.createUser("b@example.com")
	c := s.createUser("c@example.com")
	s.createPost(a, "technology")
	s.createPost(a, "technology")
	s.createPost(b, "technology")
	s.createPost(c, "technology")
	s.createPost(c, "sports")

	ids, err := s.store.Posts().AuthorIDsByCategory(s.ctx, "technology")
	s.Require().NoError(err)
	s.ElementsMatch([]string{a.ID, b.ID, c.ID}, ids)

	counts, err := s.store.Posts().CategoryCounts(s.ctx)
	s.Require().NoError(err)
	byCat := map[string]int64{}
	for _, cc := range counts {
		byCat[cc.Category] = cc.Count
	}
	s.EqualValues(4, byCat["technology"])
	s.EqualValues(1, byCat["sports"])
}

func (s *StoreSuite) TestUpdateAuthorSnapshots() {
	a := s.createUser("a@example.com")
	post := s.createPost(a, "culture")
	_, err := s.store.Posts().AppendComment(s.ctx, post.ID, &models.Comment{
		ID: s.store.NewID(), Author: a.Summary(), Text: "self", CreatedAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	renamed := models.AuthorSummary{ID: a.ID, Name: "Renamed Author", Image: "https://cdn.example.com/a.png"}
	n, err := s.store.Posts().UpdateAuthorSnapshots(s.ctx, renamed)
	s.Require().NoError(err)
	s.EqualValues(2, n)

	p, err := s.store.Posts().GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(renamed, p.Author)
	s.Equal(renamed, p.Comments[0].Author)
}

func (s *StoreSuite) TestDeleteUserWithdrawsLikes() {
	author := s.createUser("author@example.com")
	liker := s.createUser("liker@example.com")
	post := s.createPost(author, "health")
	_, _, err := s.store.Posts().ToggleLike(s.ctx, post.ID, liker.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Users().DeleteUser(s.ctx, liker.ID))
	p, err := s.store.Posts().GetPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(0, p.Likes)
	s.Empty(p.LikedBy)

	s.ErrorIs(s.store.Users().DeleteUser(s.ctx, liker.ID), repository.ErrNotFound)
}

func (s *StoreSuite) notify(recipient string, created time.Time) *models.Notification {
	n := &models.Notification{
		ID:          s.store.NewID(),
		RecipientID: recipient,
		Type:        models.NotificationLike,
		CreatedAt:   created,
	}
	s.Require().NoError(s.store.Notifications().CreateNotification(s.ctx, n))
	return n
}

func (s *StoreSuite) TestNotificationInbox() {
	u := s.createUser("inbox@example.com")
	other := s.createUser("other@example.com")
	now := time.Now().UTC()
	first := s.notify(u.ID, now.Add(-time.Minute))
	second := s.notify(u.ID, now)
	s.notify(other.ID, now)

	list, total, err := s.store.Notifications().ListNotifications(s.ctx, u.ID, 10, 0)
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)
	s.Equal(first.ID, list[1].ID)

	changed, err := s.store.Notifications().MarkRead(s.ctx, first.ID, u.ID)
	s.Require().NoError(err)
	s.True(changed)
	changed, err = s.store.Notifications().MarkRead(s.ctx, first.ID, u.ID)
	s.Require().NoError(err)
	s.False(changed)

	// other recipients cannot touch the notification
	changed, err = s.store.Notifications().MarkRead(s.ctx, second.ID, other.ID)
	s.Require().NoError(err)
	s.False(changed)

	unread, err := s.store.Notifications().CountUnread(s.ctx, u.ID)
	s.Require().NoError(err)
	s.EqualValues(1, unread)

	n, err := s.store.Notifications().MarkAllRead(s.ctx, u.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	deleted, err := s.store.Notifications().DeleteNotification(s.ctx, second.ID, u.ID)
	s.Require().NoError(err)
	s.True(deleted)
	deleted, err = s.store.Notifications().DeleteNotification(s.ctx, second.ID, u.ID)
	s.Require().NoError(err)
	s.False(deleted)

	n, err = s.store.Notifications().DeleteAllForRecipient(s.ctx, u.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	total, err = s.store.Notifications().CountNotifications(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, total)
}

func (s *StoreSuite) TestDeleteByBroadcast() {
	u := s.createUser("a@example.com")
	broadcast := s.store.NewID()
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Notifications().CreateNotification(s.ctx, &models.Notification{
			ID:          s.store.NewID(),
			RecipientID: u.ID,
			Type:        models.NotificationAnnouncement,
			Title:       "hello",
			BroadcastID: broadcast,
			CreatedAt:   time.Now().UTC(),
		}))
	}
	n, err := s.store.Notifications().DeleteByBroadcast(s.ctx, broadcast)
	s.Require().NoError(err)
	s.EqualValues(3, n)
}

func (s *StoreSuite) TestAnnouncementLog() {
	a := &models.Announcement{
		ID:            s.store.NewID(),
		AdminID:       s.store.NewID(),
		Title:         "Maintenance",
		TargetMode:    models.TargetSpecific,
		TargetUserIDs: []string{"u1", "u2"},
		TotalTargeted: 2,
		SuccessCount:  2,
		Status:        models.BroadcastCompleted,
		CreatedAt:     time.Now().UTC(),
	}
	s.Require().NoError(s.store.Announcements().CreateAnnouncement(s.ctx, a))

	got, err := s.store.Announcements().GetAnnouncement(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(a.TargetUserIDs, got.TargetUserIDs)
	s.Equal(models.BroadcastCompleted, got.Status)

	list, total, err := s.store.Announcements().ListAnnouncements(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Len(list, 1)
}
