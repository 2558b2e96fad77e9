package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// Documents keep native ObjectIDs; the mappers below convert to and from
// the string ids used everywhere above the store.

type authorDoc struct {
	ID    primitive.ObjectID `bson:"id"`
	Name  string             `bson:"name"`
	Image string             `bson:"image"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	FirstName    string             `bson:"firstName"`
	LastName     string             `bson:"lastName"`
	Password     *string            `bson:"password,omitempty"`
	ProfileImage string             `bson:"profileImage"`
	Bio          string             `bson:"bio"`
	Role         models.Role        `bson:"role"`
	IsBlocked    bool               `bson:"isBlocked"`
	Provider     models.Provider    `bson:"provider"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"id"`
	Author    authorDoc          `bson:"author"`
	Text      string             `bson:"text"`
	CreatedAt time.Time          `bson:"createdAt"`
}

type postDoc struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Slug      string               `bson:"slug"`
	Title     string               `bson:"title"`
	Content   string               `bson:"content"`
	Excerpt   string               `bson:"excerpt"`
	Category  string               `bson:"category"`
	Author    authorDoc            `bson:"author"`
	Image     string               `bson:"image"`
	Likes     int                  `bson:"likes"`
	LikedBy   []primitive.ObjectID `bson:"likedBy"`
	Shares    int                  `bson:"shares"`
	Comments  []commentDoc         `bson:"comments"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

type postRefDoc struct {
	ID    primitive.ObjectID `bson:"id"`
	Slug  string             `bson:"slug"`
	Title string             `bson:"title"`
}

type notificationDoc struct {
	ID          primitive.ObjectID      `bson:"_id"`
	RecipientID primitive.ObjectID      `bson:"recipientId"`
	Type        models.NotificationType `bson:"type"`
	Post        *postRefDoc             `bson:"post,omitempty"`
	Actor       authorDoc               `bson:"actor"`
	Title       string                  `bson:"title,omitempty"`
	Description string                  `bson:"description,omitempty"`
	Link        string                  `bson:"link,omitempty"`
	BroadcastID primitive.ObjectID      `bson:"broadcastId,omitempty"`
	IsRead      bool                    `bson:"isRead"`
	CreatedAt   time.Time               `bson:"createdAt"`
}

type announcementDoc struct {
	ID            primitive.ObjectID     `bson:"_id"`
	AdminID       primitive.ObjectID     `bson:"adminId"`
	Title         string                 `bson:"title"`
	Description   string                 `bson:"description"`
	Link          string                 `bson:"link"`
	TargetMode    models.TargetMode      `bson:"targetMode"`
	TargetUserIDs []string               `bson:"targetUserIds,omitempty"`
	Category      string                 `bson:"category,omitempty"`
	TotalTargeted int                    `bson:"totalTargeted"`
	SuccessCount  int                    `bson:"successCount"`
	ErrorCount    int                    `bson:"errorCount"`
	Status        models.BroadcastStatus `bson:"status"`
	CreatedAt     time.Time              `bson:"createdAt"`
}

// toOID parses a hex id; malformed ids become repository.ErrInvalidID
func toOID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

// orNewOID parses id, generating a fresh ObjectID when it is empty
func orNewOID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	return toOID(id)
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func nowUTC() time.Time {
	// mongo keeps millisecond precision
	return time.Now().UTC().Truncate(time.Millisecond)
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return nowUTC()
	}
	return t.UTC()
}

func authorFromModel(a models.AuthorSummary) (authorDoc, error) {
	oid, err := toOID(a.ID)
	if err != nil {
		return authorDoc{}, err
	}
	return authorDoc{ID: oid, Name: a.Name, Image: a.Image}, nil
}

func (d authorDoc) toModel() models.AuthorSummary {
	return models.AuthorSummary{ID: hexOrEmpty(d.ID), Name: d.Name, Image: d.Image}
}

func userFromModel(u *models.User) (*userDoc, error) {
	oid, err := orNewOID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDoc{
		ID:           oid,
		Email:        models.NormalizeEmail(u.Email),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Password:     u.Password,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		Role:         u.Role,
		IsBlocked:    u.IsBlocked,
		Provider:     u.Provider,
		CreatedAt:    orNow(u.CreatedAt),
		UpdatedAt:    orNow(u.UpdatedAt),
	}, nil
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Password:     d.Password,
		ProfileImage: d.ProfileImage,
		Bio:          d.Bio,
		Role:         d.Role,
		IsBlocked:    d.IsBlocked,
		Provider:     d.Provider,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func commentFromModel(c *models.Comment) (commentDoc, error) {
	oid, err := orNewOID(c.ID)
	if err != nil {
		return commentDoc{}, err
	}
	author, err := authorFromModel(c.Author)
	if err != nil {
		return commentDoc{}, err
	}
	return commentDoc{ID: oid, Author: author, Text: c.Text, CreatedAt: orNow(c.CreatedAt)}, nil
}

func postFromModel(p *models.Post) (*postDoc, error) {
	oid, err := orNewOID(p.ID)
	if err != nil {
		return nil, err
	}
	author, err := authorFromModel(p.Author)
	if err != nil {
		return nil, err
	}
	return &postDoc{
		ID:        oid,
		Slug:      p.Slug,
		Title:     p.Title,
		Content:   p.Content,
		Excerpt:   p.Excerpt,
		Category:  p.Category,
		Author:    author,
		Image:     p.Image,
		LikedBy:   []primitive.ObjectID{},
		Shares:    p.Shares,
		Comments:  []commentDoc{},
		CreatedAt: orNow(p.CreatedAt),
		UpdatedAt: orNow(p.UpdatedAt),
	}, nil
}

func (d *postDoc) toModel() *models.Post {
	p := &models.Post{
		ID:        d.ID.Hex(),
		Slug:      d.Slug,
		Title:     d.Title,
		Content:   d.Content,
		Excerpt:   d.Excerpt,
		Category:  d.Category,
		Author:    d.Author.toModel(),
		Image:     d.Image,
		Likes:     d.Likes,
		LikedBy:   make([]string, 0, len(d.LikedBy)),
		Shares:    d.Shares,
		Comments:  make([]models.Comment, 0, len(d.Comments)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, id := range d.LikedBy {
		p.LikedBy = append(p.LikedBy, id.Hex())
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, models.Comment{
			ID:        c.ID.Hex(),
			PostID:    p.ID,
			Author:    c.Author.toModel(),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return p
}

func notificationFromModel(n *models.Notification) (*notificationDoc, error) {
	oid, err := orNewOID(n.ID)
	if err != nil {
		return nil, err
	}
	recipient, err := toOID(n.RecipientID)
	if err != nil {
		return nil, err
	}
	doc := &notificationDoc{
		ID:          oid,
		RecipientID: recipient,
		Type:        n.Type,
		Title:       n.Title,
		Description: n.Description,
		Link:        n.Link,
		IsRead:      n.IsRead,
		CreatedAt:   orNow(n.CreatedAt),
	}
	if n.Actor.ID != "" {
		if doc.Actor, err = authorFromModel(n.Actor); err != nil {
			return nil, err
		}
	}
	if n.Post.ID != "" {
		pid, err := toOID(n.Post.ID)
		if err != nil {
			return nil, err
		}
		doc.Post = &postRefDoc{ID: pid, Slug: n.Post.Slug, Title: n.Post.Title}
	}
	if n.BroadcastID != "" {
		if doc.BroadcastID, err = toOID(n.BroadcastID); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (d *notificationDoc) toModel() *models.Notification {
	n := &models.Notification{
		ID:          d.ID.Hex(),
		RecipientID: d.RecipientID.Hex(),
		Type:        d.Type,
		Actor:       d.Actor.toModel(),
		Title:       d.Title,
		Description: d.Description,
		Link:        d.Link,
		BroadcastID: hexOrEmpty(d.BroadcastID),
		IsRead:      d.IsRead,
		CreatedAt:   d.CreatedAt,
	}
	if d.Post != nil {
		n.Post = models.PostRef{ID: d.Post.ID.Hex(), Slug: d.Post.Slug, Title: d.Post.Title}
	}
	return n
}

func announcementFromModel(a *models.Announcement) (*announcementDoc, error) {
	oid, err := orNewOID(a.ID)
	if err != nil {
		return nil, err
	}
	admin, err := toOID(a.AdminID)
	if err != nil {
		return nil, err
	}
	return &announcementDoc{
		ID:            oid,
		AdminID:       admin,
		Title:         a.Title,
		Description:   a.Description,
		Link:          a.Link,
		TargetMode:    a.TargetMode,
		TargetUserIDs: a.TargetUserIDs,
		Category:      a.Category,
		TotalTargeted: a.TotalTargeted,
		SuccessCount:  a.SuccessCount,
		ErrorCount:    a.ErrorCount,
		Status:        a.Status,
		CreatedAt:     orNow(a.CreatedAt),
	}, nil
}

func (d *announcementDoc) toModel() *models.Announcement {
	return &models.Announcement{
		ID:            d.ID.Hex(),
		AdminID:       d.AdminID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Link:          d.Link,
		TargetMode:    d.TargetMode,
		TargetUserIDs: d.TargetUserIDs,
		Category:      d.Category,
		TotalTargeted: d.TotalTargeted,
		SuccessCount:  d.SuccessCount,
		ErrorCount:    d.ErrorCount,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
	}
}
