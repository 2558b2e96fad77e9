package mongostore

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type userRepository struct {
	coll *mongo.Collection
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return repository.ErrInvalidInput
	}
	doc, err := userFromModel(user)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	*user = *doc.toModel()
	return nil
}

func (r *userRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	oid, err := toOID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *userRepository) ListUsers(ctx context.Context, query repository.UserQuery) ([]*models.User, int64, error) {
	limit, offset := repository.Paginate(query.Limit, query.Offset, 20, 100)

	filter := bson.M{}
	if s := strings.TrimSpace(query.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"email": re},
			bson.M{"firstName": re},
			bson.M{"lastName": re},
		}
	}
	if query.Role != "" {
		filter["role"] = query.Role
	}
	if query.Blocked != nil {
		filter["isBlocked"] = *query.Blocked
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := r.coll.Find(ctx, filter, findPage(limit, offset, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, total, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, userID string, patch repository.UserPatch) (*models.User, error) {
	oid, err := toOID(userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.FirstName != nil {
		set["firstName"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["lastName"] = *patch.LastName
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if patch.ProfileImage != nil {
		set["profileImage"] = *patch.ProfileImage
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.IsBlocked != nil {
		set["isBlocked"] = *patch.IsBlocked
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if len(set) == 0 {
		return r.GetUser(ctx, userID)
	}
	set["updatedAt"] = nowUTC()

	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

// DeleteUser removes the user. Their likes are pulled from every post with
// the counter moved in the same update.
func (r *userRepository) DeleteUser(ctx context.Context, userID string) error {
	oid, err := toOID(userID)
	if err != nil {
		return err
	}

	posts := r.coll.Database().Collection(postsCollection)
	_, err = posts.UpdateMany(ctx,
		bson.M{"likedBy": oid},
		bson.M{"$pull": bson.M{"likedBy": oid}, "$inc": bson.M{"likes": -1}},
	)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) CountUsers(ctx context.Context, role models.Role, blockedOnly bool) (int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if blockedOnly {
		filter["isBlocked"] = true
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *userRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID.Hex())
	}
	return ids, nil
}
