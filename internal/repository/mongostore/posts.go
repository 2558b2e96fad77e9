package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// maxToggleAttempts bounds retries when concurrent toggles keep flipping
// the like set between the add and remove attempts
const maxToggleAttempts = 3

type postRepository struct {
	coll *mongo.Collection
}

func (r *postRepository) CreatePost(ctx context.Context, post *models.Post) error {
	if post == nil {
		return repository.ErrInvalidInput
	}
	doc, err := postFromModel(post)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	*post = *doc.toModel()
	return nil
}

func (r *postRepository) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	oid, err := toOID(postID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *postRepository) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if slug == "" {
		return nil, repository.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *postRepository) findOne(ctx context.Context, filter bson.M) (*models.Post, error) {
	var doc postDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *postRepository) ListPosts(ctx context.Context, query repository.PostQuery) ([]*models.Post, int64, error) {
	limit, offset := repository.Paginate(query.Limit, query.Offset, 20, 50)

	filter := bson.M{}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	if query.AuthorID != "" {
		oid, err := toOID(query.AuthorID)
		if err != nil {
			return nil, 0, err
		}
		filter["author.id"] = oid
	}
	if s := strings.TrimSpace(query.Search); s != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		filter["$or"] = bson.A{bson.M{"title": re}, bson.M{"excerpt": re}}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	switch query.Sort {
	case repository.SortOldest:
		sort = bson.D{{Key: "createdAt", Value: 1}}
	case repository.SortPopular:
		sort = bson.D{{Key: "likes", Value: -1}, {Key: "createdAt", Value: -1}}
	}

	cursor, err := r.coll.Find(ctx, filter, findPage(limit, offset, sort))
	if err != nil {
		return nil, 0, err
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	posts := make([]*models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}
	return posts, total, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, postID string, patch repository.PostPatch) (*models.Post, error) {
	oid, err := toOID(postID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Excerpt != nil {
		set["excerpt"] = *patch.Excerpt
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if len(set) == 0 {
		return r.GetPost(ctx, postID)
	}
	set["updatedAt"] = nowUTC()

	var doc postDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, returnAfter()).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

// DeletePost removes the post; comments and likes live inside the document
func (r *postRepository) DeletePost(ctx context.Context, postID string) error {
	oid, err := toOID(postID)
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

func (r *postRepository) DeletePostsByAuthor(ctx context.Context, authorID string) (int64, error) {
	oid, err := toOID(authorID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"author.id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ToggleLike tries a guarded add, then a guarded remove. Each is a single
// atomic document update, so likes and likedBy never diverge.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, bool, error) {
	pid, err := toOID(postID)
	if err != nil {
		return nil, false, err
	}
	uid, err := toOID(userID)
	if err != nil {
		return nil, false, err
	}

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var doc postDoc
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, "likedBy": bson.M{"$ne": uid}},
			bson.M{"$addToSet": bson.M{"likedBy": uid}, "$inc": bson.M{"likes": 1}},
			returnAfter(),
		).Decode(&doc)
		if err == nil {
			return doc.toModel(), true, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		err = r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": pid, "likedBy": uid},
			bson.M{"$pull": bson.M{"likedBy": uid}, "$inc": bson.M{"likes": -1}},
			returnAfter(),
		).Decode(&doc)
		if err == nil {
			return doc.toModel(), false, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, err
		}

		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": pid})
		if err != nil {
			return nil, false, err
		}
		if n == 0 {
			return nil, false, repository.ErrNotFound
		}
	}
	return nil, false, fmt.Errorf("toggle like on post %s: gave up after %d contended attempts", postID, maxToggleAttempts)
}

func (r *postRepository) AppendComment(ctx context.Context, postID string, comment *models.Comment) (*models.Post, error) {
	pid, err := toOID(postID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, repository.ErrInvalidInput
	}
	doc, err := commentFromModel(comment)
	if err != nil {
		return nil, err
	}

	var post postDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": pid},
		bson.M{"$push": bson.M{"comments": doc}},
		returnAfter(),
	).Decode(&post)
	if err != nil {
		return nil, translate(err)
	}
	comment.ID = doc.ID.Hex()
	comment.PostID = postID
	comment.CreatedAt = doc.CreatedAt
	return post.toModel(), nil
}

func (r *postRepository) IncrementShares(ctx context.Context, postID string) (*models.Post, error) {
	pid, err := toOID(postID)
	if err != nil {
		return nil, err
	}
	var doc postDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": pid},
		bson.M{"$inc": bson.M{"shares": 1}},
		returnAfter(),
	).Decode(&doc)
	if err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *postRepository) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]repository.CategoryCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.CategoryCount{Category: row.Category, Count: row.Count})
	}
	return out, nil
}

func (r *postRepository) AuthorIDsByCategory(ctx context.Context, category string) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"category": category}}},
		{{Key: "$group", Value: bson.M{"_id": "$author.id"}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
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

func (r *postRepository) UpdateAuthorSnapshots(ctx context.Context, author models.AuthorSummary) (int64, error) {
	aid, err := toOID(author.ID)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"author.id": aid},
		bson.M{"$set": bson.M{"author.name": author.Name, "author.image": author.Image}},
	)
	if err != nil {
		return 0, err
	}
	touched := res.ModifiedCount

	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"c.author.id": aid}},
	})
	res, err = r.coll.UpdateMany(ctx,
		bson.M{"comments.author.id": aid},
		bson.M{"$set": bson.M{
			"comments.$[c].author.name":  author.Name,
			"comments.$[c].author.image": author.Image,
		}},
		opts,
	)
	if err != nil {
		return touched, err
	}
	return touched + res.ModifiedCount, nil
}
