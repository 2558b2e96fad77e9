package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type announcementRepository struct {
	coll *mongo.Collection
}

func (r *announcementRepository) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a == nil {
		return repository.ErrInvalidInput
	}
	doc, err := announcementFromModel(a)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	*a = *doc.toModel()
	return nil
}

func (r *announcementRepository) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	oid, err := toOID(id)
	if err != nil {
		return nil, err
	}
	var doc announcementDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *announcementRepository) ListAnnouncements(ctx context.Context, limit, offset int) ([]*models.Announcement, int64, error) {
	limit, offset = repository.Paginate(limit, offset, 20, 100)
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	cursor, err := r.coll.Find(ctx, bson.M{}, findPage(limit, offset, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var docs []announcementDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*models.Announcement, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, total, nil
}
