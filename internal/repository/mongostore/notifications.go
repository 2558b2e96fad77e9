package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

type notificationRepository struct {
	coll *mongo.Collection
}

func (r *notificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n == nil || n.RecipientID == "" {
		return repository.ErrInvalidInput
	}
	doc, err := notificationFromModel(n)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	*n = *doc.toModel()
	return nil
}

func (r *notificationRepository) ListNotifications(ctx context.Context, recipientID string, limit, offset int) ([]*models.Notification, int64, error) {
	rid, err := toOID(recipientID)
	if err != nil {
		return nil, 0, err
	}
	limit, offset = repository.Paginate(limit, offset, 20, 100)
	filter := bson.M{"recipientId": rid}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	cursor, err := r.coll.Find(ctx, filter, findPage(limit, offset, sort))
	if err != nil {
		return nil, 0, err
	}
	var docs []notificationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]*models.Notification, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	rid, err := toOID(recipientID)
	if err != nil {
		return 0, err
	}
	return r.coll.CountDocuments(ctx, bson.M{"recipientId": rid, "isRead": false})
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, recipientID string) (bool, error) {
	nid, err := toOID(notificationID)
	if err != nil {
		return false, err
	}
	rid, err := toOID(recipientID)
	if err != nil {
		return false, err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": nid, "recipientId": rid, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	rid, err := toOID(recipientID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"recipientId": rid, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *notificationRepository) DeleteNotification(ctx context.Context, notificationID, recipientID string) (bool, error) {
	nid, err := toOID(notificationID)
	if err != nil {
		return false, err
	}
	rid, err := toOID(recipientID)
	if err != nil {
		return false, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": nid, "recipientId": rid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *notificationRepository) DeleteAllForRecipient(ctx context.Context, recipientID string) (int64, error) {
	rid, err := toOID(recipientID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"recipientId": rid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *notificationRepository) DeleteByBroadcast(ctx context.Context, broadcastID string) (int64, error) {
	bid, err := toOID(broadcastID)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"broadcastId": bid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *notificationRepository) CountNotifications(ctx context.Context) (int64, error) {
	return r.coll.EstimatedDocumentCount(ctx)
}
