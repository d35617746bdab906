package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatterbox-im/chatterbox/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	GetConversation(ctx context.Context, userID, peerID string) ([]*models.Message, error)
	AddSeen(ctx context.Context, id, viewerID string) (*models.Message, error)
	MarkDelivered(ctx context.Context, id string) (bool, error)
	AppendEdit(ctx context.Context, id string, prev models.EditRecord, newText string) (*models.Message, error)
	AddDeletedFor(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	LastBetween(ctx context.Context, userID, peerID string) (*models.Message, error)
	CountUnread(ctx context.Context, userID, peerID string) (int64, error)
}

type messageRepo struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *DB) MessageRepository {
	return &messageRepo{
		collection: db.Database.Collection("messages"),
	}
}

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	message.UpdatedAt = message.CreatedAt

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var message models.Message
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &message, nil
}

// GetConversation returns all messages between userID and peerID ascending by
// creation time, excluding messages userID deleted for themselves.
func (r *messageRepo) GetConversation(ctx context.Context, userID, peerID string) ([]*models.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": userID, "receiver_id": peerID},
			bson.M{"sender_id": peerID, "receiver_id": userID},
		},
		"deleted_for": bson.M{"$ne": userID},
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return messages, nil
}

func (r *messageRepo) AddSeen(ctx context.Context, id, viewerID string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	update := bson.M{
		"$addToSet": bson.M{"seen": viewerID},
		"$set": bson.M{
			"status":     models.StatusSeen,
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var message models.Message
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("add seen: %w", err)
	}
	return &message, nil
}

// MarkDelivered promotes a message from sent to delivered. A message already
// delivered or seen is left untouched so the status never regresses.
func (r *messageRepo) MarkDelivered(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, models.ErrNotFound
	}

	filter := bson.M{"_id": oid, "status": models.StatusSent}
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusDelivered,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mark delivered: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *messageRepo) AppendEdit(ctx context.Context, id string, prev models.EditRecord, newText string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	update := bson.M{
		"$push": bson.M{"edit_history": prev},
		"$set": bson.M{
			"text":       newText,
			"is_edited":  true,
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var message models.Message
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("append edit: %w", err)
	}
	return &message, nil
}

func (r *messageRepo) AddDeletedFor(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	update := bson.M{
		"$addToSet": bson.M{"deleted_for": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("add deleted_for: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// LastBetween returns the newest message between userID and peerID that
// userID has not deleted for themselves, or ErrNotFound when the
// conversation is empty.
func (r *messageRepo) LastBetween(ctx context.Context, userID, peerID string) (*models.Message, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"sender_id": userID, "receiver_id": peerID},
			bson.M{"sender_id": peerID, "receiver_id": userID},
		},
		"deleted_for": bson.M{"$ne": userID},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var message models.Message
	err := r.collection.FindOne(ctx, filter, opts).Decode(&message)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last between: %w", err)
	}
	return &message, nil
}

// CountUnread counts messages from peerID that userID has not seen yet.
func (r *messageRepo) CountUnread(ctx context.Context, userID, peerID string) (int64, error) {
	filter := bson.M{
		"sender_id":   peerID,
		"receiver_id": userID,
		"seen":        bson.M{"$ne": userID},
		"deleted_for": bson.M{"$ne": userID},
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *messageRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
