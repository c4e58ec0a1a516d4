// Package mongodb implements core.Store over the chat service's MongoDB collections.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersColl    = "users"
	chatsColl    = "chats"
	messagesColl = "messages"
)

type Store struct {
	DB  *mongo.Database
	now func() time.Time
}

// Connect dials uri and verifies the deployment is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Info().Str("module", "storage.mongo").Str("db", database).Msg("connected")
	return New(cli.Database(database)), nil
}

func New(db *mongo.Database) *Store {
	return &Store{DB: db, now: time.Now}
}

func (s *Store) Close(ctx context.Context) error {
	return s.DB.Client().Disconnect(ctx)
}

// EnsureIndexes creates the indexes the realtime queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.DB.Collection(chatsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "users", Value: 1}},
	}); err != nil {
		return fmt.Errorf("chats index: %w", err)
	}
	if _, err := s.DB.Collection(messagesColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chat", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return fmt.Errorf("messages index: %w", err)
	}
	return nil
}

func notFound(err error, what string, id any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %v: %w", what, id, domain.ErrNotFound)
	}
	return fmt.Errorf("%s %v: %w", what, id, err)
}

func (s *Store) FindUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d userDoc
	if err := s.DB.Collection(usersColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err, "user", id)
	}
	return d.toDomain(), nil
}

func (s *Store) SetUserPresence(ctx context.Context, id domain.UserID, online bool, lastSeen time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.DB.Collection(usersColl).UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"isOnline": online, "lastSeen": lastSeen},
	})
	if err != nil {
		return fmt.Errorf("user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) FindChat(ctx context.Context, id domain.ChatID) (*domain.Chat, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d chatDoc
	if err := s.DB.Collection(chatsColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err, "chat", id)
	}
	return d.toDomain(), nil
}

func (s *Store) ChatsOfUser(ctx context.Context, id domain.UserID) ([]domain.ChatID, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	cur, err := s.DB.Collection(chatsColl).Find(ctx, bson.M{"users": oid},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("chats of %s: %w", id, err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("chats of %s: %w", id, err)
	}
	out := make([]domain.ChatID, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ChatID(d.ID.Hex()))
	}
	return out, nil
}

func (s *Store) SetLatestMessage(ctx context.Context, chatID domain.ChatID, msgID domain.MessageID) error {
	coid, err := objectID(chatID)
	if err != nil {
		return err
	}
	moid, err := objectID(msgID)
	if err != nil {
		return err
	}
	if _, err := s.DB.Collection(chatsColl).UpdateByID(ctx, coid, bson.M{"$set": bson.M{"latestMessage": moid}}); err != nil {
		return fmt.Errorf("chat %s: %w", chatID, err)
	}
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	d, err := fromMessage(msg)
	if err != nil {
		return nil, err
	}
	d.ID = primitive.NewObjectID()
	d.CreatedAt = s.now().UTC()
	d.UpdatedAt = d.CreatedAt
	if _, err := s.DB.Collection(messagesColl).InsertOne(ctx, d); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return d.toDomain(), nil
}

func (s *Store) FindMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var d messageDoc
	if err := s.DB.Collection(messagesColl).FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err, "message", id)
	}
	return d.toDomain(), nil
}

// UpdateMessage writes the mutable fields. deliveredTo is owned by AddDeliveredTo.
func (s *Store) UpdateMessage(ctx context.Context, msg *domain.Message) error {
	d, err := fromMessage(msg)
	if err != nil {
		return err
	}
	set := bson.M{
		"content":   d.Content,
		"readBy":    d.ReadBy,
		"reactions": d.Reactions,
		"isEdited":  d.IsEdited,
		"isDeleted": d.IsDeleted,
		"updatedAt": s.now().UTC(),
	}
	if d.EditedAt != nil {
		set["editedAt"] = *d.EditedAt
	}
	if d.DeletedAt != nil {
		set["deletedAt"] = *d.DeletedAt
	}
	res, err := s.DB.Collection(messagesColl).UpdateByID(ctx, d.ID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("message %s: %w", msg.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message %s: %w", msg.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) AddDeliveredTo(ctx context.Context, id domain.MessageID, users []domain.UserID) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	oids, err := objectIDs(users)
	if err != nil {
		return err
	}
	_, err = s.DB.Collection(messagesColl).UpdateByID(ctx, oid, bson.M{
		"$addToSet": bson.M{"deliveredTo": bson.M{"$each": oids}},
	})
	if err != nil {
		return fmt.Errorf("message %s: %w", id, err)
	}
	return nil
}

func (s *Store) UnreadMessages(ctx context.Context, chatID domain.ChatID, uid domain.UserID) ([]domain.Message, error) {
	coid, err := objectID(chatID)
	if err != nil {
		return nil, err
	}
	uoid, err := objectID(uid)
	if err != nil {
		return nil, err
	}
	cur, err := s.DB.Collection(messagesColl).Find(ctx,
		bson.M{"chat": coid, "sender": bson.M{"$ne": uoid}, "readBy.user": bson.M{"$ne": uoid}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("unread in %s: %w", chatID, err)
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("unread in %s: %w", chatID, err)
	}
	out := make([]domain.Message, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}
