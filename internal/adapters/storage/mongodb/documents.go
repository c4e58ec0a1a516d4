package mongodb

import (
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	Avatar   string             `bson:"avatar,omitempty"`
	IsOnline bool               `bson:"isOnline"`
	LastSeen time.Time          `bson:"lastSeen"`
}

type chatDoc struct {
	ID            primitive.ObjectID   `bson:"_id"`
	ChatName      string               `bson:"chatName"`
	IsGroupChat   bool                 `bson:"isGroupChat"`
	Users         []primitive.ObjectID `bson:"users"`
	GroupAdmin    *primitive.ObjectID  `bson:"groupAdmin,omitempty"`
	LatestMessage *primitive.ObjectID  `bson:"latestMessage,omitempty"`
}

type readDoc struct {
	User   primitive.ObjectID `bson:"user"`
	ReadAt time.Time          `bson:"readAt"`
}

type reactionDoc struct {
	User  primitive.ObjectID `bson:"user"`
	Emoji string             `bson:"emoji"`
}

type messageDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Sender      primitive.ObjectID   `bson:"sender"`
	Chat        primitive.ObjectID   `bson:"chat"`
	Content     string               `bson:"content"`
	MessageType string               `bson:"messageType"`
	FileURL     string               `bson:"fileUrl"`
	FileName    string               `bson:"fileName"`
	DeliveredTo []primitive.ObjectID `bson:"deliveredTo"`
	ReadBy      []readDoc            `bson:"readBy"`
	Reactions   []reactionDoc        `bson:"reactions"`
	IsEdited    bool                 `bson:"isEdited"`
	EditedAt    *time.Time           `bson:"editedAt,omitempty"`
	IsDeleted   bool                 `bson:"isDeleted"`
	DeletedAt   *time.Time           `bson:"deletedAt,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// objectID parses a domain id. Ids that are not ObjectIDs cannot exist in the store.
func objectID[T ~string](id T) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("id %q: %w", id, domain.ErrNotFound)
	}
	return oid, nil
}

func objectIDs(ids []domain.UserID) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := objectID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func userIDs(oids []primitive.ObjectID) []domain.UserID {
	return lo.Map(oids, func(o primitive.ObjectID, _ int) domain.UserID { return domain.UserID(o.Hex()) })
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:       domain.UserID(d.ID.Hex()),
		Username: d.Username,
		Avatar:   d.Avatar,
		IsOnline: d.IsOnline,
		LastSeen: d.LastSeen,
	}
}

func (d *chatDoc) toDomain() *domain.Chat {
	c := &domain.Chat{
		ID:      domain.ChatID(d.ID.Hex()),
		Name:    d.ChatName,
		IsGroup: d.IsGroupChat,
		Users:   userIDs(d.Users),
	}
	if d.GroupAdmin != nil {
		c.Admin = domain.UserID(d.GroupAdmin.Hex())
	}
	if d.LatestMessage != nil {
		c.LatestMessage = domain.MessageID(d.LatestMessage.Hex())
	}
	return c
}

func (d *messageDoc) toDomain() *domain.Message {
	return &domain.Message{
		ID:          domain.MessageID(d.ID.Hex()),
		Sender:      domain.UserID(d.Sender.Hex()),
		Chat:        domain.ChatID(d.Chat.Hex()),
		Content:     d.Content,
		Type:        domain.MessageType(d.MessageType),
		FileURL:     d.FileURL,
		FileName:    d.FileName,
		DeliveredTo: userIDs(d.DeliveredTo),
		ReadBy: lo.Map(d.ReadBy, func(r readDoc, _ int) domain.ReadReceipt {
			return domain.ReadReceipt{User: domain.UserID(r.User.Hex()), ReadAt: r.ReadAt}
		}),
		Reactions: lo.Map(d.Reactions, func(r reactionDoc, _ int) domain.Reaction {
			return domain.Reaction{User: domain.UserID(r.User.Hex()), Emoji: r.Emoji}
		}),
		IsEdited:  d.IsEdited,
		EditedAt:  d.EditedAt,
		IsDeleted: d.IsDeleted,
		DeletedAt: d.DeletedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// fromMessage converts m for storage. The id is left zero when m has none yet.
func fromMessage(m *domain.Message) (*messageDoc, error) {
	d := &messageDoc{
		Content:     m.Content,
		MessageType: string(m.Type),
		FileURL:     m.FileURL,
		FileName:    m.FileName,
		DeliveredTo: []primitive.ObjectID{},
		ReadBy:      []readDoc{},
		Reactions:   []reactionDoc{},
		IsEdited:    m.IsEdited,
		EditedAt:    m.EditedAt,
		IsDeleted:   m.IsDeleted,
		DeletedAt:   m.DeletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	var err error
	if m.ID != "" {
		if d.ID, err = objectID(m.ID); err != nil {
			return nil, err
		}
	}
	if d.Sender, err = objectID(m.Sender); err != nil {
		return nil, err
	}
	if d.Chat, err = objectID(m.Chat); err != nil {
		return nil, err
	}
	if d.DeliveredTo, err = objectIDs(m.DeliveredTo); err != nil {
		return nil, err
	}
	for _, r := range m.ReadBy {
		oid, err := objectID(r.User)
		if err != nil {
			return nil, err
		}
		d.ReadBy = append(d.ReadBy, readDoc{User: oid, ReadAt: r.ReadAt})
	}
	for _, r := range m.Reactions {
		oid, err := objectID(r.User)
		if err != nil {
			return nil, err
		}
		d.Reactions = append(d.Reactions, reactionDoc{User: oid, Emoji: r.Emoji})
	}
	return d, nil
}
