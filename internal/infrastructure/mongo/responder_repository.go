package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// ResponderRepository は回答者アカウントを MongoDB で扱うリポジトリ。
type ResponderRepository struct {
	responders *mongo.Collection
}

// NewResponderRepository は回答者コレクションを束縛したリポジトリを構築する。
func NewResponderRepository(db *mongo.Database, responderCollection string) *ResponderRepository {
	return &ResponderRepository{responders: db.Collection(responderCollection)}
}

// EnsureIndexes は email のユニークインデックスを保証する。起動時に呼び出す。
func (r *ResponderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.responders.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("ux_responder_email"),
	})
	return err
}

// Create は回答者を登録する。email 重複は ErrEmailTaken に写像する。
func (r *ResponderRepository) Create(ctx context.Context, email, passwordHash string) (*domain.Responder, error) {
	doc := ResponderDocument{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := r.responders.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	responder := mapResponderDocument(doc)
	return &responder, nil
}

func (r *ResponderRepository) FindByEmail(ctx context.Context, email string) (*domain.Responder, error) {
	var doc ResponderDocument
	if err := r.responders.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResponderNotFound
		}
		return nil, err
	}
	responder := mapResponderDocument(doc)
	return &responder, nil
}

func (r *ResponderRepository) FindByID(ctx context.Context, id string) (*domain.Responder, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrResponderNotFound
	}

	var doc ResponderDocument
	if err := r.responders.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResponderNotFound
		}
		return nil, err
	}
	responder := mapResponderDocument(doc)
	return &responder, nil
}

func mapResponderDocument(doc ResponderDocument) domain.Responder {
	return domain.Responder{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}
}
