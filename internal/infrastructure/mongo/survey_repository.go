package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// SurveyRepository はアンケート集約を MongoDB で扱う読み取りリポジトリ。
// active 以外のステータスは呼び出し側から見えない。
type SurveyRepository struct {
	surveys *mongo.Collection
}

// NewSurveyRepository はアンケートコレクションを束縛したリポジトリを構築する。
func NewSurveyRepository(db *mongo.Database, surveyCollection string) *SurveyRepository {
	return &SurveyRepository{surveys: db.Collection(surveyCollection)}
}

// FindActive は active なアンケートの一覧を返す。一覧用途のため質問は取得しない。
func (r *SurveyRepository) FindActive(ctx context.Context) ([]domain.Survey, error) {
	opts := options.Find().
		SetProjection(bson.M{"title": 1, "description": 1, "status": 1, "createdAt": 1, "updatedAt": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.surveys.Find(ctx, bson.M{"status": string(domain.SurveyStatusActive)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	surveys := make([]domain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		surveys = append(surveys, mapSurveyDocument(doc, false))
	}
	return surveys, cursor.Err()
}

// FindActiveByID は active なアンケートを質問込みで 1 件取得する。
// 存在しない場合と inactive の場合は区別せず ErrSurveyNotFound を返す。
func (r *SurveyRepository) FindActiveByID(ctx context.Context, id string) (*domain.Survey, error) {
	objectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrSurveyNotFound
	}

	filter := bson.M{"_id": objectID, "status": string(domain.SurveyStatusActive)}
	var doc SurveyDocument
	if err := r.surveys.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSurveyNotFound
		}
		return nil, err
	}

	survey := mapSurveyDocument(doc, true)
	return &survey, nil
}

// mapSurveyDocument はアンケートドキュメントをドメインモデルへ変換する。
func mapSurveyDocument(doc SurveyDocument, withQuestions bool) domain.Survey {
	survey := domain.Survey{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      domain.SurveyStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if !withQuestions {
		return survey
	}

	survey.Questions = make([]domain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		survey.Questions = append(survey.Questions, domain.Question{
			ID:           q.ID.Hex(),
			SurveyID:     doc.ID.Hex(),
			Type:         domain.QuestionType(q.Type),
			QuestionText: q.QuestionText,
		})
	}
	return survey
}
