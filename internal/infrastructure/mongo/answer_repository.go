package mongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// AnswerRepository は回答の書き込みと重複ガードを担うリポジトリ。
// check-then-insert をトランザクションで包み、(responderId, questionId) の
// ユニークインデックスを最終防衛線とすることで、同一回答者からの並行提出が
// ちょうど 1 件だけ受理されることを保証する。
type AnswerRepository struct {
	answers *mongo.Collection
}

// NewAnswerRepository は回答コレクションを束縛したリポジトリを構築する。
func NewAnswerRepository(db *mongo.Database, answerCollection string) *AnswerRepository {
	return &AnswerRepository{answers: db.Collection(answerCollection)}
}

// EnsureIndexes は重複提出防止のユニーク複合インデックスを保証する。起動時に呼び出す。
func (r *AnswerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.answers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "responderId", Value: 1},
			{Key: "questionId", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("ux_responder_question"),
	})
	return err
}

// SubmitAnswers はバッチ全体をちょうど 1 回だけ永続化する。重複チェックは
// 提出された部分集合ではなく、対象アンケートの全質問を対象にする。
// 途中で失敗した場合はトランザクションが巻き戻り、部分書き込みは残らない。
func (r *AnswerRepository) SubmitAnswers(ctx context.Context, responderID string, survey domain.Survey, validated []domain.ValidatedAnswer) ([]domain.Answer, error) {
	responderObjID, err := primitive.ObjectIDFromHex(strings.TrimSpace(responderID))
	if err != nil {
		return nil, err
	}
	surveyObjID, err := primitive.ObjectIDFromHex(strings.TrimSpace(survey.ID))
	if err != nil {
		return nil, err
	}

	allQuestionIDs := make([]primitive.ObjectID, 0, len(survey.Questions))
	for _, question := range survey.Questions {
		id, err := primitive.ObjectIDFromHex(question.ID)
		if err != nil {
			return nil, err
		}
		allQuestionIDs = append(allQuestionIDs, id)
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(validated))
	saved := make([]domain.Answer, 0, len(validated))
	for _, answer := range validated {
		questionObjID, err := primitive.ObjectIDFromHex(answer.Question.ID)
		if err != nil {
			return nil, err
		}
		doc := AnswerDocument{
			ID:           primitive.NewObjectID(),
			SurveyID:     surveyObjID,
			QuestionID:   questionObjID,
			ResponderID:  responderObjID,
			ResponseData: canonicalResponse(answer.Response),
			CreatedAt:    now,
		}
		docs = append(docs, doc)
		saved = append(saved, domain.Answer{
			ID:          doc.ID.Hex(),
			SurveyID:    survey.ID,
			QuestionID:  answer.Question.ID,
			ResponderID: responderID,
			Response:    json.RawMessage(doc.ResponseData),
			CreatedAt:   now,
		})
	}

	session, err := r.answers.Database().Client().StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.answers.CountDocuments(sc, bson.M{
			"responderId": responderObjID,
			"questionId":  bson.M{"$in": allQuestionIDs},
		})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, domain.ErrDuplicateSubmission
		}

		if _, err := r.answers.InsertMany(sc, docs); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, domain.ErrDuplicateSubmission
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			return nil, domain.ErrDuplicateSubmission
		}
		return nil, err
	}

	return saved, nil
}

// canonicalResponse は提出値を正規化した JSON 文字列として返す。余分な空白の
// 除去のみを行い、値そのものは提出時のまま保持する。
func canonicalResponse(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
