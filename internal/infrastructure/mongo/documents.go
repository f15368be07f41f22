package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyDocument は MongoDB 上でのアンケートスキーマを Go 構造体として表現したもの。
// 質問はアンケート集約に埋め込み、遅延的な関連解決を持ち込まない。
type SurveyDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	Questions   []QuestionDocument `bson:"questions,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// QuestionDocument はアンケートに埋め込まれる質問 1 件分のスキーマ。
type QuestionDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Type         string             `bson:"type"`
	QuestionText string             `bson:"questionText"`
}

// ResponderDocument は回答者アカウントのスキーマ。email にはユニークインデックスを張る。
type ResponderDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// AnswerDocument は回答 1 件分のスキーマ。(responderId, questionId) の
// ユニークインデックスが重複提出の最終防衛線になる。responseData は
// 提出された JSON 値をそのまま文字列として保持する。
type AnswerDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	SurveyID     primitive.ObjectID `bson:"surveyId"`
	QuestionID   primitive.ObjectID `bson:"questionId"`
	ResponderID  primitive.ObjectID `bson:"responderId"`
	ResponseData string             `bson:"responseData"`
	CreatedAt    time.Time          `bson:"createdAt"`
}
