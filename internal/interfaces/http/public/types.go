package public

import (
	"encoding/json"
	"time"

	publicapp "github.com/Drivakos/survey-feedback-api/internal/public/application"
	publicdomain "github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

type surveySummaryResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type questionResponse struct {
	ID           string `json:"id"`
	SurveyID     string `json:"survey_id"`
	Type         string `json:"type"`
	QuestionText string `json:"question_text"`
}

type surveyDetailResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Questions   []questionResponse `json:"questions"`
}

type responderResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type authDataResponse struct {
	Responder responderResponse `json:"responder"`
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresIn int               `json:"expires_in"`
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type submitRequest struct {
	Answers []submitAnswerPayload `json:"answers"`
}

type submitAnswerPayload struct {
	QuestionID string          `json:"question_id"`
	Response   json.RawMessage `json:"response"`
}

type submitDataResponse struct {
	SurveyID     string `json:"survey_id"`
	AnswersCount int    `json:"answers_count"`
}

// buildSurveySummaryResponse は Survey ドメインモデルを一覧表示用 DTO に変換する。
func buildSurveySummaryResponse(survey publicdomain.Survey) surveySummaryResponse {
	return surveySummaryResponse{
		ID:          survey.ID,
		Title:       survey.Title,
		Description: survey.Description,
	}
}

// buildSurveyDetailResponse は Survey ドメインモデルを質問込みの詳細 DTO に変換する。
func buildSurveyDetailResponse(survey publicdomain.Survey) surveyDetailResponse {
	questions := make([]questionResponse, 0, len(survey.Questions))
	for _, question := range survey.Questions {
		questions = append(questions, questionResponse{
			ID:           question.ID,
			SurveyID:     question.SurveyID,
			Type:         string(question.Type),
			QuestionText: question.QuestionText,
		})
	}
	return surveyDetailResponse{
		ID:          survey.ID,
		Title:       survey.Title,
		Description: survey.Description,
		Questions:   questions,
	}
}

func buildResponderResponse(responder publicdomain.Responder) responderResponse {
	return responderResponse{
		ID:        responder.ID,
		Email:     responder.Email,
		CreatedAt: responder.CreatedAt,
	}
}

func buildAuthDataResponse(session publicapp.AuthSession) authDataResponse {
	return authDataResponse{
		Responder: buildResponderResponse(session.Responder),
		Token:     session.Token,
		TokenType: "bearer",
		ExpiresIn: session.ExpiresIn,
	}
}
