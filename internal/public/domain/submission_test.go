package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func testSurvey() Survey {
	return Survey{
		ID:     "survey-1",
		Title:  "満足度調査",
		Status: SurveyStatusActive,
		Questions: []Question{
			{ID: "q-text", SurveyID: "survey-1", Type: QuestionTypeText, QuestionText: "ご意見をお聞かせください"},
			{ID: "q-scale", SurveyID: "survey-1", Type: QuestionTypeScale, QuestionText: "満足度を1〜5で評価してください"},
			{ID: "q-choice", SurveyID: "survey-1", Type: QuestionTypeMultipleChoice, QuestionText: "最も当てはまるものを選んでください"},
		},
	}
}

func TestValidateSubmissionAcceptsWellFormedBatch(t *testing.T) {
	survey := testSurvey()
	entries := []AnswerInput{
		{QuestionID: "q-text", Response: json.RawMessage(`"とても良かったです"`)},
		{QuestionID: "q-scale", Response: json.RawMessage(`4`)},
		{QuestionID: "q-choice", Response: json.RawMessage(`"2"`)},
	}

	validated, rejection := ValidateSubmission(survey, entries)
	if rejection != nil {
		t.Fatalf("expected acceptance, got rejection: %v", rejection)
	}
	if len(validated) != 3 {
		t.Fatalf("expected 3 validated answers, got %d", len(validated))
	}
	for i, entry := range entries {
		if validated[i].Question.ID != entry.QuestionID {
			t.Errorf("answer %d: question order changed: got %s want %s", i, validated[i].Question.ID, entry.QuestionID)
		}
		if string(validated[i].Response) != string(entry.Response) {
			t.Errorf("answer %d: response altered: got %s want %s", i, validated[i].Response, entry.Response)
		}
	}
}

func TestValidateSubmissionEmptyPayload(t *testing.T) {
	_, rejection := ValidateSubmission(testSurvey(), nil)
	if rejection == nil || rejection.Reason != RejectionEmptyAnswers {
		t.Fatalf("expected empty-answers rejection, got %+v", rejection)
	}
}

func TestValidateSubmissionMissingQuestionID(t *testing.T) {
	_, rejection := ValidateSubmission(testSurvey(), []AnswerInput{
		{QuestionID: "  ", Response: json.RawMessage(`"x"`)},
	})
	if rejection == nil || rejection.Reason != RejectionMissingQuestionID {
		t.Fatalf("expected missing-question-id rejection, got %+v", rejection)
	}
}

func TestValidateSubmissionMissingResponse(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`)} {
		_, rejection := ValidateSubmission(testSurvey(), []AnswerInput{
			{QuestionID: "q-text", Response: raw},
		})
		if rejection == nil || rejection.Reason != RejectionMissingResponse {
			t.Fatalf("raw=%q: expected missing-response rejection, got %+v", raw, rejection)
		}
	}
}

func TestValidateSubmissionDuplicateQuestionInBatch(t *testing.T) {
	_, rejection := ValidateSubmission(testSurvey(), []AnswerInput{
		{QuestionID: "q-scale", Response: json.RawMessage(`3`)},
		{QuestionID: "q-scale", Response: json.RawMessage(`5`)},
	})
	if rejection == nil || rejection.Reason != RejectionDuplicateInBatch {
		t.Fatalf("expected in-batch duplicate rejection, got %+v", rejection)
	}
	if rejection.QuestionID != "q-scale" {
		t.Errorf("expected offending question id q-scale, got %s", rejection.QuestionID)
	}
}

func TestValidateSubmissionForeignQuestion(t *testing.T) {
	_, rejection := ValidateSubmission(testSurvey(), []AnswerInput{
		{QuestionID: "q-text", Response: json.RawMessage(`"ok"`)},
		{QuestionID: "q-other-survey", Response: json.RawMessage(`"ok"`)},
	})
	if rejection == nil || rejection.Reason != RejectionForeignQuestion {
		t.Fatalf("expected foreign-question rejection, got %+v", rejection)
	}
}

func TestValidateSubmissionTextBounds(t *testing.T) {
	survey := testSurvey()

	cases := []struct {
		name   string
		value  string
		accept bool
	}{
		{"empty string rejected", `""`, false},
		{"single char accepted", `"a"`, true},
		{"max length accepted", `"` + strings.Repeat("あ", MaxTextAnswerRunes) + `"`, true},
		{"over max rejected", `"` + strings.Repeat("あ", MaxTextAnswerRunes+1) + `"`, false},
		{"number rejected for text", `5`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rejection := ValidateSubmission(survey, []AnswerInput{
				{QuestionID: "q-text", Response: json.RawMessage(tc.value)},
			})
			if tc.accept && rejection != nil {
				t.Fatalf("expected acceptance, got %+v", rejection)
			}
			if !tc.accept {
				if rejection == nil || rejection.Reason != RejectionBadFormat {
					t.Fatalf("expected bad-format rejection, got %+v", rejection)
				}
			}
		})
	}
}

func TestValidateSubmissionScaleBounds(t *testing.T) {
	survey := testSurvey()

	cases := []struct {
		value  string
		accept bool
	}{
		{`0`, false},
		{`1`, true},
		{`3`, true},
		{`5`, true},
		{`6`, false},
		{`2.5`, true},
		{`"4"`, true},
		{`"0"`, false},
		{`"abc"`, false},
		{`true`, false},
	}

	for _, tc := range cases {
		_, rejection := ValidateSubmission(survey, []AnswerInput{
			{QuestionID: "q-scale", Response: json.RawMessage(tc.value)},
		})
		got := rejection == nil
		if got != tc.accept {
			t.Errorf("scale value %s: accepted=%v, want %v (rejection=%+v)", tc.value, got, tc.accept, rejection)
		}
	}
}

func TestValidateSubmissionMultipleChoiceBounds(t *testing.T) {
	survey := testSurvey()

	cases := []struct {
		value  string
		accept bool
	}{
		{`"1"`, true},
		{`"3"`, true},
		{`"5"`, true},
		{`"6"`, false},
		{`"0"`, false},
		{`3`, true},
		{`6`, false},
		{`"yes"`, false},
		{`[1]`, false},
	}

	for _, tc := range cases {
		_, rejection := ValidateSubmission(survey, []AnswerInput{
			{QuestionID: "q-choice", Response: json.RawMessage(tc.value)},
		})
		got := rejection == nil
		if got != tc.accept {
			t.Errorf("choice value %s: accepted=%v, want %v (rejection=%+v)", tc.value, got, tc.accept, rejection)
		}
	}
}

func TestValidateSubmissionBadFormatNamesQuestion(t *testing.T) {
	survey := testSurvey()
	_, rejection := ValidateSubmission(survey, []AnswerInput{
		{QuestionID: "q-scale", Response: json.RawMessage(`9`)},
	})
	if rejection == nil || rejection.Reason != RejectionBadFormat {
		t.Fatalf("expected bad-format rejection, got %+v", rejection)
	}
	if rejection.QuestionText != survey.Questions[1].QuestionText {
		t.Errorf("expected question text in rejection, got %q", rejection.QuestionText)
	}
	if !strings.Contains(rejection.Message, survey.Questions[1].QuestionText) {
		t.Errorf("expected message to name the question, got %q", rejection.Message)
	}
}
