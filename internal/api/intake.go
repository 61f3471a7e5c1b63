package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/intake"
)

// wireQuestion is the backend's question shape. Subject pickers
// publish their choices under "subjects" instead of "options".
type wireQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

type questionsResponse struct {
	Questions []wireQuestion `json:"questions"`
}

type wireResponse struct {
	QuestionID string `json:"question_id"`
	Answer     any    `json:"answer"`
}

type wireSession struct {
	ID          string         `json:"id"`
	CurrentStep int            `json:"current_step"`
	Completed   bool           `json:"completed"`
	Responses   []wireResponse `json:"responses"`
}

type answerResponse struct {
	Session wireSession `json:"session"`
}

// IntakeQuestions fetches the published question set. An entry whose
// type has no local representation fails the whole fetch.
func (c *Client) IntakeQuestions(ctx context.Context) ([]intake.Question, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/intake/questions", nil)
	if err != nil {
		return nil, err
	}

	var result questionsResponse
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}

	questions := make([]intake.Question, 0, len(result.Questions))
	for _, wq := range result.Questions {
		options := wq.Options
		if len(options) == 0 {
			options = wq.Subjects
		}

		prompt, err := intake.PromptForTag(wq.ID, wq.Type, options)
		if err != nil {
			return nil, err
		}

		questions = append(questions, intake.Question{
			ID:     wq.ID,
			Text:   wq.Text,
			Prompt: prompt,
		})
	}

	return questions, nil
}

// IntakeStart creates or resumes the caller's intake session
func (c *Client) IntakeStart(ctx context.Context) (*intake.SessionState, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/intake/start", nil)
	if err != nil {
		return nil, err
	}

	var session wireSession
	if err := parseResponse(resp, &session); err != nil {
		return nil, err
	}

	c.logger.Debug("intake session opened",
		"session_id", session.ID,
		"step", session.CurrentStep,
		"completed", session.Completed)
	return sessionState(session)
}

// IntakeAnswer records one answer and returns the advanced session.
// The endpoint takes the question id and the JSON-encoded answer as
// query parameters, not a request body.
func (c *Client) IntakeAnswer(ctx context.Context, questionID string, value any) (*intake.AnswerResult, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode answer: %w", err)
	}

	query := url.Values{}
	query.Set("question_id", questionID)
	query.Set("answer", string(encoded))

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/intake/answer?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result answerResponse
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &intake.AnswerResult{Completed: result.Session.Completed}, nil
}

func sessionState(session wireSession) (*intake.SessionState, error) {
	state := &intake.SessionState{
		Step:      session.CurrentStep,
		Completed: session.Completed,
		Answers:   make([]intake.Answer, 0, len(session.Responses)),
	}

	for _, r := range session.Responses {
		answer, err := storedAnswer(r)
		if err != nil {
			return nil, err
		}
		state.Answers = append(state.Answers, answer)
	}

	return state, nil
}

// storedAnswer normalises one recorded response. Answers are submitted
// as JSON-encoded query values, so the session echoes them back as
// their JSON text; a string that parses as JSON is unwrapped before
// the shape check, and anything else is taken literally.
func storedAnswer(r wireResponse) (intake.Answer, error) {
	answer := intake.Answer{QuestionID: r.QuestionID}

	value := r.Answer
	if s, ok := value.(string); ok {
		var decoded any
		if json.Unmarshal([]byte(s), &decoded) == nil {
			switch decoded.(type) {
			case string, []any:
				value = decoded
			}
		}
	}

	switch v := value.(type) {
	case string:
		answer.Value = v
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return intake.Answer{}, errors.NewBadResponseError(nil)
			}
			values = append(values, s)
		}
		answer.Values = values
	default:
		return intake.Answer{}, errors.NewBadResponseError(nil)
	}

	return answer, nil
}
