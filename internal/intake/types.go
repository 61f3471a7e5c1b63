// Package intake implements the client side of the guided intake
// questionnaire: the question set fetched once per attempt, the
// answers accumulated locally, and the state machine that drives step
// progression against the remote session endpoint.
package intake

import (
	"fmt"
	"strings"

	"github.com/orienta-za/orienta/internal/errors"
)

// Kind identifies a question's input behaviour
type Kind string

const (
	KindSingleSelect Kind = "single-select"
	KindMultiSelect  Kind = "multi-select"
	KindFreeText     Kind = "free-text"
)

// Prompt is the closed set of input variants a question can declare.
// Each variant carries exactly the data its validation needs and is
// dispatched by type switch; there is no string comparison at use
// sites and no way to add variants outside this package.
type Prompt interface {
	Kind() Kind
	sealed()
}

// SingleSelect asks the learner to pick exactly one option
type SingleSelect struct {
	Options []string
}

// MultiSelect asks the learner to pick one or more options
type MultiSelect struct {
	Options []string
}

// FreeText asks for a non-empty free-form answer
type FreeText struct{}

func (SingleSelect) Kind() Kind { return KindSingleSelect }
func (MultiSelect) Kind() Kind  { return KindMultiSelect }
func (FreeText) Kind() Kind     { return KindFreeText }

func (SingleSelect) sealed() {}
func (MultiSelect) sealed()  {}
func (FreeText) sealed()     {}

// Question is one entry of the question set. Immutable once fetched;
// the id is the stable ordering key the backend records answers under.
type Question struct {
	ID     string
	Text   string
	Prompt Prompt
}

// Answer is the learner's response to one question. Value holds
// single-select and free-text answers; Values holds the multi-select
// set.
type Answer struct {
	QuestionID string
	Value      string
	Values     []string
}

// Payload returns the value shape the backend expects for the answer
func (a Answer) Payload() any {
	if a.Values != nil {
		return a.Values
	}
	return a.Value
}

// Validate checks a against the question's declared variant
func (q Question) Validate(a Answer) error {
	switch p := q.Prompt.(type) {
	case SingleSelect:
		if a.Value == "" {
			return errors.NewAnswerRequiredError(q.Text)
		}
		if !containsOption(p.Options, a.Value) {
			return errors.NewAnswerInvalidError(q.Text, fmt.Sprintf("%q is not one of the offered options", a.Value))
		}
	case MultiSelect:
		if len(a.Values) == 0 {
			return errors.NewAnswerRequiredError(q.Text)
		}
		for _, v := range a.Values {
			if !containsOption(p.Options, v) {
				return errors.NewAnswerInvalidError(q.Text, fmt.Sprintf("%q is not one of the offered options", v))
			}
		}
	case FreeText:
		if strings.TrimSpace(a.Value) == "" {
			return errors.NewAnswerRequiredError(q.Text)
		}
	default:
		return errors.NewUnknownKindError(q.ID, fmt.Sprintf("%T", q.Prompt))
	}
	return nil
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// wire type tags the backend uses for question types. The original
// "subjects" grid flattens to a multi-select over its subject list.
const (
	wireSelect      = "select"
	wireMultiSelect = "multiselect"
	wireSubjects    = "subjects"
	wireText        = "text"
	wireFreeText    = "free-text"
)

// PromptForTag maps a backend type tag and option list onto the closed
// variant set. Unknown tags are a load failure, never a guess.
func PromptForTag(id, tag string, options []string) (Prompt, error) {
	switch tag {
	case wireSelect, string(KindSingleSelect):
		return SingleSelect{Options: options}, nil
	case wireMultiSelect, wireSubjects, string(KindMultiSelect):
		return MultiSelect{Options: options}, nil
	case wireText, wireFreeText:
		return FreeText{}, nil
	default:
		return nil, errors.NewUnknownKindError(id, tag)
	}
}
