package storage

import (
	"fmt"
	"strings"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/types"
)

// ListQuestions returns custom questions in creation order
func (s *Store) ListQuestions() []types.CustomQuestion {
	var questions []types.CustomQuestion
	s.view(func() {
		questions = readSlice[types.CustomQuestion](s, KeyCustomQuestions)
	})
	return questions
}

// AddQuestion stores an operator question. Options keep their order and get
// the ids opt-0, opt-1, ...
func (s *Store) AddQuestion(text string, options []string) (types.CustomQuestion, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(options) < 2 {
		return types.CustomQuestion{}, ErrInvalidQuestion
	}

	q := types.CustomQuestion{
		ID:      s.newID(),
		Text:    text,
		Options: make([]types.Option, 0, len(options)),
	}
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return types.CustomQuestion{}, fmt.Errorf("%w: option %d is blank", ErrInvalidQuestion, i+1)
		}
		q.Options = append(q.Options, types.Option{ID: fmt.Sprintf("opt-%d", i), Text: opt})
	}

	err := s.mutate("question.create", events.ChannelGeneral, events.EventQuestionCreated, func() (bool, error) {
		questions, err := loadSlice[types.CustomQuestion](s, KeyCustomQuestions)
		if err != nil {
			return false, err
		}
		q.CreatedAt = s.now()
		return true, s.save(KeyCustomQuestions, append(questions, q))
	})
	if err != nil {
		return types.CustomQuestion{}, err
	}
	return q, nil
}

// DeleteQuestion removes a custom question. An unknown id is a no-op.
func (s *Store) DeleteQuestion(id string) error {
	return s.mutate("question.delete", events.ChannelGeneral, events.EventQuestionDeleted, func() (bool, error) {
		questions, err := loadSlice[types.CustomQuestion](s, KeyCustomQuestions)
		if err != nil {
			return false, err
		}
		for i, q := range questions {
			if q.ID == id {
				questions = append(questions[:i], questions[i+1:]...)
				return true, s.save(KeyCustomQuestions, questions)
			}
		}
		return false, nil
	})
}
