package models

import "time"

// OptionCount is the fixed number of answer options on every question.
const OptionCount = 4

const DefaultQuizTitle = "Untitled Quiz"

type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	Published bool       `json:"published"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Question struct {
	ID            int      `json:"id" bson:"id"`
	Question      string   `json:"question" bson:"question"`
	Options       []string `json:"options" bson:"options" validate:"len=4"`
	CorrectAnswer int      `json:"correct_answer" bson:"correctAnswer" validate:"min=0,max=3"`
}

// BlankQuestion returns a question with empty prompt and options.
func BlankQuestion(id int) Question {
	return Question{
		ID:            id,
		Options:       make([]string, OptionCount),
		CorrectAnswer: 0,
	}
}

// Clone deep-copies the options slice.
func (q Question) Clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}

// QuizInput is the create/update payload. Published is only honoured on update,
// and a nil value leaves the stored flag untouched.
type QuizInput struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
	Published *bool      `json:"published,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	Published     bool      `json:"published"`
}

func (q *Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		QuestionCount: len(q.Questions),
		CreatedAt:     q.CreatedAt,
		Published:     q.Published,
	}
}

type PublishRequest struct {
	ID      string `json:"id" validate:"required"`
	Publish bool   `json:"publish"`
}

type PublishResponse struct {
	ID        string `json:"id"`
	Published bool   `json:"published"`
}
