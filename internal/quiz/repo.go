package quiz

import (
	"context"
	"errors"
	"sort"
)

var ErrNotFound = errors.New("quiz not found")

// Reader loads quiz definitions. Quizzes and questions are reference data:
// nothing in this module writes them.
type Reader interface {
	// GetQuiz returns the quiz with its questions in order_num order.
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
}

// Link places a question inside a quiz.
type Link struct {
	QuizID     int64
	QuestionID int64
	OrderNum   int
}

type memoryReader struct {
	quizzes   map[int64]Quiz // questions unset
	questions map[int64]Question
	links     []Link
}

// NewInMemoryReader builds a Reader over fixed data. Questions in the
// supplied quizzes are ignored; membership comes from links only, so one
// question can sit in many quizzes.
func NewInMemoryReader(quizzes []Quiz, questions []Question, links []Link) Reader {
	m := &memoryReader{
		quizzes:   make(map[int64]Quiz, len(quizzes)),
		questions: make(map[int64]Question, len(questions)),
		links:     append([]Link(nil), links...),
	}
	for _, z := range quizzes {
		z.Questions = nil
		m.quizzes[z.ID] = z
	}
	for _, q := range questions {
		m.questions[q.ID] = q
	}
	return m
}

func (m *memoryReader) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	z, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	var links []Link
	for _, l := range m.links {
		if l.QuizID == id {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool { return links[i].OrderNum < links[j].OrderNum })
	z.Questions = make([]Question, 0, len(links))
	for _, l := range links {
		if q, ok := m.questions[l.QuestionID]; ok {
			q.Options = append([]string(nil), q.Options...)
			z.Questions = append(z.Questions, q)
		}
	}
	return z, nil
}
