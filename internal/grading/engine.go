package grading

// Q is the minimal view of a question needed for scoring.
type Q struct {
	Type          string
	CorrectAnswer string
	Marks         int
}

// Result is the outcome of scoring a single submitted answer.
type Result struct {
	IsCorrect    bool `json:"is_correct"`
	MarksAwarded int  `json:"marks_awarded"`
	MaxMarks     int  `json:"max_marks"`
}

// Strategy scores a single answer. Strategies never fail: any input
// they cannot make sense of is simply incorrect.
type Strategy interface {
	Score(q Q, answer string) Result
}

// Scorer routes by question type to the matching Strategy.
type Scorer interface {
	Score(q Q, answer string) Result
}

type defaultScorer struct {
	strategies map[string]Strategy
	fallback   Strategy
}

func (s *defaultScorer) Score(q Q, answer string) Result {
	st, ok := s.strategies[q.Type]
	if !ok {
		st = s.fallback
	}
	return st.Score(q, answer)
}

// Option configures NewScorer.
type Option func(*config)

type config struct {
	numericTolerance float64 // <0 disables numeric matching
}

// WithNumericTolerance lets short answers that parse as numbers match the
// correct answer within an absolute tolerance. Disabled unless set.
func WithNumericTolerance(tol float64) Option {
	return func(c *config) { c.numericTolerance = tol }
}

// NewScorer installs the built-in strategies. Every question type is
// matched exactly (trimmed, case-insensitive) unless options say otherwise.
func NewScorer(opts ...Option) Scorer {
	cfg := &config{numericTolerance: -1}
	for _, o := range opts {
		o(cfg)
	}
	var short Strategy = exactStrategy{}
	if cfg.numericTolerance >= 0 {
		short = numericStrategy{tol: cfg.numericTolerance}
	}
	return &defaultScorer{
		strategies: map[string]Strategy{
			"multiple_choice": exactStrategy{},
			"true_false":      exactStrategy{},
			"short_answer":    short,
			"open":            exactStrategy{},
		},
		fallback: exactStrategy{},
	}
}

var std = NewScorer()

// Score scores answer against q with the default (exact-match) rules.
func Score(q Q, answer string) Result {
	return std.Score(q, answer)
}

type exactStrategy struct{}

func (exactStrategy) Score(q Q, answer string) Result {
	res := Result{MaxMarks: q.Marks}
	if matches(answer, q.CorrectAnswer) {
		res.IsCorrect = true
		res.MarksAwarded = q.Marks
	}
	return res
}
