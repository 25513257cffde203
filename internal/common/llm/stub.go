package llm

import (
	"context"
	"sync"
)

// StaticGenerator returns canned responses in order, then repeats the last
// one. Tests use it in place of the API.
type StaticGenerator struct {
	mu        sync.Mutex
	responses []Response
	calls     []string
}

// Response is one canned reply.
type Response struct {
	Text string
	Err  error
}

func NewStaticGenerator(responses ...Response) *StaticGenerator {
	return &StaticGenerator{responses: responses}
}

func (s *StaticGenerator) Generate(_ context.Context, _ string, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.calls)
	s.calls = append(s.calls, prompt)
	if len(s.responses) == 0 {
		return "[]", nil
	}
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.Text, r.Err
}

// Prompts returns every prompt received so far.
func (s *StaticGenerator) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
