package openai

import (
	"context"
	"fmt"
	"sync"
)

// StubClient is a scripted Client for tests. Responses are returned in
// order; when the queue is exhausted the last response repeats.
type StubClient struct {
	mu        sync.Mutex
	Responses []CompletionResponse
	Err       error
	Models    []ModelInfo
	Calls     []CompletionRequest
	next      int
}

var _ Client = (*StubClient)(nil)

func (s *StubClient) CreateCompletion(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, req)
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Responses) == 0 {
		return nil, fmt.Errorf("stub: no responses configured")
	}
	resp := s.Responses[s.next]
	if s.next < len(s.Responses)-1 {
		s.next++
	}
	return &resp, nil
}

func (s *StubClient) ListModels(_ context.Context) ([]ModelInfo, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Models, nil
}

func (s *StubClient) GetModel(_ context.Context, name string) (*ModelInfo, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for _, m := range s.Models {
		if m.ID == name {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("stub: model %s not found", name)
}
