package llm

import (
	"context"
	"sync"
)

// FakeClient replays scripted replies and errors in order, for offline runs
// and tests. Once the script is exhausted the last step repeats.
type FakeClient struct {
	mu    sync.Mutex
	steps []FakeStep
	calls int
}

// FakeStep is one scripted turn: either Text or Err.
type FakeStep struct {
	Text string
	Err  error
}

func NewFakeClient(steps ...FakeStep) *FakeClient {
	if len(steps) == 0 {
		steps = []FakeStep{{Text: `{"identifiers": []}`}}
	}
	return &FakeClient{steps: steps}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Calls reports how many times Generate ran; tests use it to prove cache
// hits skip the network.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeClient) Generate(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := f.steps[min(f.calls, len(f.steps)-1)]
	f.calls++
	return step.Text, step.Err
}
