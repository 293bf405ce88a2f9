package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrProviderDown is returned by a FakeProvider told to fail
var ErrProviderDown = errors.New("provider down")

// FakeProvider serves fixed round data. Setting Gate makes every word
// fetch wait until the channel is closed or receives.
type FakeProvider struct {
	mu           sync.Mutex
	Word         string
	AnagramWords []string
	WordErr      error
	AnagramErr   error
	Gate         chan struct{}
	Started      chan struct{}
	calls        int
}

// NewFakeProvider serves the given word and anagrams
func NewFakeProvider(word string, anagrams ...string) *FakeProvider {
	return &FakeProvider{Word: word, AnagramWords: anagrams}
}

func (p *FakeProvider) RandomWord(ctx context.Context, length int) (string, error) {
	p.mu.Lock()
	p.calls++
	gate, started := p.Gate, p.Started
	word, err := p.Word, p.WordErr
	p.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return word, nil
}

func (p *FakeProvider) Anagrams(ctx context.Context, word string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.AnagramErr != nil {
		return nil, p.AnagramErr
	}
	return slices.Clone(p.AnagramWords), nil
}

// Calls returns how many word fetches have been made
func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// SetGate holds later word fetches until gate is closed
func (p *FakeProvider) SetGate(gate chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Gate = gate
}

// SetErrors changes the failures returned by later fetches
func (p *FakeProvider) SetErrors(wordErr, anagramErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.WordErr = wordErr
	p.AnagramErr = anagramErr
}
