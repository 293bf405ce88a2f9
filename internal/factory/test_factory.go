package factory

import (
	"time"

	"github.com/mcoot/anagrams-go/internal/dependencies/mocks"
	"github.com/mcoot/anagrams-go/internal/storage/memory"
	"github.com/mcoot/anagrams-go/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	FakeProvider *testutil.FakeProvider
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. Room codes must be queued on MockRandom before rooms are
// requested.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	provider := testutil.NewFakeProvider("planet", "planet", "plane", "plant", "plan", "lane", "net")

	app := newWithDependencies(store, mockClock, mockRandom, provider, Config{}, testutil.NopLogger())

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		FakeProvider: provider,
	}
}
