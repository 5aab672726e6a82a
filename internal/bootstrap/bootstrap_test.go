package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"news_aggregator/internal/bootstrap/mocks"
	"news_aggregator/internal/catalog"
	"news_aggregator/internal/domain"
)

type InitializerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	aggregator  *mocks.MockAggregator
	registry    *mocks.MockSeedRegistry
	store       *catalog.Store
	initializer *Initializer
	seeds       []domain.SourceDescriptor
}

func (s *InitializerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.aggregator = mocks.NewMockAggregator(s.ctrl)
	s.registry = mocks.NewMockSeedRegistry(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.store = catalog.NewStore(nil, catalog.Options{}, logger)
	s.initializer = NewInitializer(s.aggregator, s.store, s.registry, Options{SeedTimeout: time.Second}, logger)

	s.seeds = []domain.SourceDescriptor{{ID: "seed-a", Active: true, Seed: true}, {ID: "seed-b", Active: true, Seed: true}}
	s.registry.EXPECT().Seeds().Return(s.seeds).AnyTimes()
}

func (s *InitializerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestInitializerTestSuite(t *testing.T) {
	suite.Run(t, new(InitializerTestSuite))
}

func (s *InitializerTestSuite) TestRun_AllSeedsFailInsertsPlaceholders() {
	s.aggregator.EXPECT().Aggregate(gomock.Any(), s.seeds).Return(nil, domain.AggregateStats{Sources: 2, Failed: 2})

	s.initializer.Run(context.Background())

	s.Equal(DefaultPlaceholderCount, s.store.Len())
	for _, a := range s.store.Snapshot() {
		s.True(a.IsPlaceholder(), a.ID)
	}
}

func (s *InitializerTestSuite) TestRun_SeedsPopulateCatalog() {
	s.aggregator.EXPECT().Aggregate(gomock.Any(), s.seeds).Return([]domain.Article{
		{ID: "seed-a-1-0", CanonicalURL: "http://a/1", Title: "one", PublishedAt: time.Now()},
	}, domain.AggregateStats{Sources: 2, Succeeded: 1, Failed: 1})

	s.initializer.Run(context.Background())

	s.Equal(1, s.store.Len())
	_, err := s.store.Get("seed-a-1-0")
	s.NoError(err)
}

func (s *InitializerTestSuite) TestRun_SeedTimeoutApplies() {
	s.aggregator.EXPECT().Aggregate(gomock.Any(), s.seeds).DoAndReturn(
		func(ctx context.Context, _ []domain.SourceDescriptor) ([]domain.Article, domain.AggregateStats) {
			deadline, ok := ctx.Deadline()
			s.True(ok)
			s.WithinDuration(time.Now().Add(time.Second), deadline, 500*time.Millisecond)
			return nil, domain.AggregateStats{}
		},
	)

	s.initializer.Run(context.Background())
	s.Equal(DefaultPlaceholderCount, s.store.Len())
}

func (s *InitializerTestSuite) TestRun_ExactlyOnce() {
	s.aggregator.EXPECT().Aggregate(gomock.Any(), s.seeds).DoAndReturn(
		func(context.Context, []domain.SourceDescriptor) ([]domain.Article, domain.AggregateStats) {
			time.Sleep(20 * time.Millisecond)
			return nil, domain.AggregateStats{}
		},
	).Times(1)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.initializer.Run(context.Background())
			s.Equal(DefaultPlaceholderCount, s.store.Len(), "later callers observe the finished run")
		}()
	}
	wg.Wait()

	s.initializer.Run(context.Background())

	select {
	case <-s.initializer.Ready():
	default:
		s.Fail("ready channel not closed")
	}
}

func (s *InitializerTestSuite) TestWait_HonorsContext() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	s.ErrorIs(s.initializer.Wait(ctx), context.DeadlineExceeded)
}

func TestPlaceholders(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	got := Placeholders(now, 10)

	assert.Len(t, got, 10)
	ids := make(map[string]struct{})
	urls := make(map[string]struct{})
	for i, a := range got {
		assert.True(t, a.IsPlaceholder())
		assert.NotEmpty(t, a.CanonicalURL)
		assert.Equal(t, now.Add(-time.Duration(i)*10*time.Minute), a.PublishedAt)
		ids[a.ID] = struct{}{}
		urls[a.CanonicalURL] = struct{}{}
	}
	assert.Len(t, ids, 10)
	assert.Len(t, urls, 10)
	assert.Equal(t, domain.CategoryWorld, got[0].Category)
}
