package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	providerRepo "solvit/database/repository/provider"
	"solvit/models"
	"solvit/services/events"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProviderRepo struct {
	mock.Mock
}

func (m *mockProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Provider)
	return p, args.Error(1)
}

func (m *mockProviderRepo) Create(ctx context.Context, p *models.Provider) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProviderRepo) UpdateIfVersion(ctx context.Context, p *models.Provider, expected int) error {
	return m.Called(ctx, p, expected).Error(0)
}

func (m *mockProviderRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProviderRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockProviderRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ providerRepo.ProviderRepository = (*mockProviderRepo)(nil)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

var fixedNow = time.Date(2024, time.December, 20, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo providerRepo.ProviderRepository) (*DefaultScheduleService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc, err := NewDefaultScheduleService(repo, NewLocalLocker(), pub, zap.NewNop(), Options{
		MaxRetries: 2,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc, pub
}

// seededRepo holds one provider working Monday to Friday 09:00-17:00.
func seededRepo(t *testing.T) *providerRepo.MemoryProviderRepo {
	t.Helper()
	repo := providerRepo.NewMemoryProviderRepo()
	p := models.NewProvider("prov-1", models.Profile{ProviderName: "Ada"}, fixedNow)
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday} {
		p.Schedule = p.Schedule.WithRegularHours(wd, []models.TimeSlot{models.MustTimeSlot(9, 0, 17, 0)})
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return repo
}
