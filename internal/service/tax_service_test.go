package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pricing/internal/cache"
	"pricing/internal/model"
	"pricing/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordedEvent struct {
	name string
	data interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *fakePublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

type taxFixture struct {
	db        *gorm.DB
	svc       TaxService
	taxRepo   repository.TaxRateRepository
	auditRepo repository.AuditRepository
	events    *fakePublisher
}

func setupTaxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.TaxRate{}, &model.AuditLog{}))
	return db
}

func newTaxFixture(t *testing.T) *taxFixture {
	t.Helper()
	db := setupTaxTestDB(t)
	f := &taxFixture{
		db:        db,
		taxRepo:   repository.NewTaxRateRepository(db),
		auditRepo: repository.NewAuditRepository(db),
		events:    &fakePublisher{},
	}
	f.svc = NewTaxService(
		f.taxRepo,
		f.auditRepo,
		repository.NewTransactionManager(db),
		cache.NewMemoryTaxRateCache(time.Minute),
		f.events,
		zap.NewNop(),
	)
	return f
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func germany(rate, from string) CreateTaxRateRequest {
	return CreateTaxRateRequest{
		CountryCode:     "DE",
		CountryName:     "Germany",
		StandardVatRate: rate,
		ReducedVatRate:  "7",
		EffectiveDate:   from,
	}
}

func TestCreateTaxRate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores rate and writes audit log", func(t *testing.T) {
		f := newTaxFixture(t)
		userID := uuid.New()

		resp, err := f.svc.CreateTaxRate(ctx, germany("19", "2024-01-01"), userID.String())
		require.NoError(t, err)

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "DE", resp.CountryCode)
		assert.Equal(t, "19.00", resp.StandardVatRate)
		require.NotNil(t, resp.ReducedVatRate)
		assert.Equal(t, "7.00", *resp.ReducedVatRate)
		assert.Equal(t, "2024-01-01", resp.EffectiveDate)
		assert.Nil(t, resp.EndDate)

		logs, total, err := f.auditRepo.List(ctx, model.ActionCreateTaxRate, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, resp.ID, logs[0].EntityID)
		require.NotNil(t, logs[0].UserID)
		assert.Equal(t, userID, *logs[0].UserID)

		assert.Equal(t, []string{EventTaxRateCreated}, f.events.names())
	})

	t.Run("country code is normalized", func(t *testing.T) {
		f := newTaxFixture(t)
		req := germany("19", "2024-01-01")
		req.CountryCode = " de "

		resp, err := f.svc.CreateTaxRate(ctx, req, "")
		require.NoError(t, err)
		assert.Equal(t, "DE", resp.CountryCode)
	})

	t.Run("overlapping window is rejected", func(t *testing.T) {
		f := newTaxFixture(t)
		_, err := f.svc.CreateTaxRate(ctx, germany("19", "2024-01-01"), "")
		require.NoError(t, err)

		_, err = f.svc.CreateTaxRate(ctx, germany("20", "2025-01-01"), "")
		assert.ErrorIs(t, err, ErrTaxRateOverlap)

		count, err := f.taxRepo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		_, total, err := f.auditRepo.List(ctx, "", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, "failed create must not leave an audit entry")
	})

	t.Run("adjacent closed windows are allowed", func(t *testing.T) {
		f := newTaxFixture(t)
		first := germany("16", "2020-07-01")
		first.EndDate = "2020-12-31"
		_, err := f.svc.CreateTaxRate(ctx, first, "")
		require.NoError(t, err)

		_, err = f.svc.CreateTaxRate(ctx, germany("19", "2021-01-01"), "")
		require.NoError(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newTaxFixture(t)
		cases := map[string]CreateTaxRateRequest{
			"bad country": {CountryCode: "DEU", CountryName: "Germany", StandardVatRate: "19", EffectiveDate: "2024-01-01"},
			"bad rate":    {CountryCode: "DE", CountryName: "Germany", StandardVatRate: "abc", EffectiveDate: "2024-01-01"},
			"over 100":    {CountryCode: "DE", CountryName: "Germany", StandardVatRate: "101", EffectiveDate: "2024-01-01"},
			"negative":    {CountryCode: "DE", CountryName: "Germany", StandardVatRate: "19", ReducedVatRate: "-1", EffectiveDate: "2024-01-01"},
			"bad date":    {CountryCode: "DE", CountryName: "Germany", StandardVatRate: "19", EffectiveDate: "01.01.2024"},
			"end first":   {CountryCode: "DE", CountryName: "Germany", StandardVatRate: "19", EffectiveDate: "2024-01-01", EndDate: "2023-12-31"},
		}
		for name, req := range cases {
			_, err := f.svc.CreateTaxRate(ctx, req, "")
			assert.ErrorIs(t, err, ErrInvalidTaxRate, name)
		}
	})
}

func TestSupersedeTaxRate(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the open window the day before", func(t *testing.T) {
		f := newTaxFixture(t)
		old, err := f.svc.CreateTaxRate(ctx, germany("19", "2024-01-01"), "")
		require.NoError(t, err)

		next, err := f.svc.SupersedeTaxRate(ctx, germany("20", "2026-01-01"), "")
		require.NoError(t, err)

		closed, err := f.taxRepo.FindByID(ctx, uuid.MustParse(old.ID))
		require.NoError(t, err)
		require.NotNil(t, closed.EndDate)
		assert.Equal(t, "2025-12-31", closed.EndDate.Format(dateLayout))

		rate, err := f.svc.GetActiveTaxRate(ctx, "DE", day("2025-12-31"))
		require.NoError(t, err)
		assertDecimal(t, "19", rate.StandardVatRate)

		rate, err = f.svc.GetActiveTaxRate(ctx, "DE", day("2026-01-01"))
		require.NoError(t, err)
		assert.Equal(t, next.ID, rate.ID.String())
		assertDecimal(t, "20", rate.StandardVatRate)

		_, total, err := f.auditRepo.List(ctx, model.ActionSupersedeTaxRate, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, []string{EventTaxRateCreated, EventTaxRateSuperseded}, f.events.names())
	})

	t.Run("first rate for a country", func(t *testing.T) {
		f := newTaxFixture(t)
		resp, err := f.svc.SupersedeTaxRate(ctx, germany("19", "2024-01-01"), "")
		require.NoError(t, err)
		assert.Equal(t, "DE", resp.CountryCode)
	})

	t.Run("must start after the open window", func(t *testing.T) {
		f := newTaxFixture(t)
		_, err := f.svc.CreateTaxRate(ctx, germany("19", "2024-01-01"), "")
		require.NoError(t, err)

		_, err = f.svc.SupersedeTaxRate(ctx, germany("20", "2024-01-01"), "")
		assert.ErrorIs(t, err, ErrTaxRateOverlap)

		open, err := f.taxRepo.FindOpenByCountry(ctx, "DE")
		require.NoError(t, err, "rolled back supersede keeps the window open")
		assert.Nil(t, open.EndDate)
	})
}

func TestGetActiveTaxRate(t *testing.T) {
	ctx := context.Background()
	f := newTaxFixture(t)

	first := germany("16", "2020-07-01")
	first.EndDate = "2020-12-31"
	_, err := f.svc.CreateTaxRate(ctx, first, "")
	require.NoError(t, err)
	_, err = f.svc.CreateTaxRate(ctx, germany("19", "2021-01-01"), "")
	require.NoError(t, err)

	tests := []struct {
		at   time.Time
		want string
	}{
		{day("2020-07-01"), "16"},
		{time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC), "16"},
		{day("2021-01-01"), "19"},
		{day("2030-05-05"), "19"},
	}
	for _, tt := range tests {
		rate, err := f.svc.GetActiveTaxRate(ctx, "de", tt.at)
		require.NoError(t, err, tt.at)
		assertDecimal(t, tt.want, rate.StandardVatRate)
	}

	_, err = f.svc.GetActiveTaxRate(ctx, "DE", day("2020-06-30"))
	assert.ErrorIs(t, err, ErrTaxRateNotFound)

	_, err = f.svc.GetActiveTaxRate(ctx, "US", day("2024-01-01"))
	assert.ErrorIs(t, err, ErrTaxRateNotFound)

	_, err = f.svc.GetActiveTaxRate(ctx, "", day("2024-01-01"))
	assert.ErrorIs(t, err, ErrCountryRequired)
}

func TestGetActiveTaxRateCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newTaxFixture(t)

	_, err := f.svc.CreateTaxRate(ctx, germany("19", "2024-01-01"), "")
	require.NoError(t, err)

	rate, err := f.svc.GetActiveTaxRate(ctx, "DE", day("2025-06-01"))
	require.NoError(t, err)
	assertDecimal(t, "19", rate.StandardVatRate)

	_, err = f.svc.SupersedeTaxRate(ctx, germany("20", "2025-01-01"), "")
	require.NoError(t, err)

	rate, err = f.svc.GetActiveTaxRate(ctx, "DE", day("2025-06-01"))
	require.NoError(t, err)
	assertDecimal(t, "20", rate.StandardVatRate)
}

func TestListTaxRates(t *testing.T) {
	ctx := context.Background()
	f := newTaxFixture(t)

	for _, req := range []CreateTaxRateRequest{
		{CountryCode: "FR", CountryName: "France", StandardVatRate: "20", ReducedVatRate: "5.5", EffectiveDate: "2024-01-01"},
		{CountryCode: "AT", CountryName: "Austria", StandardVatRate: "20", EffectiveDate: "2024-01-01"},
		germany("19", "2024-01-01"),
	} {
		_, err := f.svc.CreateTaxRate(ctx, req, "")
		require.NoError(t, err)
	}

	all, total, err := f.svc.ListTaxRates(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 2)
	assert.Equal(t, "AT", all[0].CountryCode)
	assert.Equal(t, "DE", all[1].CountryCode)

	fr, total, err := f.svc.ListTaxRates(ctx, "fr", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, fr, 1)
	require.NotNil(t, fr[0].ReducedVatRate)
	assert.Equal(t, "5.50", *fr[0].ReducedVatRate)
}
