package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/repository"
)

type fakeCatalog struct {
	movies     map[uint64]*model.Movie
	cinemas    map[uint64]*model.Cinema
	halls      map[uint64][]model.Hall
	hallSeats  map[uint64][]model.Seat
	screenings map[uint64]*model.ScreeningDetail
	lastSearch repository.MovieSearchQuery
	popularN   int
	nextID     uint64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		movies:     map[uint64]*model.Movie{},
		cinemas:    map[uint64]*model.Cinema{},
		halls:      map[uint64][]model.Hall{},
		hallSeats:  map[uint64][]model.Seat{},
		screenings: map[uint64]*model.ScreeningDetail{},
		nextID:     100,
	}
}

// fakeMovies, fakeCinemas, fakeHalls and fakeScreenings split fakeCatalog
// by interface since several share method names.
type (
	fakeMovies     struct{ *fakeCatalog }
	fakeCinemas    struct{ *fakeCatalog }
	fakeHalls      struct{ *fakeCatalog }
	fakeScreenings struct{ *fakeCatalog }
	fakeSeats      struct{ *fakeCatalog }
)

func (f fakeMovies) List(context.Context) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		out = append(out, *m)
	}
	return out, nil
}

func (f fakeMovies) Search(_ context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error) {
	f.lastSearch = q
	out := []model.Movie{}
	for _, m := range f.movies {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Title)) {
			out = append(out, *m)
		}
	}
	return out, int64(len(out)), nil
}

func (f fakeMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	m, ok := f.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	c := *m
	return &c, nil
}

func (f fakeMovies) NowShowing(_ context.Context, now time.Time) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if !m.ReleaseDate.After(now) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f fakeMovies) ComingSoon(_ context.Context, now time.Time) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if m.ReleaseDate.After(now) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f fakeMovies) Popular(_ context.Context, limit int) ([]model.Movie, error) {
	f.popularN = limit
	return []model.Movie{}, nil
}

func (f fakeMovies) ByGenre(_ context.Context, genre string) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if strings.EqualFold(m.Genre, genre) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f fakeMovies) Genres(context.Context) ([]string, error) { return []string{"Drama", "Sci-Fi"}, nil }

func (f fakeMovies) Create(_ context.Context, m *model.Movie) error {
	f.nextID++
	m.ID = f.nextID
	f.movies[m.ID] = m
	return nil
}

func (f fakeCinemas) List(context.Context) ([]model.Cinema, error) {
	out := []model.Cinema{}
	for _, c := range f.cinemas {
		out = append(out, *c)
	}
	return out, nil
}

func (f fakeCinemas) GetByID(_ context.Context, id uint64) (*model.Cinema, error) {
	c, ok := f.cinemas[id]
	if !ok {
		return nil, repository.ErrCinemaNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCinemas) Create(_ context.Context, c *model.Cinema) error {
	f.nextID++
	c.ID = f.nextID
	f.cinemas[c.ID] = c
	return nil
}

func (f fakeHalls) CreateWithSeats(_ context.Context, h *model.Hall, seats []model.Seat) error {
	if _, ok := f.cinemas[h.CinemaID]; !ok {
		return repository.ErrCinemaNotFound
	}
	f.nextID++
	h.ID = f.nextID
	h.Capacity = uint32(len(seats))
	f.halls[h.CinemaID] = append(f.halls[h.CinemaID], *h)
	f.hallSeats[h.ID] = seats
	return nil
}

func (f fakeHalls) GetByID(_ context.Context, id uint64) (*model.Hall, error) {
	for _, hs := range f.halls {
		for _, h := range hs {
			if h.ID == id {
				c := h
				return &c, nil
			}
		}
	}
	return nil, repository.ErrHallNotFound
}

func (f fakeSeats) ListByHall(_ context.Context, hallID uint64) ([]model.Seat, error) {
	return append([]model.Seat{}, f.hallSeats[hallID]...), nil
}

func (f fakeHalls) ListByCinema(_ context.Context, cinemaID uint64) ([]model.Hall, error) {
	return append([]model.Hall{}, f.halls[cinemaID]...), nil
}

func (f fakeScreenings) GetByID(_ context.Context, id uint64) (*model.ScreeningDetail, error) {
	s, ok := f.screenings[id]
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	c := *s
	return &c, nil
}

func (f fakeScreenings) ListByMovie(_ context.Context, movieID uint64, from time.Time) ([]model.ScreeningDetail, error) {
	out := []model.ScreeningDetail{}
	for _, s := range f.screenings {
		if s.MovieID == movieID && s.StartTime.After(from) && s.Status == model.ScreeningScheduled {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f fakeScreenings) ListByCinema(_ context.Context, cinemaID uint64, from time.Time) ([]model.ScreeningDetail, error) {
	out := []model.ScreeningDetail{}
	for _, s := range f.screenings {
		if s.CinemaID == cinemaID && s.StartTime.After(from) && s.Status == model.ScreeningScheduled {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f fakeScreenings) Create(_ context.Context, s *model.Screening) error {
	for _, o := range f.screenings {
		if o.HallID == s.HallID && o.Status != model.ScreeningCancelled &&
			o.StartTime.Before(s.EndTime) && o.EndTime.After(s.StartTime) {
			return repository.ErrScreeningOverlap
		}
	}
	f.nextID++
	s.ID = f.nextID
	f.screenings[s.ID] = &model.ScreeningDetail{Screening: *s}
	return nil
}

func (f fakeScreenings) UpdateStatus(_ context.Context, id uint64, status model.ScreeningStatus) (int, error) {
	s, ok := f.screenings[id]
	if !ok {
		return 0, repository.ErrScreeningNotFound
	}
	if !s.Status.CanMoveTo(status) {
		return 0, repository.ErrScreeningStatusFinal
	}
	s.Status = status
	return 0, nil
}

func newCatalogFixture(t *testing.T) (*fakeCatalog, *CatalogService) {
	t.Helper()
	f := newFakeCatalog()
	f.movies[1] = &model.Movie{ID: 1, Title: "Dune: Part Two", Genre: "Sci-Fi", ReleaseDate: testNow.Add(-30 * 24 * time.Hour), DurationMinutes: 166}
	f.movies[2] = &model.Movie{ID: 2, Title: "Future Film", Genre: "Drama", ReleaseDate: testNow.Add(30 * 24 * time.Hour), DurationMinutes: 100}
	f.cinemas[1] = &model.Cinema{ID: 1, Name: "Galaxy"}
	f.halls[1] = []model.Hall{{ID: 1, CinemaID: 1, Name: "Hall 1", Capacity: 4}}
	f.screenings[10] = &model.ScreeningDetail{
		Screening: model.Screening{ID: 10, MovieID: 1, HallID: 1, StartTime: testNow.Add(2 * time.Hour),
			EndTime: testNow.Add(5 * time.Hour), Price: decimal.NewFromInt(100000), Status: model.ScreeningScheduled},
		CinemaID: 1,
	}
	f.screenings[11] = &model.ScreeningDetail{
		Screening: model.Screening{ID: 11, MovieID: 1, HallID: 1, StartTime: testNow.Add(-3 * time.Hour),
			EndTime: testNow.Add(-1 * time.Hour), Status: model.ScreeningScheduled},
		CinemaID: 1,
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewCatalogService(fakeMovies{f}, fakeCinemas{f}, fakeHalls{f}, fakeSeats{f}, fakeScreenings{f},
		func() time.Time { return testNow }, log)
	return f, svc
}

func TestCatalogNowShowingAndComingSoon(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	now, err := svc.NowShowing(ctx)
	require.NoError(t, err)
	require.Len(t, now, 1)
	assert.Equal(t, uint64(1), now[0].ID)

	soon, err := svc.ComingSoon(ctx)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, uint64(2), soon[0].ID)
}

func TestCatalogPopularUsesFixedLimit(t *testing.T) {
	f, svc := newCatalogFixture(t)
	_, err := svc.Popular(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PopularLimit, f.popularN)
}

func TestCatalogSearchNormalizesPaging(t *testing.T) {
	f, svc := newCatalogFixture(t)
	page, err := svc.SearchMovies(context.Background(), repository.MovieSearchQuery{Title: "dune", PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 100, f.lastSearch.PageSize)
}

func TestCatalogMoviesByGenre(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	got, err := svc.MoviesByGenre(ctx, "sci-fi")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.MoviesByGenre(ctx, "Western")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.MoviesByGenre(ctx, "  ")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCatalogScreeningsByMovieSkipsPast(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	got, err := svc.ScreeningsByMovie(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(10), got[0].ID)

	_, err = svc.ScreeningsByMovie(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err = svc.ScreeningsByCinema(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ScreeningsByCinema(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogCinemaIncludesHalls(t *testing.T) {
	_, svc := newCatalogFixture(t)
	c, err := svc.Cinema(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Galaxy", c.Name)
	require.Len(t, c.Halls, 1)
	assert.Equal(t, "Hall 1", c.Halls[0].Name)
}

func TestHallSeatsGroupsRows(t *testing.T) {
	f, svc := newCatalogFixture(t)
	f.hallSeats[1] = []model.Seat{
		{ID: 4, HallID: 1, RowLabel: "AA", SeatNumber: 1},
		{ID: 3, HallID: 1, RowLabel: "B", SeatNumber: 2},
		{ID: 2, HallID: 1, RowLabel: "B", SeatNumber: 1},
		{ID: 1, HallID: 1, RowLabel: "A", SeatNumber: 1},
	}
	got, err := svc.HallSeats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "A", got.Rows[0].Row)
	assert.Equal(t, "B", got.Rows[1].Row)
	assert.Equal(t, uint32(1), got.Rows[1].Seats[0].SeatNumber)
	assert.Equal(t, "AA", got.Rows[2].Row)

	_, err = svc.HallSeats(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMovieValidation(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()
	release := testNow
	before := testNow.Add(-time.Hour)

	cases := []struct {
		name  string
		movie model.Movie
		field string
	}{
		{"missing title", model.Movie{DurationMinutes: 90, ReleaseDate: release}, "title"},
		{"zero duration", model.Movie{Title: "X", ReleaseDate: release}, "durationMinutes"},
		{"no release", model.Movie{Title: "X", DurationMinutes: 90}, "releaseDate"},
		{"end before release", model.Movie{Title: "X", DurationMinutes: 90, ReleaseDate: release, EndDate: &before}, "endDate"},
		{"rating too high", model.Movie{Title: "X", DurationMinutes: 90, ReleaseDate: release, Rating: decimal.NewFromInt(11)}, "rating"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := tc.movie
			err := svc.CreateMovie(ctx, &m)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	m := model.Movie{Title: "  Arrival ", DurationMinutes: 116, ReleaseDate: release}
	require.NoError(t, svc.CreateMovie(ctx, &m))
	assert.NotZero(t, m.ID)
	assert.Equal(t, "Arrival", m.Title)
}

func TestCreateCinemaRequiresName(t *testing.T) {
	_, svc := newCatalogFixture(t)
	err := svc.CreateCinema(context.Background(), &model.Cinema{Name: " "})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	c := &model.Cinema{Name: "Odeon"}
	require.NoError(t, svc.CreateCinema(context.Background(), c))
	assert.NotZero(t, c.ID)
}

func TestHallLayoutBuildSeats(t *testing.T) {
	seats, err := HallLayout{Name: "H", Rows: 3, SeatsPerRow: 4, VIPRows: []string{"c"}, CoupleRows: []string{"A"}}.BuildSeats()
	require.NoError(t, err)
	require.Len(t, seats, 12)
	assert.Equal(t, "A1", seats[0].Label())
	assert.Equal(t, model.SeatCouple, seats[0].SeatType)
	assert.Equal(t, "B4", seats[7].Label())
	assert.Equal(t, model.SeatStandard, seats[7].SeatType)
	assert.Equal(t, "C1", seats[8].Label())
	assert.Equal(t, model.SeatVIP, seats[8].SeatType)

	_, err = HallLayout{Rows: 0, SeatsPerRow: 4}.BuildSeats()
	assert.Error(t, err)
	_, err = HallLayout{Rows: 2, SeatsPerRow: MaxSeatsPerRow + 1}.BuildSeats()
	assert.Error(t, err)
	_, err = HallLayout{Rows: 2, SeatsPerRow: 2, VIPRows: []string{"D"}}.BuildSeats()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "vipRows", ve.Field)
}

func TestCreateHall(t *testing.T) {
	f, svc := newCatalogFixture(t)
	ctx := context.Background()

	h, seats, err := svc.CreateHall(ctx, 1, HallLayout{Name: "IMAX", Rows: 2, SeatsPerRow: 3})
	require.NoError(t, err)
	assert.Equal(t, "2D", h.HallType)
	assert.Equal(t, uint32(6), h.Capacity)
	assert.Len(t, seats, 6)
	assert.Len(t, f.hallSeats[h.ID], 6)

	_, _, err = svc.CreateHall(ctx, 99, HallLayout{Name: "X", Rows: 1, SeatsPerRow: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.CreateHall(ctx, 1, HallLayout{Rows: 1, SeatsPerRow: 1})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestCreateScreening(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	sc, err := svc.CreateScreening(ctx, &model.Screening{
		MovieID: 1, HallID: 1, StartTime: start, EndTime: start.Add(3 * time.Hour), Price: decimal.NewFromInt(90000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScreeningScheduled, sc.Status)

	_, err = svc.CreateScreening(ctx, &model.Screening{
		MovieID: 1, HallID: 1, StartTime: start.Add(time.Hour), EndTime: start.Add(4 * time.Hour), Price: decimal.NewFromInt(90000),
	})
	assert.ErrorIs(t, err, ErrConflict)

	invalidCases := []model.Screening{
		{MovieID: 1, HallID: 1, StartTime: start, EndTime: start, Price: decimal.NewFromInt(1)},
		{MovieID: 1, HallID: 1, StartTime: testNow.Add(-time.Hour), EndTime: testNow.Add(time.Hour), Price: decimal.NewFromInt(1)},
		{MovieID: 1, HallID: 1, StartTime: start, EndTime: start.Add(time.Hour)},
		{HallID: 1, StartTime: start, EndTime: start.Add(time.Hour), Price: decimal.NewFromInt(1)},
	}
	for i := range invalidCases {
		_, err := svc.CreateScreening(ctx, &invalidCases[i])
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "case %d", i)
	}
}

func TestSetScreeningStatus(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	sc, err := svc.SetScreeningStatus(ctx, 10, model.ScreeningCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.ScreeningCancelled, sc.Status)

	_, err = svc.SetScreeningStatus(ctx, 10, model.ScreeningStatus("Paused"))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.SetScreeningStatus(ctx, 404, model.ScreeningCompleted)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCancelledScreeningCannotBeRescheduled(t *testing.T) {
	_, svc := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.SetScreeningStatus(ctx, 10, model.ScreeningCancelled)
	require.NoError(t, err)
	_, err = svc.SetScreeningStatus(ctx, 10, model.ScreeningCancelled)
	require.NoError(t, err, "repeating the current status is a no-op")

	for _, next := range []model.ScreeningStatus{model.ScreeningScheduled, model.ScreeningCompleted} {
		_, err = svc.SetScreeningStatus(ctx, 10, next)
		assert.ErrorIs(t, err, ErrConflict, string(next))
	}
}
