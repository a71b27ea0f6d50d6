package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/repository"
)

// PopularLimit is the number of movies returned by Popular.
const PopularLimit = 10

// MovieStore is the movie catalog persistence.
type MovieStore interface {
	List(ctx context.Context) ([]model.Movie, error)
	Search(ctx context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error)
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	NowShowing(ctx context.Context, now time.Time) ([]model.Movie, error)
	ComingSoon(ctx context.Context, now time.Time) ([]model.Movie, error)
	Popular(ctx context.Context, limit int) ([]model.Movie, error)
	ByGenre(ctx context.Context, genre string) ([]model.Movie, error)
	Genres(ctx context.Context) ([]string, error)
	Create(ctx context.Context, m *model.Movie) error
}

// CinemaStore is the cinema persistence.
type CinemaStore interface {
	List(ctx context.Context) ([]model.Cinema, error)
	GetByID(ctx context.Context, id uint64) (*model.Cinema, error)
	Create(ctx context.Context, c *model.Cinema) error
}

// HallStore persists halls together with their seats.
type HallStore interface {
	CreateWithSeats(ctx context.Context, h *model.Hall, seats []model.Seat) error
	GetByID(ctx context.Context, id uint64) (*model.Hall, error)
	ListByCinema(ctx context.Context, cinemaID uint64) ([]model.Hall, error)
}

// HallSeatLister lists the fixed seat inventory of a hall.
type HallSeatLister interface {
	ListByHall(ctx context.Context, hallID uint64) ([]model.Seat, error)
}

// ScreeningStore is the screening persistence used by the catalog.
type ScreeningStore interface {
	GetByID(ctx context.Context, id uint64) (*model.ScreeningDetail, error)
	ListByMovie(ctx context.Context, movieID uint64, from time.Time) ([]model.ScreeningDetail, error)
	ListByCinema(ctx context.Context, cinemaID uint64, from time.Time) ([]model.ScreeningDetail, error)
	Create(ctx context.Context, s *model.Screening) error
	UpdateStatus(ctx context.Context, id uint64, status model.ScreeningStatus) (cancelled int, err error)
}

// CatalogService serves movies, cinemas and screenings to the public and
// lets managers maintain them.
type CatalogService struct {
	movies     MovieStore
	cinemas    CinemaStore
	halls      HallStore
	seats      HallSeatLister
	screenings ScreeningStore
	now        func() time.Time
	log        logrus.FieldLogger
}

// NewCatalogService wires the service.  now and log may be nil.
func NewCatalogService(movies MovieStore, cinemas CinemaStore, halls HallStore, seats HallSeatLister, screenings ScreeningStore, now func() time.Time, log logrus.FieldLogger) *CatalogService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CatalogService{movies: movies, cinemas: cinemas, halls: halls, seats: seats, screenings: screenings, now: now, log: log}
}

func (s *CatalogService) ListMovies(ctx context.Context) ([]model.Movie, error) {
	return s.movies.List(ctx)
}

// MoviePage is one page of a movie search.
type MoviePage struct {
	Items    []model.Movie `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

func (s *CatalogService) SearchMovies(ctx context.Context, q repository.MovieSearchQuery) (*MoviePage, error) {
	q.Normalize()
	items, total, err := s.movies.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &MoviePage{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *CatalogService) Movie(ctx context.Context, id uint64) (*model.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

func (s *CatalogService) NowShowing(ctx context.Context) ([]model.Movie, error) {
	return s.movies.NowShowing(ctx, s.now())
}

func (s *CatalogService) ComingSoon(ctx context.Context) ([]model.Movie, error) {
	return s.movies.ComingSoon(ctx, s.now())
}

func (s *CatalogService) Popular(ctx context.Context) ([]model.Movie, error) {
	return s.movies.Popular(ctx, PopularLimit)
}

// MoviesByGenre matches genre case-insensitively.  An unknown genre, or
// one without movies, is reported as not found.
func (s *CatalogService) MoviesByGenre(ctx context.Context, genre string) ([]model.Movie, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, invalid("genre", "is required")
	}
	out, err := s.movies.ByGenre(ctx, genre)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no movies in genre %q: %w", genre, repository.ErrMovieNotFound)
	}
	return out, nil
}

func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	return s.movies.Genres(ctx)
}

// CinemaDetail is a cinema with its halls.
type CinemaDetail struct {
	model.Cinema
	Halls []model.Hall `json:"halls"`
}

func (s *CatalogService) Cinemas(ctx context.Context) ([]model.Cinema, error) {
	return s.cinemas.List(ctx)
}

func (s *CatalogService) Cinema(ctx context.Context, id uint64) (*CinemaDetail, error) {
	c, err := s.cinemas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	halls, err := s.halls.ListByCinema(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CinemaDetail{Cinema: *c, Halls: halls}, nil
}

// HallRow is one row of a hall's seat layout.
type HallRow struct {
	Row   string       `json:"row"`
	Seats []model.Seat `json:"seats"`
}

// HallLayoutView is a hall with its seats grouped by row.
type HallLayoutView struct {
	Hall model.Hall `json:"hall"`
	Rows []HallRow  `json:"rows"`
}

// HallSeats returns the physical layout of a hall: rows in A…Z, AA…
// order, seats by number.  Availability is per screening and not shown.
func (s *CatalogService) HallSeats(ctx context.Context, hallID uint64) (*HallLayoutView, error) {
	h, err := s.halls.GetByID(ctx, hallID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	sort.Slice(seats, func(i, j int) bool {
		return model.LessSeat(seats[i].RowLabel, seats[i].SeatNumber, seats[j].RowLabel, seats[j].SeatNumber)
	})
	out := &HallLayoutView{Hall: *h, Rows: []HallRow{}}
	for _, seat := range seats {
		if n := len(out.Rows); n == 0 || out.Rows[n-1].Row != seat.RowLabel {
			out.Rows = append(out.Rows, HallRow{Row: seat.RowLabel})
		}
		last := &out.Rows[len(out.Rows)-1]
		last.Seats = append(last.Seats, seat)
	}
	return out, nil
}

// ScreeningsByMovie lists upcoming scheduled screenings of a movie.
func (s *CatalogService) ScreeningsByMovie(ctx context.Context, movieID uint64) ([]model.ScreeningDetail, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return nil, err
	}
	return s.screenings.ListByMovie(ctx, movieID, s.now())
}

// ScreeningsByCinema lists upcoming scheduled screenings in a cinema.
func (s *CatalogService) ScreeningsByCinema(ctx context.Context, cinemaID uint64) ([]model.ScreeningDetail, error) {
	if _, err := s.cinemas.GetByID(ctx, cinemaID); err != nil {
		return nil, err
	}
	return s.screenings.ListByCinema(ctx, cinemaID, s.now())
}

// CreateMovie validates and stores a new movie.
func (s *CatalogService) CreateMovie(ctx context.Context, m *model.Movie) error {
	m.Title = strings.TrimSpace(m.Title)
	m.Genre = strings.TrimSpace(m.Genre)
	switch {
	case m.Title == "":
		return invalid("title", "is required")
	case m.DurationMinutes == 0:
		return invalid("durationMinutes", "must be positive")
	case m.ReleaseDate.IsZero():
		return invalid("releaseDate", "is required")
	case m.EndDate != nil && m.EndDate.Before(m.ReleaseDate):
		return invalid("endDate", "must not be before releaseDate")
	case m.Rating.IsNegative() || m.Rating.GreaterThan(decimal.NewFromInt(10)):
		return invalid("rating", "must be between 0 and 10")
	}
	if err := s.movies.Create(ctx, m); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"movie_id": m.ID, "title": m.Title}).Info("movie created")
	return nil
}

// CreateCinema validates and stores a new cinema.
func (s *CatalogService) CreateCinema(ctx context.Context, c *model.Cinema) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name", "is required")
	}
	if err := s.cinemas.Create(ctx, c); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"cinema_id": c.ID, "name": c.Name}).Info("cinema created")
	return nil
}

// Hall layout bounds.
const (
	MaxHallRows    = 52
	MaxSeatsPerRow = 60
)

// HallLayout describes a rectangular hall.  Rows are labelled A, B, …;
// seats are numbered from 1.  VIPRows and CoupleRows name rows whose seats
// get that type; every other seat is Standard.
type HallLayout struct {
	Name        string
	HallType    string
	Rows        int
	SeatsPerRow int
	VIPRows     []string
	CoupleRows  []string
}

// BuildSeats expands the layout into seats in row then number order.
func (l HallLayout) BuildSeats() ([]model.Seat, error) {
	if l.Rows < 1 || l.Rows > MaxHallRows {
		return nil, invalid("rows", "must be between 1 and %d", MaxHallRows)
	}
	if l.SeatsPerRow < 1 || l.SeatsPerRow > MaxSeatsPerRow {
		return nil, invalid("seatsPerRow", "must be between 1 and %d", MaxSeatsPerRow)
	}
	types := map[string]model.SeatType{}
	mark := func(field string, rows []string, t model.SeatType) error {
		for _, raw := range rows {
			label := model.NormalizeRowLabel(raw)
			idx, ok := model.RowIndex(label)
			if !ok || idx >= l.Rows {
				return invalid(field, "row %q is not in the layout", raw)
			}
			types[label] = t
		}
		return nil
	}
	if err := mark("vipRows", l.VIPRows, model.SeatVIP); err != nil {
		return nil, err
	}
	if err := mark("coupleRows", l.CoupleRows, model.SeatCouple); err != nil {
		return nil, err
	}
	seats := make([]model.Seat, 0, l.Rows*l.SeatsPerRow)
	for r := 0; r < l.Rows; r++ {
		label := model.RowLabel(r)
		t, ok := types[label]
		if !ok {
			t = model.SeatStandard
		}
		for n := 1; n <= l.SeatsPerRow; n++ {
			seats = append(seats, model.Seat{RowLabel: label, SeatNumber: uint32(n), SeatType: t})
		}
	}
	return seats, nil
}

// CreateHall creates a hall in a cinema with the seats described by layout.
func (s *CatalogService) CreateHall(ctx context.Context, cinemaID uint64, layout HallLayout) (*model.Hall, []model.Seat, error) {
	name := strings.TrimSpace(layout.Name)
	if name == "" {
		return nil, nil, invalid("name", "is required")
	}
	seats, err := layout.BuildSeats()
	if err != nil {
		return nil, nil, err
	}
	hallType := strings.TrimSpace(layout.HallType)
	if hallType == "" {
		hallType = "2D"
	}
	h := &model.Hall{CinemaID: cinemaID, Name: name, HallType: hallType}
	if err := s.halls.CreateWithSeats(ctx, h, seats); err != nil {
		return nil, nil, err
	}
	s.log.WithFields(logrus.Fields{"hall_id": h.ID, "cinema_id": cinemaID, "seats": len(seats)}).Info("hall created")
	return h, seats, nil
}

// CreateScreening schedules a movie in a hall.  The window must be in the
// future and must not overlap another screening in the hall.
func (s *CatalogService) CreateScreening(ctx context.Context, sc *model.Screening) (*model.ScreeningDetail, error) {
	switch {
	case sc.MovieID == 0:
		return nil, invalid("movieId", "is required")
	case sc.HallID == 0:
		return nil, invalid("hallId", "is required")
	case sc.StartTime.IsZero():
		return nil, invalid("startTime", "is required")
	case !sc.EndTime.After(sc.StartTime):
		return nil, invalid("endTime", "must be after startTime")
	case !sc.StartTime.After(s.now()):
		return nil, invalid("startTime", "must be in the future")
	case !sc.Price.IsPositive():
		return nil, invalid("price", "must be positive")
	}
	sc.StartTime = sc.StartTime.UTC()
	sc.EndTime = sc.EndTime.UTC()
	sc.Status = model.ScreeningScheduled
	if err := s.screenings.Create(ctx, sc); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"screening_id": sc.ID, "hall_id": sc.HallID, "movie_id": sc.MovieID}).Info("screening scheduled")
	return s.screenings.GetByID(ctx, sc.ID)
}

// SetScreeningStatus moves a Scheduled screening to Cancelled or
// Completed.  Both are final, so a cancelled screening cannot come back
// and skip the hall overlap check.  Cancelling releases every seat
// claimed on the screening.
func (s *CatalogService) SetScreeningStatus(ctx context.Context, id uint64, status model.ScreeningStatus) (*model.ScreeningDetail, error) {
	if !status.Valid() {
		return nil, invalid("status", "must be one of Scheduled, Cancelled, Completed")
	}
	cancelled, err := s.screenings.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"screening_id": id, "status": status, "bookings_cancelled": cancelled}).Info("screening status changed")
	return s.screenings.GetByID(ctx, id)
}
