package repository

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineticket/cineticket-api/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestBookingRepoCreateClaimsSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(100000), []uint64{1, 2})
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM screenings WHERE id = \? FOR UPDATE`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Scheduled"))
	mock.ExpectQuery(`SELECT seat_id FROM booking_seats`).
		WithArgs(uint64(7), uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(uint64(3), uint64(7), sqlmock.AnyArg(), "Pending", "Unpaid").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WithArgs(uint64(11), uint64(7), uint64(1), uint64(11), uint64(7), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM bookings`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	taken, err := repo.Create(context.Background(), b)
	require.NoError(t, err)
	assert.Empty(t, taken)
	assert.Equal(t, uint64(11), b.ID)
	assert.Equal(t, now, b.CreatedAt)
	for _, s := range b.Seats {
		assert.Equal(t, uint64(11), s.BookingID)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateReturnsTakenSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(50), []uint64{1, 2, 3})

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Scheduled"))
	mock.ExpectQuery(`SELECT seat_id FROM booking_seats`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(2).AddRow(3))
	mock.ExpectRollback()

	taken, err := repo.Create(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3}, taken)
	assert.Zero(t, b.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateScreeningClosed(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Cancelled"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), model.NewBooking(1, 7, decimal.NewFromInt(1), []uint64{1}))
	assert.ErrorIs(t, err, ErrScreeningNotBookable)
	assert.ErrorIs(t, err, ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCreateScreeningMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), model.NewBooking(1, 7, decimal.NewFromInt(1), []uint64{1}))
	assert.ErrorIs(t, err, ErrScreeningNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingRepoCreateDuplicateKeyReportsSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(50), []uint64{1, 2})

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Scheduled"))
	mock.ExpectQuery(`SELECT seat_id FROM booking_seats`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
	mock.ExpectExec(`INSERT INTO bookings`).WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()
	mock.ExpectQuery(`SELECT seat_id FROM booking_seats`).
		WithArgs(uint64(7), uint64(1), uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(1))

	taken, err := repo.Create(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, taken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoMarkPaid(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(50), []uint64{1})
	b.ID = 9
	require.NoError(t, b.Pay("Card", nil, "tx-1", time.Now().UTC()))

	mock.ExpectExec(`UPDATE bookings\s+SET booking_status = \?, payment_status = \?`).
		WithArgs("Confirmed", "Paid", "Card", nil, "tx-1", sqlmock.AnyArg(), uint64(9), "Pending", "Unpaid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkPaid(context.Background(), b))

	mock.ExpectExec(`UPDATE bookings`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkPaid(context.Background(), b), ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCancelReleasesSeats(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(50), []uint64{1, 2})
	b.ID = 9
	require.NoError(t, b.Pay("Card", nil, "tx", time.Now()))
	require.NoError(t, b.Cancel(time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET booking_status = \?, payment_status = \?`).
		WithArgs("Cancelled", "Refunded", uint64(9), "Cancelled", "Paid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE booking_seats SET active = NULL WHERE booking_id = \?`).
		WithArgs(uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Cancel(context.Background(), b, model.PaymentPaid))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoCancelConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	b := model.NewBooking(3, 7, decimal.NewFromInt(50), []uint64{1})
	b.ID = 9
	require.NoError(t, b.Cancel(time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookings SET booking_status`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Cancel(context.Background(), b, model.PaymentUnpaid), ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoGetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepo(db)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bookings b WHERE b.id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "screening_id", "total_amount", "booking_status", "payment_status",
			"payment_method", "payment_reference", "transaction_id", "paid_at", "created_at", "updated_at",
		}).AddRow(5, 3, 7, "200000.00", "Pending", "Unpaid", nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`FROM booking_seats bs`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "screening_id", "seat_id", "active", "row_label", "seat_number", "seat_type",
		}).AddRow(1, 5, 7, 100, 1, "A", 1, "Standard").AddRow(2, 5, 7, 101, 1, "A", 2, "VIP"))

	b, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(200000)))
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Nil(t, b.PaymentMethod)
	require.Len(t, b.Seats, 2)
	assert.Equal(t, "A", b.Seats[1].RowLabel)
	assert.Equal(t, model.SeatVIP, b.Seats[1].SeatType)
	assert.True(t, b.Seats[0].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoSeatsInRowOrder(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bookings b WHERE b.id = \?`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "screening_id", "total_amount", "booking_status", "payment_status",
			"payment_method", "payment_reference", "transaction_id", "paid_at", "created_at", "updated_at",
		}).AddRow(5, 3, 7, "300000.00", "Pending", "Unpaid", nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`ORDER BY bs.booking_id, CHAR_LENGTH\(s.row_label\), s.row_label, s.seat_number`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "screening_id", "seat_id", "active", "row_label", "seat_number", "seat_type",
		}).
			AddRow(1, 5, 7, 300, 1, "AA", 1, "Standard").
			AddRow(2, 5, 7, 110, 1, "B", 1, "Standard").
			AddRow(3, 5, 7, 101, 1, "A", 2, "Standard"))

	b, err := NewBookingRepo(db).GetByID(context.Background(), 5)
	require.NoError(t, err)
	var labels []string
	for _, s := range b.Seats {
		labels = append(labels, s.RowLabel+strconv.Itoa(int(s.SeatNumber)))
	}
	assert.Equal(t, []string{"A2", "B1", "AA1"}, labels)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepoGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM bookings b`).WillReturnError(sql.ErrNoRows)
	_, err := NewBookingRepo(db).GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicateKey(sql.ErrNoRows))
}
