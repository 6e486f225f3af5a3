package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PgRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPgRepository(mock), mock
}

// pgxmock matches an expectation without WithArgs only against zero-argument
// calls, so every positional argument needs an explicit AnyArg matcher.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func profileInsertArgs() []interface{} {
	// id, user_id, first_name, last_name, email, phone, gender, department
	return anyArgs(8)
}

var profileColumns = []string{
	"id", "user_id", "first_name", "last_name", "email", "phone", "gender",
	"department", "created_at", "updated_at",
}

func TestCreateProfileConflictMapsToErrProfileExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	// ON CONFLICT DO NOTHING returns no row when another profile won.
	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(profileInsertArgs()...).
		WillReturnRows(pgxmock.NewRows(profileColumns))

	_, err := repo.CreateProfile(context.Background(), PatientProfile{
		ID:     uuid.New(),
		UserID: uuid.New(),
	})
	require.ErrorIs(t, err, ErrProfileExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProfileReturnsInsertedRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(profileInsertArgs()...).
		WillReturnRows(pgxmock.NewRows(profileColumns).
			AddRow(id, userID, "Nguyen", "Van A", nil, nil, nil, "Tim mạch", now, now))

	created, err := repo.CreateProfile(context.Background(), PatientProfile{
		ID:         id,
		UserID:     userID,
		FirstName:  "Nguyen",
		LastName:   "Van A",
		Department: "Tim mạch",
	})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, "Nguyen", created.FirstName)
	assert.Nil(t, created.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileByUserIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM patients").
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetProfileByUserID(context.Background(), userID)
	require.ErrorIs(t, err, ErrProfileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDoctorsBySpecialty(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM doctors").
		WithArgs("Tim mạch").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "full_name", "specialty", "created_at", "updated_at"}).
			AddRow(uuid.New(), nil, "BS. Minh", "Tim mạch", now, now).
			AddRow(uuid.New(), nil, "BS. Lan", "Tim mạch", now, now))

	doctors, err := repo.FindDoctorsBySpecialty(context.Background(), "Tim mạch")
	require.NoError(t, err)
	assert.Len(t, doctors, 2)
	assert.Equal(t, "BS. Minh", doctors[0].FullName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(anyArgs(9)...).
		WillReturnRows(appointmentRows(uuid.New()))
	mock.ExpectCommit()
	// Deferred rollback after a successful commit is a no-op.
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(txRepo Repository) error {
		_, err := txRepo.CreateAppointment(context.Background(), Appointment{
			ID:        uuid.New(),
			PatientID: uuid.New(),
			Status:    StatusPending,
		})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO patients").
		WithArgs(profileInsertArgs()...).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.WithTx(context.Background(), func(txRepo Repository) error {
		_, err := txRepo.CreateProfile(context.Background(), PatientProfile{
			ID:     uuid.New(),
			UserID: uuid.New(),
		})
		return err
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func appointmentRows(id uuid.UUID) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "start_time", "end_time", "symptom",
		"status", "preferred_date", "preferred_window", "created_at", "updated_at",
	}).AddRow(id, uuid.New(), nil, now, now.Add(30*time.Minute), "đau tim",
		StatusPending, now, "09:00 - 09:30", now, now)
}
