package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PgRepository struct {
	db DBTX
}

func NewPgRepository(db DBTX) *PgRepository {
	return &PgRepository{db: db}
}

func (r *PgRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&PgRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.FullName,
		&u.Role,
		&u.Enabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var userID *uuid.UUID

	err := row.Scan(
		&d.ID,
		&userID,
		&d.FullName,
		&d.Specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.UserID = userID
	return &d, nil
}

func scanProfile(row pgx.Row) (*PatientProfile, error) {
	var p PatientProfile
	var email, phone, gender *string

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&email,
		&phone,
		&gender,
		&p.Department,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	p.Email = email
	p.Phone = phone
	p.Gender = gender
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var doctorID *uuid.UUID

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&doctorID,
		&a.StartTime,
		&a.EndTime,
		&a.Symptom,
		&a.Status,
		&a.PreferredDate,
		&a.PreferredWindow,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.DoctorID = doctorID
	return &a, nil
}

const appointmentDetailQuery = `
	SELECT a.id, a.patient_id, a.doctor_id, a.start_time, a.end_time, a.symptom,
	       a.status, a.preferred_date, a.preferred_window, a.created_at, a.updated_at,
	       p.id, p.user_id, p.first_name, p.last_name, p.email, p.phone, p.gender,
	       p.department, p.created_at, p.updated_at,
	       d.id, d.user_id, d.full_name, d.specialty, d.created_at, d.updated_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	LEFT JOIN doctors d ON d.id = a.doctor_id
`

func scanDetail(row pgx.Row) (*AppointmentDetail, error) {
	var det AppointmentDetail
	var apptDoctorID *uuid.UUID
	var p PatientProfile
	var email, phone, gender *string
	var docID, docUserID *uuid.UUID
	var docName, docSpecialty *string
	var docCreated, docUpdated *time.Time

	err := row.Scan(
		&det.ID,
		&det.PatientID,
		&apptDoctorID,
		&det.StartTime,
		&det.EndTime,
		&det.Symptom,
		&det.Status,
		&det.PreferredDate,
		&det.PreferredWindow,
		&det.CreatedAt,
		&det.UpdatedAt,
		&p.ID,
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&email,
		&phone,
		&gender,
		&p.Department,
		&p.CreatedAt,
		&p.UpdatedAt,
		&docID,
		&docUserID,
		&docName,
		&docSpecialty,
		&docCreated,
		&docUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	det.DoctorID = apptDoctorID
	p.Email = email
	p.Phone = phone
	p.Gender = gender
	det.Patient = &p

	if docID != nil {
		d := Doctor{ID: *docID, UserID: docUserID}
		if docName != nil {
			d.FullName = *docName
		}
		if docSpecialty != nil {
			d.Specialty = *docSpecialty
		}
		if docCreated != nil {
			d.CreatedAt = *docCreated
		}
		if docUpdated != nil {
			d.UpdatedAt = *docUpdated
		}
		det.Doctor = &d
	}

	return &det, nil
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		det, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *det)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, full_name, role, enabled, created_at, updated_at
		FROM users
		WHERE username = $1
	`, username)
	return scanUser(row)
}

func (r *PgRepository) CreateUser(ctx context.Context, u User) (*User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, password_hash, full_name, role, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (username) DO NOTHING
		RETURNING id, username, password_hash, full_name, role, enabled, created_at, updated_at
	`, u.ID, u.Username, u.PasswordHash, u.FullName, u.Role, u.Enabled)

	created, err := scanUser(row)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrUsernameTaken
	}
	return created, err
}

func (r *PgRepository) FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, full_name, specialty, created_at, updated_at
		FROM doctors
		WHERE lower(specialty) = lower($1)
	`, specialty)
	if err != nil {
		return nil, err
	}
	return collectDoctors(rows)
}

func (r *PgRepository) FindAllDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, full_name, specialty, created_at, updated_at
		FROM doctors
	`)
	if err != nil {
		return nil, err
	}
	return collectDoctors(rows)
}

func collectDoctors(rows pgx.Rows) ([]Doctor, error) {
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, full_name, specialty, created_at, updated_at
		FROM doctors
		WHERE user_id = $1
	`, userID)
	return scanDoctor(row)
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO doctors (id, user_id, full_name, specialty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, user_id, full_name, specialty, created_at, updated_at
	`, d.ID, d.UserID, d.FullName, d.Specialty)
	return scanDoctor(row)
}

func (r *PgRepository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*PatientProfile, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, first_name, last_name, email, phone, gender, department, created_at, updated_at
		FROM patients
		WHERE user_id = $1
	`, userID)
	return scanProfile(row)
}

// CreateProfile relies on the unique index on patients.user_id: when a
// concurrent booking already inserted a profile for the same user, no row
// comes back and ErrProfileExists is returned instead of a constraint error.
func (r *PgRepository) CreateProfile(ctx context.Context, p PatientProfile) (*PatientProfile, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO patients (id, user_id, first_name, last_name, email, phone, gender, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, first_name, last_name, email, phone, gender, department, created_at, updated_at
	`, p.ID, p.UserID, p.FirstName, p.LastName, p.Email, p.Phone, p.Gender, p.Department)

	created, err := scanProfile(row)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrProfileExists
	}
	return created, err
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, start_time, end_time, symptom, status, preferred_date, preferred_window, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id, patient_id, doctor_id, start_time, end_time, symptom, status, preferred_date, preferred_window, created_at, updated_at
	`, a.ID, a.PatientID, a.DoctorID, a.StartTime, a.EndTime, a.Symptom, a.Status, a.PreferredDate, a.PreferredWindow)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, appointmentDetailQuery+`
		WHERE a.id = $1
	`, id)
	return scanDetail(row)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, appointmentDetailQuery+`
		WHERE a.patient_id = $1
		ORDER BY a.start_time
	`, patientID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, appointmentDetailQuery+`
		WHERE a.doctor_id = $1
		ORDER BY a.start_time
	`, doctorID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func (r *PgRepository) ListAllAppointments(ctx context.Context, limit, offset int) ([]AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, appointmentDetailQuery+`
		ORDER BY a.start_time DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}
