package clinic

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrProfileNotFound     = errors.New("patient profile not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrProfileExists is returned by CreateProfile when another profile for
	// the same user was inserted first. Callers re-fetch and use the winner.
	ErrProfileExists = errors.New("patient profile already exists for user")

	ErrUsernameTaken = errors.New("username already taken")
)

// Repository contains all DB interactions needed by the booking service.
type Repository interface {
	// WithTx runs fn against a repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repository) error) error

	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, u User) (*User, error)

	FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]Doctor, error)
	FindAllDoctors(ctx context.Context) ([]Doctor, error)
	GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	CreateDoctor(ctx context.Context, d Doctor) (*Doctor, error)

	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*PatientProfile, error)
	CreateProfile(ctx context.Context, p PatientProfile) (*PatientProfile, error)

	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]AppointmentDetail, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]AppointmentDetail, error)
	ListAllAppointments(ctx context.Context, limit, offset int) ([]AppointmentDetail, error)
}
