package clinic

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RoleNurse   Role = "NURSE"
	RolePatient Role = "PATIENT"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Identity is the authenticated caller of a request. It is supplied by the
// transport layer and never read from ambient state.
type Identity struct {
	UserID   uuid.UUID
	Username string
	FullName string
	Role     Role
}

type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Doctor struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	FullName  string
	Specialty string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PatientProfile is created lazily, at most once per user.
type PatientProfile struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Gender     *string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	DoctorID        *uuid.UUID
	StartTime       time.Time
	EndTime         time.Time
	Symptom         string
	Status          AppointmentStatus
	PreferredDate   time.Time
	PreferredWindow string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AppointmentDetail struct {
	Appointment
	Patient *PatientProfile
	Doctor  *Doctor
}
