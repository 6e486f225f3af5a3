package clinic

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/medviet/clinic-booking/internal/specialty"
)

// ErrIdentityRequired rejects a booking with no authenticated caller. It is
// the only client-caused failure AutoBook surfaces.
var ErrIdentityRequired = errors.New("authenticated identity required")

// BookingRequest carries the patient-supplied fields of an auto-schedule
// call. Contact fields are optional and only used when a profile has to be
// created.
type BookingRequest struct {
	FullName        string
	Email           string
	Phone           string
	Gender          string
	Symptom         string
	PreferredDate   time.Time
	PreferredWindow string
}

// Service implements automatic appointment scheduling: classify the symptom,
// resolve the caller's patient profile, pick a doctor, resolve the slot and
// persist a pending appointment.
type Service struct {
	repo       Repository
	classifier specialty.Classifier
}

func NewService(repo Repository, classifier specialty.Classifier) *Service {
	return &Service{
		repo:       repo,
		classifier: classifier,
	}
}

// AutoBook creates a pending appointment for ident. Profile creation and
// appointment insertion share one transaction; a failure in either leaves
// nothing behind. The returned appointment may carry no doctor when the
// directory is empty — intake is never blocked by missing coverage.
func (s *Service) AutoBook(ctx context.Context, ident *Identity, req BookingRequest) (*Appointment, error) {
	label, err := s.classifier.Classify(ctx, req.Symptom)
	if err != nil {
		// The classifier chain degrades internally; an error here means
		// even the fallback failed, which keyword rules never do.
		log.Printf("specialty classification failed, using %s: %v", specialty.GeneralMedicine, err)
		label = specialty.GeneralMedicine
	}

	if ident == nil || ident.UserID == uuid.Nil {
		return nil, ErrIdentityRequired
	}

	var created *Appointment

	err = s.repo.WithTx(ctx, func(repo Repository) error {
		profile, err := resolveProfile(ctx, repo, ident, req, label)
		if err != nil {
			return err
		}

		doctor, err := selectDoctor(ctx, repo, label)
		if err != nil {
			return err
		}

		start, end := ResolveSlot(req.PreferredDate, req.PreferredWindow)

		appt := Appointment{
			ID:              uuid.New(),
			PatientID:       profile.ID,
			StartTime:       start,
			EndTime:         end,
			Symptom:         req.Symptom,
			Status:          StatusPending,
			PreferredDate:   req.PreferredDate,
			PreferredWindow: req.PreferredWindow,
		}
		if doctor != nil {
			appt.DoctorID = &doctor.ID
		}

		created, err = repo.CreateAppointment(ctx, appt)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// resolveProfile returns the existing profile for ident or creates one on
// first use. A lost race against a concurrent first booking surfaces as
// ErrProfileExists from the store and resolves to the winner's row.
func resolveProfile(ctx context.Context, repo Repository, ident *Identity, req BookingRequest, department string) (*PatientProfile, error) {
	profile, err := repo.GetProfileByUserID(ctx, ident.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("load patient profile: %w", err)
	}

	fullName := ident.FullName
	if strings.TrimSpace(fullName) == "" {
		fullName = req.FullName
	}
	first, last := splitFullName(fullName)

	created, err := repo.CreateProfile(ctx, PatientProfile{
		ID:         uuid.New(),
		UserID:     ident.UserID,
		FirstName:  first,
		LastName:   last,
		Email:      optional(req.Email),
		Phone:      optional(req.Phone),
		Gender:     optional(req.Gender),
		Department: department,
	})
	if err != nil {
		if errors.Is(err, ErrProfileExists) {
			return repo.GetProfileByUserID(ctx, ident.UserID)
		}
		return nil, fmt.Errorf("create patient profile: %w", err)
	}

	return created, nil
}

// selectDoctor widens the candidate pool in three tiers: exact specialty,
// general medicine, then the whole directory. The pick within the winning
// pool is uniform random to spread load across a specialty's doctors. A nil
// doctor with nil error means the directory is empty.
func selectDoctor(ctx context.Context, repo Repository, label string) (*Doctor, error) {
	pools := []func() ([]Doctor, error){
		func() ([]Doctor, error) { return repo.FindDoctorsBySpecialty(ctx, label) },
		func() ([]Doctor, error) { return repo.FindDoctorsBySpecialty(ctx, specialty.GeneralMedicine) },
		func() ([]Doctor, error) { return repo.FindAllDoctors(ctx) },
	}

	for _, query := range pools {
		doctors, err := query()
		if err != nil {
			return nil, fmt.Errorf("load doctors: %w", err)
		}
		if len(doctors) > 0 {
			return &doctors[rand.Intn(len(doctors))], nil
		}
	}

	return nil, nil
}

// splitFullName cuts a display name on its first whitespace run into at most
// two parts, each possibly empty.
func splitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}

	i := strings.IndexFunc(full, unicode.IsSpace)
	if i < 0 {
		return full, ""
	}

	return full[:i], strings.TrimLeftFunc(full[i:], unicode.IsSpace)
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Read-side operations used by the listing endpoints.

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

// AppointmentsFor returns the appointments visible to ident: own bookings
// for patients, assigned bookings for doctors, everything for admin and
// nurse roles. A caller with no profile or doctor record sees an empty list.
func (s *Service) AppointmentsFor(ctx context.Context, ident *Identity) ([]AppointmentDetail, error) {
	if ident == nil {
		return nil, ErrIdentityRequired
	}

	switch ident.Role {
	case RoleDoctor:
		doctor, err := s.repo.GetDoctorByUserID(ctx, ident.UserID)
		if err != nil {
			if errors.Is(err, ErrDoctorNotFound) {
				return []AppointmentDetail{}, nil
			}
			return nil, fmt.Errorf("load doctor: %w", err)
		}
		return s.repo.ListAppointmentsByDoctor(ctx, doctor.ID)

	case RolePatient:
		profile, err := s.repo.GetProfileByUserID(ctx, ident.UserID)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				return []AppointmentDetail{}, nil
			}
			return nil, fmt.Errorf("load patient profile: %w", err)
		}
		return s.repo.ListAppointmentsByPatient(ctx, profile.ID)

	default:
		return s.ListAppointments(ctx, 0, 0)
	}
}

func (s *Service) ListAppointments(ctx context.Context, limit, offset int) ([]AppointmentDetail, error) {
	if limit <= 0 {
		limit = 50 // default
	}
	if limit > 200 {
		limit = 200 // max
	}
	if offset < 0 {
		offset = 0
	}

	appointments, err := s.repo.ListAllAppointments(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}
