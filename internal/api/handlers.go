package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/medviet/clinic-booking/internal/auth"
	"github.com/medviet/clinic-booking/internal/clinic"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func autoScheduleHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AutoScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if req.Patient.FullName == "" || req.PreferredDate == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "patient.fullName and preferredDate are required")
			return
		}

		// The front end sends preferredDate as ISO 8601; only the calendar
		// date part is meaningful.
		dateStr := req.PreferredDate
		if len(dateStr) > 10 {
			dateStr = dateStr[:10]
		}
		preferredDate, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_preferred_date", "preferredDate must be an ISO 8601 date")
			return
		}

		ident := auth.IdentityFromContext(r.Context())
		if ident == nil {
			writeError(w, http.StatusUnauthorized, "authentication_required", "auto-scheduling requires a signed-in patient")
			return
		}
		if ident.Role != clinic.RolePatient {
			writeError(w, http.StatusForbidden, "patient_role_required", "only patients can auto-schedule appointments")
			return
		}

		appt, err := svc.AutoBook(r.Context(), ident, clinic.BookingRequest{
			FullName:        req.Patient.FullName,
			Email:           req.Patient.Email,
			Phone:           req.Patient.Phone,
			Gender:          req.Patient.Gender,
			Symptom:         req.Symptom,
			PreferredDate:   preferredDate,
			PreferredWindow: req.PreferredWindow,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clinic.ErrIdentityRequired):
		writeError(w, http.StatusUnauthorized, "authentication_required", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func myAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := auth.IdentityFromContext(r.Context())
		if ident == nil {
			writeError(w, http.StatusUnauthorized, "authentication_required", "sign in to list appointments")
			return
		}

		details, err := svc.AppointmentsFor(r.Context(), ident)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, detailResponses(details))
	}
}

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRole(w, r, clinic.RoleAdmin, clinic.RoleNurse) {
			return
		}

		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)

		details, err := svc.ListAppointments(r.Context(), limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, detailResponses(details))
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.IdentityFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "authentication_required", "sign in to view appointments")
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			if errors.Is(err, clinic.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	}
}

func loginHandler(repo clinic.Repository, tm *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		user, err := repo.GetUserByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, clinic.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		if !user.Enabled || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
			return
		}

		token, err := tm.Issue(user)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			Token:    token,
			Username: user.Username,
			FullName: user.FullName,
			Role:     string(user.Role),
		})
	}
}

func createDoctorHandler(repo clinic.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireRole(w, r, clinic.RoleAdmin) {
			return
		}

		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.FullName == "" || req.Specialty == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "full_name and specialty are required")
			return
		}

		doctor := clinic.Doctor{
			FullName:  req.FullName,
			Specialty: req.Specialty,
		}

		err := repo.WithTx(r.Context(), func(txRepo clinic.Repository) error {
			if req.Username != "" {
				hash, err := auth.HashPassword(req.Password)
				if err != nil {
					return err
				}
				user, err := txRepo.CreateUser(r.Context(), clinic.User{
					Username:     req.Username,
					PasswordHash: hash,
					FullName:     req.FullName,
					Role:         clinic.RoleDoctor,
					Enabled:      true,
				})
				if err != nil {
					return err
				}
				doctor.UserID = &user.ID
			}

			created, err := txRepo.CreateDoctor(r.Context(), doctor)
			if err != nil {
				return err
			}
			doctor = *created
			return nil
		})
		if err != nil {
			if errors.Is(err, clinic.ErrUsernameTaken) {
				writeError(w, http.StatusConflict, "username_taken", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, DoctorResponse{
			ID:        doctor.ID,
			FullName:  doctor.FullName,
			Specialty: doctor.Specialty,
		})
	}
}

func requireRole(w http.ResponseWriter, r *http.Request, roles ...clinic.Role) bool {
	ident := auth.IdentityFromContext(r.Context())
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "authentication_required", "sign in first")
		return false
	}
	for _, role := range roles {
		if ident.Role == role {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "insufficient_role", "caller role may not perform this action")
	return false
}

func detailResponses(details []clinic.AppointmentDetail) []AppointmentDetailResponse {
	out := make([]AppointmentDetailResponse, 0, len(details))
	for i := range details {
		out = append(out, toDetailResponse(&details[i]))
	}
	return out
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
