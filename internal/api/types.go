package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/medviet/clinic-booking/internal/clinic"
)

type AutoScheduleRequest struct {
	Patient         PatientInput `json:"patient"`
	Symptom         string       `json:"symptom"`
	PreferredDate   string       `json:"preferredDate"`
	PreferredWindow string       `json:"preferredWindow"`
}

type PatientInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Gender   string `json:"gender,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	DoctorID        *uuid.UUID `json:"doctor_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Symptom         string     `json:"symptom"`
	Status          string     `json:"status"`
	PreferredDate   string     `json:"preferred_date"`
	PreferredWindow string     `json:"preferred_window"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	PatientName string `json:"patient_name,omitempty"`
	DoctorName  string `json:"doctor_name,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type CreateDoctorRequest struct {
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Specialty string    `json:"specialty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Symptom:         a.Symptom,
		Status:          string(a.Status),
		PreferredDate:   a.PreferredDate.Format("2006-01-02"),
		PreferredWindow: a.PreferredWindow,
	}
}

func toDetailResponse(d *clinic.AppointmentDetail) AppointmentDetailResponse {
	resp := AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(&d.Appointment),
	}
	if d.Patient != nil {
		resp.PatientName = d.Patient.FirstName
		if d.Patient.LastName != "" {
			resp.PatientName += " " + d.Patient.LastName
		}
	}
	if d.Doctor != nil {
		resp.DoctorName = d.Doctor.FullName
		resp.Specialty = d.Doctor.Specialty
	}
	return resp
}
