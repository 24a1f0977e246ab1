package upstream

import "time"

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Doctor is the directory projection of a bookable doctor.
type Doctor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	PhotoURL       string  `json:"photo_url,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	Experience     string  `json:"experience,omitempty"`
}

// PatientAppointment is the wire shape of GET /appointments/patient rows.
// The patient endpoint keys rows by Mongo-style "_id" and embeds the doctor.
type PatientAppointment struct {
	ID     string `json:"_id"`
	Doctor struct {
		Name           string `json:"name"`
		Specialization string `json:"specialization"`
		PhotoURL       string `json:"photo_url"`
	} `json:"doctor"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// DoctorAppointment is the wire shape of GET /appointments/doctor rows.
type DoctorAppointment struct {
	ID      string `json:"id"`
	Patient struct {
		Name  string `json:"name"`
		Age   int    `json:"age"`
		Phone string `json:"phone"`
	} `json:"patient"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest is the body of POST /auth/login. Role is sent upper-cased.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	PhotoURL       string `json:"photo_url,omitempty"`
}

// CreateAppointmentRequest is the body of POST /appointments. Date is an
// ISO-8601 instant combining the selected calendar date and time slot.
type CreateAppointmentRequest struct {
	DoctorID string    `json:"doctorId"`
	Date     time.Time `json:"date"`
	Reason   string    `json:"reason"`
}

// DoctorListQuery narrows GET /appointments/doctor. Zero values are omitted
// from the query string.
type DoctorListQuery struct {
	Status string
	Date   string // "2006-01-02" calendar date
	Page   int
}

type authData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type envelope[T any] struct {
	Data       T      `json:"data"`
	TotalPages int    `json:"totalPages"`
	Message    string `json:"message"`
}

type updateStatusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}
