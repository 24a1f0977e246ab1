package appointments

import (
	"strconv"

	"github.com/carebridge/portal/internal/upstream"
)

// Appointment is the role-neutral view of one row. Counterparty is the
// doctor when a patient is looking and the patient when a doctor is.
type Appointment struct {
	ID                 string `json:"id"`
	Counterparty       string `json:"counterparty"`
	CounterpartyDetail string `json:"counterparty_detail"`
	CounterpartyPhoto  string `json:"counterparty_photo,omitempty"`
	Date               string `json:"date"` // "2006-01-02"
	Time               string `json:"time"` // "03:04 PM"
	Reason             string `json:"reason"`
	Status             Status `json:"status"`
	BookedAt           string `json:"booked_at"`
}

// Counts are per-status tallies derived from one fetched page only, not the
// whole history; they feed the filter-button badges.
type Counts struct {
	All       int `json:"all"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Page is the rendered slice of the appointment list together with its
// pagination context. It is what the per-session cache stores.
type Page struct {
	Items      []Appointment `json:"items"`
	Number     int           `json:"number"`
	TotalPages int           `json:"total_pages"`
}

// EmptyPage is what a failed fetch renders: no data shown beats possibly
// wrong data shown.
func EmptyPage() Page {
	return Page{Items: []Appointment{}, Number: 1, TotalPages: 1}
}

// FromPatientView maps patient-endpoint rows. Unknown statuses are kept as
// pending-shaped but unparseable values are dropped to the zero Status so
// templates render nothing rather than a wrong action.
func FromPatientView(rows []upstream.PatientAppointment) Page {
	items := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		status, _ := ParseStatus(row.Status)
		items = append(items, Appointment{
			ID:                 row.ID,
			Counterparty:       orDefault(row.Doctor.Name, "Unknown Doctor"),
			CounterpartyDetail: orDefault(row.Doctor.Specialization, "N/A"),
			CounterpartyPhoto:  row.Doctor.PhotoURL,
			Date:               row.Date.Format("2006-01-02"),
			Time:               row.Date.Format("03:04 PM"),
			Reason:             row.Reason,
			Status:             status,
			BookedAt:           row.CreatedAt.Format("2006-01-02"),
		})
	}
	return Page{Items: items, Number: 1, TotalPages: 1}
}

// FromDoctorView maps doctor-endpoint rows plus pagination.
func FromDoctorView(rows []upstream.DoctorAppointment, page, totalPages int) Page {
	items := make([]Appointment, 0, len(rows))
	for _, row := range rows {
		status, _ := ParseStatus(row.Status)
		items = append(items, Appointment{
			ID:                 row.ID,
			Counterparty:       orDefault(row.Patient.Name, "Unknown"),
			CounterpartyDetail: patientDetail(row.Patient.Age, row.Patient.Phone),
			Date:               row.Date.Format("2006-01-02"),
			Time:               row.Date.Format("03:04 PM"),
			Reason:             orDefault(row.Reason, "N/A"),
			Status:             status,
			BookedAt:           row.CreatedAt.Format("2006-01-02"),
		})
	}
	if page < 1 {
		page = 1
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return Page{Items: items, Number: page, TotalPages: totalPages}
}

// Counts tallies the page's items by status.
func (p Page) Counts() Counts {
	c := Counts{All: len(p.Items)}
	for _, item := range p.Items {
		switch item.Status {
		case StatusPending:
			c.Pending++
		case StatusCompleted:
			c.Completed++
		case StatusCancelled:
			c.Cancelled++
		}
	}
	return c
}

// PatchStatus is the optimistic update: it rewrites one row's status in
// place without refetching. Returns false when the id is not on this page.
func (p *Page) PatchStatus(id string, status Status) bool {
	for i := range p.Items {
		if p.Items[i].ID == id {
			p.Items[i].Status = status
			return true
		}
	}
	return false
}

// Find returns the row with the given id.
func (p Page) Find(id string) (Appointment, bool) {
	for _, item := range p.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Appointment{}, false
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func patientDetail(age int, phone string) string {
	if phone == "" {
		phone = "N/A"
	}
	return "Age: " + strconv.Itoa(age) + " • " + phone
}
