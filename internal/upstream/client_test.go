package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge/portal/pkg/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, 5*time.Second, logging.Default(), nil)
}

func TestLogin_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/auth/login" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Role != "PATIENT" {
			t.Fatalf("role = %s, want upper-cased PATIENT", req.Role)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","name":"Ann","role":"PATIENT"},"token":"tok-1"}}`))
	})

	user, token, err := client.Login(context.Background(), "ann@example.com", "secret1", "patient")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "u1" || user.Name != "Ann" {
		t.Fatalf("user = %+v", user)
	}
	if token != "tok-1" {
		t.Fatalf("token = %s, want tok-1", token)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
	})

	_, _, err := client.Login(context.Background(), "ann@example.com", "wrong", "patient")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if !IsUnauthorized(err) {
		t.Fatal("IsUnauthorized should be true")
	}
}

func TestListDoctors_SendsBearerAndPaging(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("authorization = %q", got)
		}
		if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("limit") != "20" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"d1","name":"Dr. Alice","specialization":"Cardiology"}]}`))
	})

	doctors, err := client.ListDoctors(context.Background(), "tok-1", 1, 20)
	if err != nil {
		t.Fatalf("ListDoctors() error = %v", err)
	}
	if len(doctors) != 1 || doctors[0].Specialization != "Cardiology" {
		t.Fatalf("doctors = %+v", doctors)
	}
}

func TestCancelAppointment_PathAndMethod(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("method = %s, want PATCH", r.Method)
		}
		if r.URL.Path != "/appointments/apt-9/cancel" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	if err := client.CancelAppointment(context.Background(), "tok-1", "apt-9"); err != nil {
		t.Fatalf("CancelAppointment() error = %v", err)
	}
}

func TestUpdateAppointmentStatus_Body(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appointments/update-status" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["appointment_id"] != "apt-9" || body["status"] != "COMPLETED" {
			t.Fatalf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	if err := client.UpdateAppointmentStatus(context.Background(), "tok-1", "apt-9", "COMPLETED"); err != nil {
		t.Fatalf("UpdateAppointmentStatus() error = %v", err)
	}
}

func TestDoctorAppointments_QueryAndTotalPages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "PENDING" || q.Get("date") != "2026-09-01" || q.Get("page") != "2" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"apt-1","patient":{"name":"Bob","age":44,"phone":"555"},"date":"2026-09-01T09:00:00Z","reason":"checkup","status":"pending","createdAt":"2026-08-20T10:00:00Z"}],"totalPages":3}`))
	})

	rows, totalPages, err := client.DoctorAppointments(context.Background(), "tok-1", DoctorListQuery{
		Status: "PENDING",
		Date:   "2026-09-01",
		Page:   2,
	})
	if err != nil {
		t.Fatalf("DoctorAppointments() error = %v", err)
	}
	if totalPages != 3 {
		t.Fatalf("totalPages = %d, want 3", totalPages)
	}
	if len(rows) != 1 || rows[0].Patient.Name != "Bob" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestPatientAppointments_StatusFilter(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "COMPLETE" {
			t.Fatalf("status = %q", r.URL.Query().Get("status"))
		}
		_, _ = w.Write([]byte(`{"data":[{"_id":"apt-2","doctor":{"name":"Dr. Alice","specialization":"Cardiology"},"date":"2026-08-01T09:30:00Z","reason":"follow up on results","status":"COMPLETE","createdAt":"2026-07-20T10:00:00Z"}]}`))
	})

	rows, err := client.PatientAppointments(context.Background(), "tok-1", "COMPLETE")
	if err != nil {
		t.Fatalf("PatientAppointments() error = %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "apt-2" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestDoJSON_GenericMessageFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.ListSpecializations(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("message = %q, want status text fallback", apiErr.Message)
	}
}
