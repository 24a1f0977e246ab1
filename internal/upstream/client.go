// Package upstream wraps the remote appointment API consumed by the portal.
// Every call is JSON over HTTP with an optional bearer token; the portal
// never retries, and a non-2xx response surfaces as *APIError carrying the
// server-supplied message when one exists.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carebridge/portal/internal/observability/metrics"
	"github.com/carebridge/portal/pkg/logging"
)

const defaultTimeout = 15 * time.Second

var tracer = otel.Tracer("portal.internal.upstream")

// APIError is a non-2xx response from the appointment API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the upstream API.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// Client is a typed client for the appointment service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.PortalMetrics
}

// NewClient constructs a Client for the given base URL, e.g.
// "https://api.example.com/api/v1".
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger, m *metrics.PortalMetrics) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// Login exchanges credentials for a user and bearer token. Role is
// upper-cased on the wire.
func (c *Client) Login(ctx context.Context, email, password, role string) (User, string, error) {
	body := LoginRequest{Email: email, Password: password, Role: strings.ToUpper(role)}
	var out envelope[authData]
	if err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return User{}, "", err
	}
	return out.Data.User, out.Data.Token, nil
}

// Register creates an account. Role is upper-cased on the wire.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	req.Role = strings.ToUpper(req.Role)
	var out envelope[json.RawMessage]
	return c.doJSON(ctx, "register", http.MethodPost, "/auth/register", "", req, &out)
}

// ListDoctors fetches one page of the doctor directory.
func (c *Client) ListDoctors(ctx context.Context, token string, page, limit int) ([]Doctor, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out envelope[[]Doctor]
	if err := c.doJSON(ctx, "list_doctors", http.MethodGet, "/doctors?"+q.Encode(), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListSpecializations fetches the distinct specialization list. The endpoint
// is unauthenticated.
func (c *Client) ListSpecializations(ctx context.Context) ([]string, error) {
	var out envelope[[]string]
	if err := c.doJSON(ctx, "list_specializations", http.MethodGet, "/specializations", "", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateAppointment books an appointment for the authenticated patient.
func (c *Client) CreateAppointment(ctx context.Context, token string, req CreateAppointmentRequest) error {
	var out envelope[json.RawMessage]
	return c.doJSON(ctx, "create_appointment", http.MethodPost, "/appointments", token, req, &out)
}

// PatientAppointments fetches the authenticated patient's appointments,
// optionally narrowed to one wire status.
func (c *Client) PatientAppointments(ctx context.Context, token, status string) ([]PatientAppointment, error) {
	path := "/appointments/patient"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var out envelope[[]PatientAppointment]
	if err := c.doJSON(ctx, "patient_appointments", http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CancelAppointment cancels one appointment via the dedicated endpoint.
func (c *Client) CancelAppointment(ctx context.Context, token, id string) error {
	path := fmt.Sprintf("/appointments/%s/cancel", url.PathEscape(id))
	var out envelope[json.RawMessage]
	return c.doJSON(ctx, "cancel_appointment", http.MethodPatch, path, token, nil, &out)
}

// DoctorAppointments fetches one page of the authenticated doctor's
// appointments and the total page count.
func (c *Client) DoctorAppointments(ctx context.Context, token string, query DoctorListQuery) ([]DoctorAppointment, int, error) {
	q := url.Values{}
	if query.Status != "" {
		q.Set("status", query.Status)
	}
	if query.Date != "" {
		q.Set("date", query.Date)
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))

	var out envelope[[]DoctorAppointment]
	if err := c.doJSON(ctx, "doctor_appointments", http.MethodGet, "/appointments/doctor?"+q.Encode(), token, nil, &out); err != nil {
		return nil, 0, err
	}
	totalPages := out.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	return out.Data, totalPages, nil
}

// UpdateAppointmentStatus moves one appointment to a new status via the
// generic status endpoint.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, token, id, status string) error {
	body := updateStatusRequest{AppointmentID: id, Status: status}
	var out envelope[json.RawMessage]
	return c.doJSON(ctx, "update_status", http.MethodPatch, "/appointments/update-status", token, body, &out)
}

func (c *Client) doJSON(ctx context.Context, op, method, path, token string, body, out any) error {
	ctx, span := tracer.Start(ctx, "upstream."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("upstream.path", path),
	)

	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(op, "transport_error", time.Since(start))
		span.SetAttributes(attribute.Bool("error", true))
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.ObserveUpstream(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var failed struct {
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(data, &failed); jsonErr == nil && failed.Message != "" {
			apiErr.Message = failed.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Warn("upstream request rejected",
			"op", op,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
