// Package fakeapi is a test double for the CareBridge backend. It speaks
// the response envelope contract and supports scripted failures so retry
// behavior can be exercised deterministically.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server wraps an httptest.Server with per-path call counting and
// scripted failure plans.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	failures map[string]*failPlan
}

type failPlan struct {
	remaining int
	status    int
	body      string
}

// Option customizes a Server before it starts.
type Option func(*Server)

// FailFirst makes the given path answer with the status and body for the
// first n requests, then fall through to the real handler.
func FailFirst(path string, n, status int, body string) Option {
	return func(s *Server) {
		s.failures[path] = &failPlan{remaining: n, status: status, body: body}
	}
}

// New starts a fake backend.
func New(opts ...Option) *Server {
	s := &Server{
		calls:    make(map[string]int),
		failures: make(map[string]*failPlan),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.track)

	r.Post("/v1/auth/login", s.handleLogin)
	r.Post("/v1/auth/register", s.handleLogin)
	r.Post("/v1/auth/logout", s.envelope(nil))
	r.Get("/v1/appointments", s.handleListAppointments)
	r.Post("/v1/appointments", s.handleScheduleAppointment)
	r.Post("/v1/appointments/{id}/reschedule", s.handleReschedule)
	r.Post("/v1/appointments/{id}/cancel", s.envelope(nil))
	r.Post("/v1/appointments/{id}/rate", s.envelope(nil))
	r.Post("/v1/vitals", s.handleRecordVital)
	r.Get("/v1/vitals", s.handleListVitals)
	r.Get("/v1/vitals/{kind}/history", s.handleVitalHistory)
	r.Post("/v1/reports", s.handleUploadReport)
	r.Get("/v1/billing/plans", s.handlePlans)
	r.Post("/v1/messages", s.handleSendMessage)
	r.Get("/v1/messages/{participantId}", s.handleConversation)
	r.Post("/v1/patients/{id}/notes", s.handleAddNote)

	s.Server = httptest.NewServer(r)
	return s
}

// Calls reports how many requests reached the given path, including ones
// answered by a failure plan.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		plan := s.failures[r.URL.Path]
		fail := plan != nil && plan.remaining > 0
		if fail {
			plan.remaining--
		}
		s.mu.Unlock()

		if fail {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(plan.status)
			body := plan.body
			if body == "" {
				body = `{"success":false,"message":"temporary failure"}`
			}
			_, _ = w.Write([]byte(body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// envelope answers with a success envelope wrapping the given payload
// under "data".
func (s *Server) envelope(data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, data)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"status":  true,
		"message": "ok",
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if creds.Password == "wrong-password" {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeEnvelope(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":        "user-1",
			"email":     creds.Email,
			"firstName": "Ada",
			"lastName":  "Osei",
			"userType":  "patient",
			"isBoarded": true,
		},
		"accessToken": "token-user-1",
		"isBoarded":   true,
	})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{
		"appointments": []map[string]any{
			{
				"id":          "appt-1",
				"patientId":   "user-1",
				"caregiverId": "cg-9",
				"type":        "virtual",
				"status":      "scheduled",
				"startsAt":    time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339),
			},
		},
		"total": 1,
	})
}

func (s *Server) handleScheduleAppointment(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	writeEnvelope(w, http.StatusOK, map[string]any{
		"appointment": map[string]any{
			"id":          "appt-42",
			"patientId":   "user-1",
			"caregiverId": req["caregiverId"],
			"type":        req["type"],
			"status":      "scheduled",
			"startsAt":    req["startsAt"],
		},
	})
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartsAt string `json:"startsAt"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeEnvelope(w, http.StatusOK, map[string]any{
		"appointment": map[string]any{
			"id":       chi.URLParam(r, "id"),
			"status":   "scheduled",
			"startsAt": req.StartsAt,
		},
	})
}

func (s *Server) handleRecordVital(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	req["id"] = "vital-7"
	writeEnvelope(w, http.StatusOK, map[string]any{"vital": req})
}

func (s *Server) handleListVitals(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{
		"vitals": []map[string]any{
			{"id": "v-1", "kind": "blood_pressure", "value": 120.0, "secondary": 80.0, "unit": "mmHg"},
			{"id": "v-3", "kind": "heart_rate", "value": 64.0, "unit": "bpm"},
		},
	})
}

func (s *Server) handleVitalHistory(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	writeEnvelope(w, http.StatusOK, map[string]any{
		"histories": map[string]any{
			"total": 2,
			"entries": []map[string]any{
				{"id": "v-1", "kind": kind, "value": 120.0, "unit": "mmHg"},
				{"id": "v-2", "kind": kind, "value": 118.0, "unit": "mmHg"},
			},
		},
	})
}

func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")

	var title, filename string
	var size int64
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "malformed multipart body")
			return
		}
		title = r.FormValue("title")
		if file, header, err := r.FormFile("file"); err == nil {
			filename = header.Filename
			size = header.Size
			_ = file.Close()
		}
	default:
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request")
			return
		}
		title = req.Title
	}

	writeEnvelope(w, http.StatusOK, map[string]any{
		"report": map[string]any{
			"id":        "report-3",
			"title":     title,
			"filename":  filename,
			"sizeBytes": size,
		},
	})
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, map[string]any{
		"plans": []map[string]any{
			{"id": "basic", "name": "Basic", "priceCents": 0, "currency": "USD", "interval": "month"},
			{"id": "family", "name": "Family", "priceCents": 2900, "currency": "USD", "interval": "month"},
		},
	})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	participant := chi.URLParam(r, "participantId")
	writeEnvelope(w, http.StatusOK, map[string]any{
		"conversation": map[string]any{
			"messages": []map[string]any{
				{
					"id":          "msg-1",
					"senderId":    participant,
					"recipientId": "user-1",
					"body":        "See you at the appointment",
					"sentAt":      time.Now().UTC().Format(time.RFC3339),
				},
			},
			"total": 1,
		},
	})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	writeEnvelope(w, http.StatusOK, map[string]any{
		"note": map[string]any{
			"id":        "note-0",
			"authorId":  "user-1",
			"body":      req.Body,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	req["id"] = "msg-5"
	req["sentAt"] = time.Now().UTC().Format(time.RFC3339)
	writeEnvelope(w, http.StatusOK, map[string]any{"message": req})
}
