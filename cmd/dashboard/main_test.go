package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/dashboard"
	"github.com/allcures/dashboard/internal/domain/appointments"
	"github.com/allcures/dashboard/internal/domain/doctors"
	"github.com/allcures/dashboard/internal/domain/ledger"
	"github.com/allcures/dashboard/internal/domain/livemeetings"
	"github.com/allcures/dashboard/internal/platform/apperr"
	"github.com/allcures/dashboard/internal/platform/remote"
	"github.com/allcures/dashboard/internal/platform/session"
)

type stubAuth struct{ err error }

func (s stubAuth) Authenticate(ctx context.Context, creds session.Credentials) error { return s.err }

func TestRunView_RejectedLoginSkipsFetch(t *testing.T) {
	called := false
	err := runView(context.Background(),
		session.Credentials{Email: "ops@allcures.com", Password: "x"},
		stubAuth{err: &apperr.TransportError{StatusCode: http.StatusUnauthorized}},
		dashboard.Queries{}, &bytes.Buffer{}, zerolog.Nop(),
		func(env viewEnv) error {
			called = true
			return nil
		})
	if err == nil || err.Error() != session.MsgInvalidCredentials {
		t.Fatalf("expected %q, got %v", session.MsgInvalidCredentials, err)
	}
	if called {
		t.Error("expected no view to run without a session")
	}
}

func TestRunView_MissingCredentials(t *testing.T) {
	err := runView(context.Background(), session.Credentials{}, stubAuth{},
		dashboard.Queries{}, &bytes.Buffer{}, zerolog.Nop(),
		func(env viewEnv) error { return nil })
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunView_PrintsAppointments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != appointments.PathList {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("startDate") != "2024-05-01" {
			t.Errorf("unexpected query %v", r.URL.Query())
		}
		w.Write([]byte(`{"result": [{"appointmentId": 7, "doctorName": "Dr. Asha Rao", "userName": "Ravi", "appointmentDate": "2024-05-01", "fee": 1500, "isPaid": true, "Status": "Successfully Done"}], "totalPages": 2}`))
	}))
	defer srv.Close()

	client, err := remote.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := dashboard.Queries{
		Appointments: appointments.NewQueries(client),
		Doctors:      doctors.NewQueries(client),
		LiveMeetings: livemeetings.NewQueries(client, ""),
	}

	var out bytes.Buffer
	err = runView(context.Background(), session.Credentials{Email: "ops@allcures.com", Password: "x"}, stubAuth{}, q, &out, zerolog.Nop(),
		func(env viewEnv) error {
			date := "2024-05-01"
			env.workspace.Appointments.List.Navigate(env.ctx, appointments.Navigation{Date: &date})
			return printAppointments(env.out, env.workspace.Appointments.List.Present())
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"DOCTOR", "Dr. Asha Rao", "Paid", "Successfully Done", "Page 1 of 2 (2024-05-01)"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestPrintLiveMeetings_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := printLiveMeetings(&out, livemeetings.Presentation{Empty: livemeetings.EmptyMessage}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != livemeetings.EmptyMessage {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPrintLedger(t *testing.T) {
	l, err := ledger.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	if err := printLedger(&out, l); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "REFERENCE") || !strings.Contains(got, "MONTH") || !strings.Contains(got, "Current revenue ₹") {
		t.Errorf("unexpected output:\n%s", got)
	}
}
