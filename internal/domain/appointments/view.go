package appointments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/daterange"
	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/viewstate"
	"github.com/allcures/dashboard/pkg/pagination"
)

const (
	ListErrorMessage  = "Unable to load appointments. Please try again."
	CountErrorMessage = "Unable to load the appointment count. Please try again."
)

// Filter is the set of parameters the list is currently showing.
type Filter struct {
	Date   string `json:"date"`
	Page   int    `json:"page"`
	Status *int   `json:"status,omitempty"`
	DocID  *int   `json:"doc_id,omitempty"`
}

func (f Filter) sameQuery(o Filter) bool {
	return f.Date == o.Date && eqInt(f.Status, o.Status) && eqInt(f.DocID, o.DocID)
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Navigation is a user intent against the list. Date and Page are relative:
// nil keeps the current value. Status and DocID are absolute: nil removes
// the filter. Any change other than Page sends the list back to page 1.
type Navigation struct {
	Date   *string
	Page   *int
	Status *int
	DocID  *int
}

// Listing pairs a fetched page with the filter that produced it.
type Listing struct {
	Filter Filter `json:"filter"`
	Page   Page   `json:"page"`
}

// ListView is the view-state controller of the appointments table.
type ListView struct {
	queries *Queries
	ctrl    *viewstate.Controller[Listing]

	mu     sync.Mutex
	filter Filter
	// totalPages outlives a failed fetch so the pager keeps its place.
	totalPages int
}

func NewListView(queries *Queries, logger zerolog.Logger) *ListView {
	return &ListView{
		queries: queries,
		ctrl: viewstate.New[Listing](viewstate.Options{
			Section:      "appointments",
			ErrorMessage: ListErrorMessage,
			ClearOnError: true,
			Logger:       logger,
		}),
		filter:     Filter{Date: daterange.Today(), Page: 1},
		totalPages: 1,
	}
}

// Filter returns the most recently requested filter.
func (v *ListView) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Ensure performs the initial fetch the first time the view is shown.
func (v *ListView) Ensure(ctx context.Context) {
	if v.ctrl.Snapshot().Status == viewstate.StatusIdle {
		v.load(ctx, v.Filter())
	}
}

// Refresh re-fetches the current filter.
func (v *ListView) Refresh(ctx context.Context) {
	v.load(ctx, v.Filter())
}

// Navigate applies n and fetches the resulting page.
func (v *ListView) Navigate(ctx context.Context, n Navigation) {
	snap := v.ctrl.Snapshot()

	v.mu.Lock()
	f := v.filter
	if n.Date != nil {
		date := strings.TrimSpace(*n.Date)
		if date == "" {
			date = daterange.Today()
		}
		if date != f.Date {
			f.Date = date
			f.Page = 1
		}
	}
	if !eqInt(n.Status, f.Status) || !eqInt(n.DocID, f.DocID) {
		f.Status = n.Status
		f.DocID = n.DocID
		f.Page = 1
	}
	if n.Page != nil {
		f.Page = *n.Page
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if snap.HasData && snap.Data.Filter.sameQuery(f) && f.Page > snap.Data.Page.TotalPages {
		f.Page = snap.Data.Page.TotalPages
	}
	v.filter = f
	v.mu.Unlock()

	v.load(ctx, f)
}

func (v *ListView) load(ctx context.Context, f Filter) {
	snap := v.ctrl.Load(ctx, func(ctx context.Context) (Listing, error) {
		page, err := v.queries.List(ctx, ListParams{
			StartDate: f.Date,
			Status:    f.Status,
			Offset:    pagination.PageIndex(f.Page),
			DocID:     f.DocID,
		})
		if err != nil {
			return Listing{}, err
		}
		if page.TotalPages < 1 {
			page.TotalPages = 1
		}
		return Listing{Filter: f, Page: page}, nil
	})
	if snap.HasData {
		v.mu.Lock()
		v.totalPages = snap.Data.Page.TotalPages
		v.mu.Unlock()
	}
}

// Snapshot exposes the raw controller state.
func (v *ListView) Snapshot() viewstate.Snapshot[Listing] {
	return v.ctrl.Snapshot()
}

func (v *ListView) Close() {
	v.ctrl.Close()
}

// Row is one display-ready appointment.
type Row struct {
	ID        int64        `json:"id"`
	DoctorID  int64        `json:"doctor_id"`
	PatientID int64        `json:"patient_id"`
	Doctor    string       `json:"doctor"`
	Patient   string       `json:"patient"`
	Date      string       `json:"date"`
	Time      string       `json:"time"`
	Fee       string       `json:"fee"`
	Payment   string       `json:"payment"`
	Status    string       `json:"status"`
	Tone      display.Tone `json:"tone"`
}

// ListPresentation is what the appointments table renders.
type ListPresentation struct {
	Status    viewstate.Status    `json:"status"`
	Loading   bool                `json:"loading"`
	Error     string              `json:"error,omitempty"`
	Date      string              `json:"date"`
	Rows      []Row               `json:"rows"`
	Pager     pagination.Controls `json:"pager"`
	UpdatedAt time.Time           `json:"updated_at,omitempty"`
}

// Present derives the table from the latest committed page.
func (v *ListView) Present() ListPresentation {
	snap := v.ctrl.Snapshot()

	v.mu.Lock()
	f := v.filter
	totalPages := v.totalPages
	v.mu.Unlock()

	rows := []Row{}
	if snap.HasData {
		for _, a := range snap.Data.Page.Result {
			rows = append(rows, toRow(a))
		}
	}

	return ListPresentation{
		Status:    snap.Status,
		Loading:   snap.Loading(),
		Error:     snap.Error,
		Date:      f.Date,
		Rows:      rows,
		Pager:     pagination.NewPager(f.Page, totalPages).Controls(),
		UpdatedAt: snap.UpdatedAt,
	}
}

func toRow(a Appointment) Row {
	fee := a.Fee
	payment := display.Empty
	if a.IsPaid != nil {
		payment = "Unpaid"
		if *a.IsPaid {
			payment = "Paid"
		}
	}
	return Row{
		ID:        a.AppointmentID,
		DoctorID:  a.DocID,
		PatientID: a.UserID,
		Doctor:    display.Fallback(a.DoctorName),
		Patient:   display.Fallback(a.UserName),
		Date:      display.FormatDate(a.AppointmentDate),
		Time:      display.Fallback(display.JoinNonBlank(" - ", a.StartTime, a.EndTime)),
		Fee:       display.FormatINR(&fee),
		Payment:   payment,
		Status:    display.Fallback(a.Status),
		Tone:      StatusTones.For(a.Status),
	}
}

// Count is the number of appointments in a range.
type Count struct {
	Range daterange.Range `json:"range"`
	Total int64           `json:"total"`
}

// CountView counts appointments in a user-selected range. The range is
// validated before any request is made.
type CountView struct {
	queries *Queries
	ctrl    *viewstate.Controller[Count]
}

func NewCountView(queries *Queries, logger zerolog.Logger) *CountView {
	return &CountView{
		queries: queries,
		ctrl: viewstate.New[Count](viewstate.Options{
			Section:      "appointments.count",
			ErrorMessage: CountErrorMessage,
			ClearOnError: true,
			Logger:       logger,
		}),
	}
}

func (v *CountView) Count(ctx context.Context, r daterange.Range) viewstate.Snapshot[Count] {
	if err := r.Validate(); err != nil {
		v.ctrl.Reject(err)
		return v.ctrl.Snapshot()
	}
	return v.ctrl.Load(ctx, func(ctx context.Context) (Count, error) {
		s, err := v.queries.Count(ctx, r)
		if err != nil {
			return Count{}, err
		}
		return Count{Range: r, Total: s.TotalAppointments}, nil
	})
}

func (v *CountView) Snapshot() viewstate.Snapshot[Count] {
	return v.ctrl.Snapshot()
}

func (v *CountView) Close() {
	v.ctrl.Close()
}

// Section groups the appointment views owned by one session.
type Section struct {
	List  *ListView
	Count *CountView
}

func NewSection(queries *Queries, logger zerolog.Logger) *Section {
	return &Section{
		List:  NewListView(queries, logger),
		Count: NewCountView(queries, logger),
	}
}

func (s *Section) Close() {
	s.List.Close()
	s.Count.Close()
}
