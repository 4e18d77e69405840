package doctors

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/allcures/dashboard/internal/platform/display"
	"github.com/allcures/dashboard/internal/platform/viewstate"
	"github.com/allcures/dashboard/pkg/pagination"
)

const ListErrorMessage = "Unable to load doctors. Please try again."

type Filter struct {
	Page      int `json:"page"`
	MedTypeID int `json:"med_type_id"`
}

// Navigation is a requested change to the directory. nil fields keep their
// current value; a medicine type change returns to page 1.
type Navigation struct {
	Page      *int
	MedTypeID *int
}

// Listing pairs a fetched page with the filter that produced it.
type Listing struct {
	Filter     Filter   `json:"filter"`
	Doctors    []Doctor `json:"doctors"`
	TotalPages int      `json:"total_pages"`
}

// ListView is the view-state controller of the doctors directory. A failed
// fetch keeps the previously shown page.
type ListView struct {
	queries *Queries
	ctrl    *viewstate.Controller[Listing]

	mu     sync.Mutex
	filter Filter
}

func NewListView(queries *Queries, logger zerolog.Logger) *ListView {
	return &ListView{
		queries: queries,
		ctrl: viewstate.New[Listing](viewstate.Options{
			Section:      "doctors",
			ErrorMessage: ListErrorMessage,
			Logger:       logger,
		}),
		filter: Filter{Page: 1},
	}
}

func (v *ListView) Filter() Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Ensure fetches the first page the first time the directory is shown.
func (v *ListView) Ensure(ctx context.Context) {
	if v.ctrl.Snapshot().Status == viewstate.StatusIdle {
		v.load(ctx, v.Filter())
	}
}

func (v *ListView) Refresh(ctx context.Context) {
	v.load(ctx, v.Filter())
}

func (v *ListView) Navigate(ctx context.Context, n Navigation) {
	snap := v.ctrl.Snapshot()

	v.mu.Lock()
	f := v.filter
	if n.MedTypeID != nil && *n.MedTypeID != f.MedTypeID {
		f.MedTypeID = *n.MedTypeID
		f.Page = 1
	}
	if n.Page != nil {
		f.Page = *n.Page
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if snap.HasData && snap.Data.Filter.MedTypeID == f.MedTypeID && f.Page > snap.Data.TotalPages {
		f.Page = snap.Data.TotalPages
	}
	v.filter = f
	v.mu.Unlock()

	v.load(ctx, f)
}

func (v *ListView) load(ctx context.Context, f Filter) {
	v.ctrl.Load(ctx, func(ctx context.Context) (Listing, error) {
		page, err := v.queries.List(ctx, pagination.Offset(f.Page, pagination.DoctorsPageSize), f.MedTypeID)
		if err != nil {
			return Listing{}, err
		}
		total := page.TotalPagesCount.TotalPages
		if total < 1 {
			total = 1
		}
		return Listing{Filter: f, Doctors: page.Data, TotalPages: total}, nil
	})
}

func (v *ListView) Snapshot() viewstate.Snapshot[Listing] {
	return v.ctrl.Snapshot()
}

// Doctor returns the doctor with id from the committed page.
func (v *ListView) Doctor(id string) (Doctor, bool) {
	snap := v.ctrl.Snapshot()
	for _, d := range snap.Data.Doctors {
		if d.DocID.String() == id {
			return d, true
		}
	}
	return Doctor{}, false
}

func (v *ListView) Close() {
	v.ctrl.Close()
}

// Row is one display-ready directory entry.
type Row struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Specialty    string       `json:"specialty"`
	Location     string       `json:"location"`
	Availability string       `json:"availability"`
	Tone         display.Tone `json:"tone"`
}

type ListPresentation struct {
	Status       viewstate.Status    `json:"status"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	MedicineType string              `json:"medicine_type"`
	Rows         []Row               `json:"rows"`
	Pager        pagination.Controls `json:"pager"`
	UpdatedAt    time.Time           `json:"updated_at,omitempty"`
}

func (v *ListView) Present() ListPresentation {
	snap := v.ctrl.Snapshot()
	f := v.Filter()

	totalPages := 1
	rows := []Row{}
	if snap.HasData {
		totalPages = snap.Data.TotalPages
		for _, d := range snap.Data.Doctors {
			rows = append(rows, toRow(d))
		}
	}
	return ListPresentation{
		Status:       snap.Status,
		Loading:      snap.Loading(),
		Error:        snap.Error,
		MedicineType: MedicineTypeName(f.MedTypeID),
		Rows:         rows,
		Pager:        pagination.NewPager(f.Page, totalPages).Controls(),
		UpdatedAt:    snap.UpdatedAt,
	}
}

// Section groups the doctors views owned by one session.
type Section struct {
	List *ListView
}

func NewSection(queries *Queries, logger zerolog.Logger) *Section {
	return &Section{List: NewListView(queries, logger)}
}

func (s *Section) Close() {
	s.List.Close()
}
