package appointments

import (
	"net/url"
	"strconv"
)

// Appointment is one row of the appointments list as the backend returns it.
type Appointment struct {
	AppointmentID   int64   `json:"appointmentId"`
	DocID           int64   `json:"docId"`
	UserID          int64   `json:"userId"`
	AppointmentDate string  `json:"appointmentDate"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	MeetingLink     *string `json:"meetingLink"`
	IsPaid          *bool   `json:"isPaid"`
	DoctorName      string  `json:"doctorName"`
	UserName        string  `json:"userName"`
	Fee             float64 `json:"fee"`
	Status          string  `json:"Status"`
}

// Page is one page of the appointments list.
type Page struct {
	Result     []Appointment `json:"result"`
	TotalPages int           `json:"totalPages"`
}

// Summary is the pre-computed count returned by the summary and count
// endpoints.
type Summary struct {
	TotalAppointments int64 `json:"totalAppointments"`
}

// Analytics is the aggregate breakdown for a reporting window.
type Analytics struct {
	TotalAppointments    int64 `json:"totalAppointments"`
	SuccessAppointments  int64 `json:"successAppointments"`
	FailedAppointments   int64 `json:"failedAppointments"`
	UpcomingAppointments int64 `json:"upcomingAppointments"`
	PaidAppointments     int64 `json:"paidAppointments"`
	FreeAppointments     int64 `json:"freeAppointments"`
}

// ListParams are the query parameters of the list endpoint. Offset is the
// zero-based page index, not a record offset.
type ListParams struct {
	StartDate string
	Status    *int
	Offset    int
	DocID     *int
}

func (p ListParams) Query() url.Values {
	q := url.Values{
		"startDate": {p.StartDate},
		"offset":    {strconv.Itoa(p.Offset)},
	}
	if p.Status != nil {
		q.Set("status", strconv.Itoa(*p.Status))
	}
	if p.DocID != nil {
		q.Set("docId", strconv.Itoa(*p.DocID))
	}
	return q
}
