package doctors

import (
	"github.com/allcures/dashboard/internal/platform/display"
)

func FullName(d Doctor) string {
	return display.JoinNonBlank(" ", d.Prefix, d.FirstName, d.MiddleName, d.LastName)
}

func availability(d Doctor) (string, display.Tone) {
	if d.DocActive.Truthy() {
		return "Available", display.ToneSuccess
	}
	return "Unavailable", display.ToneSecondary
}

func toRow(d Doctor) Row {
	label, tone := availability(d)
	return Row{
		ID:           d.DocID.String(),
		Name:         display.Fallback(FullName(d)),
		Specialty:    display.Fallback(d.SpecialtyName),
		Location:     display.Fallback(display.JoinNonBlank(", ", d.CityName, d.AddressState)),
		Availability: label,
		Tone:         tone,
	}
}

type DetailItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Detail is the full profile of one doctor.
type Detail struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Specialty    string       `json:"specialty"`
	Availability string       `json:"availability"`
	Tone         display.Tone `json:"tone"`
	Items        []DetailItem `json:"items"`
	About        string       `json:"about,omitempty"`
	Degree       string       `json:"degree,omitempty"`
	University   string       `json:"university,omitempty"`
}

func NewDetail(d Doctor) Detail {
	label, tone := availability(d)
	specialty := d.SpecialtyName
	if display.Fallback(specialty) == display.Empty {
		specialty = "Specialty not specified"
	}
	return Detail{
		ID:           d.DocID.String(),
		Name:         FullName(d),
		Specialty:    specialty,
		Availability: label,
		Tone:         tone,
		Items: []DetailItem{
			{"Medicine type", display.Fallback(d.MedicineTypeName)},
			{"Specialty", display.Fallback(d.SpecialtyName)},
			{"Other specializations", display.Fallback(d.OtherSpecializations)},
			{"Fee", formatFee(d.Fee)},
			{"Waiting time", display.Fallback(d.WaitingTime.String())},
			{"Video consultation", videoService(d.VideoService)},
			{"Contact", display.Fallback(d.TelephoneNos.String())},
			{"Email", display.Fallback(d.Email)},
			{"Hospital", display.Fallback(d.HospitalAffiliated)},
			{"Address", display.Fallback(display.JoinNonBlank(", ", d.Address1, d.Address2, d.CityName, d.AddressState, d.AddressCountry))},
			{"Year of graduation", display.Fallback(d.YearOfGraduation.String())},
			{"Joined", display.FormatDate(d.CreatedDate)},
			{"Last updated", display.FormatDate(d.LastUpdatedDate)},
			{"Verified", verified(d.Verified)},
		},
		About:      d.About,
		Degree:     d.DegreeDescription,
		University: d.UniversityName,
	}
}

func formatFee(f Flex) string {
	v, ok := f.Float()
	if !ok {
		return display.Empty
	}
	return display.FormatINR(&v)
}

func videoService(f Flex) string {
	n, ok := f.Int()
	switch {
	case ok && n == 1:
		return "Available"
	case ok && n == 0:
		return "Not available"
	}
	return display.Empty
}

func verified(f Flex) string {
	if n, ok := f.Int(); ok && n == 1 {
		return "Verified"
	}
	return "Not verified"
}
