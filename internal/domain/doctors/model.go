package doctors

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Flex holds a scalar the backend sends inconsistently as a string, a
// number or a bool. The literal text is kept; null leaves it unset.
type Flex struct {
	raw string
	set bool
}

func FlexOf(v string) Flex {
	return Flex{raw: v, set: true}
}

func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = Flex{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Flex{raw: s, set: true}
		return nil
	}
	*f = Flex{raw: string(b), set: true}
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return json.Marshal(f.raw)
}

// Valid reports whether a non-null value was received.
func (f Flex) Valid() bool { return f.set }

func (f Flex) String() string { return strings.TrimSpace(f.raw) }

func (f Flex) Int() (int64, bool) {
	if !f.set {
		return 0, false
	}
	n, err := strconv.ParseInt(f.String(), 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(f.String(), 64)
		if ferr != nil {
			return 0, false
		}
		return int64(fl), true
	}
	return n, true
}

func (f Flex) Float() (float64, bool) {
	if !f.set {
		return 0, false
	}
	v, err := strconv.ParseFloat(f.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Truthy treats true, "true" and any non-zero number as true.
func (f Flex) Truthy() bool {
	s := strings.ToLower(f.String())
	if s == "true" {
		return true
	}
	if n, ok := f.Float(); ok {
		return n != 0
	}
	return false
}

// Doctor is one entry of the doctors directory.
type Doctor struct {
	DocID                Flex   `json:"docID"`
	Prefix               string `json:"prefix"`
	FirstName            string `json:"firstName"`
	MiddleName           string `json:"middleName"`
	LastName             string `json:"lastName"`
	SpecialtyName        string `json:"specialtyName"`
	CityName             string `json:"cityName"`
	AddressState         string `json:"addressState"`
	AddressCountry       string `json:"addressCountry"`
	Address1             string `json:"address1"`
	Address2             string `json:"address2"`
	DocActive            Flex   `json:"docActive"`
	About                string `json:"about"`
	DegreeDescription    string `json:"degreeDescription"`
	UniversityName       string `json:"universityName"`
	MedicineTypeName     string `json:"medicineTypeName"`
	OtherSpecializations string `json:"otherSpecializations"`
	Fee                  Flex   `json:"fee"`
	WaitingTime          Flex   `json:"waitingTime"`
	VideoService         Flex   `json:"videoService"`
	TelephoneNos         Flex   `json:"telephoneNos"`
	Email                string `json:"email"`
	HospitalAffiliated   string `json:"hospitalAffiliated"`
	YearOfGraduation     Flex   `json:"yearOfGraduation"`
	CreatedDate          string `json:"createdDate"`
	LastUpdatedDate      string `json:"lastUpdatedDate"`
	Verified             Flex   `json:"verified"`
}

// Page is one page of the directory.
type Page struct {
	Data            []Doctor `json:"data"`
	TotalPagesCount struct {
		TotalPages int `json:"totalPages"`
	} `json:"totalPagesCount"`
}

// MedicineTypeCount is one row of the signed-doctors breakdown.
type MedicineTypeCount struct {
	MedicineTypeName string `json:"medicineTypeName"`
	Total            int64  `json:"total"`
}

// Summary is the network-wide doctors aggregate.
type Summary struct {
	TotalActiveDoctors   int64               `json:"totalActiveDoctors"`
	TotalSignedDoctors   int64               `json:"totalSignedDoctors"`
	SignedByMedicineType []MedicineTypeCount `json:"signedByMedicineType"`
}
