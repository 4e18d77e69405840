package doctors

import (
	"strconv"
	"strings"

	"github.com/allcures/dashboard/internal/platform/apperr"
)

// MedicineType is one selectable directory filter.
type MedicineType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MedicineTypes is the fixed filter catalog in display order. ID 0 is not
// listed; it means no filter.
var MedicineTypes = []MedicineType{
	{ID: 1, Name: "ayurveda"},
	{ID: 8, Name: "homeopathy"},
	{ID: 3, Name: "persian"},
	{ID: 9, Name: "naturopathy"},
	{ID: 2, Name: "unani"},
	{ID: 4, Name: "chinese"},
}

// ParseMedicineType accepts a catalog name or id. Blank and "all" return 0.
func ParseMedicineType(v string) (int, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "all" || v == "0" {
		return 0, nil
	}
	id, err := strconv.Atoi(v)
	for _, mt := range MedicineTypes {
		if (err == nil && mt.ID == id) || mt.Name == v {
			return mt.ID, nil
		}
	}
	return 0, apperr.Invalid("medType", "unknown medicine type "+v)
}

// MedicineTypeName returns the catalog name for id, or "all" for 0.
func MedicineTypeName(id int) string {
	for _, mt := range MedicineTypes {
		if mt.ID == id {
			return mt.Name
		}
	}
	return "all"
}
