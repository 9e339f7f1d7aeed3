package domain

import "time"

// Team is a municipal support group. Exactly one team per deployment is
// the fallback: it implicitly matches every category and district and can
// never be deleted.
type Team struct {
	ID          string
	Name        string
	Description string
	IsFallback  bool
	CategoryIDs []string
	DistrictIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Matches reports whether the team explicitly covers the given category
// and district. The fallback team never matches explicitly.
func (t *Team) Matches(categoryID, districtID string) bool {
	if t.IsFallback {
		return false
	}
	return contains(t.CategoryIDs, categoryID) && contains(t.DistrictIDs, districtID)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
