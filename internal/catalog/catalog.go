// Package catalog serves the static experience list loaded from config.
package catalog

import (
	"sort"

	"miles/internal/models"
)

type Catalog struct {
	byID   map[int64]models.Experience
	sorted []models.Experience
}

func New(experiences []models.Experience) *Catalog {
	byID := make(map[int64]models.Experience, len(experiences))
	sorted := append([]models.Experience(nil), experiences...)
	for _, exp := range experiences {
		byID[exp.ID] = exp
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	return &Catalog{byID: byID, sorted: sorted}
}

func (c *Catalog) GetExperience(id int64) (*models.Experience, bool) {
	exp, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &exp, true
}

func (c *Catalog) Experiences() []models.Experience {
	return append([]models.Experience(nil), c.sorted...)
}
