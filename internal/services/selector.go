package services

import (
	"cmp"
	"slices"

	"consistai-backend/internal/models"
)

// SelectTopResponse returns the highest-accuracy item. Ties keep input order.
// The input slice is not reordered.
func SelectTopResponse(items []models.RankedResponseItem) (models.RankedResponseItem, bool) {
	if len(items) == 0 {
		return models.RankedResponseItem{}, false
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b models.RankedResponseItem) int {
		return cmp.Compare(b.Accuracy, a.Accuracy)
	})
	return sorted[0], true
}
