package parser

import (
	"fmt"
	"slices"

	"zonegen/internal/model"
)

// AllZones is the wildcard accepted in source and destination lists.
const AllZones = "*"

// expandZones replaces the wildcard with every declared zone.
func expandZones(names, all []string) []string {
	if !slices.Contains(names, AllZones) {
		return names
	}
	var out []string
	for _, n := range names {
		if n == AllZones {
			out = append(out, all...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func toFamilies(idx int, versions []int) ([]model.Family, error) {
	var families []model.Family
	for _, v := range versions {
		f := model.Family(v)
		if !f.Valid() {
			return nil, &model.InputShapeError{Rule: idx, Field: "families", Reason: fmt.Sprintf("unsupported IP version %d", v)}
		}
		families = append(families, f)
	}
	return families, nil
}

func scalarParams(idx int) error {
	return &model.InputShapeError{Rule: idx, Field: "params", Reason: "must be a list of strings, not a single string"}
}
