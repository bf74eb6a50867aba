package ordering

import (
	"fmt"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/kioskeats-backend/pkg/errors"
)

// MinSelectionViolation exposes the data returned when a group's minimum
// selection count is not met.
type MinSelectionViolation struct {
	GroupID     string `json:"group_id"`
	GroupName   string `json:"group_name,omitempty"`
	RequiredQty int    `json:"required_qty"`
	SelectedQty int    `json:"selected_qty"`
}

// ValidateMinSelections checks every modifier group's MinSelection
// against the selection. Historically the kiosk treated minimums as
// advisory, so callers gate this behind the enforce-min-selection flag.
func ValidateMinSelections(product models.Product, sel Selection) error {
	var violations []MinSelectionViolation
	for _, group := range product.ModifierGroups {
		if group.MinSelection <= 0 {
			continue
		}
		selected := 0
		for _, optionID := range sel[group.ID] {
			if group.FindOption(optionID) != nil {
				selected++
			}
		}
		if selected < group.MinSelection {
			violations = append(violations, MinSelectionViolation{
				GroupID:     group.ID,
				GroupName:   group.Name,
				RequiredQty: group.MinSelection,
				SelectedQty: selected,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("minimum selection not met for %d group(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
