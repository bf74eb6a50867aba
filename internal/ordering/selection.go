package ordering

import (
	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
)

// Selection maps a modifier group id to the chosen option ids for that
// group. The zero value is usable.
type Selection map[string][]string

// Toggle applies one tap on an option and returns the updated selection.
// Groups with MaxSelection == 1 behave like radios: the new option
// replaces whatever was chosen. Multi-select groups toggle the option
// off when already chosen and refuse (no-op) once the cap is reached.
func (s Selection) Toggle(group models.ModifierGroup, optionID string) Selection {
	if s == nil {
		s = Selection{}
	}

	current := s[group.ID]

	if group.MaxSelection == 1 {
		s[group.ID] = []string{optionID}
		return s
	}

	for i, id := range current {
		if id == optionID {
			s[group.ID] = append(append([]string{}, current[:i]...), current[i+1:]...)
			return s
		}
	}

	if group.MaxSelection > 0 && len(current) >= group.MaxSelection {
		return s
	}

	s[group.ID] = append(current, optionID)
	return s
}

// Chosen reports whether the option is currently selected in the group.
func (s Selection) Chosen(groupID, optionID string) bool {
	for _, id := range s[groupID] {
		if id == optionID {
			return true
		}
	}
	return false
}

// Labels resolves the selection to human-readable option names, walking
// the product's groups in catalog order. Ids that do not resolve against
// the product are dropped.
func (s Selection) Labels(product models.Product) []string {
	var labels []string
	for _, group := range product.ModifierGroups {
		for _, optionID := range s[group.ID] {
			if opt := group.FindOption(optionID); opt != nil {
				labels = append(labels, opt.Name)
			}
		}
	}
	return labels
}
