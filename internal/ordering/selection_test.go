package ordering

import (
	"testing"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
)

func TestToggleRadioReplacesPriorChoice(t *testing.T) {
	t.Parallel()

	group := models.ModifierGroup{
		ID:           "grp_size",
		MaxSelection: 1,
		Options: []models.ModifierOption{
			{ID: "size_1", Name: "Regular"},
			{ID: "size_2", Name: "Large"},
		},
	}

	sel := Selection{}.Toggle(group, "size_1")
	sel = sel.Toggle(group, "size_2")

	if got := sel["grp_size"]; len(got) != 1 || got[0] != "size_2" {
		t.Fatalf("radio selection = %v, want exactly [size_2]", got)
	}
}

func TestToggleMultiSelectCapIsNoOp(t *testing.T) {
	t.Parallel()

	group := models.ModifierGroup{
		ID:           "grp_sides",
		MaxSelection: 2,
		Options: []models.ModifierOption{
			{ID: "opt_a"}, {ID: "opt_b"}, {ID: "opt_c"},
		},
	}

	sel := Selection{}
	sel = sel.Toggle(group, "opt_a")
	sel = sel.Toggle(group, "opt_b")
	sel = sel.Toggle(group, "opt_c")

	got := sel["grp_sides"]
	if len(got) != 2 || got[0] != "opt_a" || got[1] != "opt_b" {
		t.Fatalf("capped selection = %v, want [opt_a opt_b]", got)
	}
}

func TestToggleMultiSelectDeselects(t *testing.T) {
	t.Parallel()

	group := models.ModifierGroup{ID: "grp", MaxSelection: 3}
	sel := Selection{}
	sel = sel.Toggle(group, "opt_a")
	sel = sel.Toggle(group, "opt_b")
	sel = sel.Toggle(group, "opt_a")

	if got := sel["grp"]; len(got) != 1 || got[0] != "opt_b" {
		t.Fatalf("selection after deselect = %v, want [opt_b]", got)
	}
}

func TestLabelsFollowCatalogOrder(t *testing.T) {
	t.Parallel()

	product := comboProduct()
	sel := Selection{"grp_501": {"opt_2", "opt_1"}}

	labels := sel.Labels(product)
	if len(labels) != 2 || labels[0] != "B" || labels[1] != "A" {
		t.Fatalf("labels = %v, want [B A]", labels)
	}
}

func TestValidateMinSelections(t *testing.T) {
	t.Parallel()

	product := comboProduct()

	if err := ValidateMinSelections(product, Selection{"grp_501": {"opt_1"}}); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	err := ValidateMinSelections(product, nil)
	if err == nil {
		t.Fatal("expected a min-selection violation")
	}
}
