package menuimport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/kioskeats-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

const (
	unnamedCategory = "Unnamed Category"
	unnamedItem     = "Unnamed Item"
	unnamedOption   = "Option"

	// legacyMultiselectMax mirrors the old boolean allow_multiselect
	// flag, which effectively meant "unbounded".
	legacyMultiselectMax = 100

	// flatGroupMax caps groups synthesized from flat option lists; the
	// feed carries no bound for them.
	flatGroupMax = 10
)

// Result is the canonical catalog produced from one external document.
// Warnings collects per-entry degradations; they never abort the pass.
type Result struct {
	Categories []models.Category
	Products   []models.Product
	Detector   string
	Warnings   error
}

// NormalizeBytes decodes a raw JSON document and normalizes it. Invalid
// JSON yields an empty catalog with a warning, never an error.
func NormalizeBytes(raw []byte) Result {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Result{Warnings: fmt.Errorf("decoding menu document: %w", err)}
	}
	return Normalize(doc)
}

// Normalize converts a loosely-structured external menu document into
// canonical categories and products. Unrecognized shapes produce an
// empty catalog; malformed entries degrade field-by-field to defaults.
func Normalize(doc map[string]any) Result {
	result := Result{}
	if doc == nil {
		return result
	}

	rawCategories, detector := detectCategories(doc)
	result.Detector = detector
	if len(rawCategories) == 0 {
		return result
	}

	for catIndex, rawCat := range rawCategories {
		cat, ok := asMap(rawCat)
		if !ok || cat == nil {
			continue
		}

		catID := "cat_" + categoryID(cat, catIndex)
		result.Categories = append(result.Categories, models.Category{
			ID:   catID,
			Name: stringField(cat, "name", unnamedCategory),
		})

		items, ok := firstSlice(cat, "items", "products")
		if !ok {
			continue
		}

		for itemIndex, rawItem := range items {
			item, ok := asMap(rawItem)
			if !ok || item == nil {
				continue
			}
			product, warns := normalizeItem(item, catID, itemIndex)
			result.Products = append(result.Products, product)
			result.Warnings = multierr.Append(result.Warnings, warns)
		}
	}

	return result
}

func categoryID(cat map[string]any, index int) string {
	if id := idString(cat["id"]); id != "" {
		return id
	}
	return deriveID("c", "root", index, stringField(cat, "name", unnamedCategory))[2:]
}

func normalizeItem(item map[string]any, catID string, itemIndex int) (models.Product, error) {
	var warnings error

	rawID := idString(item["id"])
	if rawID == "" {
		rawID = deriveID("i", catID, itemIndex, stringField(item, "name", unnamedItem))[2:]
		warnings = multierr.Append(warnings, fmt.Errorf("item %d in %s: missing id, derived one", itemIndex, catID))
	}

	name := stringField(item, "name", unnamedItem)
	basePrice := priceField(item, "price")

	var groups []models.ModifierGroup

	// Sizes override the base price: the customer must pick one.
	if sizes, ok := asSlice(item["sizes"]); ok && len(sizes) > 0 {
		basePrice = decimal.Zero
		groups = append(groups, sizeGroup(rawID, sizes))
	}

	if optionGroups, ok := firstSlice(item, "option_groups", "groups"); ok && len(optionGroups) > 0 {
		for groupIndex, rawGroup := range optionGroups {
			group, ok := asMap(rawGroup)
			if !ok {
				continue
			}
			mapped, ok := optionGroup(group, rawID, groupIndex)
			if !ok {
				warnings = multierr.Append(warnings, fmt.Errorf("item %s: dropped option group %d with no options", rawID, groupIndex))
				continue
			}
			groups = append(groups, mapped)
		}
	} else if flat, ok := asSlice(item["options"]); ok && len(flat) > 0 {
		groups = append(groups, flatOptionGroups(rawID, flat)...)
	}

	imageURL := stringField(item, "image_url", "")
	if imageURL == "" {
		imageURL = fallbackImageURL(name, rawID)
	}

	product := models.Product{
		ID:          "prod_" + rawID,
		Name:        name,
		Price:       basePrice,
		Description: stringField(item, "description", ""),
		CategoryID:  catID,
		ImageURL:    imageURL,
	}
	if len(groups) > 0 {
		product.ModifierGroups = groups
	}
	return product, warnings
}

func sizeGroup(itemID string, sizes []any) models.ModifierGroup {
	group := models.ModifierGroup{
		ID:           "grp_size_" + itemID,
		Name:         "Size",
		MinSelection: 1,
		MaxSelection: 1,
	}
	for sizeIndex, rawSize := range sizes {
		size, ok := asMap(rawSize)
		if !ok {
			continue
		}
		id := idString(size["id"])
		if id == "" {
			id = deriveID("s", itemID, sizeIndex, stringField(size, "name", unnamedOption))[2:]
		}
		group.Options = append(group.Options, models.ModifierOption{
			ID:    "size_" + id,
			Name:  stringField(size, "name", unnamedOption),
			Price: priceField(size, "price"),
		})
	}
	return group
}

func optionGroup(group map[string]any, itemID string, groupIndex int) (models.ModifierGroup, bool) {
	minSel, ok := firstIntField(group, "min_selection", "min_choice", "force_min")
	if !ok {
		minSel = 0
	}

	maxSel, ok := firstIntField(group, "max_selection", "max_choice", "force_max")
	if !ok {
		maxSel = 1
		if !hasAnyKey(group, "max_selection", "max_choice", "force_max") && boolField(group, "allow_multiselect") {
			maxSel = legacyMultiselectMax
		}
	}

	rawOptions, _ := firstSlice(group, "option_items", "options")
	options := mapOptions(rawOptions, itemID, groupIndex)
	if len(options) == 0 {
		return models.ModifierGroup{}, false
	}

	groupName := stringField(group, "name", "Options")
	id := idString(group["id"])
	if id == "" {
		return models.ModifierGroup{
			ID:           deriveID("grp", itemID, groupIndex, groupName),
			Name:         groupName,
			MinSelection: minSel,
			MaxSelection: maxSel,
			Options:      options,
		}, true
	}
	return models.ModifierGroup{
		ID:           "grp_" + id,
		Name:         groupName,
		MinSelection: minSel,
		MaxSelection: maxSel,
		Options:      options,
	}, true
}

func mapOptions(rawOptions []any, parentID string, groupIndex int) []models.ModifierOption {
	var options []models.ModifierOption
	for optIndex, rawOpt := range rawOptions {
		opt, ok := asMap(rawOpt)
		if !ok {
			continue
		}
		id := idString(opt["id"])
		if id == "" {
			id = deriveID("o", fmt.Sprintf("%s/%d", parentID, groupIndex), optIndex, stringField(opt, "name", unnamedOption))[2:]
		}
		options = append(options, models.ModifierOption{
			ID:    "opt_" + id,
			Name:  stringField(opt, "name", unnamedOption),
			Price: priceField(opt, "price"),
		})
	}
	return options
}

// flatOptionGroups handles the order-payload shape: a flat options array
// where entries may carry a group_name. Entries sharing a group_name
// become one group; the rest are bucketed under "Extras".
func flatOptionGroups(itemID string, flat []any) []models.ModifierGroup {
	grouped := map[string][]map[string]any{}
	var order []string
	var ungrouped []map[string]any

	for _, rawOpt := range flat {
		opt, ok := asMap(rawOpt)
		if !ok {
			continue
		}
		groupName := stringField(opt, "group_name", "")
		if groupName == "" {
			ungrouped = append(ungrouped, opt)
			continue
		}
		if _, seen := grouped[groupName]; !seen {
			order = append(order, groupName)
		}
		grouped[groupName] = append(grouped[groupName], opt)
	}

	var groups []models.ModifierGroup
	for groupIndex, groupName := range order {
		groups = append(groups, models.ModifierGroup{
			ID:           flatGroupID(itemID, groupName, groupIndex),
			Name:         groupName,
			MinSelection: 0,
			MaxSelection: flatGroupMax,
			Options:      flatOptions(grouped[groupName], itemID, groupIndex),
		})
	}

	if len(ungrouped) > 0 {
		groups = append(groups, models.ModifierGroup{
			ID:           deriveID("grp_extras", itemID, len(order), "Extras"),
			Name:         "Extras",
			MinSelection: 0,
			MaxSelection: len(ungrouped),
			Options:      flatOptions(ungrouped, itemID, len(order)),
		})
	}

	return groups
}

func flatOptions(opts []map[string]any, itemID string, groupIndex int) []models.ModifierOption {
	var mapped []models.ModifierOption
	for optIndex, opt := range opts {
		id := idString(opt["id"])
		if id == "" {
			id = deriveID("o", fmt.Sprintf("%s/flat%d", itemID, groupIndex), optIndex, stringField(opt, "name", unnamedOption))[2:]
		}
		mapped = append(mapped, models.ModifierOption{
			ID:    "opt_" + id,
			Name:  stringField(opt, "name", unnamedOption),
			Price: priceField(opt, "price"),
		})
	}
	return mapped
}

// fallbackImageURL synthesizes a placeholder keyed by the first word of
// the item name so missing images still render something relevant.
func fallbackImageURL(name, rawID string) string {
	keyword := "food"
	if fields := strings.Fields(name); len(fields) > 0 {
		keyword = fields[0]
	}
	return fmt.Sprintf("https://loremflickr.com/600/400/%s?random=%s", url.QueryEscape(keyword), rawID)
}
