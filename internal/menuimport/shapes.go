package menuimport

// The external feed has no single stable schema. Shape detection is an
// explicit prioritized list of predicate+extractor pairs so the chosen
// layout is observable in logs instead of buried in a conditional chain.

type shapeDetector struct {
	name    string
	extract func(doc map[string]any) ([]any, bool)
}

var shapeDetectors = []shapeDetector{
	{
		name: "categories",
		extract: func(doc map[string]any) ([]any, bool) {
			return asSlice(doc["categories"])
		},
	},
	{
		name: "menu.categories",
		extract: func(doc map[string]any) ([]any, bool) {
			menu, ok := asMap(doc["menu"])
			if !ok {
				return nil, false
			}
			return asSlice(menu["categories"])
		},
	},
	{
		name: "menu-array",
		extract: func(doc map[string]any) ([]any, bool) {
			return asSlice(doc["menu"])
		},
	},
}

// detectCategories returns the raw category list and the name of the
// detector that matched. First match wins.
func detectCategories(doc map[string]any) ([]any, string) {
	for _, detector := range shapeDetectors {
		if cats, ok := detector.extract(doc); ok {
			return cats, detector.name
		}
	}
	return nil, ""
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// firstSlice returns the first key whose value is an array.
func firstSlice(m map[string]any, keys ...string) ([]any, bool) {
	for _, key := range keys {
		if s, ok := asSlice(m[key]); ok {
			return s, true
		}
	}
	return nil, false
}
