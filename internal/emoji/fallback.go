package emoji

// categoryNames maps the supported upstream category slugs to the display
// names the keyboard shows. Slugs outside this map are skipped.
var categoryNames = map[string]string{
	"smileys-emotion": "Faces",
	"people-body":     "People",
	"animals-nature":  "Animals",
	"food-drink":      "Food",
	"travel-places":   "Travel",
	"activities":      "Activities",
	"objects":         "Objects",
	"symbols":         "Symbols",
	"flags":           "Flags",
}

// fallbackOrder fixes the category order when the upstream API is down.
var fallbackOrder = []string{
	"smileys-emotion",
	"people-body",
	"animals-nature",
	"food-drink",
	"travel-places",
	"activities",
	"objects",
	"symbols",
	"flags",
}

// FallbackCategories is the hardcoded category set used when the emoji API
// is unreachable.
func FallbackCategories() []Category {
	categories := make([]Category, 0, len(fallbackOrder))
	for _, slug := range fallbackOrder {
		categories = append(categories, Category{
			Slug:        slug,
			DisplayName: categoryNames[slug],
		})
	}
	return categories
}
