package models

// Category is one entry of the fixed post taxonomy
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Categories is the static category list shown to authors
var Categories = []Category{
	{Slug: "technology", Name: "Technology"},
	{Slug: "design", Name: "Design"},
	{Slug: "business", Name: "Business"},
	{Slug: "lifestyle", Name: "Lifestyle"},
	{Slug: "travel", Name: "Travel"},
	{Slug: "food", Name: "Food"},
	{Slug: "health", Name: "Health"},
	{Slug: "science", Name: "Science"},
	{Slug: "culture", Name: "Culture"},
	{Slug: "sports", Name: "Sports"},
}

// IsValidCategory reports whether slug names a known category
func IsValidCategory(slug string) bool {
	for _, c := range Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&PostLike{},
		&Comment{},
		&Notification{},
		&Announcement{},
	}
}
