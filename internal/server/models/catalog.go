package models

type Tag struct {
	ID   int64
	Name string
	Slug string
}

// Ingredient is unique by (Name, MeasurementUnit): the same name with two
// units is two ingredients.
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}
