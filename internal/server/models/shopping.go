package models

// ShoppingItem is one line of an aggregated shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int64
}
