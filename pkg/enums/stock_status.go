package enums

// StockStatus is derived from the current quantity and thresholds.
type StockStatus string

const (
	StockStatusAvailable    StockStatus = "available"
	StockStatusLowStock     StockStatus = "low_stock"
	StockStatusOutOfStock   StockStatus = "out_of_stock"
	StockStatusDiscontinued StockStatus = "discontinued"
)

var validStockStatuses = []StockStatus{
	StockStatusAvailable,
	StockStatusLowStock,
	StockStatusOutOfStock,
	StockStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
