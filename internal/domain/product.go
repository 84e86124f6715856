package domain

import "github.com/shopspring/decimal"

// Product titles in the fixed load catalog.
const (
	ProductSevenDayPass  = "7-Day Pass"
	ProductThirtyDayPass = "30-Day Pass"
	ProductMonthlyPass   = "Monthly Pass"
	ProductDailyPass     = "Daily Pass"
	ProductStoredValue   = "Stored Value"
	ProductTenRidePass   = "10-Ride Pass"
	ProductSingleRide    = "Single Ride Ticket"
)

// DefaultPrice is charged for any product without an explicit price.
var DefaultPrice = decimal.RequireFromString("2.75")

var priceTable = map[string]decimal.Decimal{
	ProductSevenDayPass:  decimal.RequireFromString("25.00"),
	ProductThirtyDayPass: decimal.RequireFromString("85.00"),
	ProductStoredValue:   decimal.RequireFromString("10.00"),
}

// Catalog lists the loadable products in display order.
var Catalog = []string{
	ProductSevenDayPass,
	ProductThirtyDayPass,
	ProductMonthlyPass,
	ProductDailyPass,
	ProductStoredValue,
	ProductTenRidePass,
	ProductSingleRide,
}

// MediaTypes lists the card media a new card can be issued on.
var MediaTypes = []string{
	"CSC",
	"Contactless EMV Card",
	"Single Ride Ticket",
	"Multi Ride Ticket",
}

// CardTypes lists the card types accepted by card registration.
var CardTypes = []string{
	"Account Based Card",
	"Bank Card",
	"Closed Loop Card",
}

// Product is a loadable product with its resolved price.
type Product struct {
	Title string
	Price decimal.Decimal
}

// ResolvePrice returns the price for a product title. Unknown or empty
// titles resolve to DefaultPrice.
func ResolvePrice(title string) decimal.Decimal {
	if price, ok := priceTable[title]; ok {
		return price
	}
	return DefaultPrice
}

// InCatalog reports whether title names a catalog product.
func InCatalog(title string) bool {
	for _, p := range Catalog {
		if p == title {
			return true
		}
	}
	return false
}

// NewProduct returns the catalog product for title with its price resolved.
func NewProduct(title string) Product {
	return Product{Title: title, Price: ResolvePrice(title)}
}

// Products returns every catalog product with its resolved price.
func Products() []Product {
	products := make([]Product, 0, len(Catalog))
	for _, title := range Catalog {
		products = append(products, NewProduct(title))
	}
	return products
}

// FormatMoney renders an amount as "$25.00".
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
