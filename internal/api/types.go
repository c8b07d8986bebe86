package api

// Envelope is the wrapper every API response body arrives in.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Body    T      `json:"body"`
}

// LoginResult is returned by the login step before OTP verification.
type LoginResult struct {
	ID          int    `json:"id"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	OTP         string `json:"otp,omitempty"`
}

// AuthResult is returned after OTP verification.
type AuthResult struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	Image       string `json:"image"`
	Token       string `json:"token"`
}

// Profile represents the signed-in user.
type Profile struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	CountryCode         string `json:"country_code"`
	Image               string `json:"image"`
	NotificationEnabled int    `json:"is_notification"`
}

// Note is a free-text note kept by the user.
type Note struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Category groups products in the catalog.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ShopPrice is one store's price for a product.
type ShopPrice struct {
	ShopID   int     `json:"shop_id"`
	ShopName string  `json:"shop_name"`
	Price    float64 `json:"price"`
}

// Product is a catalog entry with per-shop prices.
type Product struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	CategoryID    int         `json:"category_id"`
	Brand         string      `json:"brand"`
	Image         string      `json:"image"`
	AverageRating float64     `json:"average_rating"`
	RatingCount   int         `json:"rating_count"`
	Prices        []ShopPrice `json:"product_unit_prices"`
}

// LowestPrice returns the cheapest shop price, or false when none is listed.
func (p Product) LowestPrice() (ShopPrice, bool) {
	if len(p.Prices) == 0 {
		return ShopPrice{}, false
	}
	best := p.Prices[0]
	for _, price := range p.Prices[1:] {
		if price.Price < best.Price {
			best = price
		}
	}
	return best, true
}

// Rating is a product review.
type Rating struct {
	ID        int      `json:"id"`
	ProductID int      `json:"product_id"`
	Rating    float64  `json:"rating"`
	Review    string   `json:"review"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at"`
}

// ShoppingItem is one entry of the shopping list.
type ShoppingItem struct {
	ID        int     `json:"id"`
	ProductID int     `json:"product_id"`
	Product   Product `json:"product"`
}

// ShoppingList is the shopping list with per-shop totals.
type ShoppingList struct {
	Items      []ShoppingItem `json:"shopping_list"`
	ShopTotals []ShopPrice    `json:"shop_summary"`
}

// Notification is an in-app notification.
type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    int    `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// Ticket is a support ticket.
type Ticket struct {
	ID          int    `json:"id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// AppVersion reports the client versions the server accepts.
type AppVersion struct {
	MinimumVersion string `json:"minimum_version"`
	LatestVersion  string `json:"latest_version"`
	StoreURL       string `json:"store_url"`
}

// SearchFilters narrows a product search.
type SearchFilters struct {
	CategoryID int     `json:"category_id,omitempty"`
	MinPrice   float64 `json:"min_price,omitempty"`
	MaxPrice   float64 `json:"max_price,omitempty"`
	SortBy     string  `json:"sort_by,omitempty"`
}

// IsZero reports whether no filter is set.
func (f SearchFilters) IsZero() bool {
	return f == SearchFilters{}
}
