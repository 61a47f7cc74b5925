package store

// Product holds the structured attributes extracted from one product page
type Product struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price,omitempty"`
	DiscountInfo  string   `json:"discount_info,omitempty"`
	RewardPoints  float64  `json:"reward_points,omitempty"`
	ShippingInfo  string   `json:"shipping_info,omitempty"`
	SizeInfo      string   `json:"size_info,omitempty"`
	StockStatus   string   `json:"stock_status,omitempty"`
	Images        []string `json:"images,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	Description   string   `json:"description,omitempty"`
	Features      []string `json:"features,omitempty"`
	ReviewCount   int      `json:"review_count,omitempty"`
	ProductURL    string   `json:"product_url,omitempty"`
}

// Valid reports whether the record is usable downstream.
// Anything without a name or a positive price never leaves extraction.
func (p *Product) Valid() bool {
	return p.Name != "" && p.Price > 0
}
