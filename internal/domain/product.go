package domain

import "fmt"

// ProductRef identifies the product whose reviews are fetched.
type ProductRef struct {
	ASIN string
	URL  string
}

// CanonicalURL returns the product page URL, building one from the ASIN when needed.
func (p ProductRef) CanonicalURL() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("https://www.amazon.com/dp/%s", p.ASIN)
}

// ReviewsURL returns the "all reviews" listing for the product.
func (p ProductRef) ReviewsURL() string {
	return fmt.Sprintf("https://www.amazon.com/product-reviews/%s", p.ASIN)
}
