package catalog

import (
	"strconv"
	"strings"
)

// PlaceholderImage is substituted for products saved without an image URL.
const PlaceholderImage = "/assets/images/placeholder.jpg"

type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// Normalize applies the field defaults the admin form contract promises:
// blank image becomes the placeholder, a negative price is clamped to 0.
// The ID and title are left alone; identity is the store's job and the
// facade rejects empty titles before it gets here.
func (p Product) Normalize() Product {
	p.Title = strings.TrimSpace(p.Title)
	p.Category = strings.TrimSpace(p.Category)
	if strings.TrimSpace(p.Image) == "" {
		p.Image = PlaceholderImage
	}
	if p.Price < 0 {
		p.Price = 0
	}
	return p
}

// ParsePrice converts a form price field to a number, falling back to 0
// for anything that does not parse.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
