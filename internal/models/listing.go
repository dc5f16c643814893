package models

import (
	"gorm.io/gorm"
)

// ListingCategory represents the marketplace vertical of a listing
type ListingCategory string

const (
	CategoryVehicle    ListingCategory = "vehicle"
	CategoryRealEstate ListingCategory = "realestate"
)

// ListingType represents whether a listing is for sale or for rent
type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

// ListingStatus represents the lifecycle state of a listing
type ListingStatus string

const (
	StatusActive ListingStatus = "active"
	StatusSold   ListingStatus = "sold"
	StatusHidden ListingStatus = "hidden"
)

// Seller is the embedded owner summary returned with listing responses
type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Listing represents a classified ad (vehicle or real estate)
type Listing struct {
	ID          string          `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description"`
	Price       int64           `json:"price" gorm:"not null"`
	Currency    string          `json:"currency" gorm:"default:'EUR'"`
	Category    ListingCategory `json:"category" gorm:"not null;index"`
	Type        ListingType     `json:"type" gorm:"not null;default:'sale'"`
	Status      ListingStatus   `json:"status" gorm:"not null;default:'active'"`
	Location    string          `json:"location"`
	Images      string          `json:"images"` // JSON-encoded array of image URLs
	UserID      string          `json:"-" gorm:"column:user_id;index"`
	Seller      Seller          `json:"seller" gorm:"-"`
	gorm.Model
}

// TableName specifies the table name for Listing Model
func (Listing) TableName() string {
	return "listings"
}
