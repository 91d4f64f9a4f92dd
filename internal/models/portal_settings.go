package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PortalFeatures struct {
	CustomerRegistration bool `json:"customerRegistration" bson:"customerRegistration"`
	ProductReviews       bool `json:"productReviews" bson:"productReviews"`
	Wishlist             bool `json:"wishlist" bson:"wishlist"`
}

type PortalSettings struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Logo            *string            `json:"logo" bson:"logo"`
	PrimaryColor    string             `json:"primaryColor" bson:"primaryColor"`
	SecondaryColor  string             `json:"secondaryColor" bson:"secondaryColor"`
	FontFamily      string             `json:"fontFamily" bson:"fontFamily"`
	CustomHTMLBlock string             `json:"customHtmlBlock" bson:"customHtmlBlock"`
	PortalName      string             `json:"portalName" bson:"portalName"`
	ContactEmail    string             `json:"contactEmail" bson:"contactEmail"`
	Features        PortalFeatures     `json:"features" bson:"features"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DefaultPortalSettings devuelve la configuración de fábrica
func DefaultPortalSettings() PortalSettings {
	return PortalSettings{
		PrimaryColor:   "#667eea",
		SecondaryColor: "#764ba2",
		FontFamily:     "Inter, -apple-system, BlinkMacSystemFont, sans-serif",
		PortalName:     "E-Commerce Portal",
		ContactEmail:   "support@example.com",
		Features: PortalFeatures{
			CustomerRegistration: true,
		},
	}
}

type PortalFeaturesUpdate struct {
	CustomerRegistration *bool `json:"customerRegistration"`
	ProductReviews       *bool `json:"productReviews"`
	Wishlist             *bool `json:"wishlist"`
}

type PortalSettingsUpdate struct {
	Logo            *string               `json:"logo"`
	PrimaryColor    *string               `json:"primaryColor"`
	SecondaryColor  *string               `json:"secondaryColor"`
	FontFamily      *string               `json:"fontFamily"`
	CustomHTMLBlock *string               `json:"customHtmlBlock"`
	PortalName      *string               `json:"portalName"`
	ContactEmail    *string               `json:"contactEmail" binding:"omitempty,email"`
	Features        *PortalFeaturesUpdate `json:"features"`
}

// Apply copia los campos presentes; features se mezcla clave a clave
func (u PortalSettingsUpdate) Apply(s *PortalSettings) {
	if u.Logo != nil {
		s.Logo = u.Logo
	}
	if u.PrimaryColor != nil {
		s.PrimaryColor = *u.PrimaryColor
	}
	if u.SecondaryColor != nil {
		s.SecondaryColor = *u.SecondaryColor
	}
	if u.FontFamily != nil {
		s.FontFamily = *u.FontFamily
	}
	if u.CustomHTMLBlock != nil {
		s.CustomHTMLBlock = *u.CustomHTMLBlock
	}
	if u.PortalName != nil {
		s.PortalName = *u.PortalName
	}
	if u.ContactEmail != nil {
		s.ContactEmail = *u.ContactEmail
	}
	if f := u.Features; f != nil {
		if f.CustomerRegistration != nil {
			s.Features.CustomerRegistration = *f.CustomerRegistration
		}
		if f.ProductReviews != nil {
			s.Features.ProductReviews = *f.ProductReviews
		}
		if f.Wishlist != nil {
			s.Features.Wishlist = *f.Wishlist
		}
	}
}
