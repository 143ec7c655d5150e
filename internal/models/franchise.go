package models

import "time"

// FranchisePage is a templated landing page for one franchise location.
// The slug is derived from city and state; SEO metadata is generated from
// templates and may be edited afterwards.
type FranchisePage struct {
	ID              string    `db:"id" json:"id"`
	Slug            string    `db:"slug" json:"slug"`
	City            string    `db:"city" json:"city"`
	State           string    `db:"state" json:"state"`
	Title           string    `db:"title" json:"title"`
	MetaDescription string    `db:"meta_description" json:"meta_description"`
	MetaKeywords    string    `db:"meta_keywords" json:"meta_keywords"`
	HeroTitle       string    `db:"hero_title" json:"hero_title"`
	HeroSubtitle    string    `db:"hero_subtitle" json:"hero_subtitle"`
	ContactPhone    string    `db:"contact_phone" json:"contact_phone"`
	ContactEmail    string    `db:"contact_email" json:"contact_email"`
	Address         string    `db:"address" json:"address"`
	Active          bool      `db:"active" json:"active"`
	CreatedBy       string    `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
