package hotel

import "time"

// MaxCreateImages caps the number of image files accepted by Create.
const MaxCreateImages = 6

// Hotel is one owner listing as stored and returned to clients.
// JSON names follow the browser client contract (`_id`, `userId`, ...).
type Hotel struct {
	ID            string    `json:"_id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	Country       string    `json:"country"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	AdultCount    int       `json:"adultCount"`
	ChildCount    int       `json:"childCount"`
	Facilities    []string  `json:"facilities"`
	PricePerNight float64   `json:"pricePerNight"`
	StarRating    int       `json:"starRating"`
	ImageURLs     []string  `json:"imageUrls"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Clone returns a deep copy so stores never share slices with callers.
func (h *Hotel) Clone() *Hotel {
	if h == nil {
		return nil
	}
	c := *h
	c.Facilities = append([]string(nil), h.Facilities...)
	c.ImageURLs = append([]string(nil), h.ImageURLs...)
	if c.Facilities == nil {
		c.Facilities = []string{}
	}
	if c.ImageURLs == nil {
		c.ImageURLs = []string{}
	}
	return &c
}

// CreateInput is a validated create request. Owner and timestamps are not
// part of it; the service assigns them.
type CreateInput struct {
	Name          string   `json:"name" validate:"required"`
	City          string   `json:"city" validate:"required"`
	Country       string   `json:"country" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Type          string   `json:"type" validate:"required"`
	PricePerNight float64  `json:"pricePerNight" validate:"gte=0"`
	StarRating    int      `json:"starRating" validate:"omitempty,min=1,max=5"`
	AdultCount    int      `json:"adultCount" validate:"gte=0"`
	ChildCount    int      `json:"childCount" validate:"gte=0"`
	Facilities    []string `json:"facilities" validate:"required,min=1,dive,required"`
}

// Patch holds the fields supplied on an update. Nil means "leave unchanged".
type Patch struct {
	Name          *string
	City          *string
	Country       *string
	Description   *string
	Type          *string
	PricePerNight *float64
	StarRating    *int
	AdultCount    *int
	ChildCount    *int
	Facilities    []string

	// RetainedImageURLs are previously hosted images the client keeps. Nil
	// keeps every current image; empty drops them all.
	RetainedImageURLs []string
}

// Update is what the store applies: the patch plus the final image list.
type Update struct {
	Patch
	ImageURLs   []string
	LastUpdated time.Time
}

// Apply mutates h in place with the update's fields.
func (u Update) Apply(h *Hotel) {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.City != nil {
		h.City = *u.City
	}
	if u.Country != nil {
		h.Country = *u.Country
	}
	if u.Description != nil {
		h.Description = *u.Description
	}
	if u.Type != nil {
		h.Type = *u.Type
	}
	if u.PricePerNight != nil {
		h.PricePerNight = *u.PricePerNight
	}
	if u.StarRating != nil {
		h.StarRating = *u.StarRating
	}
	if u.AdultCount != nil {
		h.AdultCount = *u.AdultCount
	}
	if u.ChildCount != nil {
		h.ChildCount = *u.ChildCount
	}
	if u.Facilities != nil {
		h.Facilities = append([]string(nil), u.Facilities...)
	}
	h.ImageURLs = append([]string{}, u.ImageURLs...)
	h.LastUpdated = u.LastUpdated
}
