package models

import "time"

// Location is a point of interest placed on the shared map.
type Location struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     *string   `json:"description" db:"description"`
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	PreviewImageURL *string   `json:"preview_image_url" db:"preview_image_url"`
	CreatedBy       *string   `json:"created_by" db:"created_by"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
	IsActive        bool      `json:"is_active" db:"is_active"`
}

// LocationImage is an image exclusively owned by a location.
type LocationImage struct {
	ID           string    `json:"id" db:"id"`
	LocationID   string    `json:"location_id" db:"location_id"`
	StoragePath  string    `json:"storage_path" db:"storage_path"`
	FileName     string    `json:"file_name" db:"file_name"`
	FileSize     *int64    `json:"file_size" db:"file_size"`
	MimeType     *string   `json:"mime_type" db:"mime_type"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedBy    *string   `json:"created_by" db:"created_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ExtractionStatus tracks text extraction progress for a document.
type ExtractionStatus string

const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
)

// LocationDocument is a document exclusively owned by a location.
type LocationDocument struct {
	ID               string           `json:"id" db:"id"`
	LocationID       string           `json:"location_id" db:"location_id"`
	StoragePath      string           `json:"storage_path" db:"storage_path"`
	FileName         string           `json:"file_name" db:"file_name"`
	FileSize         *int64           `json:"file_size" db:"file_size"`
	MimeType         *string          `json:"mime_type" db:"mime_type"`
	ExtractionStatus ExtractionStatus `json:"extraction_status" db:"extraction_status"`
	CreatedBy        *string          `json:"created_by" db:"created_by"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// LocationWithFiles bundles a location with its owned files.
type LocationWithFiles struct {
	Location
	Images    []LocationImage    `json:"images"`
	Documents []LocationDocument `json:"documents"`
}

// LocationFormData is the payload for creating or amending a location,
// either directly or through an edit suggestion.
type LocationFormData struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// LocationUpdate carries a partial update; nil fields are left untouched.
type LocationUpdate struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	PreviewImageURL *string  `json:"preview_image_url,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u LocationUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Latitude == nil &&
		u.Longitude == nil && u.PreviewImageURL == nil
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapBounds describes a map viewport rectangle.
type MapBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}
