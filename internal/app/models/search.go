package models

// MatchedIn reports which entity a search hit came from.
type MatchedIn string

const (
	MatchedInLocation MatchedIn = "location"
	MatchedInDocument MatchedIn = "document"
	MatchedInBoth     MatchedIn = "both"
)

// SearchResult is one ranked hit. The substring fallback produces the same
// shape with a constant rank and no highlight fragments.
type SearchResult struct {
	ID                   string    `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Description          *string   `json:"description" db:"description"`
	Latitude             float64   `json:"latitude" db:"latitude"`
	Longitude            float64   `json:"longitude" db:"longitude"`
	PreviewImageURL      *string   `json:"preview_image_url" db:"preview_image_url"`
	Rank                 float64   `json:"rank" db:"rank"`
	MatchedIn            MatchedIn `json:"matched_in" db:"matched_in"`
	NameHighlight        *string   `json:"name_highlight,omitempty" db:"name_highlight"`
	DescriptionHighlight *string   `json:"description_highlight,omitempty" db:"description_highlight"`
}
