package workflow

import (
	"fmt"
	"strings"

	"hotel-marketplace-backend/internal/model"
	"hotel-marketplace-backend/internal/parse"
)

// RoomTypeInput is one room category in a submission or edit.
type RoomTypeInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

// ListingInput is the full descriptive content of a listing. Both submit and
// edit take the complete content; edit is a full replace, never a patch.
type ListingInput struct {
	Name        string          `json:"name"`
	City        string          `json:"city"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Price       float64         `json:"price"`
	StarLevel   int             `json:"star_level"`
	Tags        string          `json:"tags"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description"`
	RoomTypes   []RoomTypeInput `json:"roomTypes"`
}

// Validate enforces the submission rules: the listing needs a name, a city,
// an address and at least one room type, and every room type needs a name
// and a positive price.
func (in *ListingInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: hotel name is required", ErrValidation)
	}
	if strings.TrimSpace(in.City) == "" {
		return fmt.Errorf("%w: city is required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	if len(in.RoomTypes) == 0 {
		return fmt.Errorf("%w: at least one room type is required", ErrValidation)
	}
	for i, rt := range in.RoomTypes {
		if strings.TrimSpace(rt.Name) == "" {
			return fmt.Errorf("%w: room type %d is missing a name", ErrValidation, i+1)
		}
		if rt.Price <= 0 {
			return fmt.Errorf("%w: room type %q needs a positive price", ErrValidation, rt.Name)
		}
	}
	return nil
}

// content builds the listing attribute set from the input. Status and
// ownership are not content; the engine sets those.
func (in *ListingInput) content() *model.Listing {
	return &model.Listing{
		Name:        strings.TrimSpace(in.Name),
		City:        strings.TrimSpace(in.City),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		Price:       in.Price,
		StarLevel:   in.StarLevel,
		Tags:        parse.NormalizeTags(in.Tags),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: in.Description,
	}
}

// roomTypes builds the replacement room type rows.
func (in *ListingInput) roomTypes() []model.RoomType {
	rts := make([]model.RoomType, 0, len(in.RoomTypes))
	for _, rt := range in.RoomTypes {
		rts = append(rts, model.RoomType{
			Name:        strings.TrimSpace(rt.Name),
			Price:       rt.Price,
			Description: rt.Description,
			ImageURL:    strings.TrimSpace(rt.ImageURL),
		})
	}
	return rts
}
