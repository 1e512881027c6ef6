package core

import (
	"github.com/google/uuid"
)

// Title represents a single movie title in the catalog.
type Title struct {
	ID          TitleIDString
	Name        string
	Overview    string
	Rating      float64
	ReleaseYear uint
}

// BuildTitle creates a new Title value.
func BuildTitle(
	id uuid.UUID,
	name string,
	overview string,
	rating float64,
	releaseYear uint,
) Title {

	title := Title{
		ID:          id.String(),
		Name:        name,
		Overview:    overview,
		Rating:      rating,
		ReleaseYear: releaseYear,
	}

	return title
}

// TitleList represents an ordered collection of catalog titles.
type TitleList struct {
	Titles []Title
	Count  int
}

// BuildTitleList creates a new TitleList value.
func BuildTitleList(titles []Title) TitleList {
	return TitleList{
		Titles: titles,
		Count:  len(titles),
	}
}

// IsEmpty reports whether the list contains no titles.
func (l TitleList) IsEmpty() bool {
	return l.Count == 0
}
