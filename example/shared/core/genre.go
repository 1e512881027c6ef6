package core

import (
	"github.com/google/uuid"
)

// Genre represents a catalog genre used to group titles.
type Genre struct {
	ID   GenreIDString
	Name string
}

// BuildGenre creates a new Genre value.
func BuildGenre(id uuid.UUID, name string) Genre {
	return Genre{
		ID:   id.String(),
		Name: name,
	}
}

// GenreList represents the collection of genres known to the catalog.
type GenreList struct {
	Genres []Genre
	Count  int
}

// BuildGenreList creates a new GenreList value.
func BuildGenreList(genres []Genre) GenreList {
	return GenreList{
		Genres: genres,
		Count:  len(genres),
	}
}

// IsEmpty reports whether the list contains no genres.
func (l GenreList) IsEmpty() bool {
	return l.Count == 0
}
