package genrelist

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// Project maps the raw genre records from the catalog API into the domain
// genre list. This is a pure function with no side effects.
func Project(records catalogapi.GenreRecordList) (core.GenreList, error) {
	genres := make([]core.Genre, 0, len(records.Genres))

	for _, record := range records.Genres {
		genreID, err := uuid.Parse(record.ID)
		if err != nil {
			return core.GenreList{}, fmt.Errorf("invalid genre id %q: %w", record.ID, err)
		}

		genres = append(genres, core.BuildGenre(genreID, record.Name))
	}

	return core.BuildGenreList(genres), nil
}
