package searchtitles

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// Project maps the raw search result records from the catalog API into the
// domain title list. This is a pure function with no side effects.
func Project(records catalogapi.TitleRecordList) (core.TitleList, error) {
	titles := make([]core.Title, 0, len(records.Titles))

	for _, record := range records.Titles {
		titleID, err := uuid.Parse(record.ID)
		if err != nil {
			return core.TitleList{}, fmt.Errorf("invalid title id %q: %w", record.ID, err)
		}

		titles = append(titles, core.BuildTitle(titleID, record.Name, record.Overview, record.Rating, record.ReleaseYear))
	}

	return core.BuildTitleList(titles), nil
}
