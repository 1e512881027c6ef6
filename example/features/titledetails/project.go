package titledetails

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/shell/catalogapi"
)

// Project maps a raw title record from the catalog API into the domain title.
// This is a pure function with no side effects.
func Project(record catalogapi.TitleRecord) (core.Title, error) {
	titleID, err := uuid.Parse(record.ID)
	if err != nil {
		return core.Title{}, fmt.Errorf("invalid title id %q: %w", record.ID, err)
	}

	return core.BuildTitle(titleID, record.Name, record.Overview, record.Rating, record.ReleaseYear), nil
}
