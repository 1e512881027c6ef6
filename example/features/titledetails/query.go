package titledetails

import (
	"github.com/google/uuid"
)

// Query represents the intent to load the details of one catalog title.
type Query struct {
	TitleID uuid.UUID
}

// BuildQuery creates a new Query for the given title ID.
func BuildQuery(titleID uuid.UUID) Query {
	return Query{
		TitleID: titleID,
	}
}
