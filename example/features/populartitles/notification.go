package populartitles

import (
	"github.com/AntonStoeckl/outcome-streams-datalayer-go/example/shared/core"
)

// TitleSelected is the one-shot navigation notification published when the
// user picks a title from the list.
type TitleSelected struct {
	TitleID core.TitleIDString
	Name    string
}

// BuildTitleSelected creates a new TitleSelected notification for the given title.
func BuildTitleSelected(title core.Title) TitleSelected {
	return TitleSelected{
		TitleID: title.ID,
		Name:    title.Name,
	}
}
