package searchtitles

// Query represents the intent to search the catalog for matching titles.
type Query struct {
	SearchText string
}

// BuildQuery creates a new Query for the given search text.
func BuildQuery(searchText string) Query {
	return Query{
		SearchText: searchText,
	}
}
