package catalogapi

// TitleRecord is the wire representation of a catalog title as the remote API returns it.
type TitleRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview"`
	Rating      float64 `json:"rating"`
	ReleaseYear uint    `json:"release_year"`
}

// TitleRecordList is the wire representation of a list of catalog titles.
type TitleRecordList struct {
	Titles []TitleRecord `json:"titles"`
}

// GenreRecord is the wire representation of a catalog genre.
type GenreRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GenreRecordList is the wire representation of the catalog's genre collection.
type GenreRecordList struct {
	Genres []GenreRecord `json:"genres"`
}
