package core

// Instead of implementing full value objects, I'm using some alias types here ...

// TitleIDString represents a catalog title identifier
type TitleIDString = string

// GenreIDString represents a genre identifier
type GenreIDString = string
