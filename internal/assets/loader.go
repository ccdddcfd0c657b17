package assets

// Names of the embedded assets.
const (
	LaTeXHeader = "latex-header.tex"
	DeckHeader  = "deck-header.html"
)

// AssetLoader defines the contract for loading assets by file name.
type AssetLoader interface {
	// Load returns the content of the named asset.
	// Returns ErrAssetNotFound if the asset doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	Load(name string) (string, error)
}
