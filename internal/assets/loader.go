package assets

// StyleLoader loads CSS stylesheets by name.
type StyleLoader interface {
	// LoadStyle returns the CSS for name (without the .css extension).
	// Returns ErrStyleNotFound if the style does not exist and
	// ErrInvalidAssetName if the name is not a bare identifier.
	LoadStyle(name string) (string, error)

	// Styles lists the available style names in lexical order.
	Styles() []string
}
