package assets

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "default"

// DefaultTemplateName is the name of the built-in page template.
const DefaultTemplateName = "page"

// defaultLoader serves the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name (without the .css extension).
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or dots.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// Styles lists the names of the built-in stylesheets.
func Styles() []string {
	return defaultLoader.Styles()
}
