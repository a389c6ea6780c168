package assets

import "errors"

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidAssetName rejects names outside [A-Za-z0-9_-].
	ErrInvalidAssetName = errors.New("invalid asset name")
	ErrInvalidBasePath  = errors.New("invalid asset directory")
	ErrAssetRead        = errors.New("failed to read asset")

	// ErrPathTraversal reports a resolved path outside the asset directory.
	ErrPathTraversal = errors.New("asset path escapes asset directory")
)

// AssetLoader finds page stylesheets and templates by bare name: "minimal"
// means styles/minimal.css and "page" means templates/page.html.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}
