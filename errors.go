package tex2html

import "errors"

// Sentinel errors for typesetting operations. Render itself never fails;
// these surface from engines, loaders and browser sessions.
var (
	ErrEngineUnavailable = errors.New("typeset engine unavailable")
	ErrEngineLoad        = errors.New("typeset engine failed to load")
	ErrEngineTimeout     = errors.New("typeset engine load timed out")
	ErrTypeset           = errors.New("typesetting failed")
	ErrBrowserConnect    = errors.New("failed to connect to browser")
	ErrPageCreate        = errors.New("failed to create browser page")
	ErrPageLoad          = errors.New("failed to load page")
	ErrPoolClosed        = errors.New("session pool is closed")
)
