// Package document wraps sanitized HTML fragments into standalone HTML5
// pages: it renders the page template and injects the stylesheet.
package document
