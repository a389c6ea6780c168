package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/assets"
	"github.com/alnah/go-tex2html/internal/config"
	"github.com/alnah/go-tex2html/internal/document"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unexpected", errors.New("boom"), ExitGeneral},

		{"browser connect", tex2html.ErrBrowserConnect, ExitBrowser},
		{"page create", tex2html.ErrPageCreate, ExitBrowser},
		{"page load", tex2html.ErrPageLoad, ExitBrowser},
		{"engine load", tex2html.ErrEngineLoad, ExitBrowser},
		{"engine timeout", tex2html.ErrEngineTimeout, ExitBrowser},
		{"typeset", tex2html.ErrTypeset, ExitBrowser},

		{"not exist", os.ErrNotExist, ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read tex", ErrReadTeX, ExitIO},
		{"read css", ErrReadCSS, ExitIO},
		{"write html", ErrWriteHTML, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"asset read", assets.ErrAssetRead, ExitIO},

		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"template not found", assets.ErrTemplateNotFound, ExitUsage},
		{"path traversal", assets.ErrPathTraversal, ExitUsage},
		{"template parse", document.ErrTemplateParse, ExitUsage},
		{"extension", ErrInvalidExtension, ExitUsage},
		{"workers", ErrInvalidWorkerCount, ExitUsage},
		{"timeout", ErrInvalidTimeout, ExitUsage},
		{"command", ErrUnknownCommand, ExitUsage},

		{"wrapped", fmt.Errorf("discovering files: %w", ErrInvalidExtension), ExitUsage},
		{"double wrapped", fmt.Errorf("a: %w", fmt.Errorf("b: %w", tex2html.ErrEngineTimeout)), ExitBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
