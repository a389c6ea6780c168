package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tex2html "github.com/alnah/go-tex2html"
	"github.com/alnah/go-tex2html/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .tex extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all TeX files to convert.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateTeXExtension(inputPath); err != nil {
			return nil, err
		}
		outPath, err := resolveOutputPath(inputPath, outputDir, "")
		if err != nil {
			return nil, err
		}
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsTeX(path) {
			return nil
		}
		outPath, err := resolveOutputPath(path, outputDir, inputPath)
		if err != nil {
			return err
		}
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the HTML output path for a TeX file.
// A directory input keeps its tree under outputDir; an outputDir ending
// in .html names the file itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) (string, error) {
	name, err := fileutil.ReplaceExt(filepath.Base(inputPath), "html")
	if err != nil {
		return "", err
	}

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name), nil
	}

	if strings.HasSuffix(outputDir, ".html") {
		return outputDir, nil
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), name), nil
		}
	}

	return filepath.Join(outputDir, name), nil
}

// validateTeXExtension checks that the file has a .tex extension.
func validateTeXExtension(path string) error {
	if !fileutil.IsTeX(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > tex2html.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, tex2html.MaxPoolSize)
	}
	return nil
}
