package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"discord-analyzer/models"
)

// ExportScan writes scan to path as indented JSON.
func ExportScan(path string, scan *models.Scan) error {
	return writeJSON(path, scan)
}

// ImportScan reads a scan written by ExportScan. A scan written by a build
// with another scan version fails with a *models.VersionError.
func ImportScan(path string) (*models.Scan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scan: %w", err)
	}
	return decodeScan(data)
}

// ExportAnalysis writes a to path as indented JSON.
func ExportAnalysis(path string, a *models.Analysis) error {
	return writeJSON(path, a)
}

// ImportAnalysis reads an analysis written by ExportAnalysis.
func ImportAnalysis(path string) (*models.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	return decodeAnalysis(data)
}

func decodeScan(data []byte) (*models.Scan, error) {
	var scan models.Scan
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}
	if err := scan.CheckVersion(); err != nil {
		return nil, fmt.Errorf("decode scan: %w", err)
	}
	return &scan, nil
}

func decodeAnalysis(data []byte) (*models.Analysis, error) {
	var a models.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if err := a.CheckVersion(); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

// writeJSON replaces path atomically so a crash never leaves half a file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
