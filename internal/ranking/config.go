package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrNegativeWeight is returned when a calibration file contains a negative weight.
var ErrNegativeWeight = errors.New("ranking weights must not be negative")

// FieldWeights defines how much a term match in each article field is worth.
type FieldWeights struct {
	Title       int `json:"title"`       // Weight for a title match (default: 5)
	Description int `json:"description"` // Weight for a description match (default: 2)
	Content     int `json:"content"`     // Weight for a content match (default: 1)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string       `json:"version"` // Config version for future compatibility
	Weights FieldWeights `json:"weights"` // Field weight overrides
}

// DefaultWeights returns the default field weights.
// Title matches dominate, descriptions count for less and body content least.
func DefaultWeights() *FieldWeights {
	return &FieldWeights{
		Title:       5,
		Description: 2,
		Content:     1,
	}
}

// Validate checks that no weight is negative.
func (w *FieldWeights) Validate() error {
	if w.Title < 0 || w.Description < 0 || w.Content < 0 {
		return fmt.Errorf("%w: title=%d description=%d content=%d",
			ErrNegativeWeight, w.Title, w.Description, w.Content)
	}
	return nil
}

// LoadCalibration loads field weights from a JSON calibration file.
// Partial configurations are merged with defaults.
// On error, returns default weights together with the error.
func LoadCalibration(filePath string) (*FieldWeights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	if err := config.Weights.Validate(); err != nil {
		slog.Warn("invalid calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), err
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights onto base weights.
// Only non-zero override values are applied.
func MergeCalibration(base *FieldWeights, override *FieldWeights) *FieldWeights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	if override == nil {
		return &result
	}

	if override.Title != 0 {
		result.Title = override.Title
	}
	if override.Description != 0 {
		result.Description = override.Description
	}
	if override.Content != 0 {
		result.Content = override.Content
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *FieldWeights, loaded *FieldWeights) {
	var overrides []string

	if loaded.Title != defaults.Title {
		overrides = append(overrides, fmt.Sprintf("title: %d -> %d", defaults.Title, loaded.Title))
	}
	if loaded.Description != defaults.Description {
		overrides = append(overrides, fmt.Sprintf("description: %d -> %d", defaults.Description, loaded.Description))
	}
	if loaded.Content != defaults.Content {
		overrides = append(overrides, fmt.Sprintf("content: %d -> %d", defaults.Content, loaded.Content))
	}

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
