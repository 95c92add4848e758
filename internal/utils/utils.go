package utils

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knetic/govaluate"
)

var (
	ErrBadExtension     = errors.New("expected file with .bmp filename extension")
	ErrInvalidRatio     = errors.New("ratio must be a number within range of 0.0 to 1.0")
	ErrConflictingPaths = errors.New("output file should be different from input files")
)

// Print a Colored Block in terminal
func ColoredBlock(block string, red int, green int, blue int) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm%s\033[0m", red, green, blue, block)
}

// Reports whether filename ends in ".bmp" (any case)
func IsDotBMP(filename string) bool {
	return len(filename) >= 4 && strings.EqualFold(filename[len(filename)-4:], ".bmp")
}

// Returns ErrBadExtension unless filename is a .bmp file
func CheckBMPExtension(filename string) error {
	if !IsDotBMP(filename) {
		return fmt.Errorf("%w: %q", ErrBadExtension, filename)
	}
	return nil
}

// Returns ErrConflictingPaths if output names the same path as any of the inputs
func CheckDistinctOutput(output string, inputs ...string) error {
	cleaned := filepath.Clean(output)
	for _, input := range inputs {
		if filepath.Clean(input) == cleaned {
			return fmt.Errorf("%w: %q", ErrConflictingPaths, output)
		}
	}
	return nil
}

// Checks that ratio lies in [0, 1]
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRatio, ratio)
	}
	return nil
}

// Parses a blend ratio. Plain numbers ("0.25") and constant arithmetic
// expressions ("1/3", "0.5 * 0.5") are accepted.
func ParseRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidRatio)
	}

	ratio, err := strconv.ParseFloat(s, 64)
	if err != nil {
		ratio, err = evaluateRatio(s)
		if err != nil {
			return 0, err
		}
	}

	if err := ValidateRatio(ratio); err != nil {
		return 0, err
	}
	return ratio, nil
}

// Evaluates a variable-free expression with govaluate (which works in float64)
func evaluateRatio(s string) (float64, error) {
	expression, err := govaluate.NewEvaluableExpression(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number: %v", ErrInvalidRatio, s, err)
	}
	if vars := expression.Vars(); len(vars) > 0 {
		return 0, fmt.Errorf("%w: %q refers to unknown names %v", ErrInvalidRatio, s, vars)
	}

	result, err := expression.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: evaluating %q: %v", ErrInvalidRatio, s, err)
	}

	ratio, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q evaluates to %T, expected a number", ErrInvalidRatio, s, result)
	}
	return ratio, nil
}
