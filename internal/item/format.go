package item

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat wraps every precheck failure.
var ErrInvalidFormat = errors.New("invalid item format")

// MinLines is the smallest item text the precheck accepts.
const MinLines = 4

// FormatResult is the outcome of the structural precheck.
type FormatResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// Err returns nil for valid results and an ErrInvalidFormat wrap otherwise.
func (r FormatResult) Err() error {
	if r.IsValid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidFormat, r.Error)
}

func invalid(format string, args ...any) FormatResult {
	return FormatResult{Error: fmt.Sprintf(format, args...)}
}

// ValidateFormat is a cheap structural check run before parsing: enough
// lines, "Item Class:" followed by "Rarity:", and at least one section
// separator after them.
func ValidateFormat(text string) FormatResult {
	lines := Lines(text)
	if len(lines) < MinLines {
		return invalid("item text is too short: %d lines, need at least %d", len(lines), MinLines)
	}

	classIdx, rarityIdx, sepIdx := -1, -1, -1
	for i, l := range lines {
		switch {
		case classIdx < 0 && strings.HasPrefix(l, labelItemClass):
			classIdx = i
		case rarityIdx < 0 && strings.HasPrefix(l, labelRarity):
			rarityIdx = i
		case sepIdx < 0 && strings.HasPrefix(l, separator) && rarityIdx >= 0:
			sepIdx = i
		}
	}

	switch {
	case classIdx < 0:
		return invalid("missing %q line; copy the item with Ctrl+Alt+C in game", labelItemClass)
	case rarityIdx < 0:
		return invalid("missing %q line", labelRarity)
	case rarityIdx < classIdx:
		return invalid("%q must come before %q", labelItemClass, labelRarity)
	case classIdx != 0:
		return invalid("item text must start with %q", labelItemClass)
	case sepIdx < 0:
		return invalid("missing section separator %q", separator)
	}

	if v := strings.TrimSpace(strings.TrimPrefix(lines[classIdx], labelItemClass)); v == "" {
		return invalid("%q line is empty", labelItemClass)
	}
	return FormatResult{IsValid: true}
}
