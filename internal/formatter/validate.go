package formatter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation failure kinds.
var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrMalformedRow = errors.New("row does not have 4 columns")
	ErrMissingField = errors.New("artist or title is empty")
	ErrInvalidYear  = errors.New("year must be a 4 digit number")
	ErrInvalidURL   = errors.New("invalid track URL")
)

var yearPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ValidationError reports the first line that broke the playlist file contract.
// Line is 1-based and zero for [ErrEmptyFile].
type ValidationError struct {
	Kind error
	Line int
}

func (e *ValidationError) Error() string {
	if e.Line == 0 {
		return e.Kind.Error()
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Kind)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// Validate checks text against the playlist file contract and returns the first violation.
//
// Lines are split like [Decode] but no header is skipped.
func Validate(text string) error {
	lines := splitLines(text)
	if len(lines) == 0 {
		return &ValidationError{Kind: ErrEmptyFile}
	}

	for i, l := range lines {
		if err := validateLine(l); err != nil {
			return &ValidationError{Kind: err, Line: i + 1}
		}
	}
	return nil
}

func validateLine(line string) error {
	cols := strings.Split(line, "\t")
	if len(cols) < 4 {
		return ErrMalformedRow
	}

	artist, title, year, url := cols[0], cols[1], cols[2], cols[3]
	switch {
	case artist == "" || title == "":
		return ErrMissingField
	case !yearPattern.MatchString(year):
		return ErrInvalidYear
	case url != "" && !IsTrackURL(url):
		return ErrInvalidURL
	}
	return nil
}
