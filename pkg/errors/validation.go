package errors

import (
	"regexp"
	"unicode"
)

// ValidateName validates a dependency or package name for safety.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
//
// Cargo-specific validation is done by [ValidateCrateName].
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}

	return nil
}

// crateNameRegex matches valid crates.io package names.
var crateNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidateCrateName validates a crates.io package name.
func ValidateCrateName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if !crateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid crate name: %q", name)
	}

	return nil
}

// featureNameRegex matches feature names cargo accepts in a features array,
// including the "dep:" and "crate/feature" forms.
var featureNameRegex = regexp.MustCompile(`^(dep:)?[a-zA-Z0-9_][a-zA-Z0-9_+.-]*(\??/[a-zA-Z0-9_][a-zA-Z0-9_+.-]*)?$`)

// ValidateFeatureName validates a feature flag name before it is written
// into a manifest.
func ValidateFeatureName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if !featureNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid feature name: %q", name)
	}

	return nil
}
