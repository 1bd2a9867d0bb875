package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBadVersion is returned when the artifact version is not valid semver.
	ErrBadVersion = errors.New("artifact version is not valid semver")
	// ErrUnsupportedVersion is returned for artifacts from another major format version.
	ErrUnsupportedVersion = errors.New("unsupported artifact major version")
	// ErrShape is returned when vocabulary, idf and coefficients disagree.
	ErrShape = errors.New("inconsistent artifact dimensions")
)

// ArtifactError is returned when a model artifact cannot be loaded.
type ArtifactError struct {
	Path    string
	Version string
	Err     error
}

func (e *ArtifactError) Error() string {
	switch {
	case e.Path != "" && e.Version != "":
		return fmt.Sprintf("model artifact %s (%s): %v", e.Path, e.Version, e.Err)
	case e.Path != "":
		return fmt.Sprintf("model artifact %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("model artifact: %v", e.Err)
	}
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}
