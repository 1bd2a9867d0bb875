// Package model runs inference with a pre-trained TF-IDF + logistic regression
// artifact. Training happens elsewhere; this package only loads and applies it.
package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the artifact format major version this build understands.
const SupportedMajor = "v1"

// Artifact is the serialized vectorizer and classifier.
type Artifact struct {
	Version    string     `json:"version"`
	Name       string     `json:"name,omitempty"`
	Vectorizer Vectorizer `json:"vectorizer"`
	Model      Logistic   `json:"model"`

	checksum string
}

// Vectorizer describes a fitted TF-IDF transform.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	NgramMax    int            `json:"ngram_max"`
	SublinearTF bool           `json:"sublinear_tf"`
	StopWords   []string       `json:"stop_words,omitempty"`
}

// Logistic holds fitted logistic regression parameters for the "fake" class.
type Logistic struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Checksum is the SHA-256 of the artifact bytes it was parsed from.
func (a *Artifact) Checksum() string {
	return a.checksum
}

const artifactSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "vectorizer", "model"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "vectorizer": {
      "type": "object",
      "required": ["vocabulary", "idf"],
      "properties": {
        "vocabulary": {
          "type": "object",
          "minProperties": 1,
          "additionalProperties": {"type": "integer", "minimum": 0}
        },
        "idf": {"type": "array", "minItems": 1, "items": {"type": "number"}},
        "ngram_max": {"type": "integer", "minimum": 1, "maximum": 3},
        "sublinear_tf": {"type": "boolean"},
        "stop_words": {"type": "array", "items": {"type": "string"}}
      }
    },
    "model": {
      "type": "object",
      "required": ["coefficients", "intercept"],
      "properties": {
        "coefficients": {"type": "array", "minItems": 1, "items": {"type": "number"}},
        "intercept": {"type": "number"}
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func artifactValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(artifactSchema), &doc); err != nil {
			schemaErr = fmt.Errorf("parse artifact schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const url = "schema://review-model-artifact.json"
		if err := c.AddResource(url, doc); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(url)
	})
	return compiledSchema, schemaErr
}

// LoadFile reads and validates an artifact from disk.
func LoadFile(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Path: path, Err: fmt.Errorf("read artifact: %w", err)}
	}
	art, err := Parse(raw)
	if err != nil {
		var aerr *ArtifactError
		if errors.As(err, &aerr) {
			aerr.Path = path
		}
		return nil, err
	}
	return art, nil
}

// Parse validates raw artifact bytes: schema, version compatibility, then
// structural consistency between vocabulary, idf and coefficients.
func Parse(raw []byte) (*Artifact, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ArtifactError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	validator, err := artifactValidator()
	if err != nil {
		return nil, &ArtifactError{Err: err}
	}
	if err := validator.Validate(doc); err != nil {
		return nil, &ArtifactError{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var art Artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, &ArtifactError{Err: fmt.Errorf("decode artifact: %w", err)}
	}

	art.Version = canonicalVersion(art.Version)
	if !semver.IsValid(art.Version) {
		return nil, &ArtifactError{Version: art.Version, Err: ErrBadVersion}
	}
	if semver.Major(art.Version) != SupportedMajor {
		return nil, &ArtifactError{Version: art.Version, Err: ErrUnsupportedVersion}
	}

	if err := art.checkShape(); err != nil {
		return nil, &ArtifactError{Version: art.Version, Err: err}
	}
	if art.Vectorizer.NgramMax == 0 {
		art.Vectorizer.NgramMax = 1
	}

	sum := sha256.Sum256(raw)
	art.checksum = hex.EncodeToString(sum[:])
	return &art, nil
}

func (a *Artifact) checkShape() error {
	n := len(a.Vectorizer.IDF)
	if len(a.Model.Coefficients) != n {
		return fmt.Errorf("%w: %d coefficients for %d idf weights", ErrShape, len(a.Model.Coefficients), n)
	}
	for term, idx := range a.Vectorizer.Vocabulary {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: term %q maps to index %d outside [0,%d)", ErrShape, term, idx, n)
		}
	}
	return nil
}

func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
