package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Mask replaces a value entirely.
func Mask(string) string { return "***" }

// StripDirs keeps only the file name of an asset reference, dropping local directories.
func StripDirs(v string) string {
	if v == "" {
		return v
	}
	return filepath.Base(filepath.ToSlash(v))
}

type redactionMiddleware struct {
	ports.DocumentStore
	patterns []*regexp.Regexp
	redact   func(string) string
}

// NewRedactionMiddleware rewrites the string values of every element field whose key
// matches one of the patterns before the document is written, at any depth of the tree.
// A nil redact masks the value. Reads are untouched.
func NewRedactionMiddleware(patternStrings []string, redact func(string) string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	if redact == nil {
		redact = Mask
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &redactionMiddleware{DocumentStore: next, patterns: patterns, redact: redact}
	}
}

func (m *redactionMiddleware) Write(ctx context.Context, path string, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("redaction needs a JSON document: %w: %v", domain.ErrIOFailure, err)
	}

	// Decoding produced a fresh copy, so the caller's bytes are never touched.
	m.walk(doc)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode redacted document: %w: %v", domain.ErrIOFailure, err)
	}
	return m.DocumentStore.Write(ctx, path, bytes.TrimRight(buf.Bytes(), "\n"))
}

func (m *redactionMiddleware) walk(v any) {
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			m.walk(item)
		}
	case map[string]any:
		for k, val := range v {
			if s, ok := val.(string); ok && m.matches(k) {
				v[k] = m.redact(s)
				continue
			}
			m.walk(val)
		}
	}
}

func (m *redactionMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
