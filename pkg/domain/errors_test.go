package domain_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("node 3: %w", domain.ErrUnknownTypeTag), "unknown_type_tag"},
		{fmt.Errorf("position: %w", domain.ErrMalformedJSON), "malformed_json"},
		{fmt.Errorf("cube.obj: %w", domain.ErrConstruction), "construction_error"},
		{fmt.Errorf("rename: %w", domain.ErrIOFailure), "io_failure"},
		{domain.ErrDocumentNotFound, "io_failure"},
		{domain.ErrMarkedError, "marked_error"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Classify(tt.err))
	}
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) { calls = append(calls, "a:"+e.Command) },
	}
	b := domain.LifecycleHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) { calls = append(calls, "b:"+e.Command) },
		OnCommit:  func(_ context.Context, e *domain.CommitEvent) { calls = append(calls, "commit") },
	}

	merged := a.Merge(b)
	merged.OnCommand(context.Background(), &domain.CommandEvent{Command: "create"})
	merged.OnCommit(context.Background(), &domain.CommitEvent{})

	assert.Equal(t, []string{"a:create", "b:create", "commit"}, calls)
	assert.Nil(t, merged.OnSave)
}
