package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowProviderRoundTrip(t *testing.T) {
	ctx := WithWorkflowProvider(context.Background(), "post_generate", "openai")
	assert.Equal(t, "post_generate", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
}

func TestWorkflowProviderDefaultsToUnknown(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", WorkflowFromContext(ctx))
	assert.Equal(t, "unknown", ProviderFromContext(ctx))
}

func TestWorkflowProviderEmptyDoesNotOverwrite(t *testing.T) {
	ctx := WithWorkflowProvider(context.Background(), "content_pack_build", "openai")
	ctx = WithWorkflowProvider(ctx, "", "  ")
	assert.Equal(t, "content_pack_build", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
}
