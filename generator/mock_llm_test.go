package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_blog_publisher/workflow"
)

// The mock article must clear the gate at the targets it was built
// for, otherwise offline runs loop to the revision bound every time.
func TestMockLLMArticleMeetsTargets(t *testing.T) {
	mock := MockLLM{TargetWords: 600, MinLinks: 5, MinSections: 4}

	article, err := mock.Complete(context.Background(), BuildInitialPrompt(workflow.DraftRequest{Topic: "t"}, ContentSpec{}))
	require.NoError(t, err)

	m := workflow.AnalyzeContent(article)
	assert.Equal(t, 1, m.H1Count)
	assert.GreaterOrEqual(t, m.H2Count, 4)
	assert.GreaterOrEqual(t, m.LinkCount, 5)
	assert.GreaterOrEqual(t, m.WordCount, 600)
	assert.Zero(t, m.OrphanedHeadings)
}

func TestMockLLMDispatchesBySystemPrompt(t *testing.T) {
	mock := MockLLM{}
	ctx := context.Background()

	meta, err := mock.Complete(ctx, BuildMetadataPrompt("# A\n\nbody", ""))
	require.NoError(t, err)
	assert.Contains(t, meta, `"title"`)

	summary, err := mock.Complete(ctx, BuildResearchPrompt("topic", nil))
	require.NoError(t, err)
	assert.NotContains(t, summary, "#")

	formatted, err := mock.Complete(ctx, BuildFormatterPrompt("# Keep Me\n\nbody"))
	require.NoError(t, err)
	assert.Equal(t, "# Keep Me\n\nbody", formatted)
}

func TestMockResearchProvidesSources(t *testing.T) {
	research, err := MockResearch{}.Research(context.Background(), "topic")
	require.NoError(t, err)
	assert.NotEmpty(t, research.Summary)
	assert.Len(t, research.Sources, 3)
}
