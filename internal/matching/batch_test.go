package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchProcessor_Run_PreservesItemOrder(t *testing.T) {
	router := NewRouter(DefaultRouterConfig(), nil, nil)
	processor := NewBatchProcessor(router, 3, 5*time.Second)

	base := &MatchRequest{FAQs: testFAQs()}
	items := []BatchItem{
		{Message: "What are your hours?", ExpectedFAQID: "hours"},
		{Message: "xylophone zeppelin quandary"},
		{Message: "how much does it cost", ExpectedFAQID: "pricing"},
		{Message: "when are you open", ExpectedFAQID: "hours"},
	}

	outcomes, err := processor.Run(context.Background(), base, items)
	require.NoError(t, err)
	require.Len(t, outcomes, len(items))

	for i, outcome := range outcomes {
		assert.Equal(t, items[i].Message, outcome.Item.Message)
	}

	assert.True(t, outcomes[0].Hit)
	assert.Equal(t, ResultFallback, outcomes[1].Result.Kind)
	assert.False(t, outcomes[1].Hit)
	assert.True(t, outcomes[2].Hit)
	assert.True(t, outcomes[3].Hit)
}

func TestBatchProcessor_Run_EmptyItems(t *testing.T) {
	router := NewRouter(DefaultRouterConfig(), nil, nil)
	processor := NewBatchProcessor(router, 3, time.Second)

	outcomes, err := processor.Run(context.Background(), &MatchRequest{FAQs: testFAQs()}, nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestBatchProcessor_Run_MissedExpectation(t *testing.T) {
	router := NewRouter(DefaultRouterConfig(), nil, nil)
	processor := NewBatchProcessor(router, 2, time.Second)

	base := &MatchRequest{FAQs: testFAQs()}
	items := []BatchItem{
		{Message: "What are your hours?", ExpectedFAQID: "pricing"},
	}

	outcomes, err := processor.Run(context.Background(), base, items)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, ResultFAQ, outcomes[0].Result.Kind)
	assert.Equal(t, "hours", outcomes[0].Result.FAQID)
	assert.False(t, outcomes[0].Hit)
}

func TestBatchProcessor_Run_MoreItemsThanWorkers(t *testing.T) {
	router := NewRouter(DefaultRouterConfig(), nil, nil)
	processor := NewBatchProcessor(router, 2, 5*time.Second)

	base := &MatchRequest{FAQs: testFAQs()}
	items := make([]BatchItem, 20)
	for i := range items {
		items[i] = BatchItem{Message: "when are you open", ExpectedFAQID: "hours"}
	}

	outcomes, err := processor.Run(context.Background(), base, items)
	require.NoError(t, err)
	require.Len(t, outcomes, 20)

	for _, outcome := range outcomes {
		assert.True(t, outcome.Hit)
	}
}
