package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"insightrag-be/internal/config"
	"insightrag-be/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{
			Environment:    "test",
			LogFilePath:    filepath.Join(dir, "app.log"),
			LLMLogFilePath: filepath.Join(dir, "llm.log"),
		},
		Rag: config.RagConfig{
			ChunkSize:     500,
			TopK:          3,
			QuestionLimit: 7,
			SessionTTL:    15 * time.Minute,
			PurgeSchedule: "@every 1m",
			IndexWorkers:  2,
		},
		Ai: config.AIConfig{
			EmbeddingProvider:  "hash",
			EmbeddingCacheSize: 16,
			EmbeddingCacheTTL:  time.Minute,
			LLMProvider:        "ollama",
			LLMBaseURL:         "http://127.0.0.1:1",
			LLMMaxTokens:       300,
			LLMTemperature:     0.7,
		},
	}
}

func TestNewContainer_WiresSessionFlow(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.SessionController)
	assert.NotNil(t, c.Scheduler)

	created, err := c.SessionService.CreateSession(context.Background(), "doc.txt", []byte("Some text to index."))
	require.NoError(t, err)

	// the backend is unreachable, so the answer degrades but the turn is recorded
	ans, err := c.SessionService.Ask(context.Background(), created.Id, &dto.AskRequest{Question: "What?"})
	require.NoError(t, err)
	assert.True(t, ans.Degraded)
	assert.Equal(t, 1, ans.QuestionCount)
}

func TestNewContainer_RejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Ai.LLMProvider = "nope"

	_, err := NewContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewContainer_ClosesPartialWiringOnError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Rag.PurgeSchedule = "every now and then"

	released := false
	c := &Container{closers: []func(){func() { released = true }}}

	_, err := newContainer(context.Background(), cfg, c)
	require.Error(t, err)
	assert.True(t, released)
	assert.Empty(t, c.closers)
	assert.Nil(t, c.Scheduler)
}
