package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"insightrag-be/internal/pkg/logger"
	"insightrag-be/internal/pkg/serverutils"
	"insightrag-be/internal/repository/memory"
	"insightrag-be/internal/service"
	"insightrag-be/pkg/embedding"
	"insightrag-be/pkg/extractor"
	"insightrag-be/pkg/llm"
	"insightrag-be/pkg/rag/index"
	"insightrag-be/pkg/rag/response"
	"insightrag-be/pkg/rag/session"
	"insightrag-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedLLM struct{}

func (cannedLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return "<|assistant|> Forty two.</s>", nil
}

func (cannedLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return "<|assistant|> Forty two.</s>", nil
}

func newTestApp(t *testing.T, limit int) *fiber.App {
	t.Helper()
	indexer, err := index.NewIndexer(embedding.NewHashProvider(32), 2, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	gen := response.NewGenerator(cannedLLM{}, logger.NewNopLogger(), 300, 0.7)
	builder := session.NewBuilder(extractor.New(), indexer, gen, session.BuilderConfig{
		ChunkSize: 500, TopK: 3, QuestionLimit: limit,
	}, logger.NewNopLogger())
	st := store.New(memory.NewSessionRepository(), builder)
	svc := service.NewSessionService(st, nil, logger.NewNopLogger())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewSessionController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func upload(t *testing.T, app *fiber.App, name, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, _ = part.Write([]byte(content))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/session/v1", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func ask(t *testing.T, app *fiber.App, path, question string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(fmt.Sprintf(`{"question":%q}`, question)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSessionController_UploadAndAsk(t *testing.T) {
	app := newTestApp(t, 7)

	resp := upload(t, app, "answer.txt", "The answer to everything is forty two.")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decode(t, resp)["data"].(map[string]interface{})
	id := created["id"].(string)
	assert.Equal(t, "answer.txt", created["title"])

	resp = ask(t, app, "/api/session/v1/"+id+"/ask", "What is the answer?")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "Forty two.", data["answer"])
	assert.Equal(t, float64(6), data["remaining"])

	resp = ask(t, app, "/api/session/v1/active/ask", "Again?")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionController_UploadErrors(t *testing.T) {
	app := newTestApp(t, 7)

	assert.Equal(t, fiber.StatusUnsupportedMediaType, upload(t, app, "slides.pptx", "x").StatusCode)
	assert.Equal(t, fiber.StatusUnprocessableEntity, upload(t, app, "empty.txt", "").StatusCode)
	assert.Equal(t, fiber.StatusUnprocessableEntity, upload(t, app, "blank.txt", "  \n ").StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/session/v1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSessionController_LimitReached(t *testing.T) {
	app := newTestApp(t, 1)
	created := decode(t, upload(t, app, "a.txt", "content"))["data"].(map[string]interface{})
	path := "/api/session/v1/" + created["id"].(string) + "/ask"

	require.Equal(t, fiber.StatusOK, ask(t, app, path, "first").StatusCode)

	resp := ask(t, app, path, "second")
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "LIMIT_REACHED", body["error_type"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["limit"])
	assert.Equal(t, float64(1), data["used"])
}

func TestSessionController_SelectDeleteAndNotFound(t *testing.T) {
	app := newTestApp(t, 7)
	a := decode(t, upload(t, app, "a.txt", "alpha"))["data"].(map[string]interface{})["id"].(string)
	_ = upload(t, app, "b.txt", "beta")

	req := httptest.NewRequest(http.MethodPut, "/api/session/v1/"+a+"/select", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/session/v1", nil), -1)
	require.NoError(t, err)
	list := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, a, list["active_id"])
	assert.Len(t, list["sessions"], 2)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/session/v1/"+a, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPut, "/api/session/v1/"+a+"/select", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	assert.Equal(t, fiber.StatusNotFound, ask(t, app, "/api/session/v1/active/ask", "anyone?").StatusCode)
}

func TestSessionController_AskValidation(t *testing.T) {
	app := newTestApp(t, 7)
	id := decode(t, upload(t, app, "a.txt", "alpha"))["data"].(map[string]interface{})["id"].(string)

	resp := ask(t, app, "/api/session/v1/"+id+"/ask", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
