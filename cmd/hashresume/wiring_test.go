package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hash-resume/internal/assistant"
	"github.com/jonathan/hash-resume/internal/config"
	"github.com/jonathan/hash-resume/internal/llm"
	"github.com/jonathan/hash-resume/internal/observability"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/storage"
)

// clearEnv unsets variables a developer .env might provide.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "DATABASE_URL", "PAYMENT_ENDPOINT", "PAYMENT_LINK",
		"STORAGE_DIR", "STORAGE_BACKEND", "STORAGE_KEY", "PORT", "POLL_INTERVAL_MS", "SAVE_DEBOUNCE_MS",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type stubGateway struct {
	status string
}

func (g *stubGateway) Register(context.Context, string) error { return nil }

func (g *stubGateway) Status(context.Context, string) (string, error) { return g.status, nil }

func newStubSession(t *testing.T, status string) *session.Session {
	t.Helper()
	sess := session.New(storage.NewMemoryStore(), session.Options{
		Gateway: &stubGateway{status: status},
		Flow: payment.FlowConfig{
			PollInterval:       10 * time.Millisecond,
			ConfirmDelay:       time.Hour,
			MinReferenceLength: 6,
		},
	})
	t.Cleanup(func() { _ = sess.Close(context.Background()) })
	return sess
}

func TestResolveConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := resolveConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.Defaults(), cfg)
}

func TestResolveConfig_FileThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	path := writeFile(t, "hashresume.yaml", "port: 3000\nstorage_backend: memory\npayment_link: https://pay.example.com\n")

	cfg, err := resolveConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, config.BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "https://pay.example.com", cfg.PaymentLink)
	assert.Equal(t, 500, cfg.SaveDebounceMS)
}

func TestResolveConfig_Invalid(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "hashresume.json", `{"storage_backend": "postgres"}`)

	_, err := resolveConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, release, err := openStore(ctx, config.Config{StorageBackend: config.BackendMemory})
	require.NoError(t, err)
	release()
	assert.IsType(t, &storage.MemoryStore{}, store)

	dir := filepath.Join(t.TempDir(), "data")
	store, release, err = openStore(ctx, config.Config{StorageBackend: config.BackendFile, StorageDir: dir})
	require.NoError(t, err)
	defer release()
	require.NoError(t, store.Put(ctx, "k", []byte(`{}`)))
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestLLMConfigFor(t *testing.T) {
	defaults := llm.DefaultConfig()
	assert.Equal(t, defaults, llmConfigFor(config.Config{}))

	pinned := llmConfigFor(config.Config{Model: "gemini-custom"})
	require.NotEmpty(t, pinned.Models)
	for tier := range defaults.Models {
		assert.Equal(t, "gemini-custom", pinned.GetModel(tier), "tier %v", tier)
	}
	assert.Equal(t, llm.DefaultModel, llm.DefaultConfig().GetModel(llm.TierAnalysis))
}

func TestNewSession_WithoutAPIKeyUsesFallbacks(t *testing.T) {
	clearEnv(t)
	cfg := config.Defaults()
	cfg.StorageBackend = config.BackendMemory

	ctx := context.Background()
	sess, release, err := newSession(ctx, cfg)
	require.NoError(t, err)
	defer release()

	text, err := sess.Draft(ctx, "summary", "", "")
	require.NoError(t, err)
	assert.Equal(t, assistant.FailedDraftFallback, text)
	assert.False(t, sess.Unlocked())
}

func TestReadDocumentFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "resume.json", `{"personalInfo":{"fullName":"Jane Doe"},"skills":["Go"]}`)
		doc, err := readDocumentFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", doc.PersonalInfo.FullName)
		assert.Equal(t, []string{"Go"}, doc.Skills)
		assert.NotNil(t, doc.Experience)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "resume.yaml", `
personalInfo:
  fullName: Jane Doe
  linkedin: https://linkedin.com/in/jane
experience:
  - id: exp-1
    title: Engineer
    company: Acme
`)
		doc, err := readDocumentFile(path)
		require.NoError(t, err)
		assert.Equal(t, "https://linkedin.com/in/jane", doc.PersonalInfo.LinkedIn)
		require.Len(t, doc.Experience, 1)
		assert.Equal(t, "Acme", doc.Experience[0].Company)
		assert.NotNil(t, doc.Projects)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeFile(t, "resume.json", `{`)
		_, err := readDocumentFile(path)
		assert.ErrorContains(t, err, "failed to parse resume JSON")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readDocumentFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorContains(t, err, "failed to read resume file")
	})
}

func TestReadJobDescription(t *testing.T) {
	ctx := context.Background()
	sess := newStubSession(t, "pending")

	text, err := readJobDescription(ctx, sess, "", "")
	require.NoError(t, err)
	assert.Empty(t, text)

	path := writeFile(t, "job.txt", "Senior Go engineer")
	text, err = readJobDescription(ctx, sess, path, "")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer", text)
	assert.Equal(t, "Senior Go engineer", sess.JobDescription())

	_, err = readJobDescription(ctx, sess, path, "https://example.com/job")
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = readJobDescription(ctx, sess, "", "https://example.com/job")
	assert.ErrorIs(t, err, session.ErrNoJobFetcher)
}

func TestWriteOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resume.html")

	require.NoError(t, writeOutput(path, []byte("<html></html>")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestConfirmPayment_Unlocks(t *testing.T) {
	sess := newStubSession(t, "paid")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, confirmPayment(ctx, sess, "ABC123", observability.NewPrinter(&out)))
	assert.True(t, sess.Unlocked())

	export, err := sess.Export(ctx, session.FormatLaTeX)
	require.NoError(t, err)
	assert.NotEmpty(t, export.Data)
}

func TestConfirmPayment_ShortReference(t *testing.T) {
	sess := newStubSession(t, "paid")
	var out bytes.Buffer

	err := confirmPayment(context.Background(), sess, "123", observability.NewPrinter(&out))

	var validation *payment.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, out.String(), payment.MsgInvalidReference)
	assert.False(t, sess.Unlocked())
}

func TestConfirmPayment_TimesOut(t *testing.T) {
	sess := newStubSession(t, "pending")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := confirmPayment(ctx, sess, "ABC123", observability.NewPrinter(&out))
	assert.ErrorContains(t, err, "not confirmed in time")
	assert.False(t, sess.Unlocked())
}
