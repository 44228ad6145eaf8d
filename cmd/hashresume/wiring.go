package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/hash-resume/internal/assistant"
	"github.com/jonathan/hash-resume/internal/config"
	"github.com/jonathan/hash-resume/internal/db"
	"github.com/jonathan/hash-resume/internal/document"
	"github.com/jonathan/hash-resume/internal/fetch"
	"github.com/jonathan/hash-resume/internal/llm"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/session"
	"github.com/jonathan/hash-resume/internal/storage"
	"github.com/jonathan/hash-resume/internal/types"
)

// resolveConfig layers the config file, built-in defaults and the environment,
// in increasing order of precedence.
func resolveConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore returns the document store selected by cfg and a func releasing it.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), func() {}, nil
	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return db.NewDocumentStore(database), database.Close, nil
	default:
		store, err := storage.NewFileStore(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// newAssistant connects to Gemini when an API key is configured. Without one
// the assistant still answers, with its fallback content.
func newAssistant(ctx context.Context, cfg config.Config) (*assistant.Assistant, func(), error) {
	opts := []assistant.Option{assistant.WithMaxJobDescription(cfg.MaxJobDescriptionChars)}
	if cfg.APIKey == "" {
		log.Printf("[ASSISTANT] GEMINI_API_KEY not set; AI features will return fallback content")
		return assistant.New(nil, opts...), func() {}, nil
	}

	client, err := llm.NewClient(ctx, llmConfigFor(cfg), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return assistant.New(client, opts...), func() { _ = client.Close() }, nil
}

// llmConfigFor returns the default model tiers, all pinned to cfg.Model when set.
func llmConfigFor(cfg config.Config) *llm.Config {
	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithAllModels(cfg.Model)
	}
	return llmConfig
}

// newSession wires a session to everything cfg configures. The returned func
// closes the session, flushing pending edits, then releases its resources.
func newSession(ctx context.Context, cfg config.Config) (*session.Session, func(), error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ai, closeAI, err := newAssistant(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	opts := session.Options{
		Key:         cfg.StorageKey,
		QuietPeriod: cfg.QuietPeriod(),
		Assistant:   ai,
		Flow:        cfg.FlowConfig(),
		Jobs: fetch.NewCachedFetcher(store, &fetch.CachedFetcherConfig{
			CacheTTL: cfg.JobCacheTTL(),
			Options:  jobFetchOptions(cfg),
		}),
	}
	if cfg.PaymentEndpoint != "" {
		opts.Gateway = payment.NewHTTPGateway(cfg.PaymentEndpoint, nil)
	} else {
		log.Printf("[PAYMENT] PAYMENT_ENDPOINT not set; payments cannot be confirmed")
	}

	sess := session.New(store, opts)
	sess.Load(ctx)

	return sess, func() {
		if err := sess.Close(context.Background()); err != nil {
			log.Printf("[SESSION] Failed to save document: %v", err)
		}
		closeAI()
		closeStore()
	}, nil
}

func jobFetchOptions(cfg config.Config) *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = cfg.UseBrowser
	opts.Verbose = cfg.Verbose
	return opts
}

// readDocumentFile reads a resume document from a JSON or YAML file. Missing
// fields take their empty defaults.
func readDocumentFile(path string) (types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeDocument{}, fmt.Errorf("failed to read resume file: %w", err)
	}

	doc := document.New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return types.ResumeDocument{}, fmt.Errorf("failed to parse resume YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return types.ResumeDocument{}, fmt.Errorf("failed to parse resume JSON: %w", err)
		}
	}
	return document.Normalize(doc), nil
}

// readJobDescription returns job posting text from a file or a URL. Both
// empty yields an empty description.
func readJobDescription(ctx context.Context, sess *session.Session, jobPath, jobURL string) (string, error) {
	switch {
	case jobPath != "" && jobURL != "":
		return "", fmt.Errorf("--job and --job-url are mutually exclusive")
	case jobPath != "":
		data, err := os.ReadFile(jobPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job file: %w", err)
		}
		text := string(data)
		sess.SetJobDescription(text)
		return text, nil
	case jobURL != "":
		return sess.FetchJobDescription(ctx, jobURL)
	}
	return "", nil
}

// writeOutput writes data to path, creating its directory, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
