package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lockday/internal/infra"
	"lockday/internal/infra/credentials"
	"lockday/internal/ledger"
)

// geminikey stores the relay's Gemini API key in Postgres so the API can run
// without GEMINI_API_KEY in its environment.
func main() {
	_ = godotenv.Load()

	var (
		keyFlag string
		show    bool
	)
	flag.StringVar(&keyFlag, "key", "", "Gemini API key (falls back to GEMINI_API_KEY)")
	flag.BoolVar(&show, "show", false, "print the stored key, masked, and exit")
	flag.Parse()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "geminikey").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if errors.Is(err, infra.ErrNoDatabase) {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	if err := ledger.NewPostgres(runner).Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	store := credentials.NewStore(runner)

	if show {
		key, err := store.GeminiAPIKey(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "no stored key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(mask(key))
		return
	}

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(cfg.GeminiAPIKey)
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "GEMINI API key is required via -key or environment")
		os.Exit(1)
	}
	if err := store.SetGeminiAPIKey(ctx, key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist gemini api key: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("GEMINI API key stored successfully (%s)\n", mask(key))
}

func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
