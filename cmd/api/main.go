package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account"
	accountrepo "github.com/ovaphlow/pitchfork/service-agents-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/completion"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/conversation"
	conversationrepo "github.com/ovaphlow/pitchfork/service-agents-go/internal/conversation/repo"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/notify"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/otp"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/token"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/cache"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

func main() {
	// best-effort: real environment wins when no .env exists
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	if err := run(sugar); err != nil {
		sugar.Fatalw("service stopped", "err", err)
	}
	sugar.Info("goodbye")
}

func run(sugar *zap.SugaredLogger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	accounts := accountrepo.NewAccountRepo(db)
	conversations := conversationrepo.NewConversationRepo(db)
	if err := accounts.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure accounts table: %w", err)
	}
	if err := conversations.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure conversation tables: %w", err)
	}

	codes, closeCodes, err := newCodeStore(ctx, cfg.Cache, sugar)
	if err != nil {
		return err
	}
	defer closeCodes()

	tokens, err := token.NewIssuer(cfg.Token, nil)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	notifier, err := newNotifier(*cfg, sugar)
	if err != nil {
		return err
	}

	completer, err := newCompleter(ctx, cfg.Completion)
	if err != nil {
		return err
	}

	accountSvc := account.NewService(accounts, account.BcryptHasher{}, sugar)
	sessionSvc := session.NewService(accountSvc, otp.NewService(codes, otp.WithTTL(cfg.OTP.TTL)), tokens, notifier, sugar)
	conversationSvc := conversation.NewService(conversations, completer, sugar)

	handler := router.New(router.Deps{
		Logger:        sugar,
		Health:        db,
		Accounts:      account.NewHandler(accountSvc, sugar),
		Sessions:      session.NewHandler(sessionSvc, sugar),
		Conversations: conversation.NewHandler(conversationSvc, sugar),
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sugar.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnw("http server shutdown failed", "err", err)
	}
	return nil
}

// newCodeStore picks the challenge cache. The memory store is local to this
// process; use redis when several instances serve the same users.
func newCodeStore(ctx context.Context, cfg config.CacheConfig, sugar *zap.SugaredLogger) (cache.Store[string], func(), error) {
	if cfg.Backend == config.CacheRedis {
		r, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		sugar.Infow("otp cache", "backend", "redis", "addr", cfg.Redis.Addr)
		return r, func() { _ = r.Close() }, nil
	}
	m := cache.NewMemory[string](nil)
	go m.Run(ctx, time.Minute)
	sugar.Infow("otp cache", "backend", "memory")
	return m, func() {}, nil
}

func newNotifier(cfg config.Config, sugar *zap.SugaredLogger) (notify.Notifier, error) {
	if !cfg.MailEnabled() {
		sugar.Warn("SMTP not configured; otp codes will only be logged")
		return notify.NewLog(sugar), nil
	}
	n, err := notify.NewSMTP(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("smtp notifier: %w", err)
	}
	return n, nil
}

func newCompleter(ctx context.Context, cfg config.CompletionConfig) (completion.Completer, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		c, err := completion.NewOllama(cfg.Ollama)
		if err != nil {
			return nil, fmt.Errorf("ollama completer: %w", err)
		}
		return c, nil
	default:
		c, err := completion.NewArk(ctx, cfg.Ark)
		if err != nil {
			return nil, fmt.Errorf("ark completer: %w", err)
		}
		return c, nil
	}
}
