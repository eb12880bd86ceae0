package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/weblave/weblave/internal/chat"
	"github.com/weblave/weblave/internal/chatbot"
	"github.com/weblave/weblave/internal/config"
	"github.com/weblave/weblave/internal/identity"
	"github.com/weblave/weblave/internal/relay"
	"github.com/weblave/weblave/internal/server"
	"github.com/weblave/weblave/internal/visitor"
	"github.com/weblave/weblave/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Weblave web server",
	Long:  `Starts the Weblave server: the direct chat, the chatbot generator, the widget reply proxy, and their JSON and websocket APIs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort > 0 {
			cfg.Server.Port = servePort
		}
		logger := newLogger(cfg.Log)

		rel, err := newRelay(cfg, logger)
		if err != nil {
			return fmt.Errorf("%w\nSet %s or llm.api_key in %s", err, config.APIKeyEnvVar(cfg.LLM.Provider), cfgFile)
		}
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}

		var auth identity.Authenticator
		if cfg.Auth.SupabaseURL != "" {
			auth = identity.NewClient(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseAnonKey)
		} else {
			logger.Warn().Msg("SUPABASE_URL is not set; sign up and log in are disabled")
		}
		ids := identity.NewService(auth, logger)

		srv := server.New(server.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			OpenPaths:      []string{"/api/widget/"},
			Secure:         cfg.Server.SecureCookies,
		}, logger, visitor.Middleware(cfg.Server.SecureCookies), ids.Middleware)

		if err := registerAllRoutes(srv.Router(), cfg, rel, gen, ids, logger); err != nil {
			return err
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("shutdown")
			}
		}()

		logger.Info().
			Str("version", Version).
			Str("provider", string(cfg.LLM.Provider)).
			Str("model", cfg.LLM.Model).
			Str("base_url", cfg.Server.BaseURL).
			Msg("weblave starting")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerAllRoutes wires every feature package onto r.
func registerAllRoutes(r chi.Router, cfg *config.Config, rel *relay.Relay, gen *chatbot.Generator, ids *identity.Service, logger zerolog.Logger) error {
	// Direct chat
	chats := chat.NewStore(cfg.Chat.Accept)
	chat.NewHandler(chats, rel, ids, logger).RegisterRoutes(r)

	// Chatbot snippets, preview and the widget reply proxy
	bots := chatbot.NewHandler(gen, rel, widgetSenders(cfg, logger), logger)
	bots.RegisterRoutes(r)

	// Identity
	ids.RegisterRoutes(r)

	// UI shell
	ui, err := web.New(web.Options{
		Chats:     chats,
		Sender:    rel,
		Drafts:    chatbot.NewDrafts(),
		Bots:      bots,
		Generator: gen,
		Auth:      ids,
		Accept:    cfg.Chat.Accept,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("building UI: %w", err)
	}
	ui.RegisterRoutes(r)
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
