package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/verotasks/api/internal/board"
	"github.com/verotasks/api/internal/config"
	httpmiddleware "github.com/verotasks/api/internal/http/middleware"
	"github.com/verotasks/api/internal/member"
	"github.com/verotasks/api/internal/notify"
	"github.com/verotasks/api/internal/service"
	"github.com/verotasks/api/internal/task"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	tasks         *task.Service
	members       *member.Service
	executor      *board.Executor
	verifier      *board.Verifier
	hub           *Hub
	bot           *notify.BotNotifier
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado e inicia o hub de eventos.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, members *member.Service) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	taskRepo := task.NewRepository(pool, redisClient)

	// O cliente do bot existe mesmo sem configuração: cada chamada falha
	// com erro "missing_env" nomeando as chaves, nunca em branco.
	bot := notify.NewBotNotifier(cfg.BotBaseURL, cfg.OfficeSecret, log.With().Str("component", "notify").Logger())
	if !cfg.NotifierConfigured() {
		log.Warn().Strs("missing", cfg.MissingNotifierKeys()).Msg("integração com o bot desabilitada")
	}

	taskService := task.NewService(taskRepo, bot, cfg.SignalResendGap)

	feed := task.NewFeed(redisClient, log.With().Str("component", "feed").Logger())
	hub := NewHub(taskRepo, feed, log.With().Str("component", "hub").Logger())
	if err := hub.Start(context.Background()); err != nil {
		return nil, err
	}

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		tasks:         taskService,
		members:       members,
		executor:      board.NewExecutor(taskRepo, cfg.BulkBatchCap),
		verifier:      board.NewVerifier(taskRepo),
		hub:           hub,
		bot:           bot,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
		private.Use(httpmiddleware.RequireOfficeAccess)

		private.Get("/me", h.Me)

		private.Route("/me/telegram", func(tg chi.Router) {
			tg.Post("/link", h.LinkTelegram)
			tg.Delete("/", h.UnlinkTelegram)
		})

		private.Route("/tasks", func(t chi.Router) {
			t.Get("/", h.ListTasks)
			t.Get("/counts", h.TaskCounts)
			t.Get("/suggest", h.SuggestTasks)
			t.Get("/stream", h.StreamTasks)
			t.Get("/{id}", h.GetTask)
			t.Post("/{id}/signal", h.SignalTask)

			t.Group(func(master chi.Router) {
				master.Use(httpmiddleware.RequireMaster)
				master.Post("/", h.CreateTask)
				master.Patch("/{id}", h.UpdateTask)
				master.Delete("/{id}", h.DeleteTask)
				master.Post("/bulk/patch", h.BulkPatchTasks)
				master.Post("/bulk/delete", h.BulkDeleteTasks)
			})
		})

		private.Route("/admin/members", func(m chi.Router) {
			m.Use(httpmiddleware.RequireOfficeAdmin)
			m.Get("/", h.ListMembers)
			m.Post("/", h.CreateMember)
			m.Patch("/{uid}/role", h.SetMemberRole)
			m.Patch("/{uid}/active", h.SetMemberActive)
			m.Post("/{uid}/provision", h.ProvisionMember)
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, CodeInternal, "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
