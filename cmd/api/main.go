package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/config"
	"github.com/xavierca1/ligue-funnel/internal/entity"
	"github.com/xavierca1/ligue-funnel/internal/infra/database"
	"github.com/xavierca1/ligue-funnel/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-funnel/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
	"github.com/xavierca1/ligue-funnel/internal/infra/mail"
	"github.com/xavierca1/ligue-funnel/internal/infra/memstore"
	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

var version = "dev"

// repositories agrupa o que os serviços precisam, venha do Postgres ou da memória.
type repositories struct {
	leads       entity.LeadRepositoryInterface
	submissions entity.LeadSubmissionRepositoryInterface
	waitlist    entity.WaitlistRepositoryInterface
	users       entity.UserRepositoryInterface
	pinger      handlers.Pinger
	close       func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("configuração inválida", zap.Error(err))
	}

	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Repositórios
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal("falha ao abrir o banco", zap.Error(err))
	}
	defer repos.close()

	// 2. Fila (opcional)
	var producer usecase.QueueProducerInterface = queue.NoopProducer{}
	var broker handlers.BrokerStatus
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatal("falha ao conectar no RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()

		producer = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn

		// 3. Worker (CRM + email de confirmação), em canal próprio
		consumerCh, err := rabbitMQ.ConsumerChannel(10)
		if err != nil {
			log.Fatal("falha ao abrir canal do worker", zap.Error(err))
		}
		defer consumerCh.Close()

		worker := queue.NewWorker(consumerCh, crmClient(cfg, log), mailSender(cfg), log.Named("worker"))
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				log.Error("worker parou", zap.Error(err))
			}
		}()
	} else {
		log.Warn("RABBITMQ_URL não definido, eventos do funil serão descartados")
	}

	// 4. UseCases
	leads := usecase.NewLeadService(repos.leads, repos.submissions, producer, log)
	waitlist := usecase.NewWaitlistService(repos.waitlist, repos.leads, producer, log)
	accounts := usecase.NewAccountService(repos.users, cfg.Security.BcryptCost, log)
	enrollment := usecase.NewEnrollmentService(leads, waitlist, accounts, producer, log)

	if cfg.Security.ServiceToken == "" {
		log.Warn("INTERNAL_API_TOKEN não definido, rotas internas vão responder 401")
	}

	limiter := middleware.NewRateLimiter(cfg.Security.LeadRateLimit, time.Minute)
	go limiter.Cleanup(ctx, 5*time.Minute)

	// 5. Handlers + Router
	router := handlers.NewRouter(handlers.RouterConfig{
		Leads:          handlers.NewLeadHandler(leads, log),
		Waitlist:       handlers.NewWaitlistHandler(waitlist, log),
		Enrollment:     handlers.NewEnrollmentHandler(enrollment, log),
		Users:          handlers.NewUserHandler(usecase.NewUserActions(accounts)),
		Health:         handlers.NewHealthHandler(repos.pinger, broker, version),
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		ServiceToken:   cfg.Security.ServiceToken,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("servidor do funil no ar", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("servidor caiu", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("desligando")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown incompleto", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn("usando armazenamento em memória, dados não sobrevivem ao restart")
		store := memstore.New()
		return &repositories{
			leads:       store.Leads(),
			submissions: store.Submissions(),
			waitlist:    store.Waitlist(),
			users:       store.Users(),
			pinger:      store,
			close:       store.Close,
		}, nil
	}

	db, err := database.NewDBConnection(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info("migrations aplicadas", zap.Strings("files", applied))
	}

	store := database.NewStore(db)
	return &repositories{
		leads:       store.Leads(),
		submissions: store.Submissions(),
		waitlist:    store.Waitlist(),
		users:       store.Users(),
		pinger:      store,
		close:       store.Close,
	}, nil
}

// Interfaces nil (não ponteiros nil) quando a integração está desligada.
func crmClient(cfg *config.Config, log *zap.Logger) queue.CRMClient {
	if cfg.Kommo.APIToken == "" {
		log.Warn("KOMMO_API_TOKEN não definido, leads não vão para o CRM")
		return nil
	}
	return kommo.NewClient(cfg.Kommo.APIToken, cfg.Kommo.BaseURL, log.Named("kommo"))
}

func mailSender(cfg *config.Config) queue.ConfirmationSender {
	if !cfg.MailEnabled() {
		return nil
	}
	return mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.Brand)
}
