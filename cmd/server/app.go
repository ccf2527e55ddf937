package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	jwttoken "kycportal/internal/jwt_token"
	"kycportal/internal/onboarding/adapters/account"
	"kycportal/internal/onboarding/catalog"
	"kycportal/internal/onboarding/encoding"
	onboardingHandler "kycportal/internal/onboarding/handler"
	onboardingMetrics "kycportal/internal/onboarding/metrics"
	onboardingService "kycportal/internal/onboarding/service"
	"kycportal/internal/onboarding/store/ledger"
	"kycportal/internal/onboarding/store/session"
	"kycportal/internal/onboarding/submission"
	"kycportal/internal/platform/config"
	"kycportal/internal/userstate"
	"kycportal/pkg/platform/audit"
	"kycportal/pkg/platform/audit/publishers/compliance"
	"kycportal/pkg/platform/audit/publishers/ops"
	auditkafka "kycportal/pkg/platform/audit/store/kafka"
	auditmemory "kycportal/pkg/platform/audit/store/memory"
	"kycportal/pkg/platform/circuit"
)

// submissionLedger is what both the orchestrator and the admin listing need.
type submissionLedger interface {
	submission.Ledger
	onboardingService.SubmissionLedger
}

type application struct {
	sessions   *session.InMemoryStore
	handler    *onboardingHandler.Handler
	validator  *jwttoken.JWTServiceAdapter
	compliance *compliance.Publisher
	ops        *ops.Publisher
}

func build(ctx context.Context, cfg config.Server, infra *infrastructure, log *slog.Logger) (*application, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load flow catalog: %w", err)
	}

	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	if infra.producer != nil {
		auditStore = auditkafka.New(infra.producer)
	}
	compliancePublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics()),
	)
	opsPublisher := ops.New(auditStore,
		ops.WithLogger(log),
		ops.WithMetrics(ops.NewMetrics()),
		ops.WithBreaker(circuit.New("audit-ops")),
	)

	accounts := account.New(cfg.AccountService.URL,
		account.WithHTTPClient(&http.Client{Timeout: cfg.AccountService.Timeout}),
		account.WithBreaker(circuit.New("account-service",
			circuit.WithFailureThreshold(cfg.AccountService.BreakerThreshold),
			circuit.WithCooldown(cfg.AccountService.BreakerCooldown),
		)),
		account.WithLogger(log),
	)

	var (
		profileStore userstate.Store  = userstate.NewInMemoryStore()
		guard        submission.Guard = submission.NewMemoryGuard()
		store        submissionLedger = ledger.NewInMemoryStore()
	)
	if infra.redis != nil {
		profileStore = userstate.NewRedisStore(infra.redis.Client)
		guard = submission.NewRedisGuard(infra.redis.Client)
	}
	if infra.db != nil {
		pg := ledger.NewPostgres(infra.db)
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate submission ledger: %w", err)
		}
		store = pg
	}
	profiles := userstate.New(profileStore, accounts, userstate.WithLogger(log))

	encoder := encoding.New(
		encoding.WithMaxBytes(cfg.Onboarding.MaxAttachmentBytes),
		encoding.WithLogger(log),
	)
	m := onboardingMetrics.New()

	orchestrator := submission.New(accounts, profiles, store, encoder,
		submission.WithLogger(log),
		submission.WithMetrics(m),
		submission.WithAuditPublisher(compliancePublisher),
		submission.WithGuard(guard),
		submission.WithTracer(otel.Tracer("kycportal/onboarding/submission")),
		submission.WithTimeout(cfg.Onboarding.SubmissionTimeout),
		submission.WithEncodeLimit(cfg.Onboarding.EncodeConcurrency),
	)

	sessions := session.New(cfg.Onboarding.SessionTTL)
	svc := onboardingService.New(sessions, catalog.NewSelector(cat), encoder, orchestrator, store,
		onboardingService.WithLogger(log),
		onboardingService.WithAuditPublisher(opsPublisher),
		onboardingService.WithMetrics(m),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, "")

	return &application{
		sessions:   sessions,
		handler:    onboardingHandler.New(svc, log),
		validator:  jwttoken.NewJWTServiceAdapter(jwtService),
		compliance: compliancePublisher,
		ops:        opsPublisher,
	}, nil
}

func (a *application) close(log *slog.Logger) {
	if err := a.ops.Close(); err != nil {
		log.Error("failed to drain ops audit", "error", err)
	}
	if err := a.compliance.Close(); err != nil {
		log.Error("failed to close compliance audit", "error", err)
	}
}
