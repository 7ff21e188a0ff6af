// Package app assembles the services, stores and background workers into a
// runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/streamcast/streamcast/internal/config"
	"github.com/streamcast/streamcast/internal/httpapi"
	"github.com/streamcast/streamcast/internal/middleware"
	chatsvc "github.com/streamcast/streamcast/internal/services/chat"
	streamsvc "github.com/streamcast/streamcast/internal/services/streams"
	tipsvc "github.com/streamcast/streamcast/internal/services/tips"
	usersvc "github.com/streamcast/streamcast/internal/services/users"
	"github.com/streamcast/streamcast/internal/storage"
	"github.com/streamcast/streamcast/internal/storage/memory"
	"github.com/streamcast/streamcast/internal/system"
	"github.com/streamcast/streamcast/internal/wallet"
	"github.com/streamcast/streamcast/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users   storage.UserStore
	Streams storage.StreamStore
	Tips    storage.TipStore
	Follows storage.FollowStore
	Chat    storage.ChatStore
}

// Application ties the services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	cfg     *config.Config
	log     *logger.Logger

	Users   *usersvc.Service
	Streams *streamsvc.Service
	Tips    *tipsvc.Service
	Chat    *chatsvc.Service
	Monitor *tipsvc.Monitor
	Gateway *wallet.Gateway
}

// New builds a fully initialised application. checker resolves transaction
// status for the tip monitor; when nil, a wallet gateway backed by the
// configured RPC endpoint is used.
func New(cfg *config.Config, stores Stores, checker tipsvc.StatusChecker, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Streams == nil {
		stores.Streams = mem
	}
	if stores.Tips == nil {
		stores.Tips = mem
	}
	if stores.Follows == nil {
		stores.Follows = mem
	}
	if stores.Chat == nil {
		stores.Chat = mem
	}

	var gateway *wallet.Gateway
	if checker == nil {
		provider, err := wallet.NewRPCProvider(wallet.RPCConfig{
			RPCURL:  cfg.Chain.RPCURL,
			Timeout: cfg.Chain.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("configure wallet provider: %w", err)
		}
		gateway = wallet.NewGateway(provider, chainParams(cfg.Chain), log)
		checker = gateway
	}

	monitor := tipsvc.NewMonitor(stores.Tips, checker, tipsvc.Options{
		InitialDelay: cfg.Monitor.InitialDelay,
		PollInterval: cfg.Monitor.PollInterval,
		MaxAttempts:  cfg.Monitor.MaxAttempts,
	}, log)

	users := usersvc.New(stores.Users, stores.Follows, log)
	streams := streamsvc.New(stores.Streams, users, log)
	tips := tipsvc.New(stores.Tips, users, monitor, log)
	chat := chatsvc.New(stores.Chat, stores.Streams, log)

	app := &Application{
		manager: system.NewManager(),
		cfg:     cfg,
		log:     log,
		Users:   users,
		Streams: streams,
		Tips:    tips,
		Chat:    chat,
		Monitor: monitor,
		Gateway: gateway,
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Users:          users,
		Streams:        streams,
		Tips:           tips,
		Chat:           chat,
		Log:            log,
		TipLimiter:     middleware.NewRateLimiter(float64(cfg.Server.TipRatePerSec), cfg.Server.TipRateBurst, log),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	server := httpapi.NewServer(cfg.Server, router, log)

	for _, svc := range []system.Service{monitor, server} {
		if err := app.manager.Register(svc); err != nil {
			return nil, fmt.Errorf("register %s: %w", svc.Name(), err)
		}
	}

	return app, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services and loads seed data when enabled.
func (a *Application) Start(ctx context.Context) error {
	if err := a.manager.Start(ctx); err != nil {
		return err
	}
	if a.cfg.Seed.Enabled {
		if err := a.seed(ctx); err != nil {
			a.log.WithError(err).Warn("could not load seed data")
		}
	}
	return nil
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}

func chainParams(cfg config.ChainConfig) wallet.ChainParams {
	return wallet.ChainParams{
		ChainID:   cfg.ChainID,
		ChainName: cfg.ChainName,
		NativeCurrency: wallet.Currency{
			Name:     cfg.CurrencyName,
			Symbol:   cfg.CurrencySymbol,
			Decimals: cfg.Decimals,
		},
		RPCURLs:           []string{cfg.RPCURL},
		BlockExplorerURLs: []string{cfg.BlockExplorer},
	}
}
