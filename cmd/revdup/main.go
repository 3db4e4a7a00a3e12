package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/revdup-client/internal/config"
	"github.com/spec-kit/revdup-client/internal/domain"
	"github.com/spec-kit/revdup-client/internal/events"
	"github.com/spec-kit/revdup-client/internal/federated"
	"github.com/spec-kit/revdup-client/internal/observability"
	"github.com/spec-kit/revdup-client/internal/service"
	"github.com/spec-kit/revdup-client/internal/store"
	"github.com/spec-kit/revdup-client/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	sessionStore, cleanup := buildStore(cfg, logger)
	defer cleanup()

	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventSessionEstablished, func(_ context.Context, ev events.Event) {
		fmt.Printf("-> signed in, role %s\n", ev.Role)
	})
	dispatcher.Subscribe(events.EventSessionCleared, func(_ context.Context, _ events.Event) {
		fmt.Println("-> signed out")
	})

	controller := service.NewSessionController(cfg.Session, service.Dependencies{
		Store:      sessionStore,
		Transport:  transport.NewClient(cfg.Backend, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	restoreCtx := context.Background()
	cancel := func() {}
	if timeout := cfg.Session.RestoreTimeout(); timeout > 0 {
		restoreCtx, cancel = context.WithTimeout(restoreCtx, timeout)
	}
	result, err := controller.RestoreSession(restoreCtx)
	cancel()
	if err != nil {
		logger.Fatal("session restore aborted", zap.Error(err))
	}
	if result.StorageErr != nil {
		logger.Warn("stored session unreadable", zap.Error(result.StorageErr))
	}

	render(controller)
	runLoop(controller, cfg.OIDC)
}

func buildStore(cfg *config.Config, logger *zap.Logger) (store.SessionStore, func()) {
	switch cfg.Store.Kind {
	case "redis":
		redisStore := store.NewRedisStore(cfg.Store.Redis, logger)
		return redisStore, redisStore.Close
	default:
		return store.NewFileStore(cfg.Store.FilePath, logger), func() {}
	}
}

func runLoop(controller *service.SessionController, oidcCfg config.OIDCConfig) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: status | login <id> <secret> | signup <id> <secret> <confirm> | google | federated <assertion> | logout | quit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		ctx := context.Background()
		switch fields[0] {
		case "status":
			render(controller)
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <id> <secret>")
				continue
			}
			if _, err := controller.Login(ctx, fields[1], fields[2]); err != nil {
				fmt.Printf("login failed: %v\n", err)
			}
			render(controller)
		case "signup":
			if len(fields) != 4 {
				fmt.Println("usage: signup <id> <secret> <confirm>")
				continue
			}
			if fields[2] != fields[3] {
				fmt.Println("signup failed: passwords do not match")
				continue
			}
			if err := controller.SignUp(ctx, fields[1], fields[2]); err != nil {
				fmt.Printf("signup failed: %v\n", err)
				continue
			}
			fmt.Println("signup successful, please log in")
		case "google":
			assertion, err := obtainAssertion(ctx, oidcCfg, scanner)
			if err != nil {
				fmt.Printf("google sign-in failed: %v\n", err)
				continue
			}
			if _, err := controller.FederatedLogin(ctx, assertion); err != nil {
				fmt.Printf("google sign-in failed: %v\n", err)
			}
			render(controller)
		case "federated":
			if len(fields) != 2 {
				fmt.Println("usage: federated <assertion>")
				continue
			}
			if _, err := controller.FederatedLogin(ctx, fields[1]); err != nil {
				fmt.Printf("federated login failed: %v\n", err)
			}
			render(controller)
		case "logout":
			if err := controller.Logout(ctx); err != nil {
				fmt.Printf("logout completed with storage warning: %v\n", err)
			}
			render(controller)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

// obtainAssertion runs the federated provider flow: the authorization-code
// exchange against the configured OIDC issuer, or a pasted assertion through
// the static provider when no client ID is configured.
func obtainAssertion(ctx context.Context, cfg config.OIDCConfig, scanner *bufio.Scanner) (string, error) {
	if cfg.ClientID == "" {
		fmt.Print("assertion: ")
		if !scanner.Scan() {
			return "", errors.New("no assertion entered")
		}
		provider, err := federated.NewStaticProvider(strings.TrimSpace(scanner.Text()))
		if err != nil {
			return "", err
		}
		return provider.Assertion(ctx)
	}

	provider, err := federated.NewOIDCProvider(ctx, cfg)
	if err != nil {
		return "", err
	}
	state, err := federated.NewState()
	if err != nil {
		return "", err
	}

	fmt.Printf("open in a browser:\n%s\n", provider.AuthURL(state))
	fmt.Print("code: ")
	if !scanner.Scan() {
		return "", errors.New("no code entered")
	}
	return provider.Exchange(ctx, strings.TrimSpace(scanner.Text()))
}

// render prints the screen the UI would show for the current state.
func render(controller *service.SessionController) {
	switch controller.CurrentState() {
	case service.StateAuthenticated:
		role := controller.CurrentRole()
		switch role {
		case domain.RoleCustomer:
			fmt.Println("[customer feed]")
		case domain.RoleAdmin:
			fmt.Println("[admin dashboard]")
		case domain.RoleVerifiedMechanic:
			fmt.Println("[mechanic jobs]")
		default:
			fmt.Println("[unknown role screen: please log out and try again]")
		}
	case service.StateUnauthenticated:
		fmt.Println("[login screen]")
	default:
		fmt.Println("[loading]")
	}
}
