package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/campuskit/rollcall/internal/api"
	"github.com/campuskit/rollcall/internal/callback"
	"github.com/campuskit/rollcall/internal/layout"
	"github.com/campuskit/rollcall/internal/platform/config"
	"github.com/campuskit/rollcall/internal/platform/logging"
	"github.com/campuskit/rollcall/internal/redis"
	"github.com/campuskit/rollcall/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	clock := clockwork.NewRealClock()
	store := redis.NewSessionStore(redisClient, clock)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	authClient := api.NewAuthClient(cfg.ServerURL, httpClient)
	attendanceClient := api.NewAttendanceClient(cfg.ServerURL, httpClient)

	controller := session.NewController(store, authClient, attendanceClient, openBrowser, clock, logger)
	controller.Restore(context.Background())

	callbackSrv := callback.NewServer(cfg.CallbackAddr, controller.HandleDeepLink, logger)
	go func() {
		if err := callbackSrv.Start(); err != nil {
			slog.Error("Callback listener failed", "error", err)
			os.Exit(1)
		}
	}()

	done := runGracefulShutdown(callbackSrv)

	runCommandLoop(controller, done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := callbackSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Callback listener shutdown error", "error", err)
	}
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create redis client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Warn("Redis unreachable, session will not survive restarts", "error", err)
	}
	return client
}

func runGracefulShutdown(srv *callback.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Callback listener shutdown error", "error", err)
		}
		close(done)
	}()

	return done
}

func runCommandLoop(controller *session.Controller, done <-chan struct{}) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("rollcall commands: register, login, external, fetch, logout, show, quit")

	for {
		select {
		case <-done:
			return
		default:
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if quit := dispatch(controller, scanner, strings.TrimSpace(scanner.Text())); quit {
			return
		}
		render(controller.Snapshot())
	}
}

func dispatch(controller *session.Controller, scanner *bufio.Scanner, line string) bool {
	ctx := context.Background()
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "register":
		identity, secret := prompt(scanner, "identity"), prompt(scanner, "password")
		_ = controller.Register(ctx, identity, secret)
	case "login":
		identity, secret := prompt(scanner, "identity"), prompt(scanner, "password")
		_ = controller.Login(ctx, identity, secret)
	case "external":
		identity := controller.Snapshot().Identity
		if identity == "" {
			identity = prompt(scanner, "identity")
		}
		_ = controller.BeginExternalAuth(ctx, identity)
	case "fetch":
		_ = controller.FetchAttendance(ctx)
	case "logout":
		controller.Logout(ctx)
	case "show":
		// render happens after dispatch
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return false
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// render prints the observable state and the attendance grid using the
// computed column widths, scaled down to terminal characters.
func render(snap session.Snapshot) {
	fmt.Printf("[%s] %s\n", snap.Status, snap.Identity)
	if snap.Message != "" {
		fmt.Println(snap.Message)
	}
	if snap.Err != "" {
		fmt.Println("error:", snap.Err)
	}
	if snap.Batch.Empty() {
		return
	}

	const unitsPerChar = 8
	for _, header := range snap.Batch.Headers {
		fmt.Printf("%-*s", snap.Widths[header]/unitsPerChar+1, layout.DisplayHeader(header))
	}
	fmt.Println()
	for _, record := range snap.Batch.Records {
		for _, header := range snap.Batch.Headers {
			fmt.Printf("%-*s", snap.Widths[header]/unitsPerChar+1, layout.Stringify(record[header]))
		}
		fmt.Println()
	}
}

// openBrowser hands a URL to the OS default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
