package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/snakegesture/internal/app"
	"github.com/ayusman/snakegesture/internal/config"
	"github.com/ayusman/snakegesture/internal/game"
	"github.com/ayusman/snakegesture/internal/server"
	"github.com/ayusman/snakegesture/internal/store"
	"github.com/ayusman/snakegesture/internal/tray"
)

func main() {
	fmt.Println("Snake - Gesture Controlled")

	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	dbPath := flag.String("db", "", "settings database (default ~/.snakegesture/snakegesture.db)")
	webDir := flag.String("web", "", "static web directory (default: search web, ../web, ~/.snakegesture/web)")
	useTray := flag.Bool("tray", false, "show a system tray menu")
	gestureOnStart := flag.Bool("gesture", false, "enable gesture control at startup")
	flag.Parse()

	// Flags given on the command line win over stored settings.
	explicit := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	if *dbPath == "" {
		*dbPath = defaultDBPath()
	}
	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if err := config.Load(st.Settings(), &cfg); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	for name, value := range explicit {
		flag.Set(name, value)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *webDir == "" {
		*webDir = findWebDir()
	}
	if *webDir != "" {
		fmt.Printf("Serving static files from: %s\n", *webDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(app.Config{Settings: cfg})
	defer a.Close()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Game loop stopped: %v", err)
		}
	}()

	srv := server.New(server.Config{
		StaticDir: *webDir,
		App:       a,
		Store:     st,
	})
	defer srv.Close()

	httpServer := &http.Server{Addr: cfg.Addr, Handler: srv}
	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if *gestureOnStart {
		if err := a.StartGesture(); err != nil {
			log.Printf("Gesture control not started: %v", err)
		}
	}

	if *useTray {
		runTray(ctx, stop, a, boardURL(cfg.Addr))
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	<-loopDone
}

// runTray blocks on the tray menu until Quit is clicked or ctx ends.
func runTray(ctx context.Context, stop context.CancelFunc, a *app.App, url string) {
	t := tray.New()
	ctrl := a.Controller()

	refresh := func() { t.Update(ctrl.Snapshot(), a.GestureEnabled()) }

	t.OnStart(func() {
		if _, err := ctrl.Start(ctx); err != nil {
			log.Printf("Start: %v", err)
		}
	})
	t.OnPause(func() { ctrl.TogglePause() })
	t.OnRestart(func() {
		if _, err := ctrl.Restart(ctx); err != nil {
			log.Printf("Restart: %v", err)
		}
	})
	t.OnGesture(func() {
		if _, err := a.ToggleGesture(); err != nil {
			log.Printf("Gesture control: %v", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Printf("Open browser: %v", err)
		}
	})
	t.OnQuit(stop)

	unsubscribe := ctrl.Subscribe(func(snap game.Snapshot) {
		t.Update(snap, a.GestureEnabled())
	})
	defer unsubscribe()
	unsubscribeGesture := a.SubscribeGesture(func(app.GestureStatus) { refresh() })
	defer unsubscribeGesture()
	refresh()

	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
}

func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".snakegesture")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	return filepath.Join(dbDir, "snakegesture.db")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.snakegesture/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".snakegesture", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

// boardURL turns a listen address into a browsable URL.
func boardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

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
