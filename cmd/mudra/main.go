package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/display"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	withTray := flag.Bool("tray", false, "show a system tray menu")
	flag.Parse()

	fmt.Println("Mudra - Gesture-driven AR playground")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if cfg.Server.StaticDir == "" {
		cfg.Server.StaticDir = findWebDir()
	}
	if cfg.Server.StaticDir != "" {
		fmt.Printf("Serving static files from: %s\n", cfg.Server.StaticDir)
	}

	frames := server.NewFrameBuffer()
	a, err := app.New(app.Config{
		Settings: cfg,
		Store:    st,
		Frames:   frames,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     st,
		Scene:     a,
		Frames:    frames,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if !*withTray {
		if err := a.Run(ctx); err != nil {
			log.Fatalf("Frame loop failed: %v", err)
		}
		return
	}

	// systray must own the main thread; the frame loop runs beside it.
	t := tray.New()
	t.OnCommand(func(cmd interact.Command) {
		if err := a.Submit(cmd); err != nil && !errors.Is(err, app.ErrNotRunning) {
			log.Printf("Tray command %s dropped: %v", cmd, err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser("http://" + cfg.Server.Addr + "/api/stream"); err != nil {
			log.Printf("Failed to open view: %v", err)
		}
	})
	a.OnState(func(s display.Status) {
		t.SetState(s.Hands, s.Show2D, s.Show3D, s.AutoRotate)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.Run(ctx); err != nil {
			log.Printf("Frame loop failed: %v", err)
		}
		t.Quit()
	}()
	t.Run()
	stop()
	<-done
}

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
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

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
