package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bem92/yoga-app/internal/app"
	"github.com/bem92/yoga-app/internal/auth"
	"github.com/bem92/yoga-app/internal/client"
	"github.com/bem92/yoga-app/internal/config"
	"github.com/bem92/yoga-app/internal/logging"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	apiURL := flag.String("url", "", "Base URL of the booking service (overrides config)")
	startPath := flag.String("path", "/", "Route opened on start")
	flag.Parse()

	if err := run(*configPath, *apiURL, *startPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiURL, startPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.API.URL = apiURL
	}
	cfg.API.URL, err = baseURL(cfg.API.URL)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()
	log.WithField("api", cfg.API.URL).Info("yoga-tui starting")

	holder := auth.NewHolder()
	gw := client.NewHTTPClient(cfg.API.URL, holder.Token, cfg.API.Timeout, log)

	m := app.New(app.Options{
		Config:    cfg,
		Auth:      holder,
		Gateway:   gw,
		Log:       log,
		StartPath: startPath,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.WithError(err).Error("program exited")
		return err
	}
	log.Info("yoga-tui stopped")
	return nil
}

// baseURL checks raw is an http(s) URL and strips a trailing slash and a
// trailing /api, which the client adds itself.
func baseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("api url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("api url %q: missing host", raw)
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api")
	return u.String(), nil
}
