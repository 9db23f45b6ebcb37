package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/remotune/remotune/internal/config"
	"github.com/remotune/remotune/internal/engine"
	"github.com/remotune/remotune/internal/errmsg"
	"github.com/remotune/remotune/internal/mpris"
	"github.com/remotune/remotune/internal/notify"
	"github.com/remotune/remotune/internal/resolver"
	"github.com/remotune/remotune/internal/scrobble"
	"github.com/remotune/remotune/internal/server"
	"github.com/remotune/remotune/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	timeout := time.Duration(cfg.Resolver.TimeoutSeconds) * time.Second
	res := resolver.NewClient(cfg.Resolver.URL, timeout)

	var notifier scrobble.Notifier = scrobble.Noop{}
	if cfg.HasLastfmConfig() {
		notifier = scrobble.New(
			cfg.Lastfm.APIKey,
			cfg.Lastfm.APISecret,
			cfg.Lastfm.SessionKey,
			log.WithField("component", "scrobble"),
		)
		log.Info("last.fm scrobbling enabled")
	}

	eng := engine.New(engine.Options{
		Output:   &engine.LogOutput{Log: log.WithField("component", "output")},
		Resolver: res,
		Store:    st,
		Notifier: notifier,
		Log:      log.WithField("component", "engine"),
	})
	defer eng.Close()

	if desktop, err := notify.New(); err == nil {
		watcher := notify.Watch(eng, desktop, log.WithField("component", "notify"))
		defer watcher.Close()
	}

	mprisAdapter, err := mpris.New(eng)
	if err != nil {
		log.WithError(err).Warn("mpris unavailable")
	} else {
		defer mprisAdapter.Close()
	}

	srv := server.New(server.Options{
		Engine:   eng,
		Resolver: res,
		Store:    st,
		Port:     cfg.Server.Port,
		Log:      log.WithField("component", "server"),
	})
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	status := srv.Status()
	log.WithField("url", status.URL).Info("remotune is up, point your remote at the url")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}

func newLogger(level string) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return logrus.NewEntry(l)
}

func openStore(cfg *config.Config) (*store.Manager, error) {
	if cfg.DatabasePath != "" {
		return store.OpenPath(cfg.DatabasePath)
	}
	return store.Open()
}
