package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/contentsquare/cyclecounter/config"
	"github.com/contentsquare/cyclecounter/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var configFile = flag.String("config", "testdata/runs.yml", "Runs configuration filename")

var allowedNetworksMetrics atomic.Value

func main() {
	flag.Parse()

	log.Infof("Loading config: %s", *configFile)
	cfg, err := reloadConfig()
	if err != nil {
		log.Fatalf("error while loading config: %s", err)
	}
	log.Infof("Loading config %q: successful", *configFile)

	registerMetrics(cfg.Metrics.Namespace)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(cfg.Metrics.ListenAddr) == 0 {
		if failed := runAll(ctx, cfg); failed > 0 {
			log.Fatalf("exiting: %d of %d runs failed", failed, len(cfg.Runs))
		}
		return
	}

	srv := serve(cfg.Metrics)
	if ok, err := sdNotifyReady(); err != nil {
		log.Errorf("cannot notify systemd: %s", err)
	} else if ok {
		log.Debugf("systemd notified about readiness")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)

	runAll(ctx, cfg)
	for {
		select {
		case <-ctx.Done():
			log.Infof("Shutting down metrics server on %q", cfg.Metrics.ListenAddr)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Errorf("error while shutting down metrics server: %s", err)
			}
			cancel()
			return
		case <-c:
			log.Infof("SIGHUP received. Going to reload config %s ...", *configFile)
			newCfg, err := reloadConfig()
			if err != nil {
				log.Errorf("error while reloading config: %s", err)
				continue
			}
			log.Infof("Reloading config %s: successful", *configFile)
			if newCfg.Metrics.ListenAddr != cfg.Metrics.ListenAddr || newCfg.Metrics.Namespace != cfg.Metrics.Namespace {
				log.Errorf("changes to `metrics.listen_addr` and `metrics.namespace` require a restart")
			}
			runAll(ctx, newCfg)
		}
	}
}

func serve(cfg config.Metrics) *http.Server {
	ln, err := net.Listen("tcp4", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("cannot listen for %q: %s", cfg.ListenAddr, err)
	}
	log.Infof("Serving metrics on %q", cfg.ListenAddr)

	s := newServer()
	go func() {
		if err := s.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error on %q: %s", cfg.ListenAddr, err)
		}
	}()
	return s
}

func newServer() *http.Server {
	return &http.Server{
		Handler:      http.HandlerFunc(serveHTTP),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		IdleTimeout:  time.Minute * 10,
		ErrorLog:     log.ErrorLogger,
	}
}

var promHandler = promhttp.Handler()

func serveHTTP(rw http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/favicon.ico":
	case "/metrics":
		an := allowedNetworksMetrics.Load().(*config.Networks)
		if !an.Contains(r.RemoteAddr) {
			err := fmt.Errorf("connections to /metrics are not allowed from %s", r.RemoteAddr)
			rw.Header().Set("Connection", "close")
			respondWith(rw, err, http.StatusForbidden)
			return
		}
		promHandler.ServeHTTP(rw, r)
	default:
		badRequest.Inc()
		err := fmt.Errorf("unsupported path: %s", r.URL.Path)
		log.Debugf("%s", err)
		rw.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(rw, err)
	}
}

func reloadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		return nil, fmt.Errorf("can't load config %q: %w", *configFile, err)
	}
	applyConfig(cfg)
	return cfg, nil
}

func applyConfig(cfg *config.Config) {
	allowedNetworksMetrics.Store(&cfg.Metrics.AllowedNetworks)
	log.SetDebug(cfg.LogDebug)
	log.Debugf("Loaded config: \n%s", cfg)
}
