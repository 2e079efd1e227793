package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/milk9111/stickyshot/ecs"
	"github.com/milk9111/stickyshot/ecs/system"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsServer struct {
	physics *system.PhysicsMetrics
	server  *http.Server
}

// startMetrics serves /metrics on addr in the background.
func startMetrics(addr string) *metricsServer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	m := &metricsServer{
		physics: system.NewPhysicsMetrics(reg),
		server:  &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}
	go func() {
		log.Printf("sandbox: metrics on %s/metrics", addr)
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("sandbox: metrics server: %v", err)
		}
	}()
	return m
}

func (m *metricsServer) close() {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = m.server.Shutdown(ctx)
}

// logSlowSystem reports any system that takes longer than a whole tick.
func logSlowSystem(tick float64) ecs.Observer {
	budget := time.Duration(tick * float64(time.Second))
	return func(name string, took time.Duration) {
		if took > budget {
			log.Printf("sandbox: %s took %v (tick is %v)", name, took, budget)
		}
	}
}
