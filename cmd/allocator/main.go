/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/internal/metrics"
	"github.com/relief-ops/supply-allocator/internal/utils"
	"github.com/relief-ops/supply-allocator/pkg/core"
	"github.com/relief-ops/supply-allocator/pkg/distribution"
	"github.com/relief-ops/supply-allocator/pkg/manager"
	"github.com/relief-ops/supply-allocator/pkg/rest"
	"github.com/relief-ops/supply-allocator/pkg/solver"
)

func main() {
	var (
		configPath     string
		strategy       string
		host           string
		port           string
		maxConnections int
		metricsAddr    string
		restAddr       string
		printFlows     bool
	)

	flag.StringVar(&configPath, "config", "samples/network.yaml", "Path to the network and demand file (YAML, or JSON with a .json extension).")
	flag.StringVar(&strategy, "strategy", "", "Allocation strategy, heuristic or exact. Overrides the config file.")
	flag.StringVar(&host, "host", "", "Host the distribution server binds to. Overrides the config file and "+distribution.HostEnvName+".")
	flag.StringVar(&port, "port", "", "Port the distribution server binds to. Overrides the config file and "+distribution.PortEnvName+".")
	flag.IntVar(&maxConnections, "max-connections", -1,
		"Serve this many connections and exit, or 0 to serve until interrupted. Negative keeps the config file value.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metrics endpoint binds to, or 0 to disable it.")
	flag.StringVar(&restAddr, "rest-bind-address", "", "The address the REST API binds to. "+
		"Leave empty to bind from "+rest.RestHostEnvName+" and "+rest.RestPortEnvName+" when the port is set, or 0 to disable it.")
	flag.BoolVar(&printFlows, "print-flows", true, "Print the flow and allocation tables after solving.")
	flag.Parse()

	setupLog, err := logger.InitLogger()
	if err != nil {
		panic("unable to initialize logger: " + err.Error())
	}
	defer func() {
		if err := setupLog.Sync(); err != nil {
			_, _ = os.Stderr.WriteString("error syncing logger: " + err.Error() + "\n")
		}
	}()

	if ip, err := utils.LocalIP(); err != nil {
		setupLog.Warnw("unable to determine local address", zap.Error(err))
	} else {
		setupLog.Infow("local address", "ip", ip)
	}

	data, err := utils.LoadSystemData(configPath)
	if err != nil {
		setupLog.Errorw("unable to load system data", "path", configPath, zap.Error(err))
		os.Exit(1)
	}
	spec := &data.Spec

	system, optimizerSpec, err := core.NewSystemFromSpec(spec)
	if err != nil {
		setupLog.Errorw("invalid system data", "path", configPath, zap.Error(err))
		os.Exit(1)
	}
	if strategy != "" {
		optimizerSpec.Strategy = strategy
	}

	// command line beats environment beats config file
	serverSpec := spec.Server
	if v := os.Getenv(distribution.HostEnvName); v != "" {
		serverSpec.Host = v
	}
	if v := os.Getenv(distribution.PortEnvName); v != "" {
		serverSpec.Port = v
	}
	if host != "" {
		serverSpec.Host = host
	}
	if port != "" {
		serverSpec.Port = port
	}
	if maxConnections >= 0 {
		serverSpec.MaxConnections = maxConnections
	}

	if metricsAddr != "0" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.InitMetrics(registry)
		go serveMetrics(metricsAddr, registry)
	}

	store := distribution.NewStore()
	optimizer := solver.NewOptimizerFromSpec(optimizerSpec)
	mgr := manager.NewManager(system, optimizer, store)

	setupLog.Infow("computing allocation", "strategy", optimizer.Strategy(),
		"nodes", system.Network().NumNodes(), "edges", system.Network().NumEdges(),
		"demands", len(system.Demands()), "totalDemand", system.TotalDemand())
	result, err := mgr.Optimize()
	if err != nil {
		setupLog.Errorw("allocation failed", "strategy", optimizer.Strategy(), zap.Error(err))
		os.Exit(1)
	}
	if printFlows {
		if err := utils.RenderFlowTable(os.Stdout, system.Network(), result.Flows); err != nil {
			setupLog.Warnw("unable to render flow table", zap.Error(err))
		}
		if err := utils.RenderAllocationTable(os.Stdout, result.Allocation, result.Unsatisfied); err != nil {
			setupLog.Warnw("unable to render allocation table", zap.Error(err))
		}
	}

	server, err := distribution.NewServer(store, &serverSpec)
	if err != nil {
		setupLog.Errorw("unable to create distribution server", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if restAddr == "" && os.Getenv(rest.RestPortEnvName) != "" {
		restAddr = rest.Address()
	}
	if restAddr != "" && restAddr != "0" {
		gin.SetMode(gin.ReleaseMode)
		restServer := rest.NewStateFullServer(store)
		restServer.SetResult(system, result)
		go func() {
			if err := restServer.Run(ctx, restAddr); err != nil {
				setupLog.Errorw("problem running REST server", zap.Error(err))
			}
		}()
	}
	if err := server.ListenAndServe(ctx); err != nil {
		setupLog.Errorw("problem running distribution server", zap.Error(err))
		os.Exit(1)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Log.Infow("serving metrics", "address", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Errorw("metrics server stopped", zap.Error(err))
	}
}
