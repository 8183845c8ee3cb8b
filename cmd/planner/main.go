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
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/pkg/rest"
)

// create and run a stateless REST server that plans allocations on request
func main() {
	var addr string
	flag.StringVar(&addr, "bind-address", rest.Address(), "The address the REST API binds to. "+
		"Defaults to "+rest.RestHostEnvName+" and "+rest.RestPortEnvName+".")
	flag.Parse()

	setupLog, err := logger.InitLogger()
	if err != nil {
		panic("unable to initialize logger: " + err.Error())
	}
	defer logger.SyncLogger()

	gin.SetMode(gin.ReleaseMode)
	server := rest.NewStateLessServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, addr); err != nil {
		setupLog.Errorw("problem running REST server", zap.Error(err))
		os.Exit(1)
	}
}
