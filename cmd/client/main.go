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
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/relief-ops/supply-allocator/internal/logger"
	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/distribution"
)

func main() {
	var (
		address string
		timeout time.Duration
		raw     bool
	)

	flag.StringVar(&address, "address", "localhost:"+config.DefaultPort, "Address of the distribution server.")
	flag.DurationVar(&timeout, "timeout", config.DefaultClientTimeout, "Timeout of each request.")
	flag.BoolVar(&raw, "raw", false, "Send bare sink names instead of JSON requests.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] SINK [SINK...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	names := flag.Args()
	if len(names) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.InitLogger()
	if err != nil {
		panic("unable to initialize logger: " + err.Error())
	}
	defer logger.SyncLogger()

	client := distribution.NewClient(address)
	client.Timeout = timeout
	client.Raw = raw

	failed := false
	for _, reply := range client.RequestAll(context.Background(), names) {
		if reply.Err != nil {
			log.Errorw("request failed", "sink", reply.Name, zap.Error(reply.Err))
			fmt.Printf("%s: error: %v\n", reply.Name, reply.Err)
			failed = true
			continue
		}
		log.Infow("resource received", "sink", reply.Name, "quantity", reply.Resource)
		fmt.Printf("%s: %v\n", reply.Name, reply.Resource)
	}
	if failed {
		os.Exit(1)
	}
}
