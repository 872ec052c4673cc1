/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command fixcli dials a FIX 4.4 trading venue and drives it from an
// interactive command line.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/buybackoff/fixtrader/fixclient"
	"github.com/buybackoff/fixtrader/fixdialect"
	"github.com/buybackoff/fixtrader/fixtransport"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func parseDialect(name string) fixdialect.Extension {
	switch name {
	case "okcoin":
		return fixdialect.OKCoin
	case "huobi":
		return fixdialect.Huobi
	case "btcc":
		return fixdialect.BTCC
	default:
		return fixdialect.None
	}
}

func main() {
	addr := flag.String("addr", envOr("FIX_ADDR", "localhost:9880"), "FIX venue address (host:port)")
	useTLS := flag.Bool("tls", envOr("FIX_TLS", "true") == "true", "use TLS for the connection")
	insecureTLS := flag.Bool("insecure-tls", envOr("FIX_TLS_INSECURE", "") == "true", "skip certificate verification")
	dialect := flag.String("dialect", envOr("FIX_DIALECT", "coinbase"), "exchange dialect: coinbase, okcoin, huobi, btcc")
	senderCompID := flag.String("sender-comp-id", os.Getenv("FIX_SENDER_COMP_ID"), "SenderCompID")
	targetCompID := flag.String("target-comp-id", os.Getenv("FIX_TARGET_COMP_ID"), "TargetCompID")
	apiKey := flag.String("api-key", os.Getenv("FIX_API_KEY"), "API key")
	apiSecret := flag.String("api-secret", os.Getenv("FIX_API_SECRET"), "API secret")
	passphrase := flag.String("passphrase", os.Getenv("FIX_PASSPHRASE"), "API passphrase")
	account := flag.String("account", os.Getenv("FIX_ACCOUNT"), "portfolio/account id")
	storePath := flag.String("store", envOr("FIX_STORE_PATH", "fixtrader.db"), "path to the SQLite audit store (empty disables persistence)")
	heartBtInt := flag.Int64("heartbeat-interval", envInt("FIX_HEARTBEAT_INTERVAL", 30), "heartbeat interval in seconds")
	flag.Parse()

	cfg := fixclient.Config{
		Addr:   *addr,
		UseTLS: *useTLS,
		TLS: fixtransport.TLSRelaxations{
			AcceptAll: *insecureTLS,
		},
		SenderCompID:          *senderCompID,
		TargetCompID:          *targetCompID,
		ApiKey:                *apiKey,
		ApiSecret:             *apiSecret,
		Passphrase:            *passphrase,
		Account:               *account,
		ClOrdIDPrefix:         "fixcli",
		HeartBtInt:            *heartBtInt,
		RequestTimeoutSeconds: 10,
		OrderStatusSyncPeriod: time.Minute,
		Extension:             parseDialect(*dialect),
	}

	client, err := fixclient.NewClient(cfg, *storePath)
	if err != nil {
		log.Fatalf("failed to construct client: %v", err)
	}
	client.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		client.Dispose()
		os.Exit(0)
	}()

	Repl(client)
	client.Dispose()
}
