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

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/chzyer/readline"

	"github.com/buybackoff/fixtrader/fixclient"
	"github.com/buybackoff/fixtrader/fixcodec"
	"github.com/buybackoff/fixtrader/fixorder"
)

const fullVersion = "fixcli 1.0.0"

// Repl drives an interactive session against an already-Start()ed Client.
func Repl(c *fixclient.Client) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("md"),
		readline.PcItem("unsubscribe"),
		readline.PcItem("order",
			readline.PcItem("buy"),
			readline.PcItem("sell"),
		),
		readline.PcItem("cancel"),
		readline.PcItem("replace"),
		readline.PcItem("ordstatus"),
		readline.PcItem("massstatus"),
		readline.PcItem("masscancel"),
		readline.PcItem("orders"),
		readline.PcItem("account"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("version"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "FIX> ",
		HistoryFile:     "/tmp/fixcli_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("failed to create readline: %v", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "md":
			handleMdCommand(c, parts)
		case "unsubscribe":
			handleUnsubscribeCommand(c, parts)
		case "order":
			handleOrderCommand(c, parts)
		case "cancel":
			handleCancelCommand(c, parts)
		case "replace":
			handleReplaceCommand(c, parts)
		case "ordstatus":
			handleOrdStatusCommand(c, parts)
		case "massstatus":
			handleMassStatusCommand(c)
		case "masscancel":
			handleMassCancelCommand(c, parts)
		case "orders":
			handleOrdersCommand(c)
		case "account":
			handleAccountCommand(c)
		case "status":
			handleStatusCommand(c)
		case "help":
			displayHelp()
		case "version":
			fmt.Println(fullVersion)
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func parseSide(s string) (fixorder.Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return fixorder.Buy, nil
	case "sell":
		return fixorder.Sell, nil
	default:
		return 0, fmt.Errorf("side must be 'buy' or 'sell', got %q", s)
	}
}

func parseOrdType(s string) string {
	switch strings.ToLower(s) {
	case "market", "m":
		return orderTypeMarket
	case "limit", "l":
		return orderTypeLimit
	case "stop", "s":
		return orderTypeStop
	case "stoplimit", "sl":
		return orderTypeStopLimit
	default:
		return orderTypeLimit
	}
}

func parseTif(s string) string {
	switch strings.ToLower(s) {
	case "gtc":
		return tifGTC
	case "ioc":
		return tifIOC
	case "fok":
		return tifFOK
	case "gtd":
		return tifGTD
	default:
		return tifGTC
	}
}

// Standard FIX 4.4 codes for OrdType(40) and TimeInForce(59), redeclared
// here since cmd/fixcli doesn't import the display-layer constants package
// used by fixclient's own report formatting.
const (
	orderTypeMarket    = "1"
	orderTypeLimit     = "2"
	orderTypeStop      = "3"
	orderTypeStopLimit = "4"

	tifGTC = "1"
	tifIOC = "3"
	tifFOK = "4"
	tifGTD = "6"
)

func handleMdCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 2 {
		fmt.Print(`Usage: md <symbol> [flags...]

Flags:
  --snapshot / --subscribe   - Request type (default: snapshot)
  --depth N                  - Order book depth (0=full, 1=top)
  --trades                   - Trade entries
  --o --c --h --l --v        - OHLCV entries

Examples:
  md BTC-USD --snapshot --trades
  md BTC-USD --subscribe --depth 10
`)
		return
	}

	symbol := strings.ToUpper(parts[1])
	subscribe := false
	depth := int64(0)
	var entryTypes []string

	for i := 2; i < len(parts); i++ {
		switch parts[i] {
		case "--snapshot":
			subscribe = false
		case "--subscribe":
			subscribe = true
		case "--depth":
			if i+1 < len(parts) {
				i++
				fmt.Sscanf(parts[i], "%d", &depth)
			}
		case "--trades":
			entryTypes = append(entryTypes, "2")
		case "--o":
			entryTypes = append(entryTypes, "4")
		case "--c":
			entryTypes = append(entryTypes, "5")
		case "--h":
			entryTypes = append(entryTypes, "7")
		case "--l":
			entryTypes = append(entryTypes, "8")
		case "--v":
			entryTypes = append(entryTypes, "B")
		}
	}
	if len(entryTypes) == 0 {
		entryTypes = []string{"2"}
	}

	reqID, err := c.SubscribeMarketData(symbol, subscribe, depth, entryTypes)
	if err != nil {
		fmt.Printf("Failed to send market data request: %v\n", err)
		return
	}
	fmt.Printf("Market data request sent for %s (reqId: %s)\n", symbol, reqID)
}

func handleUnsubscribeCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: unsubscribe <symbol>")
		return
	}
	symbol := strings.ToUpper(parts[1])
	subs := c.Trades.GetSubscriptionsBySymbol()[symbol]
	if len(subs) == 0 {
		fmt.Printf("No active subscriptions found for %s\n", symbol)
		return
	}
	for _, sub := range subs {
		if err := c.UnsubscribeMarketData(symbol, sub.MDReqID); err != nil {
			fmt.Printf("Failed to unsubscribe %s: %v\n", sub.MDReqID, err)
			continue
		}
		fmt.Printf("Unsubscribe request sent for %s (reqId: %s)\n", symbol, sub.MDReqID)
	}
}

func handleOrderCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 4 {
		fmt.Print(`Usage: order <buy|sell> <symbol> <qty> [price] [flags...]

Flags:
  --type <market|limit|stop|stoplimit>
  --tif <gtc|ioc|fok|gtd>
  --strategy <L|M|T|V|SL>
  --postonly

Examples:
  order buy BTC-USD 0.01 50000
  order sell ETH-USD 1.5 --type market
`)
		return
	}

	side, err := parseSide(parts[1])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	symbol := strings.ToUpper(parts[2])
	qty := parts[3]

	var price, ordType, tif, strategy string
	var postOnly bool
	for i := 4; i < len(parts); i++ {
		switch parts[i] {
		case "--type":
			if i+1 < len(parts) {
				i++
				ordType = parseOrdType(parts[i])
			}
		case "--tif":
			if i+1 < len(parts) {
				i++
				tif = parseTif(parts[i])
			}
		case "--strategy":
			if i+1 < len(parts) {
				i++
				strategy = strings.ToUpper(parts[i])
			}
		case "--postonly":
			postOnly = true
		default:
			if !strings.HasPrefix(parts[i], "--") && price == "" {
				price = parts[i]
			}
		}
	}
	if ordType == "" {
		if price != "" {
			ordType = orderTypeLimit
		} else {
			ordType = orderTypeMarket
		}
	}
	if tif == "" {
		tif = tifGTC
	}

	req := fixorder.SubmitRequest{
		Symbol:      symbol,
		Side:        side,
		Qty:         fixcodec.Decimal(qty),
		OrdType:     ordType,
		TimeInForce: tif,
		HandlInst:   "1",
	}
	if price != "" {
		req.Price = fixcodec.Decimal(price)
	}
	if strategy != "" {
		req.TargetStrategy = strategy
	}
	if postOnly {
		req.ExecInst = "A"
	}

	op, err := c.Submit(req)
	if err != nil {
		fmt.Printf("Failed to submit order: %v\n", err)
		return
	}
	fmt.Printf("Order submitted: %s %s %s @ %s (handle: %s)\n", parts[1], qty, symbol, price, op.ClOrdID)
}

func handleCancelCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: cancel <handle|orderId>")
		return
	}
	handle := resolveHandle(c, parts[1])
	if _, err := c.Cancel(handle); err != nil {
		fmt.Printf("Failed to send cancel: %v\n", err)
		return
	}
	fmt.Printf("Cancel request sent for %s\n", handle)
}

func handleReplaceCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: replace <handle> [--qty Q] [--price P]")
		return
	}
	handle := resolveHandle(c, parts[1])
	order := c.Orders.GetOrder(handle)

	req := fixorder.ReplaceRequest{}
	if order != nil {
		req.Qty = order.LeftQty
		req.Price = order.Price
	}
	for i := 2; i < len(parts); i++ {
		switch parts[i] {
		case "--qty":
			if i+1 < len(parts) {
				i++
				req.Qty = fixcodec.Decimal(parts[i])
			}
		case "--price":
			if i+1 < len(parts) {
				i++
				req.Price = fixcodec.Decimal(parts[i])
			}
		}
	}

	if _, err := c.Replace(handle, req); err != nil {
		fmt.Printf("Failed to send replace: %v\n", err)
		return
	}
	fmt.Printf("Replace request sent for %s\n", handle)
}

func handleOrdStatusCommand(c *fixclient.Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: ordstatus <handle|orderId>")
		return
	}
	handle := resolveHandle(c, parts[1])
	if _, err := c.StatusRequest(handle); err != nil {
		fmt.Printf("Failed to send status request: %v\n", err)
		return
	}
	fmt.Printf("Order status request sent for %s\n", handle)
}

func handleMassStatusCommand(c *fixclient.Client) {
	if _, err := c.MassStatusRequest(); err != nil {
		fmt.Printf("Failed to send mass status request: %v\n", err)
		return
	}
	fmt.Println("Mass status request sent")
}

func handleMassCancelCommand(c *fixclient.Client, parts []string) {
	symbol := ""
	if len(parts) >= 2 {
		symbol = strings.ToUpper(parts[1])
	}
	if _, err := c.MassCancelRequest(symbol); err != nil {
		fmt.Printf("Failed to send mass cancel request: %v\n", err)
		return
	}
	if symbol != "" {
		fmt.Printf("Mass cancel request sent for %s\n", symbol)
	} else {
		fmt.Println("Mass cancel request sent for all orders")
	}
}

func handleAccountCommand(c *fixclient.Client) {
	if err := c.RequestAccountInfo(); err != nil {
		fmt.Printf("Account info request failed: %v\n", err)
		return
	}
	fmt.Println("Account info request sent")
}

// resolveHandle returns identifier unchanged if it is already tracked as a
// Handle; otherwise it tries looking the identifier up as an exchange
// OrderID and returns that order's Handle instead.
func resolveHandle(c *fixclient.Client, identifier string) string {
	if o := c.Orders.GetOrder(identifier); o != nil {
		return identifier
	}
	if o := c.Orders.GetOrderByOrderID(identifier); o != nil {
		return o.Handle
	}
	return identifier
}

func handleOrdersCommand(c *fixclient.Client) {
	orders := c.Orders.GetAllOrders()
	if len(orders) == 0 {
		fmt.Println("No orders tracked")
		return
	}

	fmt.Print(`
Orders:
┌──────────────────────┬─────────────┬──────┬───────────────┬───────────────┬───────────────┐
│ Handle               │ Symbol      │ Side │ Left          │ Price         │ Status        │
├──────────────────────┼─────────────┼──────┼───────────────┼───────────────┼───────────────┤
`)
	for _, o := range orders {
		handle := o.Handle
		if len(handle) > 20 {
			handle = handle[:17] + "..."
		}
		fmt.Printf("│ %-20s │ %-11s │ %-4s │ %-13s │ %-13s │ %-13s │\n",
			handle, o.Symbol, o.Side, o.LeftQty, o.Price, o.Status)
	}
	fmt.Println("└──────────────────────┴─────────────┴──────┴───────────────┴───────────────┴───────────────┘")
}

func handleStatusCommand(c *fixclient.Client) {
	subs := c.Trades.GetSubscriptionsBySymbol()
	if len(subs) == 0 {
		fmt.Println("No active subscriptions")
		return
	}
	fmt.Print(`
Active Subscriptions:
┌─────────────┬──────────────────┬─────────────┬─────────────┬──────────────┐
│ Symbol      │ Type             │ Status      │ Updates     │ Last Update  │
├─────────────┼──────────────────┼─────────────┼─────────────┼──────────────┤
`)
	for symbol, symSubs := range subs {
		for i, sub := range symSubs {
			status := "Active"
			if !sub.Active {
				status = "Inactive"
			}
			lastUpdate := "Never"
			if !sub.LastUpdate.IsZero() {
				lastUpdate = sub.LastUpdate.Format("15:04:05")
			}
			displaySymbol := symbol
			if i > 0 {
				displaySymbol = ""
			}
			fmt.Printf("│ %-11s │ %-16s │ %-11s │ %-11d │ %-12s │\n",
				displaySymbol, sub.SubscriptionType, status, sub.TotalUpdates, lastUpdate)
		}
	}
	fmt.Println("└─────────────┴──────────────────┴─────────────┴─────────────┴──────────────┘")
}

func displayHelp() {
	fmt.Print(`Commands:
  --- Market Data ---
  md <symbol> [flags...]        - Market data request
  unsubscribe <symbol>          - Stop subscription(s)
  status                        - Show active subscriptions

  --- Order Entry ---
  order <buy|sell> <symbol> <qty> [price] [flags...]  - Submit new order
  cancel <handle|orderId>       - Cancel an order
  replace <handle> [--qty Q] [--price P]  - Modify an order
  ordstatus <handle|orderId>    - Request order status
  massstatus                    - Request status for every open order
  masscancel [symbol]           - Cancel every open order, or just one symbol
  orders                        - List tracked orders

  --- Account ---
  account                       - Request account info (not supported on Coinbase dialect)

  --- General ---
  help, version, exit
`)
}
