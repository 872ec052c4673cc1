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

package fixclient

import (
	"fmt"
	"log"

	"github.com/buybackoff/fixtrader/constants"
	"github.com/buybackoff/fixtrader/fixmsg"
)

func displaySnapshotTrades(trades []Trade, symbol string) {
	log.Printf("\n📋 Market Data Snapshot for %s:", symbol)

	byType := make(map[string][]Trade)
	for _, trade := range trades {
		entryType := trade.EntryType
		if entryType == "" {
			entryType = "2" // Default to Trade if not specified
		}
		byType[entryType] = append(byType[entryType], trade)
	}

	for entryType, entries := range byType {
		typeName := getMdEntryTypeName(entryType)
		log.Printf("\n🔹 %s Entries (%d):", typeName, len(entries))

		if entryType == constants.MdEntryTypeBid || entryType == constants.MdEntryTypeOffer {
			fmt.Printf("┌─────┬───────────────┬────────────────┬───────────────┬──────────┐\n")
			fmt.Printf("│ Pos │ Price         │ Size           │ Time          │ Type     │\n")
			fmt.Printf("├─────┼───────────────┼────────────────┼───────────────┼──────────┤\n")

			for _, entry := range entries {
				pos := entry.Position
				if pos == "" {
					pos = "-"
				}
				fmt.Printf("│ %-3s │ %-13s │ %-14s │ %-13s │ %-8s │\n",
					pos, entry.Price, entry.Size, entry.Time, typeName)
			}
			fmt.Printf("└─────┴───────────────┴────────────────┴───────────────┴──────────┘\n")

		} else if entryType == constants.MdEntryTypeTrade {
			fmt.Printf("┌─────┬───────────────┬────────────────┬───────────────┬───────────┐\n")
			fmt.Printf("│ #   │ Price         │ Size           │ Time          │ Aggressor │\n")
			fmt.Printf("├─────┼───────────────┼────────────────┼───────────────┼───────────┤\n")

			for i, entry := range entries {
				aggressor := entry.Aggressor
				if aggressor == "" {
					aggressor = "-"
				}
				fmt.Printf("│ %-3d │ %-13s │ %-14s │ %-13s │ %-9s │\n",
					i+1, entry.Price, entry.Size, entry.Time, aggressor)
			}
			fmt.Printf("└─────┴───────────────┴────────────────┴───────────────┴───────────┘\n")

		} else {
			fmt.Printf("┌─────┬───────────────┬───────────────┐\n")
			fmt.Printf("│ #   │ Value         │ Time          │\n")
			fmt.Printf("├─────┼───────────────┼───────────────┤\n")

			for i, entry := range entries {
				value := entry.Price
				if entryType == constants.MdEntryTypeVolume {
					value = entry.Size
				}

				fmt.Printf("│ %-3d │ %-13s │ %-13s │\n",
					i+1, value, entry.Time)
			}
			fmt.Printf("└─────┴───────────────┴───────────────┘\n")
		}
	}

	log.Printf("\nTotal Entries Displayed: %d", len(trades))
}

func displayIncrementalTrades(symbol string, trades []Trade) {
	for _, trade := range trades {
		displayRealtimeUpdate(symbol, trade)
	}
	if len(trades) > 0 {
		log.Println("────────────────────────────────────────────────")
	}
}

// displayRealtimeUpdate prints one line per streamed entry.
func displayRealtimeUpdate(symbol string, trade Trade) {
	entryType := trade.EntryType
	if entryType == "" {
		entryType = constants.MdEntryTypeTrade
	}

	switch entryType {
	case constants.MdEntryTypeBid, constants.MdEntryTypeOffer:
		pos := trade.Position
		if pos == "" {
			pos = "-"
		}
		log.Printf("%s %s: %s | Size: %s | Pos: %s",
			symbol, getMdEntryTypeName(entryType), trade.Price, trade.Size, pos)
	case constants.MdEntryTypeTrade:
		aggressor := getAggressorSideDesc(trade.Aggressor)
		if aggressor == "" {
			aggressor = "-"
		}
		log.Printf("%s Trade: %s | Size: %s | Aggressor: %s",
			symbol, trade.Price, trade.Size, aggressor)
	case constants.MdEntryTypeVolume:
		log.Printf("%s Volume: %s", symbol, trade.Size)
	case constants.MdEntryTypeOpen, constants.MdEntryTypeClose, constants.MdEntryTypeHigh, constants.MdEntryTypeLow:
		log.Printf("%s %s: %s", symbol, getMdEntryTypeName(entryType), trade.Price)
	default:
		log.Printf("%s [%s]: %s | Size: %s", symbol, entryType, trade.Price, trade.Size)
	}
}

func getSubscriptionTypeDesc(subType string) string {
	switch subType {
	case "0":
		return "Snapshot Only"
	case "1":
		return "Snapshot + Updates"
	case "2":
		return "Unsubscribe"
	default:
		return "Unknown"
	}
}

func getMarketDataTypeName(msgType string) string {
	switch msgType {
	case constants.MsgTypeMarketDataSnapshot:
		return "Snapshot"
	case constants.MsgTypeMarketDataIncremental:
		return "Incremental"
	default:
		return "Unknown"
	}
}

func getMdEntryTypeName(entryType string) string {
	switch entryType {
	case constants.MdEntryTypeBid:
		return "Bid"
	case constants.MdEntryTypeOffer:
		return "Offer"
	case constants.MdEntryTypeTrade:
		return "Trade"
	case constants.MdEntryTypeOpen:
		return "Open"
	case constants.MdEntryTypeClose:
		return "Close"
	case constants.MdEntryTypeHigh:
		return "High"
	case constants.MdEntryTypeLow:
		return "Low"
	case constants.MdEntryTypeVolume:
		return "Volume"
	default:
		return entryType
	}
}

func getAggressorSideDesc(side string) string {
	switch side {
	case constants.SideBuy:
		return "Buy"
	case constants.SideSell:
		return "Sell"
	default:
		return side
	}
}

func getMdReqRejReasonDesc(reason string) string {
	switch reason {
	case constants.MdReqRejReasonUnknownSymbol:
		return "Unknown Symbol"
	case constants.MdReqRejReasonDuplicateMdReqId:
		return "Duplicate MdReqId"
	case constants.MdReqRejReasonInsufficientBandwidth:
		return "Insufficient Bandwidth"
	case constants.MdReqRejReasonInsufficientPermission:
		return "Insufficient Permissions"
	case constants.MdReqRejReasonInvalidSubscriptionReqType:
		return "Unsupported SubscriptionRequestType"
	case constants.MdReqRejReasonInvalidMarketDepth:
		return "Unsupported MarketDepth"
	case constants.MdReqRejReasonUnsupportedMdUpdateType:
		return "Unsupported MdUpdateType"
	case constants.MdReqRejReasonUnsupportedMdEntryType:
		return "Unsupported MdEntryType"
	case constants.MdReqRejReasonOther:
		return "Other"
	default:
		return reason
	}
}

func displayMarketDataReject(mdReqId, rejReason, reasonDesc, text string) {
	log.Printf("Market Data Request REJECTED")
	log.Printf("   MdReqId: %s", mdReqId)
	log.Printf("   Reason: %s (%s)", rejReason, reasonDesc)
	if text != "" {
		log.Printf("   Text: %s", text)
	}
}

func displayConnectionSuccess() {
	fmt.Print("Connected! Trading session established.\n\n")
}

func displayMarketDataReceived(msgType, symbol, mdReqId string, noMdEntries, seqNum int) {
	log.Printf("Market Data %s for %s (ReqId: %s, Entries: %d, Seq: %d)",
		getMarketDataTypeName(msgType), symbol, mdReqId, noMdEntries, seqNum)
}

func displayAccountInfo(account fixmsg.AccountInfoResponse) {
	log.Printf("Account Info: %s", account.Account)
	if account.FilledAmt != "" {
		log.Printf("   Filled Amount: %s", account.FilledAmt)
	}
	if account.NetAvgPx != "" {
		log.Printf("   Net Avg Price: %s", account.NetAvgPx)
	}
}

// --- Order Entry Display Functions ---

func displayExecutionReport(er fixmsg.ExecutionReport) {
	execTypeDesc := getExecTypeDesc(er.ExecType)
	ordStatusDesc := getOrdStatusDesc(er.OrdStatus)
	sideDesc := getSideDesc(er.Side)

	log.Printf("Execution Report: %s", execTypeDesc)
	log.Printf("   ClOrdID: %s, OrderID: %s", er.ClOrdID, er.OrderID)
	log.Printf("   Symbol: %s, Side: %s, Status: %s", er.Symbol, sideDesc, ordStatusDesc)

	if er.OrderQty != "" {
		log.Printf("   Qty: %s, Filled: %s, Leaves: %s", er.OrderQty, er.CumQty, er.LeavesQty)
	}
	if er.Price != "" {
		log.Printf("   Price: %s", er.Price)
	}
	if er.AvgPx != "" && er.AvgPx != "0" {
		log.Printf("   AvgPx: %s", er.AvgPx)
	}
	if er.LastPx != "" && er.LastQty != "" {
		log.Printf("   Last Fill: %s @ %s", er.LastQty, er.LastPx)
	}
	if er.OrdRejReason != "" {
		log.Printf("   Reject Reason: %s (%s)", er.OrdRejReason, getOrdRejReasonDesc(er.OrdRejReason))
	}
	if er.Text != "" {
		log.Printf("   Text: %s", er.Text)
	}
}

func displayOrderCancelReject(reject fixmsg.OrderCancelReject) {
	responseToDesc := "Cancel"
	if reject.CxlRejResponseTo == constants.CxlRejResponseToReplace {
		responseToDesc = "Replace"
	}

	log.Printf("Order %s Rejected", responseToDesc)
	log.Printf("   ClOrdID: %s, OrigClOrdID: %s", reject.ClOrdID, reject.OrigClOrdID)
	log.Printf("   OrderID: %s, Status: %s", reject.OrderID, getOrdStatusDesc(reject.OrdStatus))
	if reject.CxlRejReason != "" {
		log.Printf("   Reason: %s", reject.CxlRejReason)
	}
	if reject.Text != "" {
		log.Printf("   Text: %s", reject.Text)
	}
}

func displayMassCancelReport(report fixmsg.OrderMassCancelReport) {
	// MassCancelResponse(531): "0" means the request was rejected; anything
	// else names the scope that was cancelled.
	if report.MassCancelResponse == "0" {
		log.Printf("Mass Cancel REJECTED (ClOrdID: %s, Reason: %s)",
			report.ClOrdID, report.MassCancelRejectReason)
		return
	}
	log.Printf("Mass Cancel Accepted (ClOrdID: %s, Response: %s)",
		report.ClOrdID, report.MassCancelResponse)
}

func displaySessionReject(reject fixmsg.Reject) {
	log.Printf("Session Reject (Message Rejected)")
	log.Printf("   RefSeqNum: %d, RefMsgType: %s", reject.RefSeqNum, reject.RefMsgType)
	if reject.RefTagID != 0 {
		log.Printf("   RefTagID: %d", reject.RefTagID)
	}
	if reject.SessionRejectReason != "" {
		log.Printf("   Reason: %s (%s)", reject.SessionRejectReason, getSessionRejectReasonDesc(reject.SessionRejectReason))
	}
	if reject.Text != "" {
		log.Printf("   Text: %s", reject.Text)
	}
}

// --- Order Entry Helper Functions ---

func getExecTypeDesc(execType string) string {
	switch execType {
	case constants.ExecTypeNew:
		return "New Order"
	case constants.ExecTypePartialFill:
		return "Partial Fill"
	case constants.ExecTypeFilled:
		return "Filled"
	case constants.ExecTypeDone:
		return "Done"
	case constants.ExecTypeCanceled:
		return "Canceled"
	case constants.ExecTypePendingCancel:
		return "Pending Cancel"
	case constants.ExecTypeStopped:
		return "Stopped"
	case constants.ExecTypeRejected:
		return "Rejected"
	case constants.ExecTypePendingNew:
		return "Pending New"
	case constants.ExecTypeExpired:
		return "Expired"
	case constants.ExecTypeRestated:
		return "Restated"
	case constants.ExecTypeOrderStatus:
		return "Order Status"
	default:
		return execType
	}
}

func getOrdStatusDesc(status string) string {
	switch status {
	case constants.OrdStatusNew:
		return "New"
	case constants.OrdStatusPartiallyFilled:
		return "Partially Filled"
	case constants.OrdStatusFilled:
		return "Filled"
	case constants.OrdStatusDoneForDay:
		return "Done for Day"
	case constants.OrdStatusCanceled:
		return "Canceled"
	case constants.OrdStatusReplaced:
		return "Replaced"
	case constants.OrdStatusPendingCancel:
		return "Pending Cancel"
	case constants.OrdStatusStopped:
		return "Stopped"
	case constants.OrdStatusRejected:
		return "Rejected"
	case constants.OrdStatusSuspended:
		return "Suspended"
	case constants.OrdStatusPendingNew:
		return "Pending New"
	case constants.OrdStatusCalculated:
		return "Calculated"
	case constants.OrdStatusExpired:
		return "Expired"
	case constants.OrdStatusAcceptedBidding:
		return "Accepted for Bidding"
	case constants.OrdStatusPendingReplace:
		return "Pending Replace"
	default:
		return status
	}
}

func getSideDesc(side string) string {
	switch side {
	case constants.SideBuy:
		return "Buy"
	case constants.SideSell:
		return "Sell"
	default:
		return side
	}
}

func getOrdRejReasonDesc(reason string) string {
	switch reason {
	case constants.OrdRejReasonBrokerOption:
		return "Broker Option"
	case constants.OrdRejReasonUnknownSymbol:
		return "Unknown Symbol"
	case constants.OrdRejReasonExchangeClosed:
		return "Exchange Closed"
	case constants.OrdRejReasonExceedsLimit:
		return "Exceeds Limit"
	case constants.OrdRejReasonTooLate:
		return "Too Late"
	case constants.OrdRejReasonUnknownOrder:
		return "Unknown Order"
	case constants.OrdRejReasonDuplicateOrder:
		return "Duplicate Order"
	case constants.OrdRejReasonOther:
		return "Other"
	default:
		return reason
	}
}

func getSessionRejectReasonDesc(reason string) string {
	switch reason {
	case constants.SessionRejectReasonInvalidTag:
		return "Invalid Tag"
	case constants.SessionRejectReasonRequiredTagMissing:
		return "Required Tag Missing"
	case constants.SessionRejectReasonTagNotDefined:
		return "Tag Not Defined"
	case constants.SessionRejectReasonUndefinedTag:
		return "Undefined Tag"
	case constants.SessionRejectReasonTagWithoutValue:
		return "Tag Without Value"
	case constants.SessionRejectReasonValueOutOfRange:
		return "Value Out of Range"
	case constants.SessionRejectReasonIncorrectDataFormat:
		return "Incorrect Data Format"
	case constants.SessionRejectReasonDecryptionProblem:
		return "Decryption Problem"
	case constants.SessionRejectReasonSignatureProblem:
		return "Signature Problem"
	case constants.SessionRejectReasonCompIDProblem:
		return "CompID Problem"
	case constants.SessionRejectReasonSendingTimeAccuracy:
		return "Sending Time Accuracy"
	case constants.SessionRejectReasonInvalidMsgType:
		return "Invalid Msg Type"
	default:
		return reason
	}
}
