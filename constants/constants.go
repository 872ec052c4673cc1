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

package constants

// --- Message Types ---
const (
	// Admin Messages
	MsgTypeLogon            = "A" // Logon
	MsgTypeReject           = "3" // Session-level Reject
	MsgTypeBusinessReject   = "j" // Business Message Reject
	MsgTypeMarketDataReject = "Y" // Market Data Request Reject

	// Market Data Messages
	MsgTypeMarketDataRequest     = "V" // Market Data Request
	MsgTypeMarketDataSnapshot    = "W" // Market Data Snapshot/Full Refresh
	MsgTypeMarketDataIncremental = "X" // Market Data Incremental Refresh

	// Order Entry Messages
	MsgTypeNewOrderSingle       = "D" // New Order Single
	MsgTypeOrderCancelRequest   = "F" // Order Cancel Request
	MsgTypeOrderCancelReplace   = "G" // Order Cancel/Replace Request
	MsgTypeOrderStatusRequest   = "H" // Order Status Request
	MsgTypeExecutionReport      = "8" // Execution Report
	MsgTypeOrderCancelReject    = "9" // Order Cancel Reject
	MsgTypeQuoteRequest         = "R" // Quote Request
	MsgTypeQuote                = "S" // Quote
	MsgTypeQuoteAcknowledgement = "b" // Quote Acknowledgement
)

// --- Protocol Constants ---
const (
	FixTimeFormat     = "20060102-15:04:05.000"
	FixBeginString    = "FIX.4.4"
	EncryptMethodNone = "0"
	HeartBtInterval   = "30"
	DropCopyFlagYes   = "Y"
	MsgSeqNumInit     = "1"
)

// --- Subscription Request Types ---
const (
	SubscriptionRequestTypeSnapshot    = "0" // Snapshot
	SubscriptionRequestTypeSubscribe   = "1" // Subscribe
	SubscriptionRequestTypeUnsubscribe = "2" // Unsubscribe
)

// --- MD Entry Types ---
const (
	MdEntryTypeBid    = "0" // Bid
	MdEntryTypeOffer  = "1" // Offer/Ask
	MdEntryTypeTrade  = "2" // Trade
	MdEntryTypeOpen   = "4" // Open
	MdEntryTypeClose  = "5" // Close
	MdEntryTypeHigh   = "7" // High
	MdEntryTypeLow    = "8" // Low
	MdEntryTypeVolume = "B" // Volume
)

// --- MD Update Types ---
const (
	MdUpdateTypeFullRefresh = "0" // Full refresh
	MdUpdateTypeIncremental = "1" // Incremental refresh
)

// --- Order Types (Tag 40) ---
const (
	OrdTypeMarket           = "1" // Market
	OrdTypeLimit            = "2" // Limit
	OrdTypeStop             = "3" // Stop
	OrdTypeStopLimit        = "4" // Stop Limit
	OrdTypePreviouslyQuoted = "D" // Previously Quoted (for RFQ)
)

// --- Side (Tag 54) ---
const (
	SideBuy  = "1" // Buy
	SideSell = "2" // Sell
)

// --- Time In Force (Tag 59) ---
const (
	TimeInForceGTC = "1" // Good Till Cancel
	TimeInForceIOC = "3" // Immediate or Cancel
	TimeInForceFOK = "4" // Fill or Kill
	TimeInForceGTD = "6" // Good Till Date
)

// --- Target Strategy (Tag 847) ---
const (
	TargetStrategyLimit     = "L"  // Limit order
	TargetStrategyMarket    = "M"  // Market order
	TargetStrategyTWAP      = "T"  // TWAP order
	TargetStrategyVWAP      = "V"  // VWAP order
	TargetStrategyStopLimit = "SL" // Stop Limit order
	TargetStrategyRFQ       = "R"  // RFQ order
)

// --- Order Status (Tag 39) ---
const (
	OrdStatusNew             = "0" // New
	OrdStatusPartiallyFilled = "1" // Partially Filled
	OrdStatusFilled          = "2" // Filled
	OrdStatusDoneForDay      = "3" // Done for Day
	OrdStatusCanceled        = "4" // Canceled
	OrdStatusReplaced        = "5" // Replaced
	OrdStatusPendingCancel   = "6" // Pending Cancel
	OrdStatusStopped         = "7" // Stopped
	OrdStatusRejected        = "8" // Rejected
	OrdStatusSuspended       = "9" // Suspended
	OrdStatusPendingNew      = "A" // Pending New
	OrdStatusCalculated      = "B" // Calculated
	OrdStatusExpired         = "C" // Expired
	OrdStatusAcceptedBidding = "D" // Accepted for Bidding
	OrdStatusPendingReplace  = "E" // Pending Replace
)

// --- Execution Type (Tag 150) ---
const (
	ExecTypeNew           = "0" // New Order
	ExecTypePartialFill   = "1" // Partial Fill
	ExecTypeFilled        = "2" // Filled
	ExecTypeDone          = "3" // Done
	ExecTypeCanceled      = "4" // Canceled
	ExecTypePendingCancel = "6" // Pending Cancel
	ExecTypeStopped       = "7" // Stopped
	ExecTypeRejected      = "8" // Rejected
	ExecTypePendingNew    = "A" // Pending New
	ExecTypeExpired       = "C" // Expired
	ExecTypeRestated      = "D" // Restated
	ExecTypeOrderStatus   = "I" // Order Status
)

// --- Order Reject Reason (Tag 103) ---
const (
	OrdRejReasonBrokerOption   = "0"  // Broker option
	OrdRejReasonUnknownSymbol  = "1"  // Unknown symbol
	OrdRejReasonExchangeClosed = "2"  // Exchange closed
	OrdRejReasonExceedsLimit   = "3"  // Order exceeds limit
	OrdRejReasonTooLate        = "4"  // Too late to enter
	OrdRejReasonUnknownOrder   = "5"  // Unknown Order
	OrdRejReasonDuplicateOrder = "6"  // Duplicate Order
	OrdRejReasonOther          = "99" // Other
)

// --- Cancel Reject Response To (Tag 434) ---
const (
	CxlRejResponseToCancel  = "1" // Order Cancel Request (F)
	CxlRejResponseToReplace = "2" // Order Cancel/Replace Request (G)
)

// --- Quote Acknowledgement Status (Tag 297) ---
const (
	QuoteAckStatusRejected = "5" // Rejected
)

// --- Quote Reject Reason (Tag 300) ---
const (
	QuoteRejectReasonUnknownSymbol  = "1"  // Unknown symbol
	QuoteRejectReasonExchangeClosed = "2"  // Exchange closed
	QuoteRejectReasonExceedsLimit   = "3"  // Quote Request exceeds limit
	QuoteRejectReasonDuplicate      = "6"  // Duplicate Quote
	QuoteRejectReasonInvalidPrice   = "8"  // Invalid price
	QuoteRejectReasonOther          = "99" // Other
)

// --- Session Reject Reason (Tag 373) ---
const (
	SessionRejectReasonInvalidTag          = "0"
	SessionRejectReasonRequiredTagMissing  = "1"
	SessionRejectReasonTagNotDefined       = "2"
	SessionRejectReasonUndefinedTag        = "3"
	SessionRejectReasonTagWithoutValue     = "4"
	SessionRejectReasonValueOutOfRange     = "5"
	SessionRejectReasonIncorrectDataFormat = "6"
	SessionRejectReasonDecryptionProblem   = "7"
	SessionRejectReasonSignatureProblem    = "8"
	SessionRejectReasonCompIDProblem       = "9"
	SessionRejectReasonSendingTimeAccuracy = "10"
	SessionRejectReasonInvalidMsgType      = "11"
)

// --- Business Reject Reason (Tag 380) ---
const (
	BusinessRejectReasonOther               = "0"
	BusinessRejectReasonUnknownID           = "1"
	BusinessRejectReasonUnknownSecurity     = "2"
	BusinessRejectReasonUnsupportedMsgType  = "3"
	BusinessRejectReasonApplicationNotAvail = "4"
	BusinessRejectReasonCondRequiredMissing = "5"
	BusinessRejectReasonNotAuthorized       = "6"
)

// --- Execution Instruction (Tag 18) ---
// Per Coinbase Prime FIX API: https://docs.cdp.coinbase.com/prime/fix-api/order-entry-messages
// ExecInst must be "A" for Post Only orders (maker-only).
const (
	ExecInstPostOnly = "A" // Post Only (maker-only order)
)

// --- Handling Instruction (Tag 21) ---
const (
	HandlInstAutomatedNoIntervention = "1"
)

// --- Commission Type (Tag 13) ---
const (
	CommTypeAbsolute = "3" // Absolute (fixed amount)
)

// --- Misc Fee Type (Tag 139) ---
// Per Coinbase Prime FIX API Execution Report:
// https://docs.cdp.coinbase.com/prime/fix-api/order-entry-messages
// MiscFees is a repeating group with Tags 136 (count), 137 (amt), 138 (curr), 139 (type).
const (
	MiscFeeTypeFinancing  = "1" // Financing Fee
	MiscFeeTypeClientComm = "2" // Client Commission
	MiscFeeTypeCESComm    = "3" // CES Commission
	MiscFeeTypeVenueFee   = "4" // Venue Fee
)

// --- Standard FIX Tags ---
const (
	TagAccount        = 1
	TagAvgPx          = 6
	TagBeginString    = 8
	TagClOrdID        = 11
	TagCommission     = 12
	TagCommType       = 13
	TagCumQty         = 14
	TagExecID         = 17
	TagExecInst       = 18
	TagHandlInst      = 21
	TagLastMkt        = 30
	TagLastPx         = 31
	TagLastShares     = 32
	TagMsgSeqNum      = 34
	TagMsgType        = 35
	TagOrderID        = 37
	TagOrderQty       = 38
	TagOrdStatus      = 39
	TagOrdType        = 40
	TagOrigClOrdID    = 41
	TagPrice          = 44
	TagRefSeqNum      = 45
	TagSenderCompId   = 49
	TagSenderSubID    = 50
	TagSendingTime    = 52
	TagSide           = 54
	TagSymbol         = 55
	TagText           = 58
	TagTimeInForce    = 59
	TagTransactTime   = 60
	TagTargetCompId   = 56
	TagValidUntilTime = 62
	TagHmac           = 96
	TagEncryptMethod  = 98
	TagStopPx         = 99
	TagOrdRejReason   = 103
	TagCxlRejReason   = 102
	TagHeartBtInt     = 108
	TagQuoteID        = 117
	TagExpireTime     = 126
	TagQuoteReqID     = 131
	TagBidPx          = 132
	TagOfferPx        = 133
	TagBidSize        = 134
	TagOfferSize      = 135
	TagNoMiscFees     = 136
	TagMiscFeeAmt     = 137
	TagMiscFeeCurr    = 138
	TagMiscFeeType    = 139
	TagNoRelatedSym   = 146
	TagExecType       = 150
	TagLeavesQty      = 151
	TagCashOrderQty   = 152
	TagEffectiveTime  = 168
	TagMaxShow        = 210

	// Market Data Tags
	TagMdReqId                 = 262
	TagSubscriptionRequestType = 263
	TagMarketDepth             = 264
	TagMdUpdateType            = 265
	TagNoMdEntryTypes          = 267
	TagNoMdEntries             = 268
	TagMdEntryType             = 269
	TagMdEntryPx               = 270
	TagMdEntrySize             = 271
	TagMdEntryTime             = 273
	TagMdReqRejReason          = 281
	TagMdEntryPositionNo       = 290

	// Quote Tags
	TagQuoteAckStatus    = 297
	TagQuoteRejectReason = 300

	// Reject Tags
	TagRefTagID             = 371
	TagRefMsgType           = 372
	TagSessionRejectReason  = 373
	TagBusinessRejectReason = 380

	// Order Tags
	TagCxlRejResponseTo  = 434
	TagUsername          = 553
	TagPassword          = 554
	TagTargetStrategy    = 847
	TagParticipationRate = 849
	TagDefaultApplVerId  = 1137

	// Coinbase Custom Tags
	TagAggressorSide = 2446
	TagDropCopyFlag  = 9406
	TagAccessKey     = 9407
	TagFilledAmt     = 8002
	TagNetAvgPrice   = 8006
	TagIsRaiseExact  = 8999
)

// --- MD Rejection Reasons ---
const (
	MdReqRejReasonUnknownSymbol              = "0"
	MdReqRejReasonDuplicateMdReqId           = "1"
	MdReqRejReasonInsufficientBandwidth      = "2"
	MdReqRejReasonInsufficientPermission     = "3"
	MdReqRejReasonInvalidSubscriptionReqType = "4"
	MdReqRejReasonInvalidMarketDepth         = "5"
	MdReqRejReasonUnsupportedMdUpdateType    = "6"
	MdReqRejReasonOther                      = "7"
	MdReqRejReasonUnsupportedMdEntryType     = "8"
)
