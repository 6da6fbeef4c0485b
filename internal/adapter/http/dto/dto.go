package dto

import "time"

// RegisterRequest is the request body for account registration. Email format is checked by the
// auth service after trimming and lower-casing, since binding runs before SanitizeStruct.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,max=254" sanitize:"trim"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	Pin      string `json:"pin" binding:"required,pin" sanitize:"-"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	Message   string `json:"message"`
	AccountID string `json:"accountId"`
}

// LoginRequest is the request body for the password step of login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" sanitize:"trim"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// VerifyOTPRequest is the request body for the OTP step of login.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required" sanitize:"trim"`
	OTP   string `json:"otp" binding:"required,numeric,max=10" sanitize:"trim"`
}

// TokenResponse is the response body for a completed login.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// MessageResponse carries a user-facing confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// BalanceResponse is the response body for the balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// SendRequest is the request body for a transfer.
type SendRequest struct {
	ReceiverEmail string `json:"receiverEmail" binding:"required" sanitize:"trim"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Pin           string `json:"pin" binding:"required" sanitize:"-"`
	Message       string `json:"message" sanitize:"-"`
}

// SendResponse is the response body for a settled transfer.
type SendResponse struct {
	Message       string `json:"message"`
	TransactionID int64  `json:"transactionId"`
}

// TransferEntry is one row of the history view. Amount and message stay sealed. ID is the value
// the client echoes back as transactionId on /history/decrypt.
type TransferEntry struct {
	ID               int64     `json:"_id"`
	SenderEmail      string    `json:"senderEmail"`
	ReceiverEmail    string    `json:"receiverEmail"`
	EncryptedAmount  string    `json:"encryptedAmount"`
	EncryptedMessage string    `json:"encryptedMessage"`
	SettledAt        time.Time `json:"settledAt"`
}

// HistoryResponse is the response body for the history view.
type HistoryResponse struct {
	Sent     []TransferEntry `json:"sent"`
	Received []TransferEntry `json:"received"`
}

// DecryptRequest is the request body for opening one transaction.
type DecryptRequest struct {
	TransactionID int64  `json:"transactionId" binding:"required,gt=0"`
	OTP           string `json:"otp" binding:"required,numeric,max=10" sanitize:"trim"`
}

// DecryptResponse is the response body for an opened transaction.
type DecryptResponse struct {
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// ChainBlockResponse is one block of the transaction chain. Data is the hashed transaction
// reference ("genesis" or the decimal id); Timestamp is informational and not hashed.
type ChainBlockResponse struct {
	Index         int64     `json:"index"`
	TransactionID *int64    `json:"transactionId"` // null for genesis
	Data          string    `json:"data"`
	Timestamp     time.Time `json:"timestamp"`
	PrevHash      string    `json:"prevHash"`
	Hash          string    `json:"hash"`
}

// ChainResponse is the response body for the chain listing.
type ChainResponse struct {
	Blocks []ChainBlockResponse `json:"blocks"`
}

// ChainVerifyResponse is the response body for the integrity check.
type ChainVerifyResponse struct {
	Valid         bool   `json:"valid"`
	Length        int    `json:"length"`
	FirstBadIndex *int64 `json:"firstBadIndex,omitempty"`
}

// ChainQuery holds the paging parameters of GET /chain.
type ChainQuery struct {
	From  int64 `form:"from" binding:"min=0"`
	Limit int   `form:"limit" binding:"min=0,max=1000"`
}
