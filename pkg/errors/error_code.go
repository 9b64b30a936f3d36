package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidVersion       ErrorCode = 104
	ErrCodeVersionMismatch      ErrorCode = 105
	ErrCodeInvalidSymbol        ErrorCode = 106

	// Data errors (200-299)
	ErrCodeInsufficientData      ErrorCode = 200
	ErrCodeDataNotFound          ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeInvalidCandle         ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Risk errors (400-499)
	ErrCodeRiskViolation    ErrorCode = 400
	ErrCodeMaxTradesReached ErrorCode = 401
	ErrCodeDrawdownExceeded ErrorCode = 402
	ErrCodePositionSizeZero ErrorCode = 403
	ErrCodePositionExists   ErrorCode = 404
	ErrCodePositionNotFound ErrorCode = 405

	// Gateway errors (500-599)
	ErrCodeNetwork         ErrorCode = 500
	ErrCodeExchange        ErrorCode = 501
	ErrCodeOrderFailed     ErrorCode = 502
	ErrCodeGatewayTimeout  ErrorCode = 503
	ErrCodeInvalidProvider ErrorCode = 504

	// Backtest errors (600-699)
	ErrCodeBacktestFailed      ErrorCode = 600
	ErrCodeMonteCarloFailed    ErrorCode = 601
	ErrCodeBacktestWriteFailed ErrorCode = 602

	// Ledger errors (700-799)
	ErrCodeLedgerNotInitialized ErrorCode = 700
	ErrCodeLedgerWriteFailed    ErrorCode = 701

	// Engine errors (800-899)
	ErrCodeEngineNotInitialized ErrorCode = 800
	ErrCodeCallbackFailed       ErrorCode = 801
	ErrCodeCycleFailed          ErrorCode = 802
)
