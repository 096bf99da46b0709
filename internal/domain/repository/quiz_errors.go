package repository

import "errors"

var (
	// ErrDuplicateAttemptNumber означает, что параллельный запрос уже занял номер попытки.
	ErrDuplicateAttemptNumber = errors.New("attempt number already taken")
	// ErrDuplicateLedgerEntry означает, что за эту активность очки уже начислены.
	ErrDuplicateLedgerEntry = errors.New("ledger entry already exists")
)
