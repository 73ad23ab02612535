package contract

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrProtocolViolation    = errors.New("protocol violation")
	ErrUserInput            = errors.New("user input error")
	ErrConsistencyViolation = errors.New("consistency violation")
)

var (
	ErrDuplicateStateBinding = fmt.Errorf("%w: duplicate state binding", ErrConfiguration)
	ErrUnboundState          = fmt.Errorf("%w: unbound state", ErrConfiguration)

	ErrInvalidState       = fmt.Errorf("%w: invalid dialog state", ErrProtocolViolation)
	ErrEmptyMessage       = fmt.Errorf("%w: empty message", ErrProtocolViolation)
	ErrUnknownEntityType  = fmt.Errorf("%w: unknown entity type", ErrProtocolViolation)
	ErrMalformedPayload   = fmt.Errorf("%w: malformed payload", ErrProtocolViolation)
	ErrMissingCarriedData = fmt.Errorf("%w: missing carried data", ErrProtocolViolation)

	ErrUnparseableDate = fmt.Errorf("%w: unparseable date", ErrUserInput)

	ErrKeyNotPersistent = fmt.Errorf("%w: key not persistent", ErrConsistencyViolation)
)
