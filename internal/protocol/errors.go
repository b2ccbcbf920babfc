package protocol

// Codes carried in RESULT.code.
const (
	// Frame could not be decoded or was not expected at this point.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	// Inbox full; the host may retry the event.
	ErrWorldBusy = "E_WORLD_BUSY"

	ErrBadRequest     = "E_BAD_REQUEST"
	ErrNoPermission   = "E_NO_PERMISSION"
	ErrInvalidTarget  = "E_INVALID_TARGET"
	ErrConflict       = "E_CONFLICT"
	ErrBlocked        = "E_BLOCKED"
	ErrNotCurrency    = "E_NOT_CURRENCY"
	ErrSignUnreadable = "E_SIGN_UNREADABLE"
	ErrInternal       = "E_INTERNAL"
)

// Codes lists every code in the order the result schema enumerates them.
var Codes = []string{
	ErrProtoBadRequest,
	ErrWorldBusy,
	ErrBadRequest,
	ErrNoPermission,
	ErrInvalidTarget,
	ErrConflict,
	ErrBlocked,
	ErrNotCurrency,
	ErrSignUnreadable,
	ErrInternal,
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	for _, c := range Codes {
		if c == code {
			return true
		}
	}
	return false
}
