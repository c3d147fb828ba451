// Package token encodes UI actions into the opaque callback strings
// carried by inline keyboard buttons and decodes them back.
//
// Grammar: ACTION[_ARG]* with "_" as the sole delimiter. A bare integer
// is the detail-view action for that reservation. Tokens are stateless
// and regenerated on every render; they must stay within the
// transport's 64-byte callback payload limit.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxLen is the transport's callback payload ceiling, in bytes.
const MaxLen = 64

// ErrUnrecognized marks a token outside the grammar: unknown action
// prefix, wrong argument arity or a non-numeric id. Callers degrade it
// to a generic "not implemented" response.
var ErrUnrecognized = errors.New("unrecognized callback token")

// Filter selects which reservation state subset a listing shows.
type Filter string

const (
	FilterDefault Filter = "def"
	FilterAll     Filter = "all"
)

func parseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterDefault, FilterAll:
		return Filter(s), nil
	default:
		return FilterDefault, ErrUnrecognized
	}
}

// Action is one decoded callback. The set of implementations is closed;
// handlers dispatch with a type switch.
type Action interface {
	Encode() string
	action()
}

// ListReservations re-renders the listing at the given view.
type ListReservations struct {
	Filter Filter
	Page   int
}

// PageTo navigates the listing to another page.
type PageTo struct {
	Filter Filter
	Page   int
}

// OpenReservation opens the detail view of one reservation.
type OpenReservation struct {
	PK int
}

// Agreement sends the loan agreement document of one reservation.
type Agreement struct {
	PK int
}

// AskTier is a user requesting a tier for themselves.
type AskTier struct {
	Tier        int
	RequesterID int64
}

// ApproveTier is a validator approving a pending tier request.
type ApproveTier struct {
	Tier        int
	RequesterID int64
}

// DenyTier is a validator denying a pending tier request.
type DenyTier struct {
	Tier        int
	RequesterID int64
}

// DeleteMessage dismisses the message carrying the button.
type DeleteMessage struct{}

func (ListReservations) action() {}
func (PageTo) action()           {}
func (OpenReservation) action()  {}
func (Agreement) action()        {}
func (AskTier) action()          {}
func (ApproveTier) action()      {}
func (DenyTier) action()         {}
func (DeleteMessage) action()    {}

func (a ListReservations) Encode() string {
	return fmt.Sprintf("reservations_%s_%d", a.Filter, a.Page)
}

func (a PageTo) Encode() string {
	return fmt.Sprintf("page_%s_%d", a.Filter, a.Page)
}

func (a OpenReservation) Encode() string {
	return strconv.Itoa(a.PK)
}

func (a Agreement) Encode() string {
	return fmt.Sprintf("agreement_%d", a.PK)
}

func (a AskTier) Encode() string {
	return fmt.Sprintf("ask_%d_%d", a.Tier, a.RequesterID)
}

func (a ApproveTier) Encode() string {
	return fmt.Sprintf("ok_%d_%d", a.Tier, a.RequesterID)
}

func (a DenyTier) Encode() string {
	return fmt.Sprintf("no_%d_%d", a.Tier, a.RequesterID)
}

func (DeleteMessage) Encode() string {
	return "delete_"
}

// Decode parses a raw callback payload into its action. Anything outside
// the grammar returns ErrUnrecognized; Decode never panics on input.
func Decode(data string) (Action, error) {
	if data == "" || len(data) > MaxLen {
		return nil, ErrUnrecognized
	}

	// A bare unsigned integer opens the reservation detail view.
	if isDigits(data) {
		pk, err := strconv.Atoi(data)
		if err != nil {
			return nil, ErrUnrecognized
		}
		return OpenReservation{PK: pk}, nil
	}

	parts := strings.Split(data, "_")
	switch parts[0] {
	case "reservations":
		filter, page, err := viewArgs(parts)
		if err != nil {
			return nil, err
		}
		return ListReservations{Filter: filter, Page: page}, nil

	case "page":
		filter, page, err := viewArgs(parts)
		if err != nil {
			return nil, err
		}
		return PageTo{Filter: filter, Page: page}, nil

	case "agreement":
		if len(parts) != 2 {
			return nil, ErrUnrecognized
		}
		pk, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, ErrUnrecognized
		}
		return Agreement{PK: pk}, nil

	case "ask":
		tier, requester, err := grantArgs(parts)
		if err != nil {
			return nil, err
		}
		return AskTier{Tier: tier, RequesterID: requester}, nil

	case "ok":
		tier, requester, err := grantArgs(parts)
		if err != nil {
			return nil, err
		}
		return ApproveTier{Tier: tier, RequesterID: requester}, nil

	case "no":
		tier, requester, err := grantArgs(parts)
		if err != nil {
			return nil, err
		}
		return DenyTier{Tier: tier, RequesterID: requester}, nil

	case "delete":
		if len(parts) != 2 || parts[1] != "" {
			return nil, ErrUnrecognized
		}
		return DeleteMessage{}, nil
	}
	return nil, ErrUnrecognized
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func viewArgs(parts []string) (Filter, int, error) {
	if len(parts) != 3 {
		return FilterDefault, 0, ErrUnrecognized
	}
	filter, err := parseFilter(parts[1])
	if err != nil {
		return FilterDefault, 0, err
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 0 {
		return FilterDefault, 0, ErrUnrecognized
	}
	return filter, page, nil
}

func grantArgs(parts []string) (int, int64, error) {
	if len(parts) != 3 {
		return 0, 0, ErrUnrecognized
	}
	tier, err := strconv.Atoi(parts[1])
	if err != nil || tier < 0 {
		return 0, 0, ErrUnrecognized
	}
	requester, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, ErrUnrecognized
	}
	return tier, requester, nil
}
