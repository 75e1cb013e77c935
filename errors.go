package spy

import (
	"errors"
	"fmt"
)

// Errors reported by the interception core. They are returned wrapped with
// the offending target and member, so match them with errors.Is.
var (
	// ErrInvalidArgument reports malformed call-site input, such as a name
	// that is neither a string nor a name to value mapping.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSpyNotFound reports removal of a member that has no active spy.
	ErrSpyNotFound = errors.New("spy not found")
	// ErrAlreadyHooked reports hooking the same spy instance twice.
	ErrAlreadyHooked = errors.New("spy already hooked")
	// ErrNotHooked reports unhooking a spy that is not hooked.
	ErrNotHooked = errors.New("spy not hooked")
	// ErrOutOfOrderUnhook reports removal of a layer that is not the
	// visible top of its interception chain.
	ErrOutOfOrderUnhook = errors.New("spy unhooked out of order")
	// ErrNoSuchMember reports hooking a member the target does not have.
	ErrNoSuchMember = errors.New("no such member")
	// ErrInvalidSpyKind reports an agency asked to track something that is
	// not a Subroutine, Constant or Double.
	ErrInvalidSpyKind = errors.New("invalid spy kind")
)

func invalidArgument(arg any) error {
	return fmt.Errorf("%w: %T is an invalid input, only string and map[string]any are accepted", ErrInvalidArgument, arg)
}

func memberError(err error, target any, name string) error {
	return fmt.Errorf("%w: %s on %s", err, name, describeTarget(target))
}
