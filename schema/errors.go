package schema

import "errors"

var (
	// ErrChannelClosed indicates the event channel is no longer usable.
	ErrChannelClosed = errors.New("event channel closed")
	// ErrGestureInProgress indicates a stroke gesture is already open.
	ErrGestureInProgress = errors.New("gesture in progress")
	// ErrNoGesture indicates no stroke gesture is open.
	ErrNoGesture = errors.New("no gesture in progress")
	// ErrApplyingRemote indicates local input arrived while a remote action
	// was being applied.
	ErrApplyingRemote = errors.New("applying remote action")
	// ErrBadSnapshot indicates a snapshot blob could not be decoded.
	ErrBadSnapshot = errors.New("undecodable snapshot")
)
