package sim

import (
	"errors"
	"fmt"

	"github.com/Charana123/swarm/go-swarm/wire"
)

// Kinds of protocol violation.
var (
	ErrIllegalRequest = errors.New("illegal request")
	ErrIllegalUpload  = errors.New("illegal upload")
)

// Request rules
var (
	ErrBadPieceID        = errors.New("request asks for non-existent piece")
	ErrUnknownPeer       = errors.New("request mentions non-existent peer")
	ErrWrongRequester    = errors.New("request has wrong peer id")
	ErrBadStartBlock     = errors.New("request has bad start block")
	ErrPieceNotAvailable = errors.New("asking for piece peer does not have")
)

// Upload rules
var (
	ErrSelfUpload        = errors.New("can't upload to yourself")
	ErrWrongUploader     = errors.New("upload from id is not the peer's id")
	ErrNegativeBandwidth = errors.New("upload bandwidth must be non-negative")
	ErrBandwidthExceeded = errors.New("can't upload more than limit")
)

// IllegalRequestError is returned when a strategy hands back a Request that
// breaks the protocol. The run cannot continue.
type IllegalRequestError struct {
	PeerID  string
	Rule    error
	Request wire.Request
}

func (e *IllegalRequestError) Error() string {
	return fmt.Sprintf("%v from %s: %v. Bad element: %s", ErrIllegalRequest, e.PeerID, e.Rule, e.Request)
}

func (e *IllegalRequestError) Unwrap() []error {
	return []error{ErrIllegalRequest, e.Rule}
}

// IllegalUploadError is the Upload counterpart of IllegalRequestError. For
// ErrBandwidthExceeded no single Upload is at fault; Upload is then the zero
// value and Detail names the limit.
type IllegalUploadError struct {
	PeerID string
	Rule   error
	Upload wire.Upload
	Detail string
}

func (e *IllegalUploadError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v from %s: %v. %s", ErrIllegalUpload, e.PeerID, e.Rule, e.Detail)
	}
	return fmt.Sprintf("%v from %s: %v. Bad element: %s", ErrIllegalUpload, e.PeerID, e.Rule, e.Upload)
}

func (e *IllegalUploadError) Unwrap() []error {
	return []error{ErrIllegalUpload, e.Rule}
}
