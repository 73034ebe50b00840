package grpc

import (
	"errors"
	"strings"

	"github.com/example/nodeplugin/pkg/plugin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCodes lists, per code, the protocol errors that travel with it. The
// first entry is used when the message matches none of them.
var statusCodes = map[codes.Code][]error{
	codes.FailedPrecondition: {plugin.ErrNotInitialized, plugin.ErrInitFailed, plugin.ErrProtocolVersion},
	codes.InvalidArgument:    {plugin.ErrValidation, plugin.ErrAmbiguousStop},
	codes.ResourceExhausted:  {plugin.ErrBackpressure},
	codes.AlreadyExists:      {plugin.ErrDuplicateRun},
}

// toStatus turns a protocol error into a grpc status error. Errors that
// already carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for code, sentinels := range statusCodes {
		for _, sentinel := range sentinels {
			if errors.Is(err, sentinel) {
				return status.Error(code, err.Error())
			}
		}
	}
	return status.Error(codes.Internal, err.Error())
}

// RemoteError is a protocol error received from a plugin. It unwraps to the
// matching sentinel of package plugin and still reports its grpc status.
type RemoteError struct {
	sentinel error
	st       *status.Status
}

func (e *RemoteError) Error() string {
	return e.st.Message()
}

func (e *RemoteError) Unwrap() error {
	return e.sentinel
}

func (e *RemoteError) GRPCStatus() *status.Status {
	return e.st
}

// fromStatus restores the protocol error behind a status error. Transport
// errors and codes without a protocol meaning are returned unchanged.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st == nil {
		return err
	}
	sentinels, ok := statusCodes[st.Code()]
	if !ok {
		return err
	}
	for _, sentinel := range sentinels {
		if strings.Contains(st.Message(), sentinel.Error()) {
			return &RemoteError{sentinel: sentinel, st: st}
		}
	}
	return &RemoteError{sentinel: sentinels[0], st: st}
}
