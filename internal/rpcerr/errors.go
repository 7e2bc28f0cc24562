// Package rpcerr defines the stable JSON-RPC error codes shared by the
// Witness Generator and the Prover Proxy.
//
// go-ethereum's rpc package serializes any error implementing the
// unexported `Error() string` + `ErrorCode() int` pair as `{code, message}`
// instead of collapsing it to the default -32603 internal-error code; Error
// below satisfies that contract.
package rpcerr

import "fmt"

// Code is a stable, wire-visible JSON-RPC error code.
type Code int

const (
	// CodeInvalidInputHash: malformed or unknown hash.
	CodeInvalidInputHash Code = 1000
	// CodeAlreadyInProgress: Witness Generator single-flight conflict.
	CodeAlreadyInProgress Code = 1001
	// CodeStorageOrBusy: DB error or server-busy.
	CodeStorageOrBusy Code = 2000
	// CodeInvalidParams: invalid parameters (Prover Proxy).
	CodeInvalidParams Code = 3000
	// CodeFailedToExecuteWitness: witness execution failed (Prover Proxy).
	CodeFailedToExecuteWitness Code = 3001
	// CodeRemoteNetwork: remote proving network error.
	CodeRemoteNetwork Code = 4000
)

// Error is a JSON-RPC error carrying one of the stable Codes above. It
// implements the (Error() string, ErrorCode() int) pair go-ethereum/rpc
// looks for when serializing handler errors.
type Error struct {
	Code    Code
	Message string
}

// New builds an Error, defaulting Message to a generic description of code
// when msg is empty.
func New(code Code, msg string) *Error {
	if msg == "" {
		msg = defaultMessage(code)
	}
	return &Error{Code: code, Message: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// ErrorCode implements go-ethereum/rpc's error-with-code interface.
func (e *Error) ErrorCode() int {
	return int(e.Code)
}

func defaultMessage(code Code) string {
	switch code {
	case CodeInvalidInputHash:
		return "invalid input hash"
	case CodeAlreadyInProgress:
		return "another request is already in progress"
	case CodeStorageOrBusy:
		return "storage error or server busy"
	case CodeInvalidParams:
		return "invalid parameters"
	case CodeFailedToExecuteWitness:
		return "failed to execute witness"
	case CodeRemoteNetwork:
		return "remote proving network error"
	default:
		return "unexpected error"
	}
}

// InvalidInputHash wraps a hash-parsing error.
func InvalidInputHash(err error) *Error {
	return New(CodeInvalidInputHash, err.Error())
}

// AlreadyInProgress reports a Witness Generator single-flight conflict for
// the given other in-flight key description.
func AlreadyInProgress(detail string) *Error {
	return New(CodeAlreadyInProgress, "another request is in progress: "+detail)
}

// StorageOrBusy wraps a storage-layer failure.
func StorageOrBusy(err error) *Error {
	return New(CodeStorageOrBusy, err.Error())
}

// InvalidParams wraps a Prover Proxy parameter validation failure.
func InvalidParams(err error) *Error {
	return New(CodeInvalidParams, err.Error())
}

// FailedToExecuteWitness wraps a witness execution failure.
func FailedToExecuteWitness(err error) *Error {
	return New(CodeFailedToExecuteWitness, err.Error())
}

// RemoteNetwork wraps a remote proving network failure.
func RemoteNetwork(err error) *Error {
	return New(CodeRemoteNetwork, err.Error())
}
