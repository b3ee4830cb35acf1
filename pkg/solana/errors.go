package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the string key returned in a transaction error.
//
// Source: https://github.com/solana-labs/solana/blob/fc2bf2d3b669d1c6655ae48b0a05f470938f3676/sdk/src/transaction/mod.rs#L37
type TransactionErrorKey string

const (
	TransactionErrorInternal TransactionErrorKey = "Internal" // Internal error

	TransactionErrorAccountInUse           TransactionErrorKey = "AccountInUse"           // An account is already being processed in another transaction in a way that does not support parallelism
	TransactionErrorAccountNotFound        TransactionErrorKey = "AccountNotFound"        // Attempt to debit an account but found no record of a prior credit.
	TransactionErrorProgramAccountNotFound TransactionErrorKey = "ProgramAccountNotFound" // Attempt to load a program that does not exist
	TransactionErrorBlockhashNotFound      TransactionErrorKey = "BlockhashNotFound"      // The bank has not seen the given `recent_blockhash` or the transaction is too old and the `recent_blockhash` has been discarded.
	TransactionErrorInstructionError       TransactionErrorKey = "InstructionError"       // An error occurred while processing an instruction. The first element of the tuple indicates the instruction index in which the error occurred.
	TransactionErrorCallChainTooDeep       TransactionErrorKey = "CallChainTooDeep"       // Loader call chain is too deep
	TransactionErrorSignatureFailure       TransactionErrorKey = "SignatureFailure"       // Transaction did not pass signature verification
)

// InstructionErrorKey is the string keys returned in an instruction error.
//
// Source: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/instruction.rs#L23
type InstructionErrorKey string

const (
	InstructionErrorGenericError             InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument          InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData   InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData       InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds        InstructionErrorKey = "InsufficientFunds"
	InstructionErrorIncorrectProgramID       InstructionErrorKey = "IncorrectProgramId"
	InstructionErrorMissingRequiredSignature InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorReadonlyLamportChange    InstructionErrorKey = "ReadonlyLamportChange"
	InstructionErrorReadonlyDataModified     InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys     InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                   InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID     InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorCallDepth                InstructionErrorKey = "CallDepth"
	InstructionErrorMissingAccount           InstructionErrorKey = "MissingAccount"
	InstructionErrorMaxSeedLengthExceeded    InstructionErrorKey = "MaxSeedLengthExceeded"
	InstructionErrorInvalidSeeds             InstructionErrorKey = "InvalidSeeds"
	InstructionErrorPrivilegeEscalation      InstructionErrorKey = "PrivilegeEscalation"
)

// ProgramError is one of the builtin errors a program (or the runtime on its
// behalf) can fail an instruction with.
type ProgramError struct {
	key InstructionErrorKey
}

func (e ProgramError) Error() string {
	return string(e.key)
}

func (e ProgramError) ErrorKey() InstructionErrorKey {
	return e.key
}

var (
	ErrGenericError             = ProgramError{InstructionErrorGenericError}
	ErrInvalidArgument          = ProgramError{InstructionErrorInvalidArgument}
	ErrInvalidInstructionData   = ProgramError{InstructionErrorInvalidInstructionData}
	ErrInvalidAccountData       = ProgramError{InstructionErrorInvalidAccountData}
	ErrInsufficientFunds        = ProgramError{InstructionErrorInsufficientFunds}
	ErrIncorrectProgramID       = ProgramError{InstructionErrorIncorrectProgramID}
	ErrMissingRequiredSignature = ProgramError{InstructionErrorMissingRequiredSignature}
	ErrReadonlyLamportChange    = ProgramError{InstructionErrorReadonlyLamportChange}
	ErrReadonlyDataModified     = ProgramError{InstructionErrorReadonlyDataModified}
	ErrNotEnoughAccountKeys     = ProgramError{InstructionErrorNotEnoughAccountKeys}
	ErrUnsupportedProgramID     = ProgramError{InstructionErrorUnsupportedProgramID}
	ErrCallDepth                = ProgramError{InstructionErrorCallDepth}
	ErrMissingAccount           = ProgramError{InstructionErrorMissingAccount}
	ErrInvalidSeeds             = ProgramError{InstructionErrorInvalidSeeds}
	ErrPrivilegeEscalation      = ProgramError{InstructionErrorPrivilegeEscalation}
)

var programErrorsByKey = map[InstructionErrorKey]ProgramError{}

func init() {
	for _, e := range []ProgramError{
		ErrGenericError,
		ErrInvalidArgument,
		ErrInvalidInstructionData,
		ErrInvalidAccountData,
		ErrInsufficientFunds,
		ErrIncorrectProgramID,
		ErrMissingRequiredSignature,
		ErrReadonlyLamportChange,
		ErrReadonlyDataModified,
		ErrNotEnoughAccountKeys,
		ErrUnsupportedProgramID,
		ErrCallDepth,
		ErrMissingAccount,
		ErrInvalidSeeds,
		ErrPrivilegeEscalation,
	} {
		programErrorsByKey[e.key] = e
	}
}

// CustomError is the numerical error returned by a non-system program.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// ErrorKeyOf returns the instruction error key an error would be reported
// under, looking through any wrapping.
func ErrorKeyOf(err error) InstructionErrorKey {
	if err == nil {
		return ""
	}

	var instructionErr InstructionError
	if errors.As(err, &instructionErr) {
		return instructionErr.ErrorKey()
	}

	switch t := errors.Cause(err).(type) {
	case ProgramError:
		return t.key
	case CustomError:
		return InstructionErrorCustom
	}

	return InstructionErrorGenericError
}

// InstructionError indicates an instruction returned an error in a transaction.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) Unwrap() error {
	return i.Err
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	if i.Err == nil {
		return ""
	}

	if i.CustomError() != nil {
		return InstructionErrorCustom
	}

	if pe, ok := errors.Cause(i.Err).(ProgramError); ok {
		return pe.key
	}

	return InstructionErrorKey(i.Err.Error())
}

func (i InstructionError) JSONString() string {
	if ce := i.CustomError(); ce != nil {
		return fmt.Sprintf(`[%d, {"%s": %d}]`, i.Index, InstructionErrorCustom, *ce)
	}

	return fmt.Sprintf(`[%d, "%s"]`, i.Index, i.ErrorKey())
}

func (i InstructionError) CustomError() *CustomError {
	ce, ok := errors.Cause(i.Err).(CustomError)
	if ok {
		return &ce
	}

	return nil
}

func parseInstructionError(v interface{}) (e InstructionError, err error) {
	values, ok := v.([]interface{})
	if !ok {
		return e, errors.New("unexpected instruction error format")
	}

	if len(values) != 2 {
		return e, errors.Errorf("too many entries in InstructionError tuple: %d", len(values))
	}

	e.Index, err = parseJSONNumber(values[0])
	if err != nil {
		return e, err
	}

	switch t := values[1].(type) {
	case string:
		e.Err = programErrorFromKey(t)
	case map[string]interface{}:
		if len(t) != 1 {
			e.Err = errors.New("unhandled InstructionError")
			return e, errors.Errorf("invalid instruction result size: %d", len(t))
		}

		var k string
		var v interface{}
		for k, v = range t {
		}

		if k != string(InstructionErrorCustom) {
			e.Err = programErrorFromKey(k)
			break
		}

		code, err := parseJSONNumber(v)
		if err != nil {
			e.Err = errors.New("unhandled CustomError")
			break
		}

		e.Err = CustomError(code)
	}

	return e, nil
}

func programErrorFromKey(key string) error {
	if pe, ok := programErrorsByKey[InstructionErrorKey(key)]; ok {
		return pe
	}
	return errors.New(key)
}

// TransactionError contains the transaction error details.
type TransactionError struct {
	transactionError error
	instructionError *InstructionError
	raw              interface{}
}

// ParseRPCError parses the jsonrpc.RPCError returned from a method.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	if txErr, ok := data["err"]; ok && txErr != nil {
		return ParseTransactionError(txErr)
	}

	return nil, nil
}

// ParseTransactionError parses the JSON error returned from the "err" field in various
// RPC methods and fields.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	if raw == nil {
		return nil, nil
	}

	switch t := raw.(type) {
	case string:
		return &TransactionError{
			transactionError: errors.New(t),
			raw:              raw,
		}, nil
	case map[string]interface{}:
		if len(t) != 1 {
			return &TransactionError{
				transactionError: errors.New("unhandled transaction error"),
				raw:              raw,
			}, errors.Errorf("invalid transaction result size: %d", len(t))
		}

		var k string
		var v interface{}
		for k, v = range t {
		}

		if k != string(TransactionErrorInstructionError) {
			return &TransactionError{
				transactionError: errors.New(k),
				raw:              raw,
			}, nil
		}

		instructionErr, err := parseInstructionError(v)
		if err != nil {
			return &TransactionError{
				transactionError: errors.New("unhandled transaction error"),
				raw:              raw,
			}, errors.Wrap(err, "failed to parse instruction error")
		}

		return &TransactionError{
			transactionError: errors.New(string(TransactionErrorInstructionError)),
			instructionError: &instructionErr,
			raw:              raw,
		}, nil
	default:
		return nil, errors.New("unhandled error type")
	}
}

// TransactionErrorFromInstructionError builds the transaction level error the
// runtime reports for a failed instruction.
func TransactionErrorFromInstructionError(err *InstructionError) (*TransactionError, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(err.JSONString()), &raw); err != nil {
		return nil, errors.Wrap(err, "failed to generate raw value")
	}

	return &TransactionError{
		transactionError: errors.New(string(TransactionErrorInstructionError)),
		instructionError: err,
		raw: map[string]interface{}{
			string(TransactionErrorInstructionError): raw,
		},
	}, nil
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}

	if t.transactionError != nil {
		return t.transactionError.Error()
	}

	return ""
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	if t.transactionError == nil {
		return ""
	}

	return TransactionErrorKey(t.transactionError.Error())
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

func (t TransactionError) JSONString() (string, error) {
	b, err := json.Marshal(t.raw)
	return string(b), err
}

func parseJSONNumber(v interface{}) (int, error) {
	switch t := v.(type) {
	case json.Number:
		index, err := t.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value in InstructionError tuple: %v", v)
		}
		return int(index), nil
	case string:
		index, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
		}
		return int(index), nil
	case float64:
		return int(t), nil
	}

	return 0, errors.Errorf("non numeric value in InstructionError tuple: %v", v)
}
