package pkg

import "errors"

// Kind 错误分类，handler 据此映射 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindForbidden
	KindConflict
	KindTransaction
)

// Error 带分类的业务错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Validation(msg string) *Error { return NewError(KindValidation, msg) }
func NotFound(msg string) *Error   { return NewError(KindNotFound, msg) }
func Forbidden(msg string) *Error  { return NewError(KindForbidden, msg) }
func Conflict(msg string) *Error   { return NewError(KindConflict, msg) }

// Transaction 多步写入失败并已回滚，保留原始错误
func Transaction(msg string, err error) *Error {
	return &Error{Kind: KindTransaction, Msg: msg, Err: err}
}

// KindOf 未分类的错误一律视为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrInvalidCredentials = Validation("incorrect email or password")
	ErrUnauthorized       = NewError(KindUnauthorized, "could not validate credentials")
	ErrSessionReplaced    = NewError(KindUnauthorized, "account has been logged in elsewhere")
	ErrForbidden          = Forbidden("not authorized for this community")
	ErrNoCommunity        = Validation("user is not associated with any community")
	ErrAlreadyMember      = Conflict("user already belongs to a community")

	ErrUserNotFound      = NotFound("user not found")
	ErrCommunityNotFound = NotFound("community not found")
	ErrRoomNotFound      = NotFound("room not found")
	ErrDeviceNotFound    = NotFound("alexa device not found")
	ErrTaskNotFound      = NotFound("task not found")
	ErrFounderNotFound   = NotFound("founder not found")

	ErrEmailTaken        = Conflict("email already registered")
	ErrPinTaken          = Conflict("pin code already taken")
	ErrRoomNumberTaken   = Conflict("room number already taken")
	ErrCommunityNotEmpty = Conflict("community still has rooms")
	ErrRoomHasDevices    = Conflict("room still has paired alexa devices")
	ErrResidentAssigned  = Conflict("resident already assigned to a room")
	ErrPinGeneration     = NewError(KindInternal, "could not generate a unique pin code")

	// 设备配对
	ErrMissingCredential = Validation("pin code is required")
	ErrUnknownCommunity  = NotFound("no community found for pin code")
	ErrUnknownRoom       = NotFound("room not found in community")
	ErrAlreadyPaired     = Conflict("device already registered")
	ErrDeviceNotPaired   = NotFound("device is not paired")
	ErrMissingDeviceID   = Validation("device id is required")
	ErrNoDevices         = NotFound("no alexa devices found")

	// 任务状态
	ErrInvalidTransition   = Validation("invalid task status transition")
	ErrResponseNotRecorded = Validation("task response has not been recorded")
	ErrEmptyDescription    = Validation("task description required")
	ErrInvalidRole         = Validation("invalid role")
	ErrInvalidStatus       = Validation("invalid device status")
	ErrAssigneeOutside     = Validation("assignee does not belong to this community")
)
