package errors

// Standard sentinel errors for the external interface. Callers compare
// with errors.Is(err, errors.ErrWouldBlock), not by code string.
var (
	ErrInvalidArgument   = New(CodeInvalidArgument, "invalid argument")
	ErrPermissionDenied  = New(CodePermissionDenied, "descriptor lacks required permission")
	ErrWouldBlock        = New(CodeWouldBlock, "operation would block")
	ErrMessageTooLarge   = New(CodeMessageTooLarge, "message exceeds queue's configured size")
	ErrTimedOut          = New(CodeTimedOut, "deadline reached before operation completed")
	ErrInterrupted       = New(CodeInterrupted, "blocking call interrupted")
	ErrInvalidDescriptor = New(CodeInvalidDescriptor, "descriptor refers to a removed queue")
	ErrBusy              = New(CodeBusy, "notification already registered to another target")
	ErrNoMemory          = New(CodeNoMemory, "insufficient memory to create queue")
	ErrAlreadyExists     = New(CodeAlreadyExists, "name already exists with O_CREAT|O_EXCL")
	ErrNotFound          = New(CodeNotFound, "no queue is registered under this name")
	ErrNotPermitted      = New(CodeNotPermitted, "operation not permitted in this context")
)
