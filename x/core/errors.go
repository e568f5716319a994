package core

type ErrorNotFound struct {
}

func (e ErrorNotFound) Error() string {
	return "Not Found"
}

func NewErrorNotFound() ErrorNotFound {
	return ErrorNotFound{}
}

type ErrorAlreadyExists struct {
}

func (e ErrorAlreadyExists) Error() string {
	return "Already Exists"
}

func NewErrorAlreadyExists() ErrorAlreadyExists {
	return ErrorAlreadyExists{}
}

type ErrorPermissionDenied struct {
}

func (e ErrorPermissionDenied) Error() string {
	return "Permission Denied"
}

func NewErrorPermissionDenied() ErrorPermissionDenied {
	return ErrorPermissionDenied{}
}

// ErrorThrottled is returned when the admission engine denies an operation.
// Reason names the exhausted budget (ex: "msg_rate").
type ErrorThrottled struct {
	Reason string
}

func (e ErrorThrottled) Error() string {
	return "Throttled: " + e.Reason
}

func NewErrorThrottled(reason string) ErrorThrottled {
	return ErrorThrottled{Reason: reason}
}
