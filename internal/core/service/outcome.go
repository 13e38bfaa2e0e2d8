package service

import (
	"errors"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// outcomeLabel names a flow result for the outcome metric labels.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrBindingMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrAuthentication):
		return "unauthorized"
	case errors.Is(err, domain.ErrAuthorization):
		return "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrServer):
		return "server_error"
	case errors.Is(err, domain.ErrRejected):
		return "rejected"
	default:
		return "transport"
	}
}

func notifyError(n domain.Notifier, msg string) {
	n.Notify(domain.Notice{Level: domain.NoticeError, Message: msg})
}

func notifyWarning(n domain.Notifier, msg string) {
	n.Notify(domain.Notice{Level: domain.NoticeWarning, Message: msg})
}

func notifySuccess(n domain.Notifier, msg string) {
	n.Notify(domain.Notice{Level: domain.NoticeSuccess, Message: msg})
}
