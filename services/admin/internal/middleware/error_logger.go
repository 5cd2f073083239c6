package middleware

import (
	"blog-admin/services/admin/internal/apperr"
	"blog-admin/services/admin/internal/store"
)

// Notifier shows a warning to the user.
type Notifier interface {
	Warn(message string)
}

// ErrorLogger reports rejected request actions through n. Client errors and
// server errors with a plain message are reported; field validation maps,
// transport failures and rejections without a value pass silently.
func ErrorLogger[S any](n Notifier) store.Middleware[S] {
	return func(api store.MiddlewareAPI[S]) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action store.Action) store.Action {
				result := next(action)
				if !action.IsRejected() {
					return result
				}

				if action.Error != nil && action.Error.Name == apperr.CustomErrorName {
					n.Warn(action.Error.Message)
					return result
				}

				if action.IsRejectedWithValue() {
					if msg, ok := apperr.PayloadErrorMessage(action.Payload); ok {
						n.Warn(msg)
					}
				}

				return result
			}
		}
	}
}
