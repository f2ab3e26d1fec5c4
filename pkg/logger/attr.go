package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// OrganizationID records the tenant identifier under the key "organization_id".
func OrganizationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("organization_id", id)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// PlanID records the subscription plan identifier under the key "plan_id".
func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

// PaymentID records the payment correlation identifier under the key "payment_id".
func PaymentID(id string) slog.Attr {
	return slog.String("payment_id", id)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
