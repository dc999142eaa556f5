package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

// DeviceInfo describes the device agent as reported by its User-Agent header.
// The bridge records it alongside inbound reports so ops can tell which
// platform build a misbehaving agent runs.
type DeviceInfo struct {
	Platform string
	OS       string
	Mobile   bool
}

type contextKeyDeviceInfo struct{}

// ContextKeyDeviceInfo is exported for service unit tests that don't run the
// full HTTP middleware chain.
var ContextKeyDeviceInfo = contextKeyDeviceInfo{}

// GetDeviceInfo retrieves the parsed device info from the context.
func GetDeviceInfo(ctx context.Context) DeviceInfo {
	info, ok := ctx.Value(ContextKeyDeviceInfo).(DeviceInfo)
	if !ok {
		return DeviceInfo{}
	}
	return info
}

// WithDeviceInfo injects device info into a context for tests.
func WithDeviceInfo(ctx context.Context, info DeviceInfo) context.Context {
	return context.WithValue(ctx, ContextKeyDeviceInfo, info)
}

// DeviceContext parses the User-Agent header into a DeviceInfo.
func DeviceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.UserAgent())
		info := DeviceInfo{
			Platform: ua.Platform(),
			OS:       ua.OS(),
			Mobile:   ua.Mobile(),
		}
		next.ServeHTTP(w, r.WithContext(WithDeviceInfo(r.Context(), info)))
	})
}
