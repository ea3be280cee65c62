package auth

import "strings"

// Route guard: two path classes. Unauthenticated access to a protected path
// redirects to sign-in; an authenticated visit to an auth page redirects to
// the dashboard.

const (
	SignInPath    = "/auth/sign-in"
	DashboardPath = "/dashboard"
)

var protectedPrefixes = []string{"/dashboard", "/upload", "/report"}

func IsAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth")
}

func IsProtectedPath(path string) bool {
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Guard returns the path the user should be redirected to, or "" when the
// requested path may be served.
func Guard(path string, authenticated bool) string {
	if !authenticated && IsProtectedPath(path) {
		return SignInPath
	}
	if authenticated && IsAuthPath(path) {
		return DashboardPath
	}
	return ""
}
