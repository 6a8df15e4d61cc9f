package core

import "strings"

// notificationRoutes maps known notification titles to in-app navigation
// targets. Titles outside the table fall back to the notifications list.
var notificationRoutes = map[string]string{
	"new vendor application":  "/admin/vendor-applications",
	"stall change request":    "/admin/stall-change-requests",
	"stall removal request":   "/admin/stall-removal-requests",
	"remittance for approval": "/admin/remittances",
	"registration renewal":    "/admin/renewals",
	"in-charge status change": "/admin/incharge-profiles",
}

// NotificationTarget resolves the navigation target for a notification
// title, case-insensitively.
func NotificationTarget(title string) string {
	if route, ok := notificationRoutes[strings.ToLower(strings.TrimSpace(title))]; ok {
		return route
	}
	return "/admin/notifications"
}
