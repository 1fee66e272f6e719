package redis

import "fmt"

const ns = "cinebook:v1"

func KeyPreference(owner, key string) string {
	return fmt.Sprintf("%s:prefs:%s:%s", ns, owner, key)
}

func KeyIdemBooking(owner, flowID, idemKey string) string {
	return fmt.Sprintf("%s:idem:book:%s:%s:%s", ns, owner, flowID, idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookings() string {
	return ns + ":bookings"
}
