package redisrepo

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "sportspass:v1"

func KeySessionView(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s:view", ns, sessionID)
}

func KeyEventDetail(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:detail", ns, eventID)
}

func KeyHotCategories() string {
	return ns + ":categories:hot"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemOrder(buyerID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:orders:%s:%s", ns, buyerID, idemKey)
}

func ChannelSessionChanged(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s:changed", ns, sessionID)
}

func ChannelUserNotifications(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s:notifications", ns, userID)
}
