package cache

// SubscriptionKey ключ одной подписки.
func SubscriptionKey(id string) string {
	return "subscription:" + id
}

// UserListKey ключ полного списка подписок пользователя.
func UserListKey(userID string) string {
	return "subscriptions:user:" + userID
}

// RevokedTokenKey ключ отозванного токена по его jti.
func RevokedTokenKey(jti string) string {
	return "revoked:" + jti
}
