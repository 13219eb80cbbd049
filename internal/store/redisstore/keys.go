package redisstore

const (
	keyUser          = "user:%d"
	keyUsernameIndex = "index:username:%s"
	keyOpenIDIndex   = "index:openid:%s"
	keyBalance       = "balance:%d"
	keyHistoryRecord = "history:%d"
	keyUserHistory   = "user:%d:history"
	keySession       = "session:%s"
	keyAddresses     = "user:%d:withdrawal_addresses"

	counterUsers    = "next_id:users"
	counterBalances = "next_id:user_balances"
	counterHistory  = "next_id:game_history"
)
