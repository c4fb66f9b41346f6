package consts

const (
	AccountSyncDirtyKey = "account:sync:dirty"
	AccountTrendsKey    = "account:trends:"
)

const (
	AccountSyncLock = "account:sync:lock:"
)
