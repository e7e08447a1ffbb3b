package shared

// Task types handled by cmd/worker.
const (
	TypeOrderNotification   = "checkout:order_notification"
	TypeCatalogWarmSnapshot = "catalog:warm_snapshot"
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
