package enum

// ── Group A: State machine (CHECK constrained in DB, exact strings in CSV/sheet) ──

const (
	OrderStatusQueued    = "Queued"
	OrderStatusServed    = "Served"
	OrderStatusCancelled = "Cancelled"
)

// ── Group B: Store backends (STORE_BACKEND) ──

const (
	StoreBackendCSV      = "csv"
	StoreBackendPostgres = "postgres"
	StoreBackendSheets   = "sheets"
)

// ── Group C: Live board event types ──

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventQueueSnapshot      = "queue.snapshot"
)
