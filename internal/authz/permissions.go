package authz

// --- ПЕРМИШЕНЫ ПО СОТРУДНИКАМ ---

const (
	WorkersView   = "workers:view"
	WorkersCreate = "workers:create"
	WorkersUpdate = "workers:update"
	WorkersDelete = "workers:delete"
)
