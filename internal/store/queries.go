// store/queries.go - Centralized SQL queries
package store

const (
	gateTable  = `gate_bypass`
	toastTable = `toasts`

	toastColumns = `id, title, description, variant`
)

const (
	qGateUpsert = `INSERT INTO ` + gateTable + ` (scope, username) VALUES (?, ?)
		ON CONFLICT(scope) DO UPDATE SET username=excluded.username, bypassed_at=CURRENT_TIMESTAMP`

	qGateExists = `SELECT COUNT(*) FROM ` + gateTable + ` WHERE scope = ?`
)

const (
	qToastInsert = `INSERT INTO ` + toastTable + ` (` + toastColumns + `, scope) VALUES (?, ?, ?, ?, ?)`

	qToastsByScope = `SELECT ` + toastColumns + ` FROM ` + toastTable + ` WHERE scope = ? ORDER BY seq`

	qToastsDelete = `DELETE FROM ` + toastTable + ` WHERE scope = ?`

	qToastsExpire = `DELETE FROM ` + toastTable + ` WHERE created_at < datetime('now', ?)`
)
