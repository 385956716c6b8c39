// Package sqlinline holds every SQL statement used by the repositories.
// Each statement carries a "--sql <uuid>" marker on its first line for log
// correlation.
package sqlinline

const InsertTask = `--sql 4f1c9b2e-6d3a-4e8f-9b71-2c5d8a0e4f16
INSERT INTO tasks (id, state, progress, created_at)
VALUES ($1, $2, $3, $4)`

const UpdateTaskState = `--sql 8a2e5d71-3b9c-4f02-a6e8-7d1b4c9f0a23
UPDATE tasks
SET state = $2, progress = $3, error_message = $4, completed_at = $5
WHERE id = $1`

const SelectTask = `--sql c7d04a9b-1e6f-4b38-8c2d-5a9e3f7b1d40
SELECT id, state, progress, COALESCE(error_message, ''), created_at, completed_at
FROM tasks
WHERE id = $1`
