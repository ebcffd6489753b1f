package tasks

var InitialMigration = `
-- +migrate Up

-- +migrate StatementBegin
CREATE TABLE IF NOT EXISTS tasks (
    "id" integer NOT NULL PRIMARY KEY AUTOINCREMENT,
    "company_id" integer,
    "structured_lead_id" integer,

    "task_type" TEXT NOT NULL,
    "status" TEXT NOT NULL DEFAULT 'pending',
    "instance_id" TEXT,
    "result_data" TEXT,

    "created_at" DATETIME NOT NULL,
    "updated_at" DATETIME NOT NULL
);
-- +migrate StatementEnd

-- +migrate Down

-- +migrate StatementBegin
DROP TABLE tasks;
-- +migrate StatementEnd
`
