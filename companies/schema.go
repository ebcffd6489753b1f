package companies

var InitialMigration = `
-- +migrate Up

-- +migrate StatementBegin
CREATE TABLE IF NOT EXISTS companies (
    "id" integer NOT NULL PRIMARY KEY AUTOINCREMENT,
    "name" TEXT NOT NULL,
    "website_url" TEXT NOT NULL,
    "niche_category" TEXT NOT NULL,
    "is_running_ads" BOOLEAN NOT NULL DEFAULT 0,
    "ads_url" TEXT,
    "custom_youtube_video" TEXT,
    "tags" TEXT,

    "created_at" DATETIME NOT NULL,
    "updated_at" DATETIME NOT NULL
);
-- +migrate StatementEnd

-- +migrate Down

-- +migrate StatementBegin
DROP TABLE companies;
-- +migrate StatementEnd
`
