package store

// Schema is the check-history schema. Infractions are stored as ordered
// rows under their check so the API can replay the exact response.
const Schema = `
CREATE TABLE IF NOT EXISTS checks (
    id            TEXT PRIMARY KEY,
    url           TEXT NOT NULL,
    window_width  INTEGER NOT NULL,
    window_height INTEGER NOT NULL,
    status        TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checks_time ON checks(created_at DESC);

CREATE TABLE IF NOT EXISTS infractions (
    check_id           TEXT NOT NULL REFERENCES checks(id) ON DELETE CASCADE,
    seq                INTEGER NOT NULL,
    criterion          TEXT NOT NULL,
    xpath              TEXT NOT NULL,
    contrast           REAL NOT NULL DEFAULT 0,
    contrast_threshold REAL NOT NULL DEFAULT 0,
    html_language      TEXT NOT NULL DEFAULT '',
    predicted_language TEXT NOT NULL DEFAULT '',
    text               TEXT NOT NULL DEFAULT '',
    severity           TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (check_id, seq)
);
`
