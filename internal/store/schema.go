package store

// Schema is the complete tracking schema. Timestamps are unix milliseconds,
// tag lists are JSON-encoded text.
const Schema = `
-- Tracked search phrases, one row per phrase×shop×variant
CREATE TABLE IF NOT EXISTS keywords (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    phrase      TEXT NOT NULL,
    shop_id     TEXT NOT NULL,
    item_code   TEXT NOT NULL DEFAULT '',
    item_url    TEXT NOT NULL DEFAULT '',
    variant     TEXT NOT NULL DEFAULT 'organic',
    active      INTEGER NOT NULL DEFAULT 1,
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,
    UNIQUE(phrase, shop_id, variant)
);
CREATE INDEX IF NOT EXISTS idx_keywords_active ON keywords(variant, active);

-- Organic rank checks
CREATE TABLE IF NOT EXISTS rank_results (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword_id      INTEGER NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
    rank            INTEGER,
    total_snapshots INTEGER NOT NULL DEFAULT 0,
    reported_total  INTEGER NOT NULL DEFAULT 0,
    found           INTEGER NOT NULL DEFAULT 0,
    error_message   TEXT NOT NULL DEFAULT '',
    memo            TEXT NOT NULL DEFAULT '',
    checked_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rank_results_keyword ON rank_results(keyword_id, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_rank_results_time ON rank_results(checked_at);

-- Top-of-page listings captured per organic check
CREATE TABLE IF NOT EXISTS listing_snapshots (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    result_id      INTEGER NOT NULL REFERENCES rank_results(id) ON DELETE CASCADE,
    rank           INTEGER NOT NULL,
    name           TEXT NOT NULL,
    catchcopy      TEXT NOT NULL DEFAULT '',
    url            TEXT NOT NULL DEFAULT '',
    item_code      TEXT NOT NULL DEFAULT '',
    shop_name      TEXT NOT NULL DEFAULT '',
    shop_id        TEXT NOT NULL DEFAULT '',
    price          INTEGER NOT NULL DEFAULT 0,
    review_count   INTEGER NOT NULL DEFAULT 0,
    review_average REAL NOT NULL DEFAULT 0,
    image_url      TEXT NOT NULL DEFAULT '',
    point_rate     INTEGER NOT NULL DEFAULT 0,
    genre_id       TEXT NOT NULL DEFAULT '',
    genre_name     TEXT NOT NULL DEFAULT '',
    tag_ids        TEXT NOT NULL DEFAULT '[]',
    tag_names      TEXT NOT NULL DEFAULT '[]',
    description    TEXT NOT NULL DEFAULT '',
    is_target      INTEGER NOT NULL DEFAULT 0,
    collected_at   INTEGER NOT NULL,
    UNIQUE(result_id, rank)
);
CREATE INDEX IF NOT EXISTS idx_listing_snapshots_result ON listing_snapshots(result_id);

-- Sponsored-placement checks
CREATE TABLE IF NOT EXISTS ad_results (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword_id    INTEGER NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
    rank          INTEGER,
    total_ads     INTEGER NOT NULL DEFAULT 0,
    pages_checked INTEGER NOT NULL DEFAULT 0,
    found         INTEGER NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    memo          TEXT NOT NULL DEFAULT '',
    checked_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ad_results_keyword ON ad_results(keyword_id, checked_at DESC);
CREATE INDEX IF NOT EXISTS idx_ad_results_time ON ad_results(checked_at);

-- Sponsored placements captured per check
CREATE TABLE IF NOT EXISTS ad_snapshots (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    result_id        INTEGER NOT NULL REFERENCES ad_results(id) ON DELETE CASCADE,
    rank             INTEGER NOT NULL,
    name             TEXT NOT NULL,
    catchcopy        TEXT NOT NULL DEFAULT '',
    url              TEXT NOT NULL DEFAULT '',
    item_code        TEXT NOT NULL DEFAULT '',
    shop_name        TEXT NOT NULL DEFAULT '',
    shop_id          TEXT NOT NULL DEFAULT '',
    price            INTEGER,
    image_url        TEXT NOT NULL DEFAULT '',
    bid_estimate     INTEGER,
    page_number      INTEGER NOT NULL DEFAULT 1,
    position_on_page INTEGER NOT NULL DEFAULT 0,
    is_target        INTEGER NOT NULL DEFAULT 0,
    collected_at     INTEGER NOT NULL,
    UNIQUE(result_id, rank)
);
CREATE INDEX IF NOT EXISTS idx_ad_snapshots_result ON ad_snapshots(result_id);

-- Per-invocation timing log (observability)
CREATE TABLE IF NOT EXISTS execution_logs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    variant       TEXT NOT NULL,
    keyword       TEXT NOT NULL,
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    pages_checked INTEGER NOT NULL DEFAULT 0,
    items_found   INTEGER NOT NULL DEFAULT 0,
    success       INTEGER NOT NULL DEFAULT 0,
    error_details TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_execution_logs_time ON execution_logs(created_at);

-- Bulk run summaries
CREATE TABLE IF NOT EXISTS bulk_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    variant     TEXT NOT NULL,
    keywords    INTEGER NOT NULL DEFAULT 0,
    succeeded   INTEGER NOT NULL DEFAULT 0,
    failed      INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    completed   INTEGER NOT NULL DEFAULT 0,
    executed_at INTEGER NOT NULL
);
`
