package index

// schemaVersion is bumped whenever a non-additive change requires a full
// reindex (spec 4.2, 6). The engine refuses to operate on a database whose
// stored schema_version is newer than this.
const schemaVersion = 1

// schemaDDL creates every table, index, trigger, and the FTS5 virtual
// table described in spec 4.2. Column shapes follow
// original_source/rules_engine/src/lattice/src/index/schema_definition.rs;
// identifiers are renamed to fit Go/SQL conventions used elsewhere in this
// module, not copied verbatim.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	path             TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL,
	parent_id        TEXT,
	task_type        TEXT,
	priority         INTEGER,
	created_at       TEXT,
	updated_at       TEXT,
	closed_at        TEXT,
	skill            INTEGER NOT NULL DEFAULT 0,
	is_closed        INTEGER NOT NULL DEFAULT 0,
	is_root          INTEGER NOT NULL DEFAULT 0,
	in_tasks_dir     INTEGER NOT NULL DEFAULT 0,
	in_docs_dir      INTEGER NOT NULL DEFAULT 0,
	body_hash        TEXT NOT NULL DEFAULT '',
	content_length   INTEGER NOT NULL DEFAULT 0,
	indexed_at       TEXT NOT NULL,
	link_count       INTEGER NOT NULL DEFAULT 0,
	backlink_count   INTEGER NOT NULL DEFAULT 0,
	view_count       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_documents_parent_id ON documents(parent_id);
CREATE INDEX IF NOT EXISTS idx_documents_task_type ON documents(task_type);
CREATE INDEX IF NOT EXISTS idx_documents_is_closed ON documents(is_closed);
CREATE INDEX IF NOT EXISTS idx_documents_priority ON documents(priority);

CREATE TABLE IF NOT EXISTS links (
	source_id  TEXT NOT NULL,
	target_id  TEXT NOT NULL,
	link_type  TEXT NOT NULL,
	position   INTEGER NOT NULL,
	PRIMARY KEY (source_id, target_id, position)
);

CREATE INDEX IF NOT EXISTS idx_links_source_id ON links(source_id);
CREATE INDEX IF NOT EXISTS idx_links_target_id ON links(target_id);

CREATE TABLE IF NOT EXISTS labels (
	document_id TEXT NOT NULL,
	label       TEXT NOT NULL,
	position    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (document_id, label)
);

CREATE INDEX IF NOT EXISTS idx_labels_label ON labels(label);

CREATE TABLE IF NOT EXISTS index_metadata (
	id             INTEGER PRIMARY KEY CHECK (id = 1),
	schema_version INTEGER NOT NULL,
	last_commit    TEXT,
	last_indexed   TEXT
);

CREATE TABLE IF NOT EXISTS client_counters (
	client_id    TEXT PRIMARY KEY,
	next_counter INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS directory_roots (
	directory_path TEXT PRIMARY KEY,
	root_id        TEXT NOT NULL,
	parent_path    TEXT,
	depth          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_directory_roots_parent_path ON directory_roots(parent_path);

CREATE TABLE IF NOT EXISTS content_cache (
	document_id TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	accessed_at  TEXT NOT NULL,
	file_mtime   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_content_cache_accessed_at ON content_cache(accessed_at);

CREATE TABLE IF NOT EXISTS views (
	document_id  TEXT PRIMARY KEY,
	view_count   INTEGER NOT NULL DEFAULT 0,
	last_viewed  TEXT
);

CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
	document_id UNINDEXED,
	body,
	tokenize = 'unicode61'
);

-- link_count/backlink_count maintenance (spec 4.2, 3 "Ownership").
CREATE TRIGGER IF NOT EXISTS trg_links_ai_source AFTER INSERT ON links BEGIN
	UPDATE documents SET link_count = link_count + 1 WHERE id = NEW.source_id;
	UPDATE documents SET backlink_count = backlink_count + 1 WHERE id = NEW.target_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_links_ad_source AFTER DELETE ON links BEGIN
	UPDATE documents SET link_count = link_count - 1 WHERE id = OLD.source_id;
	UPDATE documents SET backlink_count = backlink_count - 1 WHERE id = OLD.target_id;
END;

-- view_count sync between views and documents.
CREATE TRIGGER IF NOT EXISTS trg_views_ai AFTER INSERT ON views BEGIN
	UPDATE documents SET view_count = NEW.view_count WHERE id = NEW.document_id;
END;

CREATE TRIGGER IF NOT EXISTS trg_views_au AFTER UPDATE OF view_count ON views BEGIN
	UPDATE documents SET view_count = NEW.view_count WHERE id = NEW.document_id;
END;

-- FTS cleanup on document delete.
CREATE TRIGGER IF NOT EXISTS trg_documents_ad_fts AFTER DELETE ON documents BEGIN
	DELETE FROM fts_content WHERE document_id = OLD.id;
	DELETE FROM views WHERE document_id = OLD.id;
	DELETE FROM content_cache WHERE document_id = OLD.id;
END;
`
