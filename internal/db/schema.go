package db

// schema lists the idempotent DDL statements applied by Migrate, in order.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(254) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		name          VARCHAR(120) NOT NULL DEFAULT '',
		role          VARCHAR(20)  NOT NULL DEFAULT 'user',
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id           BIGSERIAL PRIMARY KEY,
		title        VARCHAR(500) NOT NULL,
		description  TEXT,
		content      TEXT,
		url          VARCHAR(500),
		image_url    VARCHAR(500),
		source       VARCHAR(200),
		author       VARCHAR(200),
		category     VARCHAR(100),
		tags         VARCHAR(500),
		api_source   VARCHAR(50) NOT NULL DEFAULT 'local',
		published_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles (published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles (category)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id           BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		interests         TEXT NOT NULL DEFAULT '',
		preferred_sources TEXT NOT NULL DEFAULT '',
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reading_history (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		read_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reading_history_user ON reading_history (user_id, read_at DESC)`,
	// article_id is not a foreign key: live provider articles are recorded with id 0.
	`CREATE TABLE IF NOT EXISTS user_interactions (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		article_id       BIGINT NOT NULL DEFAULT 0,
		interaction_type VARCHAR(20) NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_interactions_user ON user_interactions (user_id, created_at DESC)`,
	// user_id is not a foreign key: entries outlive deleted accounts.
	`CREATE TABLE IF NOT EXISTS admin_audit_log (
		seq           BIGSERIAL PRIMARY KEY,
		id            UUID NOT NULL UNIQUE,
		user_id       BIGINT NOT NULL,
		entity_type   VARCHAR(50) NOT NULL,
		entity_id     VARCHAR(100) NOT NULL,
		action        VARCHAR(50) NOT NULL,
		outcome       VARCHAR(20) NOT NULL,
		request_id    VARCHAR(128) NOT NULL DEFAULT '',
		ip_address    VARCHAR(64) NOT NULL DEFAULT '',
		user_agent    TEXT NOT NULL DEFAULT '',
		previous_hash VARCHAR(64) NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_admin_audit_entity ON admin_audit_log (entity_type, entity_id, seq DESC)`,
}
