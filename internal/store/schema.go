package store

// Schema creates the report tables. It is safe to apply more than once.
const Schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	policy TEXT NOT NULL,
	result TEXT NOT NULL,
	total INTEGER NOT NULL,
	matched INTEGER NOT NULL,
	unmatched INTEGER NOT NULL,
	taxable INTEGER NOT NULL,
	swaps INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS report_events (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	identifier TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	event_type TEXT NOT NULL,
	event_subtype TEXT NOT NULL,
	counterparty TEXT NOT NULL,
	asset TEXT NOT NULL,
	amount TEXT NOT NULL,
	location_label TEXT NOT NULL,
	notes TEXT NOT NULL,
	matched INTEGER NOT NULL,
	reason TEXT NOT NULL,
	taxable INTEGER,
	count_entire_amount_spend INTEGER,
	count_cost_basis_pnl INTEGER,
	method TEXT,
	accounting_treatment TEXT,
	PRIMARY KEY (report_id, position)
);
`
