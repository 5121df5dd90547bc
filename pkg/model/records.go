package model

// Durable record shapes. They are a projection of the in-memory mission,
// inventory and gallery state, never a separate source of truth except at
// load time.

// MissionRecord is the persisted projection of a Mission.
type MissionRecord struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Progress   int    `json:"progress"`
	Received   bool   `json:"received"`
	StageIndex int    `json:"stage_index"`
}

// MetaRecord holds the single row of day markers.
type MetaRecord struct {
	LastResetDay string `json:"last_reset_day"`
	LastLoginDay string `json:"last_login_day"`
}

// ToolCountRecord is the persisted inventory count of one tool kind.
type ToolCountRecord struct {
	Tool  string `json:"tool"`
	Count int    `json:"count"`
}

// GalleryTallyRecord is the persisted first-acquisition tally of a page.
type GalleryTallyRecord struct {
	PageID string `json:"page_id"`
	Tally  int    `json:"tally"`
}

// UnlockKind separates owned maps (purchases) from gallery-image unlocks.
type UnlockKind string

const (
	UnlockMap   UnlockKind = "map"
	UnlockImage UnlockKind = "image"
)

// UnlockRecord marks one map or gallery image as owned.
type UnlockRecord struct {
	Kind UnlockKind `json:"kind"`
	ID   string     `json:"id"`
}

// WalletRecord is the local ledger balance of one currency.
type WalletRecord struct {
	Currency Currency `json:"currency"`
	Balance  int      `json:"balance"`
}

// Snapshot is the full durable state in one value, as read or written by
// a single store transaction.
type Snapshot struct {
	Missions []MissionRecord      `json:"missions"`
	Meta     MetaRecord           `json:"meta"`
	Tools    []ToolCountRecord    `json:"tools"`
	Tallies  []GalleryTallyRecord `json:"tallies"`
	Unlocks  []UnlockRecord       `json:"unlocks"`
}
