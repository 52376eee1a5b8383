package domain

import "time"

// Connection is an acquaintance edge between two accounts. The relation is
// symmetric in meaning even though an edge records which side initiated it;
// uniqueness is enforced on the unordered pair. Connections only feed the
// transfer-target suggestion list and never gate a transfer.
type Connection struct {
	InitiatorID string    `json:"initiatorID"` // Account that requested the connection
	FriendID    string    `json:"friendID"`    // Account that was added
	CreatedAt   time.Time `json:"createdAt"`
}
