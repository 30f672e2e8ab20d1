package db

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	UsersCollection         = "users"
	PlansCollection         = "plans"
	SubscriptionsCollection = "subscriptions"
	InvoicesCollection      = "invoices"
	ChatbotsCollection      = "chatbots"
	ConversationsCollection = "conversations"
	MessagesCollection      = "messages"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrNetworkDisabled is returned for remote calls attempted while the
// connectivity monitor has the store's network disabled.
var ErrNetworkDisabled = errors.New("store network is disabled")

// Where is a single query predicate: field op value. Supported operators
// mirror the Firestore comparison set ("==", "<", "<=", ">", ">=").
type Where struct {
	Field string
	Op    string
	Value interface{}
}

// Query describes a filtered, ordered, bounded read against a collection.
type Query struct {
	Wheres  []Where
	OrderBy string
	Desc    bool
	Limit   int
}

// DocumentStore is the remote document database, treated as an opaque
// networked service. The network toggle is owned by the connectivity
// Monitor; no other component may call EnableNetwork/DisableNetwork.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
	RunQuery(ctx context.Context, collection string, q Query) ([]map[string]interface{}, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Merge(ctx context.Context, collection, id string, data map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error

	EnableNetwork(ctx context.Context) error
	DisableNetwork(ctx context.Context) error
	WaitForPendingWrites(ctx context.Context) error
}
