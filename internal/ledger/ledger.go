// Package ledger provides the in-memory account and transaction store for
// one processing run.
//
// The store is a plain mapping from client id to account plus a global index
// of stored deposit/withdrawal transactions. Dispute, resolve and chargeback
// records are transient and never stored - only deposits and withdrawals can
// be referenced by a later dispute.
//
// INVARIANTS:
//   - A transaction id maps to at most one stored transaction, across all
//     clients. The engine checks uniqueness before calling RecordTransaction.
//   - Snapshot order is first-insertion order of accounts, so output is
//     deterministic regardless of map iteration order.
//
// The store has no internal locking. It is exclusively owned by one engine
// for the lifetime of a run; all access is single-threaded.
package ledger

import "github.com/strozynskiw/transponster/internal/money"

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a transaction, globally unique across the run.
type TxID uint32

// Kind distinguishes the two storable transaction kinds.
type Kind uint8

const (
	KindDeposit Kind = iota + 1
	KindWithdrawal
)

// String returns the lowercase wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	default:
		return "unknown"
	}
}

// Account holds the balance triple and lock flag for one client.
// Total is derived (Available + Held), never stored.
type Account struct {
	Client    ClientID
	Available money.Amount
	Held      money.Amount
	Locked    bool
}

// Total returns the derived total balance.
func (a *Account) Total() money.Amount {
	return a.Available + a.Held
}

// Transaction is a stored deposit or withdrawal that later dispute records
// may reference.
type Transaction struct {
	ID       TxID
	Client   ClientID
	Kind     Kind
	Amount   money.Amount
	Disputed bool
}

// AccountSummary is one row of the final report.
type AccountSummary struct {
	Client    ClientID
	Available money.Amount
	Held      money.Amount
	Total     money.Amount
	Locked    bool
}

// Store maps clients to accounts and transaction ids to stored transactions.
type Store struct {
	accounts map[ClientID]*Account
	order    []ClientID // account creation order, drives Snapshot
	txs      map[TxID]*Transaction
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[ClientID]*Account),
		txs:      make(map[TxID]*Transaction),
	}
}

// GetOrCreateAccount returns the account for a client, creating it on first
// reference. Never fails.
func (s *Store) GetOrCreateAccount(client ClientID) *Account {
	if account, ok := s.accounts[client]; ok {
		return account
	}
	account := &Account{Client: client}
	s.accounts[client] = account
	s.order = append(s.order, client)
	return account
}

// Transaction looks up a stored transaction by id.
func (s *Store) Transaction(id TxID) (*Transaction, bool) {
	tx, ok := s.txs[id]
	return tx, ok
}

// RecordTransaction stores a deposit or withdrawal so later dispute records
// can reference it. The caller guarantees the id is unused.
func (s *Store) RecordTransaction(id TxID, client ClientID, kind Kind, amount money.Amount) {
	s.txs[id] = &Transaction{
		ID:     id,
		Client: client,
		Kind:   kind,
		Amount: amount,
	}
}

// AccountCount returns the number of accounts created so far.
func (s *Store) AccountCount() int {
	return len(s.accounts)
}

// Snapshot returns one summary per account, in the order accounts were
// first created.
func (s *Store) Snapshot() []AccountSummary {
	summaries := make([]AccountSummary, 0, len(s.order))
	for _, client := range s.order {
		account := s.accounts[client]
		summaries = append(summaries, AccountSummary{
			Client:    account.Client,
			Available: account.Available,
			Held:      account.Held,
			Total:     account.Total(),
			Locked:    account.Locked,
		})
	}
	return summaries
}
