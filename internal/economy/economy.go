// Package economy defines the capability interface for the external
// player-money integration. The engine never owns player balances; treasury
// operations debit or credit the provider first and only commit internal
// state on success. A nil provider is a normal configuration (NO_ECONOMY
// outcomes), not an error.
package economy

import (
	"fmt"
	"sync"

	"github.com/talgya/statecraft/internal/state"
)

// Provider is the external economy the engine charges and pays players
// through. Calls are synchronous and must complete within the calling
// operation.
type Provider interface {
	// Balance returns the player's spendable funds.
	Balance(p state.PlayerID) (float64, error)
	// Withdraw removes funds from the player. Fails without side effects if
	// the player cannot cover the amount.
	Withdraw(p state.PlayerID, amount float64) error
	// Deposit adds funds to the player.
	Deposit(p state.PlayerID, amount float64) error
}

// Memory is an in-process Provider used by tests and standalone runs.
type Memory struct {
	mu       sync.Mutex
	balances map[state.PlayerID]float64
}

// NewMemory creates an empty in-memory economy.
func NewMemory() *Memory {
	return &Memory{balances: make(map[state.PlayerID]float64)}
}

// SetBalance fixes a player's funds, creating the account if needed.
func (m *Memory) SetBalance(p state.PlayerID, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[p] = amount
}

// Balance returns the player's funds. Unknown players hold zero.
func (m *Memory) Balance(p state.PlayerID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[p], nil
}

// Withdraw removes funds, failing if the player cannot cover the amount.
func (m *Memory) Withdraw(p state.PlayerID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[p] < amount {
		return fmt.Errorf("insufficient funds for %s: have %.2f, need %.2f", p, m.balances[p], amount)
	}
	m.balances[p] -= amount
	return nil
}

// Deposit adds funds to the player.
func (m *Memory) Deposit(p state.PlayerID, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[p] += amount
	return nil
}
