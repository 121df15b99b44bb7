// Treasury: deposits and withdrawals against the external economy, tax
// configuration, and the append-only transaction log. The external economy
// is debited or credited first; internal state commits only on its success.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/talgya/statecraft/internal/state"
)

// BankStatus is the outcome of a treasury operation.
type BankStatus int

const (
	BankOK BankStatus = iota
	BankDisabled
	BankNoEconomy
	BankInvalidAmount
	BankNotInState
	BankNotCaptain
	BankInsufficientPlayerFunds
	BankInsufficientBankFunds
	BankFailedTransaction
)

// String returns the outcome label.
func (s BankStatus) String() string {
	switch s {
	case BankOK:
		return "OK"
	case BankDisabled:
		return "BANK_DISABLED"
	case BankNoEconomy:
		return "NO_ECONOMY"
	case BankInvalidAmount:
		return "INVALID_AMOUNT"
	case BankNotInState:
		return "NOT_IN_STATE"
	case BankNotCaptain:
		return "NOT_CAPTAIN"
	case BankInsufficientPlayerFunds:
		return "INSUFFICIENT_PLAYER_FUNDS"
	case BankInsufficientBankFunds:
		return "INSUFFICIENT_BANK_FUNDS"
	case BankFailedTransaction:
		return "FAILED_TRANSACTION"
	default:
		return "UNKNOWN"
	}
}

// BankResult reports a treasury operation's outcome.
type BankResult struct {
	Status     BankStatus
	Amount     float64
	NewBalance float64
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Deposit moves player funds into the state treasury. Any member may
// deposit.
func (e *Engine) Deposit(p state.PlayerID, amount float64) BankResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.BankEnabled {
		return BankResult{Status: BankDisabled}
	}
	if e.Economy == nil {
		return BankResult{Status: BankNoEconomy}
	}
	if !validAmount(amount) {
		return BankResult{Status: BankInvalidAmount}
	}
	st := e.stateOf(p)
	if st == nil {
		return BankResult{Status: BankNotInState}
	}
	funds, err := e.Economy.Balance(p)
	if err != nil {
		slog.Error("economy balance check failed", "player", p, "error", err)
		return BankResult{Status: BankFailedTransaction}
	}
	if funds < amount {
		return BankResult{Status: BankInsufficientPlayerFunds}
	}
	if err := e.Economy.Withdraw(p, amount); err != nil {
		slog.Error("economy withdraw failed", "player", p, "amount", amount, "error", err)
		return BankResult{Status: BankFailedTransaction}
	}

	st.Balance += amount
	e.appendTransaction(st, &p, amount, state.TransactionDeposit)
	return BankResult{Status: BankOK, Amount: amount, NewBalance: st.Balance}
}

// Withdraw moves treasury funds to the captain. Captain-only.
func (e *Engine) Withdraw(captain state.PlayerID, amount float64) BankResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.BankEnabled {
		return BankResult{Status: BankDisabled}
	}
	if e.Economy == nil {
		return BankResult{Status: BankNoEconomy}
	}
	if !validAmount(amount) {
		return BankResult{Status: BankInvalidAmount}
	}
	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return BankResult{Status: BankNotCaptain}
	}
	if st.Balance < amount {
		return BankResult{Status: BankInsufficientBankFunds}
	}
	if err := e.Economy.Deposit(captain, amount); err != nil {
		slog.Error("economy deposit failed", "player", captain, "amount", amount, "error", err)
		return BankResult{Status: BankFailedTransaction}
	}

	st.Balance -= amount
	e.appendTransaction(st, &captain, amount, state.TransactionWithdraw)
	return BankResult{Status: BankOK, Amount: amount, NewBalance: st.Balance}
}

// SetTaxStatus is the outcome of configuring the per-interval tax.
type SetTaxStatus int

const (
	SetTaxOK SetTaxStatus = iota
	SetTaxNotCaptain
	SetTaxInvalidAmount
)

// String returns the outcome label.
func (s SetTaxStatus) String() string {
	switch s {
	case SetTaxOK:
		return "OK"
	case SetTaxNotCaptain:
		return "NOT_CAPTAIN"
	case SetTaxInvalidAmount:
		return "INVALID_AMOUNT"
	default:
		return "UNKNOWN"
	}
}

// SetTaxAmount configures the amount collected from the treasury each tax
// interval. Captain-only; must be non-negative.
func (e *Engine) SetTaxAmount(captain state.PlayerID, amount float64) SetTaxStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateOf(captain)
	if st == nil || st.Captain != captain {
		return SetTaxNotCaptain
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return SetTaxInvalidAmount
	}
	st.TaxAmount = amount
	return SetTaxOK
}

// BankBalance returns the named state's treasury balance.
func (e *Engine) BankBalance(stateName string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[state.Key(stateName)]
	if !ok {
		return 0, false
	}
	return st.Balance, true
}

// Transactions returns a snapshot of the state's ledger, oldest first.
func (e *Engine) Transactions(stateName string) []state.BankTransaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[state.Key(stateName)]
	if !ok {
		return nil
	}
	out := make([]state.BankTransaction, len(st.Transactions))
	copy(out, st.Transactions)
	return out
}

// CollectTaxes charges every state's configured tax from its treasury,
// capped at the available balance. Called by the scheduler each tax
// interval.
func (e *Engine) CollectTaxes() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, k := range e.order {
		st := e.states[k]
		if st.TaxAmount <= 0 {
			continue
		}
		collected := st.TaxAmount
		if collected > st.Balance {
			collected = st.Balance
		}
		if collected <= 0 {
			continue
		}
		st.Balance -= collected
		e.appendTransaction(st, nil, collected, state.TransactionTax)

		meta := map[string]any{
			"state":      st.Name,
			"configured": st.TaxAmount,
			"collected":  collected,
		}
		if collected < st.TaxAmount {
			meta["shortfall"] = st.TaxAmount - collected
		}
		e.emit("economy", fmt.Sprintf("%s paid %.2f in tax", st.Name, collected), meta)
	}
}

// appendTransaction records a ledger entry at the state's current balance.
// Caller holds e.mu and has already applied the balance change.
func (e *Engine) appendTransaction(st *state.State, actor *state.PlayerID, amount float64, kind state.BankTransactionKind) {
	st.Transactions = append(st.Transactions, state.BankTransaction{
		ID:         uuid.NewString(),
		Timestamp:  e.now(),
		Actor:      actor,
		Amount:     amount,
		NewBalance: st.Balance,
		Kind:       kind,
	})
}
