package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"

	"github.com/rs/zerolog"
)

const testAddr = entity.Address("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")

type MockLedgerRepo struct {
	account     *entity.Account
	err         error
	sendInvoked bool
}

func (m *MockLedgerRepo) Deposit(requestID string, address entity.Address, amount int64) (*entity.Account, *entity.Event, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.account, &entity.Event{ID: 1, Kind: entity.EventDeposited, Address: address, Amount: amount}, nil
}

func (m *MockLedgerRepo) Withdraw(requestID string, address entity.Address, amount int64, send repository.SendFunc) (*entity.Account, *entity.Event, error) {
	if err := send(address, amount); err != nil {
		m.sendInvoked = true
		return nil, nil, err
	}
	m.sendInvoked = true
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.account, &entity.Event{ID: 2, Kind: entity.EventWithdrawn, Address: address, Amount: amount}, nil
}

func (m *MockLedgerRepo) GetAccount(address entity.Address) (*entity.Account, error) {
	return m.account, m.err
}

func (m *MockLedgerRepo) TotalHeld() (int64, error) { return 0, nil }

type MockGateway struct {
	err    error
	called bool
}

func (g *MockGateway) Send(ctx context.Context, address entity.Address, amount int64) error {
	g.called = true
	return g.err
}

type RecordingPublisher struct {
	events []*entity.Event
}

func (p *RecordingPublisher) Publish(e *entity.Event) { p.events = append(p.events, e) }
func (p *RecordingPublisher) Close()                  {}

func TestDepositPublishesEvent(t *testing.T) {
	repo := &MockLedgerRepo{account: &entity.Account{Address: testAddr, Balance: 50, DepositCount: 1}}
	pub := &RecordingPublisher{}
	svc := NewLedgerService(NewCommitLock(), repo, &MockGateway{}, pub, zerolog.Nop())

	account, err := svc.Deposit(context.Background(), testAddr, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if account.Balance != 50 {
		t.Errorf("Expected balance 50, got %d", account.Balance)
	}
	if len(pub.events) != 1 || pub.events[0].Kind != entity.EventDeposited {
		t.Errorf("Expected exactly one Deposited event, got %v", pub.events)
	}
}

func TestDepositFailurePublishesNothing(t *testing.T) {
	repo := &MockLedgerRepo{err: entity.ErrCapacityExceeded}
	pub := &RecordingPublisher{}
	svc := NewLedgerService(NewCommitLock(), repo, &MockGateway{}, pub, zerolog.Nop())

	_, err := svc.Deposit(context.Background(), testAddr, 50)
	if !errors.Is(err, entity.ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("No event should be published on failure, got %v", pub.events)
	}
}

func TestWithdrawRoutesThroughGateway(t *testing.T) {
	repo := &MockLedgerRepo{account: &entity.Account{Address: testAddr, Balance: 40, WithdrawalCount: 1}}
	gateway := &MockGateway{}
	pub := &RecordingPublisher{}
	svc := NewLedgerService(NewCommitLock(), repo, gateway, pub, zerolog.Nop())

	_, err := svc.Withdraw(context.Background(), testAddr, 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !gateway.called {
		t.Error("The transfer gateway was never invoked")
	}
	if len(pub.events) != 1 || pub.events[0].Kind != entity.EventWithdrawn {
		t.Errorf("Expected exactly one Withdrawn event, got %v", pub.events)
	}
}

func TestWithdrawGatewayFailurePublishesNothing(t *testing.T) {
	repo := &MockLedgerRepo{account: &entity.Account{Address: testAddr, Balance: 40}}
	gateway := &MockGateway{err: errors.New("refused")}
	pub := &RecordingPublisher{}
	svc := NewLedgerService(NewCommitLock(), repo, gateway, pub, zerolog.Nop())

	_, err := svc.Withdraw(context.Background(), testAddr, 10)
	if err == nil {
		t.Fatal("Expected an error when the gateway refuses")
	}
	if len(pub.events) != 0 {
		t.Errorf("No event should be published on a failed transfer, got %v", pub.events)
	}
}

// MemoryLedgerRepo keeps one shared bank state without any locking of its
// own; the service's CommitLock is the only thing standing between two
// concurrent callers and an interleaved check-then-update.
type MemoryLedgerRepo struct {
	bankCap       int64
	withdrawLimit int64
	total         int64
	accounts      map[entity.Address]*entity.Account
}

func NewMemoryLedgerRepo(bankCap, withdrawLimit int64) *MemoryLedgerRepo {
	return &MemoryLedgerRepo{
		bankCap:       bankCap,
		withdrawLimit: withdrawLimit,
		accounts:      make(map[entity.Address]*entity.Account),
	}
}

func (m *MemoryLedgerRepo) getOrCreate(address entity.Address) *entity.Account {
	account, ok := m.accounts[address]
	if !ok {
		account = &entity.Account{Address: address}
		m.accounts[address] = account
	}
	return account
}

func (m *MemoryLedgerRepo) Deposit(requestID string, address entity.Address, amount int64) (*entity.Account, *entity.Event, error) {
	if amount <= 0 {
		return nil, nil, entity.ErrZeroAmount
	}
	if amount > m.bankCap-m.total {
		return nil, nil, entity.ErrCapacityExceeded
	}
	m.total += amount
	account := m.getOrCreate(address)
	account.Balance += amount
	account.DepositCount++
	cp := *account
	return &cp, &entity.Event{Kind: entity.EventDeposited, Address: address, Amount: amount}, nil
}

func (m *MemoryLedgerRepo) Withdraw(requestID string, address entity.Address, amount int64, send repository.SendFunc) (*entity.Account, *entity.Event, error) {
	if amount <= 0 {
		return nil, nil, entity.ErrZeroAmount
	}
	account := m.getOrCreate(address)
	if amount > account.Balance {
		return nil, nil, entity.ErrInsufficientBalance
	}
	if amount > m.withdrawLimit {
		return nil, nil, entity.ErrLimitExceeded
	}
	if err := send(address, amount); err != nil {
		return nil, nil, err
	}
	account.Balance -= amount
	account.WithdrawalCount++
	m.total -= amount
	cp := *account
	return &cp, &entity.Event{Kind: entity.EventWithdrawn, Address: address, Amount: amount}, nil
}

func (m *MemoryLedgerRepo) GetAccount(address entity.Address) (*entity.Account, error) {
	cp := *m.getOrCreate(address)
	return &cp, nil
}

func (m *MemoryLedgerRepo) TotalHeld() (int64, error) { return m.total, nil }

func TestConcurrentDepositsRespectCap(t *testing.T) {
	repo := NewMemoryLedgerRepo(100, 10)
	svc := NewLedgerService(NewCommitLock(), repo, &MockGateway{}, &RecordingPublisher{}, zerolog.Nop())

	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Deposit(context.Background(), testAddr, 10); err == nil {
				atomic.AddInt64(&succeeded, 1)
			} else if !errors.Is(err, entity.ErrCapacityExceeded) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("Expected exactly 10 deposits under a cap of 100, got %d", succeeded)
	}
	total, _ := repo.TotalHeld()
	if total > 100 {
		t.Errorf("Deposits individually under the cap slipped past it jointly: total %d", total)
	} else if total != 100 {
		t.Errorf("Expected total 100, got %d", total)
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	repo := NewMemoryLedgerRepo(1000, 10)
	svc := NewLedgerService(NewCommitLock(), repo, &MockGateway{}, &RecordingPublisher{}, zerolog.Nop())

	if _, err := svc.Deposit(context.Background(), testAddr, 50); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Withdraw(context.Background(), testAddr, 10); err == nil {
				atomic.AddInt64(&succeeded, 1)
			} else if !errors.Is(err, entity.ErrInsufficientBalance) {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Errorf("Expected exactly 5 withdrawals from a balance of 50, got %d", succeeded)
	}
	account, _ := repo.GetAccount(testAddr)
	if account.Balance != 0 {
		t.Errorf("Expected balance 0, got %d", account.Balance)
	}
	if account.WithdrawalCount != 5 {
		t.Errorf("Expected withdrawal counter 5, got %d", account.WithdrawalCount)
	}
}

func TestCounters(t *testing.T) {
	repo := &MockLedgerRepo{account: &entity.Account{Address: testAddr, DepositCount: 3, WithdrawalCount: 2}}
	svc := NewLedgerService(NewCommitLock(), repo, &MockGateway{}, &RecordingPublisher{}, zerolog.Nop())

	deposits, withdrawals, err := svc.Counters(testAddr)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if deposits != 3 || withdrawals != 2 {
		t.Errorf("Expected counters (3, 2), got (%d, %d)", deposits, withdrawals)
	}
}
