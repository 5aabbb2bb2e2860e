package service

import (
	"context"
	"sync"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/notify"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"
	"github.com/YuriVictoria/KipuBankV2/internal/transfer"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommitLock serializes every state-changing operation across the services.
// The repositories already make each operation atomic on their own; the shared
// lock is what keeps the publish order identical to the commit order.
type CommitLock struct {
	mu sync.Mutex
}

func NewCommitLock() *CommitLock { return &CommitLock{} }

func (l *CommitLock) Lock()   { l.mu.Lock() }
func (l *CommitLock) Unlock() { l.mu.Unlock() }

// Service used to handle the custodied balances.
type LedgerService interface {
	Deposit(ctx context.Context, caller entity.Address, amount int64) (*entity.Account, error)
	Withdraw(ctx context.Context, caller entity.Address, amount int64) (*entity.Account, error)

	// Reads are self-scoped: an account only ever sees its own record.
	Balance(caller entity.Address) (int64, error)
	Counters(caller entity.Address) (deposits, withdrawals uint64, err error)
}

type ledgerService struct {
	lock       *CommitLock
	ledgerRepo repository.LedgerRepository
	gateway    transfer.Gateway
	publisher  notify.Publisher
	logger     zerolog.Logger
}

func NewLedgerService(lock *CommitLock, ledgerRepo repository.LedgerRepository, gateway transfer.Gateway, publisher notify.Publisher, logger zerolog.Logger) LedgerService {
	return &ledgerService{
		lock:       lock,
		ledgerRepo: ledgerRepo,
		gateway:    gateway,
		publisher:  publisher,
		logger:     logger.With().Str("service", "ledger").Logger(),
	}
}

func (s *ledgerService) Deposit(ctx context.Context, caller entity.Address, amount int64) (*entity.Account, error) {
	requestID := uuid.New().String()
	log := s.logger.With().Str("request_id", requestID).Str("address", string(caller)).Int64("amount", amount).Logger()

	s.lock.Lock()
	defer s.lock.Unlock()

	account, event, err := s.ledgerRepo.Deposit(requestID, caller, amount)
	if err != nil {
		log.Info().Err(err).Msg("deposit rejected")
		return nil, err
	}

	s.publisher.Publish(event)
	log.Info().Int64("balance", account.Balance).Msg("deposit committed")
	return account, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, caller entity.Address, amount int64) (*entity.Account, error) {
	requestID := uuid.New().String()
	log := s.logger.With().Str("request_id", requestID).Str("address", string(caller)).Int64("amount", amount).Logger()

	s.lock.Lock()
	defer s.lock.Unlock()

	account, event, err := s.ledgerRepo.Withdraw(requestID, caller, amount, func(address entity.Address, amt int64) error {
		return s.gateway.Send(ctx, address, amt)
	})
	if err != nil {
		log.Info().Err(err).Msg("withdrawal rejected")
		return nil, err
	}

	s.publisher.Publish(event)
	log.Info().Int64("balance", account.Balance).Msg("withdrawal committed")
	return account, nil
}

func (s *ledgerService) Balance(caller entity.Address) (int64, error) {
	account, err := s.ledgerRepo.GetAccount(caller)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func (s *ledgerService) Counters(caller entity.Address) (uint64, uint64, error) {
	account, err := s.ledgerRepo.GetAccount(caller)
	if err != nil {
		return 0, 0, err
	}
	return account.DepositCount, account.WithdrawalCount, nil
}
