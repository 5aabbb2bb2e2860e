package service

import (
	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/notify"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service used to handle the bank configuration. Writes require the manager
// role; reads are open to anyone.
type ConfigService interface {
	SetBankCap(caller entity.Address, value int64) error
	SetWithdrawLimit(caller entity.Address, value int64) error

	BankCap() (int64, error)
	WithdrawLimit() (int64, error)
}

type configService struct {
	lock      *CommitLock
	stateRepo repository.BankStateRepository
	roleRepo  repository.RoleRepository
	publisher notify.Publisher
	logger    zerolog.Logger
}

func NewConfigService(lock *CommitLock, stateRepo repository.BankStateRepository, roleRepo repository.RoleRepository, publisher notify.Publisher, logger zerolog.Logger) ConfigService {
	return &configService{
		lock:      lock,
		stateRepo: stateRepo,
		roleRepo:  roleRepo,
		publisher: publisher,
		logger:    logger.With().Str("service", "config").Logger(),
	}
}

func (s *configService) SetBankCap(caller entity.Address, value int64) error {
	return s.setValue(caller, value, "bank cap", s.stateRepo.SetBankCap)
}

func (s *configService) SetWithdrawLimit(caller entity.Address, value int64) error {
	return s.setValue(caller, value, "withdraw limit", s.stateRepo.SetWithdrawLimit)
}

func (s *configService) setValue(caller entity.Address, value int64, what string, set func(string, int64) (*entity.Event, error)) error {
	requestID := uuid.New().String()
	log := s.logger.With().Str("request_id", requestID).Str("caller", string(caller)).Int64("value", value).Logger()

	// The role check runs before anything else; a non-manager never reaches
	// the value validation.
	ok, err := s.roleRepo.Has(caller, entity.RoleManager)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn().Msgf("unauthorized attempt to change the %s", what)
		return entity.ErrUnauthorized
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	event, err := set(requestID, value)
	if err != nil {
		log.Info().Err(err).Msgf("%s change rejected", what)
		return err
	}

	s.publisher.Publish(event)
	log.Info().Msgf("%s changed", what)
	return nil
}

func (s *configService) BankCap() (int64, error) {
	return s.stateRepo.GetBankCap()
}

func (s *configService) WithdrawLimit() (int64, error) {
	return s.stateRepo.GetWithdrawLimit()
}
