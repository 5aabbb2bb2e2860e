package service

import (
	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/notify"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service used to handle role grants. Only admins may grant or revoke, and
// admin is itself a role subject to that same check; the only unconditional
// assignment is the bootstrap grant done in main at startup.
type RoleService interface {
	Grant(caller entity.Address, role entity.Role, address entity.Address) error
	Revoke(caller entity.Address, role entity.Role, address entity.Address) error

	Has(address entity.Address, role entity.Role) (bool, error)
	Roles(address entity.Address) ([]entity.Role, error)
}

type roleService struct {
	lock      *CommitLock
	roleRepo  repository.RoleRepository
	publisher notify.Publisher
	logger    zerolog.Logger
}

func NewRoleService(lock *CommitLock, roleRepo repository.RoleRepository, publisher notify.Publisher, logger zerolog.Logger) RoleService {
	return &roleService{
		lock:      lock,
		roleRepo:  roleRepo,
		publisher: publisher,
		logger:    logger.With().Str("service", "role").Logger(),
	}
}

func (s *roleService) Grant(caller entity.Address, role entity.Role, address entity.Address) error {
	requestID := uuid.New().String()
	log := s.logger.With().Str("request_id", requestID).Str("caller", string(caller)).Str("role", string(role)).Str("address", string(address)).Logger()

	if err := s.authorize(caller, &log); err != nil {
		return err
	}
	if !role.Valid() {
		return entity.ErrBadValue
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	event, err := s.roleRepo.Grant(requestID, role, address, caller)
	if err != nil {
		log.Info().Err(err).Msg("role grant rejected")
		return err
	}
	if event != nil {
		s.publisher.Publish(event)
	}
	log.Info().Msg("role granted")
	return nil
}

func (s *roleService) Revoke(caller entity.Address, role entity.Role, address entity.Address) error {
	requestID := uuid.New().String()
	log := s.logger.With().Str("request_id", requestID).Str("caller", string(caller)).Str("role", string(role)).Str("address", string(address)).Logger()

	if err := s.authorize(caller, &log); err != nil {
		return err
	}
	if !role.Valid() {
		return entity.ErrBadValue
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	event, err := s.roleRepo.Revoke(requestID, role, address)
	if err != nil {
		log.Info().Err(err).Msg("role revocation rejected")
		return err
	}
	if event != nil {
		s.publisher.Publish(event)
	}
	log.Info().Msg("role revoked")
	return nil
}

func (s *roleService) authorize(caller entity.Address, log *zerolog.Logger) error {
	ok, err := s.roleRepo.Has(caller, entity.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		log.Warn().Msg("unauthorized role change attempt")
		return entity.ErrUnauthorized
	}
	return nil
}

func (s *roleService) Has(address entity.Address, role entity.Role) (bool, error) {
	return s.roleRepo.Has(address, role)
}

func (s *roleService) Roles(address entity.Address) ([]entity.Role, error) {
	return s.roleRepo.ListRoles(address)
}
