package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nodekeeper/internal/common"
	"github.com/dmitrijs2005/nodekeeper/internal/dbx"
	"github.com/dmitrijs2005/nodekeeper/internal/defaults"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
	"github.com/dmitrijs2005/nodekeeper/internal/models"
	"github.com/dmitrijs2005/nodekeeper/internal/repositories/servers"
	"github.com/dmitrijs2005/nodekeeper/internal/storage"
)

// RegistryService maintains the server registry and its active pointer.
//
// Every mutation runs in a single transaction. Validation failures
// (duplicate address, unknown address, last record) are returned as is;
// anything else that aborts a transaction is wrapped with
// common.ErrTransactionFailure.
type RegistryService struct {
	tr      dbx.Transactor
	repos   storage.RepositoryManager
	source  defaults.Source
	network models.Network
	logger  logging.Logger
}

// NewRegistryService constructs a RegistryService. source and network select
// the bundled default servers used by CreateDefaults.
func NewRegistryService(tr dbx.Transactor, repos storage.RepositoryManager, source defaults.Source, network models.Network, logger logging.Logger) *RegistryService {
	return &RegistryService{tr: tr, repos: repos, source: source, network: network, logger: logger}
}

func (s *RegistryService) servers(db dbx.DBTX) servers.Repository {
	return s.repos.Servers(db)
}

func (s *RegistryService) settings(db dbx.DBTX) *Settings {
	return NewSettings(s.repos.Settings(db))
}

// List returns a snapshot of all records in insertion order.
func (s *RegistryService) List(ctx context.Context) ([]models.ServerRecord, error) {
	return s.servers(s.tr.DB()).List(ctx)
}

// Defaults returns the records installed by CreateDefaults.
func (s *RegistryService) Defaults(ctx context.Context) ([]models.ServerRecord, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ServerRecord, 0, len(all))
	for _, r := range all {
		if r.IsDefault {
			out = append(out, r)
		}
	}
	return out, nil
}

// ValidateUniqueness fails with *common.AddressAlreadyPresentError when a
// record with exactly this address exists.
func (s *RegistryService) ValidateUniqueness(ctx context.Context, address string) error {
	exists, err := s.servers(s.tr.DB()).Exists(ctx, address)
	if err != nil {
		return err
	}
	if exists {
		return &common.AddressAlreadyPresentError{Address: address}
	}
	return nil
}

// Create adds one non-default record.
func (s *RegistryService) Create(ctx context.Context, address, protocolType, port string) error {
	rec := models.ServerRecord{Address: address, ProtocolType: protocolType, Port: port}

	err := s.tr.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.servers(tx)
		exists, err := repo.Exists(ctx, address)
		if err != nil {
			return err
		}
		if exists {
			return &common.AddressAlreadyPresentError{Address: address}
		}
		return repo.Insert(ctx, rec)
	})
	if err != nil {
		return s.fail(ctx, "create", address, err)
	}

	s.logger.Info(ctx, "server created", "op", "create", "address", address)
	return nil
}

// CreateDefaults installs the bundled servers for the configured network,
// points the active pointer at the first one and sets defaultServerStatus.
// Either all of it is persisted or none of it.
func (s *RegistryService) CreateDefaults(ctx context.Context) error {
	specs, err := s.source.Servers(s.network)
	if err != nil {
		return fmt.Errorf("load default servers: %w", err)
	}
	if len(specs) == 0 {
		return fmt.Errorf("load default servers: none for network %q", s.network)
	}

	err = s.tr.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.servers(tx)
		for _, spec := range specs {
			if err := repo.Insert(ctx, spec.Record()); err != nil {
				return err
			}
		}

		settings := s.settings(tx)
		if err := settings.SetActiveServer(ctx, specs[0].Address); err != nil {
			return err
		}
		return settings.SetDefaultServerStatus(ctx, true)
	})
	if err != nil {
		// A duplicate inside the resource is a failed bootstrap, not a user error.
		s.logger.Error(ctx, "registry transaction failed", "op", "create_defaults", "error", err)
		return fmt.Errorf("create_defaults: %w: %w", common.ErrTransactionFailure, err)
	}

	s.logger.Info(ctx, "default servers created", "op", "create_defaults",
		"network", string(s.network), "count", len(specs), "active", specs[0].Address)
	return nil
}

// EnsureDefaults runs CreateDefaults unless defaultServerStatus is already
// set. It reports whether defaults were created.
func (s *RegistryService) EnsureDefaults(ctx context.Context) (bool, error) {
	done, err := s.settings(s.tr.DB()).DefaultServerStatus(ctx)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}
	if err := s.CreateDefaults(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes rec. When rec is active the pointer moves to the first
// remaining record in the same transaction. The last record cannot be
// deleted: common.ErrEmptyRegistry is returned and nothing changes.
func (s *RegistryService) Delete(ctx context.Context, rec models.ServerRecord) error {
	var reassigned string

	err := s.tr.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.servers(tx)
		if _, err := repo.GetByAddress(ctx, rec.Address); err != nil {
			return err
		}

		next, err := repo.FirstExcept(ctx, rec.Address)
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrEmptyRegistry
		}
		if err != nil {
			return err
		}

		settings := s.settings(tx)
		active, err := settings.ActiveServer(ctx)
		if err != nil {
			return err
		}
		if active == rec.Address {
			if err := settings.SetActiveServer(ctx, next.Address); err != nil {
				return err
			}
			reassigned = next.Address
		}

		return repo.Delete(ctx, rec.Address)
	})
	if err != nil {
		return s.fail(ctx, "delete", rec.Address, err)
	}

	if reassigned != "" {
		s.logger.Info(ctx, "server deleted", "op", "delete", "address", rec.Address, "active", reassigned)
	} else {
		s.logger.Info(ctx, "server deleted", "op", "delete", "address", rec.Address)
	}
	return nil
}

// Update rewrites rec with new values. If rec was active and its address
// changes, the pointer follows it once the record itself was rewritten.
func (s *RegistryService) Update(ctx context.Context, rec models.ServerRecord, newProtocolType, newAddress, newPort string) error {
	updated := models.ServerRecord{Address: newAddress, ProtocolType: newProtocolType, Port: newPort}

	err := s.tr.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.servers(tx)
		if newAddress != rec.Address {
			exists, err := repo.Exists(ctx, newAddress)
			if err != nil {
				return err
			}
			if exists {
				return &common.AddressAlreadyPresentError{Address: newAddress}
			}
		}

		if err := repo.Update(ctx, rec.Address, updated); err != nil {
			return err
		}
		if newAddress == rec.Address {
			return nil
		}

		settings := s.settings(tx)
		active, err := settings.ActiveServer(ctx)
		if err != nil {
			return err
		}
		if active != rec.Address {
			return nil
		}
		return settings.SetActiveServer(ctx, newAddress)
	})
	if err != nil {
		return s.fail(ctx, "update", rec.Address, err)
	}

	s.logger.Info(ctx, "server updated", "op", "update", "address", rec.Address, "new_address", newAddress)
	return nil
}

// SetActive overwrites the active pointer. The address is not checked
// against the registry.
func (s *RegistryService) SetActive(ctx context.Context, address string) error {
	if err := s.settings(s.tr.DB()).SetActiveServer(ctx, address); err != nil {
		return err
	}
	s.logger.Info(ctx, "active server set", "op", "set_active", "address", address)
	return nil
}

// Active resolves the active pointer. common.ErrMissingActiveServer is
// returned when the pointer is unset or names no record.
func (s *RegistryService) Active(ctx context.Context) (models.ServerRecord, error) {
	db := s.tr.DB()

	address, err := s.settings(db).ActiveServer(ctx)
	if err != nil {
		return models.ServerRecord{}, err
	}
	if address == "" {
		return models.ServerRecord{}, common.ErrMissingActiveServer
	}

	rec, err := s.servers(db).GetByAddress(ctx, address)
	if errors.Is(err, common.ErrorNotFound) {
		return models.ServerRecord{}, fmt.Errorf("%w: %q is not registered", common.ErrMissingActiveServer, address)
	}
	if err != nil {
		return models.ServerRecord{}, err
	}
	return *rec, nil
}

// fail logs err and classifies it for the caller.
func (s *RegistryService) fail(ctx context.Context, op, address string, err error) error {
	s.logger.Error(ctx, "registry transaction failed", "op", op, "address", address, "error", err)

	if errors.Is(err, common.ErrAddressAlreadyPresent) ||
		errors.Is(err, common.ErrEmptyRegistry) ||
		errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrTransactionFailure, err)
}
