package postgres

import (
	"context"
	"fmt"

	"github.com/alamarhq/alamar/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Ally() repository.AllyRepo {
	return &AllyRepo{DB: s.db}
}

func (s *Storage) Wallet() repository.WalletRepo {
	return &WalletRepo{DB: s.db}
}

func (s *Storage) Withdrawal() repository.WithdrawalRepo {
	return &WithdrawalRepo{DB: s.db}
}

func (s *Storage) Settings() repository.SettingsRepo {
	return &SettingsRepo{DB: s.db}
}

func (s *Storage) Audit() repository.AuditRepo {
	return &AuditRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
