package service

import (
	"context"
	"time"

	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListTransactionsInput struct {
	GymID primitive.ObjectID     `json:"gymId" validate:"required"`
	From  *time.Time             `json:"from"`
	To    *time.Time             `json:"to"`
	Type  domain.TransactionType `json:"type" validate:"omitempty,oneof=admission renewal due_payment refund"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

type TransactionPage struct {
	Transactions []RecentTransaction `json:"transactions"`
	Pagination   Pagination          `json:"pagination"`
}

// TransactionService reads the ledger. Entries are only ever written by the
// membership lifecycle.
type TransactionService interface {
	ListTransactions(ctx context.Context, actor *domain.User, in ListTransactionsInput) (*TransactionPage, error)
}

type transactionService struct {
	gate       AccessGate
	txnRepo    repository.TransactionRepository
	memberRepo repository.MemberRepository
}

func NewTransactionService(gate AccessGate, txnRepo repository.TransactionRepository, memberRepo repository.MemberRepository) TransactionService {
	return &transactionService{gate: gate, txnRepo: txnRepo, memberRepo: memberRepo}
}

func (s *transactionService) ListTransactions(ctx context.Context, actor *domain.User, in ListTransactionsInput) (*TransactionPage, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.From != nil && in.To != nil && !in.From.Before(*in.To) {
		return nil, newValidationError("to", "must be after from")
	}
	if _, err := s.gate.Authorize(ctx, actor, in.GymID); err != nil {
		return nil, err
	}

	filter := repository.TransactionFilter{GymID: in.GymID, Type: in.Type}
	if in.From != nil {
		filter.From = in.From.UTC()
	}
	if in.To != nil {
		filter.To = in.To.UTC()
	}
	page := normalizePage(in.Page, in.Limit)
	txns, total, err := s.txnRepo.List(ctx, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list transactions")
	}

	ids := lo.Uniq(lo.Map(txns, func(t domain.Transaction, _ int) primitive.ObjectID { return t.Member }))
	members, err := s.memberRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "unable to resolve transaction members")
	}
	byID := lo.KeyBy(members, func(m domain.Member) primitive.ObjectID { return m.ID })

	out := lo.Map(txns, func(t domain.Transaction, _ int) RecentTransaction {
		m := byID[t.Member]
		return RecentTransaction{Transaction: t, MemberName: m.Name, MemberCode: m.MemberID}
	})
	return &TransactionPage{Transactions: out, Pagination: newPagination(page, total)}, nil
}
