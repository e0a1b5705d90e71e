package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/gym-manager/internal/cache"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/events"
	"alcyxob/gym-manager/internal/membership"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/storage"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnrollMemberInput is everything needed to admit a new member. Dates are
// calendar dates; only their year, month and day are used.
type EnrollMemberInput struct {
	GymID       primitive.ObjectID `json:"gymId" validate:"required"`
	MemberID    string             `json:"memberId" validate:"required,max=32"`
	Name        string             `json:"name" validate:"required,min=2,max=100"`
	PhoneNumber string             `json:"phoneNumber" validate:"required,numeric,min=7,max=15"`
	Gender      domain.Gender      `json:"gender" validate:"required,oneof=Male Female Other"`
	Batch       domain.Batch       `json:"batch" validate:"required,oneof=Morning Noon Evening Night"`

	Email       string     `json:"email" validate:"omitempty,email"`
	Height      float64    `json:"height" validate:"gte=0,lte=300"`
	Weight      float64    `json:"weight" validate:"gte=0,lte=500"`
	Address     string     `json:"address" validate:"max=300"`
	Notes       string     `json:"notes" validate:"max=1000"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	JoiningDate *time.Time `json:"joiningDate"`

	PlanID              *primitive.ObjectID `json:"planId"`
	MembershipStartDate *time.Time          `json:"membershipStartDate"`
	Discount            domain.Money        `json:"discount" validate:"gte=0"`
	AmountCollected     domain.Money        `json:"amountCollected" validate:"gte=0"`
	PaymentMode         domain.PaymentMode  `json:"paymentMode" validate:"omitempty,oneof=cash online card upi"`
}

type RenewMemberInput struct {
	MemberRecordID  primitive.ObjectID `json:"memberId" validate:"required"`
	PlanID          primitive.ObjectID `json:"planId" validate:"required"`
	StartDate       *time.Time         `json:"startDate"`
	Discount        domain.Money       `json:"discount" validate:"gte=0"`
	AmountCollected domain.Money       `json:"amountCollected" validate:"gte=0"`
	PaymentMode     domain.PaymentMode `json:"paymentMode" validate:"omitempty,oneof=cash online card upi"`
}

type DuePaymentInput struct {
	MemberRecordID primitive.ObjectID `json:"memberId" validate:"required"`
	Amount         domain.Money       `json:"amount" validate:"gt=0"`
	PaymentMode    domain.PaymentMode `json:"paymentMode" validate:"omitempty,oneof=cash online card upi"`
	Description    string             `json:"description" validate:"max=300"`
}

// UpdateMemberInput patches a member's profile; nil fields are left unchanged.
// Plan and payment fields change only through renewals and due payments,
// except the discount which re-prices the current term.
type UpdateMemberInput struct {
	MemberRecordID primitive.ObjectID `json:"memberId" validate:"required"`
	Name           *string            `json:"name" validate:"omitempty,min=2,max=100"`
	PhoneNumber    *string            `json:"phoneNumber" validate:"omitempty,numeric,min=7,max=15"`
	Gender         *domain.Gender     `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Batch          *domain.Batch      `json:"batch" validate:"omitempty,oneof=Morning Noon Evening Night"`
	Email          *string            `json:"email" validate:"omitempty,email"`
	Height         *float64           `json:"height" validate:"omitempty,gte=0,lte=300"`
	Weight         *float64           `json:"weight" validate:"omitempty,gte=0,lte=500"`
	Address        *string            `json:"address" validate:"omitempty,max=300"`
	Notes          *string            `json:"notes" validate:"omitempty,max=1000"`
	DateOfBirth    *time.Time         `json:"dateOfBirth"`
	Image          *string            `json:"image"`
	Discount       *domain.Money      `json:"discount" validate:"omitempty,gte=0"`
	IsFrozen       *bool              `json:"isFrozen"`
}

type ListMembersInput struct {
	GymID  primitive.ObjectID      `json:"gymId" validate:"required"`
	Status domain.MembershipStatus `json:"status" validate:"omitempty,oneof=active expired frozen"`
	Batch  domain.Batch            `json:"batch" validate:"omitempty,oneof=Morning Noon Evening Night"`
	Search string                  `json:"search" validate:"max=100"`
	Page   int                     `json:"page"`
	Limit  int                     `json:"limit"`
}

// MemberWithPlan is a member together with its current plan, when the plan
// still exists. ImageURL is a short-lived download link for the member photo.
type MemberWithPlan struct {
	Member   *domain.Member
	Plan     *domain.Plan
	ImageURL string
}

type MemberPage struct {
	Members    []MemberWithPlan
	Pagination Pagination
}

type RenewalResult struct {
	MemberWithPlan
	RenewalType domain.RenewalType
	History     *domain.MembershipHistory
}

// PhotoUpload is a presigned PUT target for a member photo.
type PhotoUpload struct {
	ObjectKey string    `json:"objectKey"`
	UploadURL string    `json:"uploadUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MemberService is the membership lifecycle: admission, renewal, dues and
// profile upkeep of a gym's members.
type MemberService interface {
	EnrollMember(ctx context.Context, actor *domain.User, in EnrollMemberInput) (*MemberWithPlan, error)
	RenewMember(ctx context.Context, actor *domain.User, in RenewMemberInput) (*RenewalResult, error)
	RecordDuePayment(ctx context.Context, actor *domain.User, in DuePaymentInput) (*MemberWithPlan, error)
	ListMembers(ctx context.Context, actor *domain.User, in ListMembersInput) (*MemberPage, error)
	GetMember(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) (*MemberWithPlan, error)
	UpdateMember(ctx context.Context, actor *domain.User, in UpdateMemberInput) (*MemberWithPlan, error)
	DeleteMember(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) error
	MembershipHistory(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) ([]domain.MembershipHistory, error)
	PhotoUploadURL(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID, contentType string) (*PhotoUpload, error)
}

type memberService struct {
	gate        AccessGate
	memberRepo  repository.MemberRepository
	planRepo    repository.PlanRepository
	txnRepo     repository.TransactionRepository
	historyRepo repository.MembershipHistoryRepository
	tx          repository.TxManager
	cache       cache.DashboardCache
	publisher   events.Publisher
	files       storage.FileStorage
	classifier  membership.Classifier
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMemberService wires the lifecycle manager. files may be nil when photo
// storage is not configured.
func NewMemberService(
	gate AccessGate,
	memberRepo repository.MemberRepository,
	planRepo repository.PlanRepository,
	txnRepo repository.TransactionRepository,
	historyRepo repository.MembershipHistoryRepository,
	tx repository.TxManager,
	dashboardCache cache.DashboardCache,
	publisher events.Publisher,
	files storage.FileStorage,
	classifier membership.Classifier,
	logger *zerolog.Logger,
) MemberService {
	return &memberService{
		gate:        gate,
		memberRepo:  memberRepo,
		planRepo:    planRepo,
		txnRepo:     txnRepo,
		historyRepo: historyRepo,
		tx:          tx,
		cache:       dashboardCache,
		publisher:   publisher,
		files:       files,
		classifier:  classifier,
		logger:      logger.With().Str("channel", "member_service").Logger(),
		now:         time.Now,
	}
}

// EnrollMember admits a member, optionally on a plan. The member, its
// admission transaction and its first history entry are written together.
func (s *memberService) EnrollMember(ctx context.Context, actor *domain.User, in EnrollMemberInput) (*MemberWithPlan, error) {
	in.MemberID = strings.TrimSpace(in.MemberID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.PlanID == nil && (in.AmountCollected > 0 || in.Discount > 0) {
		return nil, newValidationError("planId", "is required when collecting a payment or giving a discount")
	}

	gym, err := s.gate.Authorize(ctx, actor, in.GymID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	count, err := s.memberRepo.CountActiveByGym(ctx, gym.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to count members")
	}
	if !domain.LimitsFor(gym.EffectiveTier(now)).CanAddMember(int(count)) {
		return nil, errors.Wrap(ErrPlanLimitReached, "member limit")
	}

	taken, err := s.memberRepo.ExistsByMemberID(ctx, gym.ID, in.MemberID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to check member id")
	}
	if taken {
		return nil, ErrDuplicateMemberID
	}

	today := s.classifier.Today(now)
	joining := dateOr(in.JoiningDate, today)
	m := &domain.Member{
		MemberID:    in.MemberID,
		Gym:         gym.ID,
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: in.PhoneNumber,
		Gender:      in.Gender,
		Batch:       in.Batch,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Height:      in.Height,
		Weight:      in.Weight,
		Address:     strings.TrimSpace(in.Address),
		Notes:       strings.TrimSpace(in.Notes),
		DateOfBirth: datePtr(in.DateOfBirth),
		JoiningDate: joining,
		IsActive:    true,
	}

	var plan *domain.Plan
	if in.PlanID != nil {
		plan, err = s.activePlan(ctx, gym.ID, *in.PlanID)
		if err != nil {
			return nil, err
		}
		start := dateOr(in.MembershipStartDate, joining)
		end, err := membership.EndDate(start, plan.Duration)
		if err != nil {
			return nil, err
		}
		pricing, err := membership.ResolvePricing(plan.Price, in.Discount, in.AmountCollected)
		if err != nil {
			return nil, err
		}
		pricing.Apply(m)
		m.CurrentPlan = &plan.ID
		m.MembershipStartDate = &start
		m.MembershipEndDate = &end
	}
	m.MembershipStatus = s.classifier.MembershipStatus(m, now)

	mode := paymentModeOr(in.PaymentMode)
	saved := false
	step := StepMember
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// A retried transaction starts from scratch.
		saved, step = false, StepMember
		id, err := s.memberRepo.Create(ctx, m)
		if err != nil {
			return err
		}
		m.ID = id
		saved = true

		if plan == nil {
			return nil
		}
		if in.AmountCollected > 0 {
			step = StepTransaction
			txn := newPlanTransaction(m, plan, domain.TransactionAdmission, in.AmountCollected, in.Discount, mode, actor.ID, now)
			if _, err := s.txnRepo.Create(ctx, txn); err != nil {
				return err
			}
		}
		step = StepHistory
		_, err = s.historyRepo.Create(ctx, newHistory(m, plan, domain.RenewalNew, mode, actor.ID))
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) && step == StepMember {
			metrics.RecordEnrollment("failed")
			return nil, ErrDuplicateMemberID
		}
		if saved && !s.tx.Atomic() {
			metrics.RecordEnrollment("partial")
			return nil, s.partialWrite(ctx, OpEnrollment, m, step, err)
		}
		metrics.RecordEnrollment("failed")
		return nil, errors.Wrap(err, "unable to enroll member")
	}

	metrics.RecordEnrollment("ok")
	if plan != nil {
		metrics.RecordPayment(domain.TransactionAdmission, mode, in.AmountCollected)
	}
	invalidateDashboard(ctx, s.cache, &s.logger, gym.ID)
	publishEvent(ctx, s.publisher, &s.logger, events.NewMemberEvent(events.MemberEnrolled, m, in.AmountCollected, now))
	s.logger.Info().Str("gym", gym.ID.Hex()).Str("member", m.MemberID).Msg("member enrolled")

	return &MemberWithPlan{Member: m, Plan: plan}, nil
}

// RenewMember puts a member on a new term. Members with dues must clear them
// first; a credit left from an overpayment counts towards the new term.
//
//	expired or no plan      -> renewal, starts today (or the given date)
//	active, same plan       -> early_renewal, starts when the current term ends
//	active, pricier plan    -> upgrade, starts today
//	active, cheaper plan    -> downgrade, starts when the current term ends
func (s *memberService) RenewMember(ctx context.Context, actor *domain.User, in RenewMemberInput) (*RenewalResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	m, gym, err := s.loadMember(ctx, actor, in.MemberRecordID)
	if err != nil {
		return nil, err
	}
	if m.DueAmount > 0 {
		return nil, ErrOutstandingDue
	}
	plan, err := s.activePlan(ctx, gym.ID, in.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := s.classifier.Today(now)
	renewalType, start := renewalTerm(m, plan, today)
	if renewalType == domain.RenewalRenewal && in.StartDate != nil {
		start = calendarDate(*in.StartDate)
	}
	end, err := membership.EndDate(start, plan.Duration)
	if err != nil {
		return nil, err
	}
	var credit domain.Money
	if m.DueAmount < 0 {
		credit = -m.DueAmount
	}
	pricing, err := membership.ResolvePricing(plan.Price, in.Discount, in.AmountCollected+credit)
	if err != nil {
		return nil, err
	}

	pricing.Apply(m)
	m.CurrentPlan = &plan.ID
	m.MembershipStartDate = &start
	m.MembershipEndDate = &end
	m.IsFrozen = false
	m.FrozenDate = nil
	m.MembershipStatus = s.classifier.MembershipStatus(m, now)

	mode := paymentModeOr(in.PaymentMode)
	history := newHistory(m, plan, renewalType, mode, actor.ID)
	step := StepMember
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		step = StepMember
		if err := s.memberRepo.Update(ctx, m); err != nil {
			return err
		}
		if in.AmountCollected > 0 {
			step = StepTransaction
			txn := newPlanTransaction(m, plan, domain.TransactionRenewal, in.AmountCollected, in.Discount, mode, actor.ID, now)
			if _, err := s.txnRepo.Create(ctx, txn); err != nil {
				return err
			}
		}
		step = StepHistory
		id, err := s.historyRepo.Create(ctx, history)
		history.ID = id
		return err
	})
	if err != nil {
		if step != StepMember && !s.tx.Atomic() {
			return nil, s.partialWrite(ctx, OpRenewal, m, step, err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, errors.Wrap(err, "unable to renew membership")
	}

	metrics.RecordRenewal(renewalType)
	metrics.RecordPayment(domain.TransactionRenewal, mode, in.AmountCollected)
	invalidateDashboard(ctx, s.cache, &s.logger, gym.ID)
	publishEvent(ctx, s.publisher, &s.logger, events.NewMemberEvent(events.MemberRenewed, m, in.AmountCollected, now))
	s.logger.Info().Str("gym", gym.ID.Hex()).Str("member", m.MemberID).
		Str("renewal_type", string(renewalType)).Msg("membership renewed")

	return &RenewalResult{
		MemberWithPlan: MemberWithPlan{Member: m, Plan: plan},
		RenewalType:    renewalType,
		History:        history,
	}, nil
}

// renewalTerm picks the renewal type and start date of a new term on plan.
func renewalTerm(m *domain.Member, plan *domain.Plan, today time.Time) (domain.RenewalType, time.Time) {
	if m.CurrentPlan == nil || m.MembershipEndDate == nil || membership.DateOf(*m.MembershipEndDate).Before(today) {
		return domain.RenewalRenewal, today
	}
	currentEnd := membership.DateOf(*m.MembershipEndDate)
	switch {
	case *m.CurrentPlan == plan.ID:
		return domain.RenewalEarly, currentEnd
	case plan.Price > m.PlanPrice:
		return domain.RenewalUpgrade, today
	case plan.Price < m.PlanPrice:
		return domain.RenewalDowngrade, currentEnd
	default:
		// A different plan at the same price queues up like an early renewal.
		return domain.RenewalEarly, currentEnd
	}
}

// RecordDuePayment collects part or all of a member's outstanding due.
func (s *memberService) RecordDuePayment(ctx context.Context, actor *domain.User, in DuePaymentInput) (*MemberWithPlan, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	m, gym, err := s.loadMember(ctx, actor, in.MemberRecordID)
	if err != nil {
		return nil, err
	}
	if m.DueAmount <= 0 {
		return nil, newValidationError("amount", "member has no outstanding due")
	}
	if in.Amount > m.DueAmount {
		return nil, newValidationError("amount", "exceeds the outstanding due of "+m.DueAmount.String())
	}

	pricing, err := membership.ResolvePricing(m.PlanPrice, m.Discount, m.AmountPaid+in.Amount)
	if err != nil {
		return nil, err
	}
	stored := *m
	pricing.Apply(m)

	now := s.now()
	mode := paymentModeOr(in.PaymentMode)
	txn := &domain.Transaction{
		Gym:             m.Gym,
		Member:          m.ID,
		TransactionType: domain.TransactionDuePayment,
		Amount:          in.Amount,
		PaymentMode:     mode,
		Plan:            m.CurrentPlan,
		Description:     strings.TrimSpace(in.Description),
		ProcessedBy:     actor.ID,
		TransactionDate: now.UTC(),
		InvoiceNumber:   newInvoiceNumber(now),
	}
	step := StepTransaction
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		step = StepTransaction
		if _, err := s.txnRepo.Create(ctx, txn); err != nil {
			return err
		}
		step = StepMember
		return s.memberRepo.Update(ctx, m)
	})
	if err != nil {
		if step == StepMember && !s.tx.Atomic() {
			// The payment is in the ledger but the member still shows the old due.
			return nil, s.partialWrite(ctx, OpDuePayment, &stored, step, err)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, errors.Wrap(err, "unable to record due payment")
	}

	metrics.RecordPayment(domain.TransactionDuePayment, mode, in.Amount)
	invalidateDashboard(ctx, s.cache, &s.logger, gym.ID)
	publishEvent(ctx, s.publisher, &s.logger, events.NewMemberEvent(events.PaymentRecorded, m, in.Amount, now))

	m.MembershipStatus = s.classifier.MembershipStatus(m, now)
	return &MemberWithPlan{Member: m, Plan: s.planOrNil(ctx, m.CurrentPlan)}, nil
}

// ListMembers returns one page of a gym's members, newest first.
func (s *memberService) ListMembers(ctx context.Context, actor *domain.User, in ListMembersInput) (*MemberPage, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, actor, in.GymID); err != nil {
		return nil, err
	}

	now := s.now()
	page := normalizePage(in.Page, in.Limit)
	members, total, err := s.memberRepo.List(ctx, repository.MemberFilter{
		GymID:  in.GymID,
		Status: in.Status,
		Batch:  in.Batch,
		Search: strings.TrimSpace(in.Search),
		Today:  s.classifier.Today(now),
	}, page)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list members")
	}

	planIDs := lo.Uniq(lo.FilterMap(members, func(m domain.Member, _ int) (primitive.ObjectID, bool) {
		if m.CurrentPlan == nil {
			return primitive.NilObjectID, false
		}
		return *m.CurrentPlan, true
	}))
	plans, err := s.planRepo.GetByIDs(ctx, planIDs)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load plans")
	}
	byID := lo.SliceToMap(plans, func(p domain.Plan) (primitive.ObjectID, domain.Plan) { return p.ID, p })

	out := make([]MemberWithPlan, len(members))
	for i := range members {
		m := &members[i]
		m.MembershipStatus = s.classifier.MembershipStatus(m, now)
		out[i] = MemberWithPlan{Member: m, ImageURL: s.photoURL(ctx, m)}
		if m.CurrentPlan != nil {
			if p, ok := byID[*m.CurrentPlan]; ok {
				out[i].Plan = &p
			}
		}
	}
	return &MemberPage{Members: out, Pagination: newPagination(page, total)}, nil
}

func (s *memberService) GetMember(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) (*MemberWithPlan, error) {
	m, _, err := s.loadMember(ctx, actor, memberRecordID)
	if err != nil {
		return nil, err
	}
	m.MembershipStatus = s.classifier.MembershipStatus(m, s.now())
	return &MemberWithPlan{Member: m, Plan: s.planOrNil(ctx, m.CurrentPlan), ImageURL: s.photoURL(ctx, m)}, nil
}

func (s *memberService) UpdateMember(ctx context.Context, actor *domain.User, in UpdateMemberInput) (*MemberWithPlan, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	m, gym, err := s.loadMember(ctx, actor, in.MemberRecordID)
	if err != nil {
		return nil, err
	}
	previousImage := m.Image

	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNumber != nil {
		m.PhoneNumber = *in.PhoneNumber
	}
	if in.Gender != nil {
		m.Gender = *in.Gender
	}
	if in.Batch != nil {
		m.Batch = *in.Batch
	}
	if in.Email != nil {
		m.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Height != nil {
		m.Height = *in.Height
	}
	if in.Weight != nil {
		m.Weight = *in.Weight
	}
	if in.Address != nil {
		m.Address = strings.TrimSpace(*in.Address)
	}
	if in.Notes != nil {
		m.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.DateOfBirth != nil {
		m.DateOfBirth = datePtr(in.DateOfBirth)
	}
	if in.Image != nil {
		if *in.Image != "" && !storage.IsMemberPhotoKey(*in.Image, gym.ID.Hex(), m.ID.Hex()) {
			return nil, newValidationError("image", "must be a key issued by the photo upload endpoint")
		}
		m.Image = *in.Image
	}
	if in.Discount != nil {
		if m.CurrentPlan == nil {
			return nil, newValidationError("discount", "member has no plan")
		}
		pricing, err := membership.ResolvePricing(m.PlanPrice, *in.Discount, m.AmountPaid)
		if err != nil {
			return nil, err
		}
		pricing.Apply(m)
	}

	now := s.now()
	if in.IsFrozen != nil && *in.IsFrozen != m.IsFrozen {
		m.IsFrozen = *in.IsFrozen
		if m.IsFrozen {
			frozenAt := now.UTC()
			m.FrozenDate = &frozenAt
		} else {
			m.FrozenDate = nil
		}
	}
	m.MembershipStatus = s.classifier.MembershipStatus(m, now)

	if err := s.memberRepo.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, errors.Wrap(err, "unable to update member")
	}

	if previousImage != "" && previousImage != m.Image {
		s.deletePhoto(ctx, previousImage)
	}

	invalidateDashboard(ctx, s.cache, &s.logger, gym.ID)
	return &MemberWithPlan{Member: m, Plan: s.planOrNil(ctx, m.CurrentPlan), ImageURL: s.photoURL(ctx, m)}, nil
}

// DeleteMember soft-deletes a member. Ledger and history entries are kept.
func (s *memberService) DeleteMember(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) error {
	m, gym, err := s.loadMember(ctx, actor, memberRecordID)
	if err != nil {
		return err
	}
	if err := s.memberRepo.SoftDelete(ctx, m.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return errors.Wrap(err, "unable to delete member")
	}
	invalidateDashboard(ctx, s.cache, &s.logger, gym.ID)
	s.logger.Info().Str("gym", gym.ID.Hex()).Str("member", m.MemberID).Msg("member deleted")
	return nil
}

// MembershipHistory lists every term the member held, newest first.
func (s *memberService) MembershipHistory(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID) ([]domain.MembershipHistory, error) {
	m, _, err := s.loadMember(ctx, actor, memberRecordID)
	if err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByMember(ctx, m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load membership history")
	}
	return entries, nil
}

// PhotoUploadURL issues a presigned URL the client uploads the member photo
// to. The returned key is then saved with UpdateMember.
func (s *memberService) PhotoUploadURL(ctx context.Context, actor *domain.User, memberRecordID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if s.files == nil {
		return nil, ErrStorageUnavailable
	}
	m, gym, err := s.loadMember(ctx, actor, memberRecordID)
	if err != nil {
		return nil, err
	}
	key, err := storage.MemberPhotoKey(gym.ID.Hex(), m.ID.Hex(), contentType)
	if err != nil {
		return nil, newValidationError("contentType", err.Error())
	}
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, errors.Wrap(err, "unable to presign photo upload")
	}
	return &PhotoUpload{
		ObjectKey: key,
		UploadURL: url,
		ExpiresAt: s.now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

// photoURL presigns a download link for the member photo. Failures are
// logged and yield no link.
func (s *memberService) photoURL(ctx context.Context, m *domain.Member) string {
	if s.files == nil || m.Image == "" {
		return ""
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, m.Image, storage.DefaultPresignedURLExpiry)
	if err != nil {
		s.logger.Warn().Err(err).Str("member", m.MemberID).Msg("unable to presign member photo")
		return ""
	}
	return url
}

// deletePhoto removes a replaced photo object. The member update has already
// succeeded, so a failure only leaves an orphaned object behind.
func (s *memberService) deletePhoto(ctx context.Context, key string) {
	if s.files == nil {
		return
	}
	if err := s.files.DeleteObject(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("unable to delete replaced member photo")
	}
}

// partialWrite reports a non-atomic lifecycle write that stopped half way.
func (s *memberService) partialWrite(ctx context.Context, op WriteOperation, m *domain.Member, step WriteStep, err error) error {
	invalidateDashboard(ctx, s.cache, &s.logger, m.Gym)
	s.logger.Error().Err(err).Str("gym", m.Gym.Hex()).Str("member", m.MemberID).
		Str("operation", string(op)).Str("step", string(step)).Msg("lifecycle write partially saved")
	return &PartialWriteError{Op: op, Member: m, Step: step, Err: err}
}

// loadMember fetches an active member and authorizes the actor on its gym.
func (s *memberService) loadMember(ctx context.Context, actor *domain.User, id primitive.ObjectID) (*domain.Member, *domain.Gym, error) {
	if id.IsZero() {
		return nil, nil, ErrMemberNotFound
	}
	m, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMemberNotFound
		}
		return nil, nil, errors.Wrap(err, "unable to load member")
	}
	if !m.IsActive {
		return nil, nil, ErrMemberNotFound
	}
	gym, err := s.gate.Authorize(ctx, actor, m.Gym)
	if err != nil {
		return nil, nil, err
	}
	return m, gym, nil
}

// activePlan loads a plan that new terms may be sold on.
func (s *memberService) activePlan(ctx context.Context, gymID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, errors.Wrap(err, "unable to load plan")
	}
	if !plan.IsActive || plan.Gym != gymID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// planOrNil loads the member's current plan for display. Lookup failures
// are logged and the plan is omitted.
func (s *memberService) planOrNil(ctx context.Context, id *primitive.ObjectID) *domain.Plan {
	if id == nil {
		return nil
	}
	plan, err := s.planRepo.GetByID(ctx, *id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Str("plan", id.Hex()).Msg("unable to load member plan")
		}
		return nil
	}
	return plan
}

func newPlanTransaction(m *domain.Member, plan *domain.Plan, t domain.TransactionType, amount, discount domain.Money, mode domain.PaymentMode, by primitive.ObjectID, now time.Time) *domain.Transaction {
	return &domain.Transaction{
		Gym:             m.Gym,
		Member:          m.ID,
		TransactionType: t,
		Amount:          amount,
		PaymentMode:     mode,
		Plan:            &plan.ID,
		PlanName:        plan.Name,
		PlanDuration:    plan.Duration.String(),
		Discount:        discount,
		ProcessedBy:     by,
		TransactionDate: now.UTC(),
		InvoiceNumber:   newInvoiceNumber(now),
	}
}

func newHistory(m *domain.Member, plan *domain.Plan, t domain.RenewalType, mode domain.PaymentMode, by primitive.ObjectID) *domain.MembershipHistory {
	return &domain.MembershipHistory{
		Gym:         m.Gym,
		Member:      m.ID,
		Plan:        plan.ID,
		PlanName:    plan.Name,
		PlanPrice:   m.PlanPrice,
		StartDate:   *m.MembershipStartDate,
		EndDate:     *m.MembershipEndDate,
		RenewalType: t,
		AmountPaid:  m.AmountPaid,
		Discount:    m.Discount,
		FinalPrice:  m.FinalPrice,
		PaymentMode: mode,
		ProcessedBy: by,
		IsActive:    true,
	}
}

func paymentModeOr(mode domain.PaymentMode) domain.PaymentMode {
	if mode == "" {
		return domain.PaymentCash
	}
	return mode
}

// calendarDate keeps the year, month and day of t as written by the client
// and stores them as midnight UTC.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return calendarDate(*t)
}

func datePtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := calendarDate(*t)
	return &d
}
