package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/metrics"
	"github.com/dtroode/confreg-server/internal/model"
)

// submission is the normalised input checked by the validator.
// Field order is the order in which rules are reported.
type submission struct {
	Name             string `validate:"required"`
	Email            string `validate:"required"`
	RegistrationType string `validate:"required,oneof=student professional"`
	Company          string `validate:"required_if=RegistrationType professional"`
	Phone            string
}

// Receipt is the archived JSON form of a stored registration.
type Receipt struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RegistrationType string    `json:"registration_type"`
	Company          *string   `json:"company,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Registration validates and stores conference sign-ups.
type Registration struct {
	store    model.RegistrationStore
	receipts model.ReceiptStorage
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewRegistration creates the registration service. receipts may be nil to disable archiving.
func NewRegistration(
	store model.RegistrationStore,
	receipts model.ReceiptStorage,
	metrics *metrics.Metrics,
	tracer trace.Tracer,
	logger *logger.Logger,
) *Registration {
	return &Registration{
		store:    store,
		receipts: receipts,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger.With("component", "registration_service"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Submit validates params and inserts exactly one registration on success.
// Rejections are *model.ValidationError; persistence failures wrap model.ErrStore.
func (s *Registration) Submit(ctx context.Context, params model.SubmitParams) (model.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "RegistrationService.Submit")
	defer span.End()

	in := normalize(params)
	span.SetAttributes(attribute.String("registration.type", in.RegistrationType))

	if vErr := s.check(in); vErr != nil {
		s.logger.Info("submission rejected",
			"reason", vErr.Kind,
			"registration_type", in.RegistrationType)
		s.metrics.IncrementRejected(string(vErr.Kind))
		span.SetStatus(codes.Error, string(vErr.Kind))
		return model.Registration{}, vErr
	}

	regType := model.RegistrationType(in.RegistrationType)
	registration := model.Registration{
		Name:             in.Name,
		Email:            in.Email,
		RegistrationType: regType,
		CreatedAt:        s.now().UTC(),
	}
	if regType == model.RegistrationTypeProfessional {
		registration.Company = &in.Company
	}
	if in.Phone != "" {
		registration.Phone = &in.Phone
	}

	created, err := s.store.Create(ctx, registration)
	if err != nil {
		s.logger.Error("failed to store registration", "error", err)
		s.metrics.IncrementStoreFailure("create")
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failure")
		return model.Registration{}, fmt.Errorf("failed to create registration: %w", err)
	}

	s.metrics.IncrementCreated(string(created.RegistrationType))
	span.SetAttributes(attribute.String("registration.id", created.ID.String()))

	if s.receipts != nil {
		if err := s.archive(ctx, created); err != nil {
			s.logger.Warn("failed to archive receipt",
				"registration_id", created.ID,
				"error", err)
		}
	}

	return created, nil
}

func normalize(p model.SubmitParams) submission {
	return submission{
		Name:             strings.TrimSpace(p.Name),
		Email:            strings.ToLower(strings.TrimSpace(p.Email)),
		RegistrationType: strings.TrimSpace(p.RegistrationType),
		Company:          strings.TrimSpace(p.Company),
		Phone:            strings.TrimSpace(p.Phone),
	}
}

// check reports the first violated rule.
func (s *Registration) check(in submission) *model.ValidationError {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.NewErrMissingRequiredField("")
	}

	fe := fieldErrs[0]
	switch fe.StructField() {
	case "Name":
		return model.NewErrMissingRequiredField("name")
	case "Email":
		return model.NewErrMissingRequiredField("email")
	case "RegistrationType":
		if fe.Tag() == "oneof" {
			return model.NewErrInvalidRegistrationType()
		}
		return model.NewErrMissingRequiredField("registration_type")
	default:
		return model.NewErrMissingCompany()
	}
}

func (s *Registration) archive(ctx context.Context, reg model.Registration) error {
	body, err := json.Marshal(NewReceipt(reg))
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	return s.receipts.Upload(ctx, ReceiptKey(reg), bytes.NewReader(body), int64(len(body)))
}

// NewReceipt converts a stored registration to its archived form.
func NewReceipt(reg model.Registration) Receipt {
	return Receipt{
		ID:               reg.ID.String(),
		Name:             reg.Name,
		Email:            reg.Email,
		RegistrationType: string(reg.RegistrationType),
		Company:          reg.Company,
		Phone:            reg.Phone,
		CreatedAt:        reg.CreatedAt.UTC(),
	}
}

// ReceiptKey returns the object key of a registration receipt.
func ReceiptKey(reg model.Registration) string {
	t := reg.CreatedAt.UTC()
	return fmt.Sprintf("receipts/%04d/%02d/%s.json", t.Year(), int(t.Month()), reg.ID)
}
