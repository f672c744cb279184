package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mamadoubah/nimbashop-backend/pkg/db/models"
	"github.com/mamadoubah/nimbashop-backend/pkg/enums"
	pkgerrors "github.com/mamadoubah/nimbashop-backend/pkg/errors"
	"github.com/mamadoubah/nimbashop-backend/pkg/mailer"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service handles support tickets and their message threads.
type Service interface {
	OpenTicket(ctx context.Context, input OpenTicketInput) (*TicketDTO, error)
	Reply(ctx context.Context, input ReplyInput) (*TicketDTO, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*TicketDTO, error)
	Assign(ctx context.Context, input AssignInput) (*TicketDTO, error)
	GetTicket(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (*TicketDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]TicketDTO, error)
	List(ctx context.Context, filters ListFilters) ([]TicketDTO, error)
}

type service struct {
	repo  Repository
	users userLoader
	tx    txRunner
	mail  mailer.Sender
}

// NewService builds the support service. The mailer is optional.
func NewService(repo Repository, users userLoader, tx txRunner, mail mailer.Sender) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("support repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, users: users, tx: tx, mail: mail}, nil
}

// ticketTransitions lists the statuses a ticket may move to from each state.
// Reopening out of resolved happens through Reply, not UpdateStatus.
var ticketTransitions = map[enums.TicketStatus][]enums.TicketStatus{
	enums.TicketStatusOpen:            {enums.TicketStatusInProgress},
	enums.TicketStatusInProgress:      {enums.TicketStatusWaitingCustomer, enums.TicketStatusResolved},
	enums.TicketStatusWaitingCustomer: {enums.TicketStatusInProgress, enums.TicketStatusResolved},
	enums.TicketStatusResolved:        {enums.TicketStatusClosed},
}

func (s *service) OpenTicket(ctx context.Context, input OpenTicketInput) (*TicketDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket category")
	}
	if input.Priority == "" {
		input.Priority = enums.TicketPriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket priority")
	}

	ticket := &models.SupportTicket{
		CustomerID:  input.CustomerID,
		OrderID:     input.OrderID,
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      enums.TicketStatusOpen,
	}
	if _, err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ticket")
	}
	return toTicketDTO(ticket), nil
}

// Reply appends a message to the thread. A customer replying to a resolved
// ticket reopens it; closed tickets reject further messages.
func (s *service) Reply(ctx context.Context, input ReplyInput) (*TicketDTO, error) {
	if input.TicketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	if input.AuthorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	var updated *models.SupportTicket
	var notifyCustomer bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ticket, err := repo.FindTicket(ctx, input.TicketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if ticket.Status == enums.TicketStatusClosed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is closed")
		}

		message := &models.SupportMessage{
			TicketID:   ticket.ID,
			AuthorID:   input.AuthorID,
			Message:    strings.TrimSpace(input.Message),
			IsInternal: input.IsInternal,
		}
		if _, err := repo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
		}

		fromCustomer := input.AuthorID == ticket.CustomerID
		if ticket.Status == enums.TicketStatusResolved && fromCustomer {
			ticket.Status = enums.TicketStatusOpen
			ticket.ResolvedAt = nil
		} else if ticket.Status == enums.TicketStatusWaitingCustomer && fromCustomer {
			ticket.Status = enums.TicketStatusInProgress
		}
		if err := repo.SaveTicket(ctx, ticket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save ticket")
		}

		updated = ticket
		notifyCustomer = !fromCustomer && !input.IsInternal
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notifyCustomer {
		s.notify(ctx, updated.CustomerID, func(u *models.User) mailer.Message {
			return mailer.SupportReply(u.Email, u.FirstName, updated.Subject)
		})
	}
	return toTicketDTO(updated), nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*TicketDTO, error) {
	if input.TicketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket status")
	}

	var updated *models.SupportTicket
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ticket, err := repo.FindTicket(ctx, input.TicketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
		}
		if !transitionAllowed(ticket.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move ticket from %s to %s", ticket.Status, input.Status))
		}

		ticket.Status = input.Status
		if input.Status == enums.TicketStatusResolved {
			now := time.Now().UTC()
			ticket.ResolvedAt = &now
		}
		if err := repo.SaveTicket(ctx, ticket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save ticket")
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toTicketDTO(updated), nil
}

func (s *service) Assign(ctx context.Context, input AssignInput) (*TicketDTO, error) {
	if input.TicketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	if input.AssignedTo == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee required")
	}

	ticket, err := s.repo.FindTicket(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
	}
	if ticket.Status == enums.TicketStatusClosed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket is closed")
	}

	ticket.AssignedTo = &input.AssignedTo
	if ticket.Status == enums.TicketStatusOpen {
		ticket.Status = enums.TicketStatusInProgress
	}
	if err := s.repo.SaveTicket(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save ticket")
	}
	return toTicketDTO(ticket), nil
}

// GetTicket loads a ticket with its thread. When customerID is set the
// lookup is scoped to that customer and internal notes are stripped.
func (s *service) GetTicket(ctx context.Context, id uuid.UUID, customerID *uuid.UUID) (*TicketDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id required")
	}
	ticket, err := s.repo.FindTicketWithMessages(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket")
	}
	if customerID != nil && ticket.CustomerID != *customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}

	dto := toTicketDTO(ticket)
	for _, msg := range ticket.Messages {
		if customerID != nil && msg.IsInternal {
			continue
		}
		dto.Messages = append(dto.Messages, toMessageDTO(&msg))
	}
	return dto, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]TicketDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	tickets, err := s.repo.ListTicketsByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	return toTicketDTOs(tickets), nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]TicketDTO, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket status")
	}
	tickets, err := s.repo.ListTickets(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tickets")
	}
	return toTicketDTOs(tickets), nil
}

func transitionAllowed(from, to enums.TicketStatus) bool {
	for _, candidate := range ticketTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *service) notify(ctx context.Context, userID uuid.UUID, build func(*models.User) mailer.Message) {
	if s.mail == nil {
		return
	}
	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return
	}
	s.mail.SendAsync(ctx, build(user))
}

func toTicketDTO(ticket *models.SupportTicket) *TicketDTO {
	return &TicketDTO{
		ID:          ticket.ID,
		CustomerID:  ticket.CustomerID,
		OrderID:     ticket.OrderID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Category:    ticket.Category,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
		AssignedTo:  ticket.AssignedTo,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ResolvedAt:  ticket.ResolvedAt,
	}
}

func toTicketDTOs(tickets []models.SupportTicket) []TicketDTO {
	out := make([]TicketDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, *toTicketDTO(&tickets[i]))
	}
	return out
}

func toMessageDTO(msg *models.SupportMessage) MessageDTO {
	return MessageDTO{
		ID:         msg.ID,
		TicketID:   msg.TicketID,
		AuthorID:   msg.AuthorID,
		Message:    msg.Message,
		IsInternal: msg.IsInternal,
		CreatedAt:  msg.CreatedAt,
	}
}
