package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/model"
	"github.com/Jaime0506/app-maestro-detail/internal/repository"

	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)

// --- DTOs ---

type CreateClientRequest struct {
	Name    string `json:"nombre" binding:"required"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
}

// UpdateClientRequest merges only the fields that are set.
type UpdateClientRequest struct {
	Name    *string `json:"nombre"`
	Address *string `json:"direccion"`
	Phone   *string `json:"telefono"`
	Status  *string `json:"status"`
}

type ClientQuery struct {
	Status string
	Name   string
	Page   int
	Limit  int
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, q ClientQuery) ([]model.Client, int64, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error)
	SetClientStatus(ctx context.Context, id, status string) (*model.Client, error)
	ToggleClientStatus(ctx context.Context, id string) (*model.Client, error)
	DeleteClientPermanently(ctx context.Context, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	notifier   Notifier
}

func NewClientService(clientRepo repository.ClientRepository, notifier Notifier) ClientService {
	return &clientService{clientRepo: clientRepo, notifier: notifierOrNop(notifier)}
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*model.Client, error) {
	client := &model.Client{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
		Status:  model.StatusActive,
	}
	if err := validateClient(client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.FromContext(ctx).Info("client created", zap.String("cliente_id", client.ID.String()))
	s.notify(ctx, client)
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	clientID, err := parseID(id, "client")
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, "client "+id)
	}
	return client, nil
}

func (s *clientService) ListClients(ctx context.Context, q ClientQuery) ([]model.Client, int64, error) {
	if q.Status != "" && !model.IsValidRecordStatus(q.Status) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	limit, offset := pageBounds(q.Page, q.Limit)

	clients, total, err := s.clientRepo.List(ctx, repository.ClientFilter{
		Status: q.Status,
		Name:   q.Name,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (*model.Client, error) {
	clientID, err := parseID(id, "client")
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	errs := map[string]string{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errs["nombre"] = "name is required"
		}
		fields["nombre"] = name
	}
	if req.Address != nil {
		fields["direccion"] = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			errs["telefono"] = "invalid phone number"
		}
		fields["telefono"] = phone
	}
	if req.Status != nil {
		if !model.IsValidRecordStatus(*req.Status) {
			errs["status"] = "status must be activo or inactivo"
		}
		fields["status"] = *req.Status
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if len(fields) == 0 {
		return s.GetClient(ctx, id)
	}

	if err := s.clientRepo.Update(ctx, clientID, fields); err != nil {
		return nil, notFound(err, "client "+id)
	}

	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, client)
	return client, nil
}

func (s *clientService) SetClientStatus(ctx context.Context, id, status string) (*model.Client, error) {
	return s.UpdateClient(ctx, id, UpdateClientRequest{Status: &status})
}

// ToggleClientStatus is the soft delete and restore of a client.
func (s *clientService) ToggleClientStatus(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetClientStatus(ctx, id, model.ToggleRecordStatus(client.Status))
}

func (s *clientService) DeleteClientPermanently(ctx context.Context, id string) error {
	clientID, err := parseID(id, "client")
	if err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, clientID); err != nil {
		return notFound(err, "client "+id)
	}
	logger.FromContext(ctx).Info("client deleted permanently", zap.String("cliente_id", id))
	return nil
}

func (s *clientService) notify(ctx context.Context, client *model.Client) {
	s.notifier.Notify(ctx, Event{Event: EventClientChanged, Data: map[string]interface{}{
		"clienteId": client.ID.String(),
		"status":    client.Status,
	}})
}

func validateClient(c *model.Client) error {
	errs := map[string]string{}
	if c.Name == "" {
		errs["nombre"] = "name is required"
	}
	if c.Phone != "" && !phonePattern.MatchString(c.Phone) {
		errs["telefono"] = "invalid phone number"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
