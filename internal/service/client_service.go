package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type clientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context) ([]*model.Client, error)
}

type ClientService struct {
	repo   clientRepository
	logger *zap.Logger
}

func NewClientService(repo clientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{repo: repo, logger: logger}
}

// Create заводит клиента
func (s *ClientService) Create(ctx context.Context, actor planning.Actor, name, phone string, email *string) (*model.Client, error) {
	if !actor.CanEditCourses() {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if email != nil && strings.TrimSpace(*email) == "" {
		email = nil
	}

	client := &model.Client{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: strings.TrimSpace(phone),
		Email: email,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.logger.Info("Client created", zap.String("client_id", client.ID))
	return client, nil
}

// Get возвращает клиента или ErrClientNotFound
func (s *ClientService) Get(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// List клиенты по алфавиту (французская сортировка)
func (s *ClientService) List(ctx context.Context) ([]*model.Client, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	col := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(clients, func(i, j int) bool {
		return col.CompareString(clients[i].Name, clients[j].Name) < 0
	})
	return clients, nil
}
