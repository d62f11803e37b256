package main

import (
	"context"

	"github.com/Jaime0506/app-maestro-detail/internal/logger"
	"github.com/Jaime0506/app-maestro-detail/internal/service"

	"go.uber.org/zap"
)

var sampleClients = []service.CreateClientRequest{
	{Name: "Juan Pérez", Address: "Calle 123", Phone: "555-0123"},
	{Name: "María García", Address: "Avenida 456", Phone: "555-0456"},
}

// seedClients inserts the sample clients unless clients already exist.
func seedClients(ctx context.Context, clients service.ClientService) error {
	log := logger.FromContext(ctx)

	_, total, err := clients.ListClients(ctx, service.ClientQuery{Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		log.Info("Clients already present, skipping seed", zap.Int64("clientes", total))
		return nil
	}

	for _, req := range sampleClients {
		if _, err := clients.CreateClient(ctx, req); err != nil {
			return err
		}
	}
	log.Info("Seeded sample clients", zap.Int("clientes", len(sampleClients)))
	return nil
}
