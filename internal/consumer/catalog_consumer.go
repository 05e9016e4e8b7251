package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/packed-go/ticketing-service/internal/models"
	"github.com/packed-go/ticketing-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// CatalogConsumer keeps the local consumption catalog in sync with the
// upstream catalog service. Issuance reads this read model for active flags
// and current prices.
type CatalogConsumer struct {
	repo repository.ConsumptionRepository
}

func NewCatalogConsumer(repo repository.ConsumptionRepository) *CatalogConsumer {
	return &CatalogConsumer{repo: repo}
}

func (cc *CatalogConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(msg)
		}
		log.Println("[CatalogConsumer] channel closed, stopping consumer")
	}()
}

func (cc *CatalogConsumer) handleMessage(msg amqp.Delivery) {
	var consumption models.Consumption
	if err := json.Unmarshal(msg.Body, &consumption); err != nil {
		log.Printf("[CatalogConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	if err := cc.repo.Upsert(context.Background(), &consumption); err != nil {
		log.Printf("[CatalogConsumer] failed to upsert consumption %d: %v", consumption.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[CatalogConsumer] synced consumption %d: %s", consumption.ID, consumption.Name)
	msg.Ack(false)
}
