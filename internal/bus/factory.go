package bus

import (
	"fmt"
	"strings"

	"github.com/legalqa/legal-rag/internal/config"
	"github.com/legalqa/legal-rag/internal/pkg/errors"
	"github.com/legalqa/legal-rag/internal/pkg/logger"
)

// NewBus creates a Bus instance based on the configuration.
func NewBus(cfg config.BusConfig, log *logger.Logger) (Bus, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory", "":
		return NewMemoryBus(), nil

	case "kafka":
		brokers := cfg.KafkaBrokerList()
		if len(brokers) == 0 {
			return nil, errors.New(errors.CodeValidation, "kafka brokers not configured")
		}

		return NewKafkaBus(KafkaConfig{
			Brokers:  brokers,
			ClientID: "legal-rag-bus",
		}, log)

	default:
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("unknown bus type: %s", cfg.Type))
	}
}
