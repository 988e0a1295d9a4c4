package task

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Feed assina o canal de eventos no Redis e entrega mudanças na ordem
// de chegada. Erros de transporte são reportados fora de banda: o
// consumidor congela o último estado bom em vez de esvaziar a coleção.
type Feed struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

// NewFeed cria assinatura sobre o cliente Redis compartilhado.
func NewFeed(rdb *redis.Client, logger zerolog.Logger) *Feed {
	return &Feed{rdb: rdb, logger: logger}
}

// Subscribe inicia o consumo. Os canais fecham quando o contexto encerra.
func (f *Feed) Subscribe(ctx context.Context) (<-chan ChangeEvent, <-chan error) {
	events := make(chan ChangeEvent, 64)
	errs := make(chan error, 1)

	sub := f.rdb.Subscribe(ctx, EventsChannel)

	go func() {
		defer close(events)
		defer close(errs)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					err := ctx.Err()
					if err == nil {
						err = errors.New("assinatura do canal de eventos encerrada")
					}
					select {
					case errs <- err:
					default:
					}
					return
				}

				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					f.logger.Warn().Err(err).Msg("evento de tarefa inválido no canal")
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, errs
}
