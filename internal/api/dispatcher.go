package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

const (
	inboxSize      = 16
	workerIdleTime = 10 * time.Minute
)

// dispatcher раздаёт сообщения по очередям пользователей. Сообщения одного
// пользователя обрабатываются строго по порядку одним воркером, разные
// пользователи обслуживаются параллельно.
type dispatcher struct {
	ctx    context.Context
	handle func(ctx context.Context, msg *tgbotapi.Message)
	idle   time.Duration

	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newDispatcher(ctx context.Context, handle func(ctx context.Context, msg *tgbotapi.Message)) *dispatcher {
	return &dispatcher{
		ctx:    ctx,
		handle: handle,
		idle:   workerIdleTime,
		queues: make(map[int64]chan *tgbotapi.Message),
		done:   make(chan struct{}),
	}
}

// Dispatch ставит сообщение в очередь его отправителя. Если очередь
// заполнена, вызов ждёт, пока воркер освободит место.
func (d *dispatcher) Dispatch(msg *tgbotapi.Message) {
	userID := msg.From.ID

	// Отправка идёт под d.mu: воркер удаляет пустую очередь тоже под d.mu,
	// поэтому в удалённую очередь ничего не попадёт.
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.done:
		return
	default:
	}

	q, ok := d.queues[userID]
	if !ok {
		q = make(chan *tgbotapi.Message, inboxSize)
		d.queues[userID] = q
		d.wg.Add(1)
		go d.work(userID, q)
	}

	select {
	case q <- msg:
	case <-d.done:
	case <-d.ctx.Done():
	}
}

// work последовательно обрабатывает очередь одного пользователя и
// завершается после простоя.
func (d *dispatcher) work(userID int64, q chan *tgbotapi.Message) {
	defer d.wg.Done()

	timer := time.NewTimer(d.idle)
	defer timer.Stop()

	for {
		select {
		case <-d.done:
			return
		case msg := <-q:
			d.handle(d.ctx, msg)
			timer.Reset(d.idle)
		case <-timer.C:
			// Dispatch может держать d.mu, ожидая места в этой очереди.
			if !d.mu.TryLock() {
				timer.Reset(d.idle)
				continue
			}
			if len(q) == 0 {
				delete(d.queues, userID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			timer.Reset(d.idle)
		}
	}
}

// Close останавливает воркеры и ждёт завершения текущих обработчиков.
// Сообщения, оставшиеся в очередях, отбрасываются.
func (d *dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.done) })

	// Dispatch, успевший запустить воркер до закрытия, отпустит d.mu
	// раньше, чем начнётся ожидание.
	d.mu.Lock()
	active := len(d.queues)
	d.mu.Unlock()
	log.Debug().Int("workers", active).Msg("stopping user workers")

	d.wg.Wait()
}

// workers возвращает число активных очередей.
func (d *dispatcher) workers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}
