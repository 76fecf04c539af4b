package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	app "rental-inspector/internal/application"
	"rental-inspector/internal/container"
	"rental-inspector/internal/domain/entity"
	"rental-inspector/internal/infrastructure/detector"
)

// Bot представляет Telegram-бота
type Bot struct {
	api         *tgbotapi.BotAPI
	users       *app.UserService
	inspections *app.InspectionService
	limiter     *userLimiter
}

// NewBot создаёт нового бота. analysisRate задаёт минимальный интервал между
// анализами одного пользователя.
func NewBot(token string, services *container.Container, analysisRate time.Duration) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")

	return &Bot{
		api:         api,
		users:       services.UserService,
		inspections: services.InspectionService,
		limiter:     newUserLimiter(analysisRate),
	}, nil
}

// Run запускает основной цикл обработки сообщений. Сообщения одного
// пользователя обрабатываются по очереди, разных пользователей параллельно;
// при отмене ctx цикл дожидается активных обработчиков.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	queue := newDispatcher(ctx, b.handleMessage)
	defer queue.Close()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			queue.Dispatch(update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Error().Err(err).Int64("userID", msg.From.ID).Msg("failed to get user")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото
	if fileID, size, ok := photoOf(msg); ok {
		b.handlePhoto(ctx, msg, user, fileID, size)
		return
	}

	if user.AwaitingPhoto() {
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}
	b.sendMessage(msg.Chat.ID, msgSendCheckFirst)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.inspections.Discard(user.ID)
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, formatReplyText(msgStart))

	case "help":
		b.sendMessage(chatID, formatReplyText(msgHelp))

	case "check":
		b.inspections.Discard(user.ID)
		if _, err := b.users.BeginCheck(ctx, user.ID, chatID); err != nil {
			log.Error().Err(err).Int64("userID", user.ID).Msg("failed to begin check")
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingBefore)

	case "report":
		b.sendReportDocument(ctx, chatID, user.ID)

	case "cancel":
		b.inspections.Discard(user.ID)
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto принимает снимок в зависимости от шага диалога
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string, size int) {
	chatID := msg.Chat.ID

	switch user.State {
	case entity.StateAwaitingBefore:
		data, ok := b.download(chatID, fileID, size)
		if !ok {
			return
		}
		if _, err := b.inspections.AcceptBeforePhoto(ctx, user.ID, chatID, data); err != nil {
			b.replyError(chatID, user.ID, err)
			return
		}
		b.sendMessage(chatID, msgAwaitingAfter)

	case entity.StateAwaitingAfter:
		if ok, wait := b.limiter.Reserve(user.ID); !ok {
			b.sendMessage(chatID, fmt.Sprintf(msgRateLimited, wait.Round(time.Second)))
			return
		}
		data, ok := b.download(chatID, fileID, size)
		if !ok {
			return
		}
		if _, err := b.inspections.AcceptAfterPhoto(ctx, user.ID, chatID, data); err != nil {
			b.replyError(chatID, user.ID, err)
			return
		}
		b.sendMessage(chatID, msgProcessing)
		b.runAnalysis(ctx, chatID, user.ID)

	case entity.StateProcessing:
		b.sendMessage(chatID, msgBusy)

	default:
		b.sendMessage(chatID, msgSendCheckFirst)
	}
}

// runAnalysis анализирует снимки и отправляет результат: снимки с рамками,
// текстовый отчёт и PDF.
func (b *Bot) runAnalysis(ctx context.Context, chatID, userID int64) {
	analysis, err := b.inspections.Analyze(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, app.ErrStaleAnalysis) {
			return
		}
		b.replyError(chatID, userID, err)
		return
	}

	if analysis.HighlightedBefore != nil {
		b.sendPhoto(chatID, "before.jpg", analysis.HighlightedBefore, captionBefore)
	}
	if analysis.HighlightedAfter != nil {
		b.sendPhoto(chatID, "after.jpg", analysis.HighlightedAfter, captionAfter)
	}

	for _, part := range splitMessage(FormatReport(analysis.Report), maxMessageLength) {
		b.sendMessage(chatID, part)
	}

	doc, err := b.inspections.ExportAnalysis(ctx, analysis)
	if err != nil {
		log.Error().Err(err).Int64("userID", userID).Msg("failed to export report")
		b.sendMessage(chatID, msgExportError)
		return
	}
	b.sendDocument(chatID, reportFileName(analysis.Report), doc)
}

// sendReportDocument повторно выгружает последний отчёт пользователя.
func (b *Bot) sendReportDocument(ctx context.Context, chatID, userID int64) {
	analysis, ok := b.inspections.CurrentAnalysis(userID)
	if !ok {
		b.sendMessage(chatID, msgNoReport)
		return
	}

	doc, err := b.inspections.Export(ctx, userID)
	if err != nil {
		if errors.Is(err, app.ErrNoReport) {
			b.sendMessage(chatID, msgNoReport)
			return
		}
		log.Error().Err(err).Int64("userID", userID).Msg("failed to export report")
		b.sendMessage(chatID, msgExportError)
		return
	}
	b.sendDocument(chatID, reportFileName(analysis.Report), doc)
}

// replyError переводит ошибку в понятное пользователю сообщение. Подробности
// остаются в логе.
func (b *Bot) replyError(chatID, userID int64, err error) {
	switch {
	case errors.Is(err, app.ErrMissingImage):
		b.sendMessage(chatID, msgMissingImage)
	case errors.Is(err, detector.ErrAnalysisFailed):
		b.sendMessage(chatID, msgAnalysisFailed)
	default:
		log.Error().Err(err).Int64("userID", userID).Msg("failed to process photos")
		b.sendMessage(chatID, msgProcessingError)
	}
}

func (b *Bot) download(chatID int64, fileID string, size int) ([]byte, bool) {
	data, err := downloadFile(b.api.GetFileDirectURL, fileID, size)
	if err != nil {
		if errors.Is(err, errPhotoTooLarge) {
			b.sendMessage(chatID, fmt.Sprintf(msgPhotoTooLarge, maxPhotoBytes>>20))
			return nil, false
		}
		log.Error().Err(err).Int64("chatID", chatID).Msg("failed to download photo")
		b.sendMessage(chatID, msgDownloadError)
		return nil, false
	}
	return data, true
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		log.Error().Err(err).Int64("userID", user.ID).Msg("failed to set user state")
	}
}

// photoOf возвращает файл снимка: фото в максимальном разрешении или
// картинку, отправленную документом.
func photoOf(msg *tgbotapi.Message) (fileID string, size int, ok bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, photo.FileSize, true
	}
	if doc := msg.Document; doc != nil && (doc.MimeType == "image/jpeg" || doc.MimeType == "image/png") {
		return doc.FileID, doc.FileSize, true
	}
	return "", 0, false
}

func reportFileName(r *entity.Report) string {
	id := r.InspectionID
	if id == "" {
		id = r.ID
	}
	if id == "" {
		return "inspection-report.pdf"
	}
	return fmt.Sprintf("inspection-%s.pdf", id)
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("failed to send message")
	}
}

func (b *Bot) sendPhoto(chatID int64, name string, data []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	if _, err := b.api.Send(photo); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("failed to send photo")
	}
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		log.Error().Err(err).Int64("chatID", chatID).Msg("failed to send document")
	}
}
