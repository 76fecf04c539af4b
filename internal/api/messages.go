package telegram

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

const (
	msgStart = `
		👋 Привет! Я сравниваю снимки автомобиля до и после аренды.

		Я найду повреждения на обоих снимках, отделю старые от новых
		и посчитаю, сколько стоит ремонт новых.

		📋 Команды:
		/check — начать проверку
		/report — прислать PDF последнего отчёта
		/help — справка
		/cancel — отменить текущую операцию`

	msgHelp = `
		ℹ️ Как пользоваться ботом:

		1️⃣ Отправьте /check
		2️⃣ Пришлите снимок автомобиля ДО аренды
		3️⃣ Пришлите снимок с того же ракурса ПОСЛЕ аренды
		4️⃣ Получите снимки с рамками, текстовый отчёт и PDF

		🎨 Цвет рамки: 🟡 лёгкое, 🟠 среднее, 🔴 сильное повреждение.

		💡 Рекомендации:
		• Снимайте при хорошем освещении
		• Держите одинаковый ракурс на обоих снимках
		• Фото должно быть чётким`

	msgAwaitingBefore  = "📸 Пришлите снимок автомобиля ДО аренды."
	msgAwaitingAfter   = "📸 Теперь пришлите снимок ПОСЛЕ аренды с того же ракурса."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendCheckFirst  = "📸 Чтобы начать проверку, отправьте /check."
	msgSendPhoto       = "📸 Пожалуйста, пришлите фотографию."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Сравниваю снимки, это может занять до минуты..."
	msgBusy            = "⏳ Анализ ещё идёт. Чтобы начать заново, отправьте /check."
	msgRateLimited     = "🐢 Слишком часто. Подождите %s и пришлите снимок ПОСЛЕ ещё раз."
	msgDownloadError   = "⚠️ Не удалось получить фото. Попробуйте отправить его ещё раз."
	msgPhotoTooLarge   = "⚠️ Фото слишком большое (больше %d МБ)."
	msgMissingImage    = "⚠️ Нужны оба снимка. Отправьте /check и начните заново."
	msgAnalysisFailed  = "⚠️ Сервис распознавания повреждений недоступен. Попробуйте позже."
	msgProcessingError = "⚠️ Не удалось обработать снимки. Попробуйте ещё раз."
	msgNoReport        = "📄 Отчёта пока нет. Отправьте /check, чтобы провести проверку."
	msgExportError     = "⚠️ Не удалось собрать PDF. Текстовый отчёт выше остаётся в силе."

	captionBefore = "ДО аренды"
	captionAfter  = "ПОСЛЕ аренды"
)

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}
