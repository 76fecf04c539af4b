package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu       UserState = "main_menu"       // В главном меню
	StateAwaitingBefore UserState = "awaiting_before" // Ожидание снимка до аренды
	StateAwaitingAfter  UserState = "awaiting_after"  // Ожидание снимка после аренды
	StateProcessing     UserState = "processing"      // Идёт анализ снимков
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// AwaitingPhoto сообщает, ждёт ли бот от пользователя снимок.
func (u *User) AwaitingPhoto() bool {
	return u.State == StateAwaitingBefore || u.State == StateAwaitingAfter
}
