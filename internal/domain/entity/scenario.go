package entity

// Scenario общий итог проверки по наличию повреждений на каждом снимке.
type Scenario int

const (
	ScenarioNone       Scenario = iota // повреждений нет нигде
	ScenarioAfterOnly                  // повреждения только «после»
	ScenarioBeforeOnly                 // повреждения только «до»
	ScenarioBoth                       // повреждения на обоих снимках
)

var scenarioNames = [...]string{
	ScenarioNone:       "NONE",
	ScenarioAfterOnly:  "AFTER_ONLY",
	ScenarioBeforeOnly: "BEFORE_ONLY",
	ScenarioBoth:       "BOTH",
}

var scenarioMessages = [...]string{
	ScenarioNone:       "No damage detected in either image.",
	ScenarioAfterOnly:  "No damage detected in BEFORE image.",
	ScenarioBeforeOnly: "No damage detected in AFTER image.",
	ScenarioBoth:       "Damage detected successfully.",
}

// ClassifyScenario определяет сценарий по размерам наборов «до» и «после».
func ClassifyScenario(beforeCount, afterCount int) Scenario {
	switch {
	case beforeCount > 0 && afterCount > 0:
		return ScenarioBoth
	case afterCount > 0:
		return ScenarioAfterOnly
	case beforeCount > 0:
		return ScenarioBeforeOnly
	default:
		return ScenarioNone
	}
}

func (s Scenario) String() string {
	if s < 0 || int(s) >= len(scenarioNames) {
		return scenarioNames[ScenarioNone]
	}
	return scenarioNames[s]
}

// Message текст статуса для пользователя.
func (s Scenario) Message() string {
	if s < 0 || int(s) >= len(scenarioMessages) {
		return scenarioMessages[ScenarioNone]
	}
	return scenarioMessages[s]
}

// PayableTotal сумма к оплате, показываемая пользователю.
// Для BEFORE_ONLY она всегда 0, независимо от посчитанной суммы.
func PayableTotal(s Scenario, chargeableTotal int) int {
	if s == ScenarioBeforeOnly {
		return 0
	}
	return chargeableTotal
}
