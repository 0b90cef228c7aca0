package guard

// Reason codes for disallowed input.
const (
	ReasonForbiddenTopic  = "forbidden_topic"
	ReasonPromptInjection = "prompt_injection"
)

// Built-in input policy. Patterns are intent-based rather than literal so
// paraphrased probing and injection attempts are caught too. All patterns
// are compiled case-insensitively at startup and never change afterwards.
var builtinForbiddenPatterns = []string{
	// Probing for the system prompt or hidden instructions
	`system\s+prompt`,
	`(show|reveal|print|display|repeat|share|leak|tell)\W+(me\W+)?(your|the|its)\s+(initial\s+|hidden\s+|original\s+|system\s+)?(prompt|instructions?)`,
	`(initial|hidden|original|internal|secret)\s+(prompt|instructions?)`,

	// Probing for internal configuration and implementation details
	`(internal|hidden)\s+(config(uration)?|settings?|setup|state|workings?|details?)`,
	`(environment|env)\s+var(iable)?s?`,
	`(your|the)\s+source\s+code`,
	`(api|secret)\s+keys?`,
	`how\s+(are\s+you|is\s+this\s+(bot|agent|system))\s+(implemented|built|configured)`,

	// Probing for the tool/function inventory
	`(list|enumerate|what|which)\W+(tools?|functions?)\W+(are\s+)?(available|do\s+you\s+(have|use|call))`,
	`tool\s+calls?`,

	// Russian phrasings of the same intents; the corpus and most users are
	// Russian, so English-only patterns would miss the common case.
	`системн\w*\s+промпт`,
	`(покажи|раскрой|выведи|напечатай|повтори)\W+(мне\W+)?(свой\W+|твой\W+|весь\W+)?(системный\s+)?(промпт|инструкции)`,
	`(какие|перечисли|назови)\W+(функции|инструменты)\W+.{0,30}доступн`,
	`внутренн\w*\s+(устройство|настройк\w*|конфигурац\w*)`,
	`инструменты\s+ллм`,
	`исходн\w*\s+код`,
	`переменн\w*\s+окружения`,
	`(api|апи)\W+ключ\w*`,
}

var builtinInjectionPatterns = []string{
	`(ignore|disregard|forget|skip)\W+(all\W+|the\W+|any\W+|your\W+)?(previous|prior|earlier|above)\W+(instructions?|prompts?|rules?|messages?|directions?)`,
	`override\W+(your\W+|the\W+|all\W+)?(instructions?|constraints?|rules?|behaviou?r|guidelines?)`,
	`(you\s+are\s+now|pretend\s+to\s+be|act\s+as\s+if)\W+.{0,60}(no\s+(rules|restrictions?|limits?)|unrestricted|without\s+constraints?)`,
	`do\s+anything\s+now`,
	`new\s+instructions?\s*:`,
	`(игнорируй|пропусти|забудь|отбрось)\W+(все\W+|всё\W+)?(предыдущ\w*|прошл\w*)`,
	`(не\s+учитывай|отмени)\W+(предыдущ\w*|прошл\w*)\W+(инструкци\w*|правила|указания)`,
	`(новые|новая)\s+инструкци\w*\s*:`,
}

// Built-in output redaction patterns: internal file paths and
// credential-looking tokens must never reach the user verbatim.
var builtinRedactPatterns = []string{
	// Unix-style paths into the agent's own tree or secrets material
	`(/[\w.-]+){2,}\.(go|ya?ml|env|key|pem)`,
	// API-key shaped tokens
	`\bsk-[A-Za-z0-9_-]{16,}\b`,
	`\b(api[_-]?key|token|secret)\s*[=:]\s*\S{8,}`,
	`\bBearer\s+[A-Za-z0-9._-]{16,}\b`,
}

// Fixed refusal templates per reason code. Deliberately non-informative:
// they reveal nothing about which pattern matched.
var refusalTemplates = map[string]string{
	ReasonForbiddenTopic:  "I can't help with questions about my internal setup. Ask me about financial news, system load, or the time in Moscow.",
	ReasonPromptInjection: "I can't follow those instructions. Ask me about financial news, system load, or the time in Moscow.",
}

const defaultRefusal = "I can't help with that request."

// RedactionMarker replaces protected content in outbound text.
const RedactionMarker = "[REDACTED]"
