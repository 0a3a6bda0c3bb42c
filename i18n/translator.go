package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_field":
			return "未知のフィールドです"
		case "illegal_literal":
			return "リテラル型の値が不正です"
		case "unresolved_ref":
			return "参照先の型が未定義です"
		case "field_collision":
			return "出力フィールド名が衝突しています"
		case "not_translatable":
			return "変換できない型です"
		case "invalid_enum":
			return "列挙値が不正です"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "pattern":
			return "パターンに一致しません"
		case "parse_error":
			return "解析エラー"
		case "not_iterable":
			return "反復できない型です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "unknown_field":
			return "unknown field"
		case "illegal_literal":
			return "unsupported value for literal type"
		case "unresolved_ref":
			return "referenced type is not defined"
		case "field_collision":
			return "output field name collision"
		case "not_translatable":
			return "cannot translate between these types"
		case "invalid_enum":
			return "invalid enum value"
		case "too_small":
			return "too small"
		case "too_big":
			return "too big"
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "pattern":
			return "pattern mismatch"
		case "parse_error":
			return "parse error"
		case "not_iterable":
			return "not an iterable type"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
