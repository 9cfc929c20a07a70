package domain

import "strings"

// Language codes the clinic serves.
const (
	LanguageVietnamese = "vi"
	LanguageEnglish    = "en"
	LanguageJapanese   = "ja"
)

// DefaultLanguage is used when a request omits flag_language.
const DefaultLanguage = LanguageEnglish

var welcomeMessages = map[string]string{
	LanguageVietnamese: "Quý khách đã chọn ngôn ngữ Tiếng Việt để được tư vấn.\n" +
		" Xin kính chào quý khách! Tôi là trợ lý tư vấn tự động của Phòng khám và Chăm sóc Thú cưng GAIA PET." +
		" Rất hân hạnh được đồng hành cùng quý khách và thú cưng yêu quý." +
		" Quý khách cần hỗ trợ điều gì ạ?",
	LanguageJapanese: "ご希望の言語として「日本語」が選択されました。\n" +
		" こんにちは。私はGAIA PET動物クリニック・ケアセンターの自動応答アシスタントです。" +
		" 大切なペットとの暮らしをサポートできることを光栄に思います。" +
		" 本日はどのようなご相談でしょうか？",
	LanguageEnglish: "You have selected English as your preferred consultation language. \n" +
		" Hello and welcome! I’m the virtual assistant of GAIA PET Animal Clinic and Care Center." +
		" It’s a pleasure to support you and your beloved pet." +
		" How can I assist you today?",
}

// NormalizeLanguage trims and lower-cases a language code.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// WelcomeMessage returns the greeting for a language, falling back to English.
func WelcomeMessage(code string) string {
	if msg, ok := welcomeMessages[NormalizeLanguage(code)]; ok {
		return msg
	}
	return welcomeMessages[LanguageEnglish]
}
