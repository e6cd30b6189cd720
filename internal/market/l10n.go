package market

import (
	"fmt"

	"github.com/agronet/agroportal/internal/domain"
	"golang.org/x/text/language"
)

// Supported display languages, English first as fallback.
var supportedLanguages = []language.Tag{
	language.English,
	language.Russian,
	language.MustParse("ky"),
}

var languageMatcher = language.NewMatcher(supportedLanguages)

var unitTranslations = map[string]map[string]string{
	domain.MarketUnitKg:     {"ky": "кг", "ru": "кг", "en": "kg"},
	domain.MarketUnitPiece:  {"ky": "дн", "ru": "шт", "en": "pcs"},
	domain.MarketUnitBundle: {"ky": "боо", "ru": "пуч", "en": "bundle"},
	domain.MarketUnitLiter:  {"ky": "л", "ru": "л", "en": "L"},
	domain.MarketUnitTon:    {"ky": "т", "ru": "т", "en": "t"},
	domain.MarketUnitBox:    {"ky": "кут", "ru": "кор", "en": "box"},
}

// matchLanguage resolves an Accept-Language style value to one of the
// supported tags ("en", "ru", "ky").
func matchLanguage(lang string) string {
	tags, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, index, _ := languageMatcher.Match(tags...)
	base, _ := supportedLanguages[index].Base()
	return base.String()
}

// LocalizedUnit returns the display form of a market unit for the
// requested language.
func LocalizedUnit(unit, lang string) string {
	code := matchLanguage(lang)
	if byLang, ok := unitTranslations[unit]; ok {
		if label, ok := byLang[code]; ok {
			return label
		}
	}
	return unit
}

// LocalizedCurrency returns the local currency label.
func LocalizedCurrency(lang string) string {
	if code := matchLanguage(lang); code == "ru" || code == "ky" {
		return "сом"
	}
	return "som"
}

// LocalizedPriceDisplay renders "120 som/kg" in the requested language.
func LocalizedPriceDisplay(price *domain.MarketPrice, lang string) string {
	return fmt.Sprintf("%s %s/%s", price.Price.String(), LocalizedCurrency(lang), LocalizedUnit(price.Unit, lang))
}
