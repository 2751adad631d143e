package price

import (
	"errors"
	"fmt"
	"math"

	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var _ port.PriceFormatter = (*Formatter)(nil)

var ErrUnsupportedLocale = errors.New("no currency pattern for locale")

// pattern places the currency symbol relative to the amount.
type pattern struct {
	symbolFirst bool
	sep         string
}

var (
	prefixTight  = pattern{symbolFirst: true}
	prefixSpaced = pattern{symbolFirst: true, sep: " "}
	suffixSpaced = pattern{sep: " "}
)

// Standard currency patterns from CLDR, with no-break spaces replaced by
// plain spaces.
var (
	patternTags = []language.Tag{
		language.MustParse("pt-BR"),
		language.MustParse("pt-PT"),
		language.MustParse("en"),
		language.MustParse("de"),
		language.MustParse("de-CH"),
		language.MustParse("fr"),
		language.MustParse("es"),
		language.MustParse("es-419"),
		language.MustParse("it"),
		language.MustParse("nl"),
		language.MustParse("ja"),
		language.MustParse("zh"),
	}
	patterns = []pattern{
		prefixSpaced,
		suffixSpaced,
		prefixTight,
		suffixSpaced,
		prefixSpaced,
		suffixSpaced,
		suffixSpaced,
		prefixTight,
		suffixSpaced,
		prefixSpaced,
		prefixTight,
		prefixTight,
	}
	patternMatcher = language.NewMatcher(patternTags)
)

// A Formatter renders amounts with the locale's symbol placement and
// separators and the currency's standard number of decimals. Negative
// amounts carry a leading minus sign.
type Formatter struct {
	printer *message.Printer
	unit    currency.Unit
	scale   int
	pattern pattern
}

func NewFormatter(locale, isoCurrency string) (Formatter, error) {
	const op = "price.NewFormatter"

	tag, err := language.Parse(locale)
	if err != nil {
		return Formatter{}, fmt.Errorf("%s: locale %q: %w", op, locale, err)
	}

	_, idx, conf := patternMatcher.Match(tag)
	if conf < language.High {
		return Formatter{}, fmt.Errorf(
			"%s: %w %q", op, ErrUnsupportedLocale, locale,
		)
	}

	unit, err := currency.ParseISO(isoCurrency)
	if err != nil {
		return Formatter{}, fmt.Errorf(
			"%s: currency %q: %w", op, isoCurrency, err,
		)
	}

	scale, _ := currency.Standard.Rounding(unit)

	return Formatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		scale:   scale,
		pattern: patterns[idx],
	}, nil
}

func (f Formatter) FormatPrice(amount float64) string {
	var sign string
	if amount < 0 && !f.roundsToZero(amount) {
		sign = "-"
	}
	amount = math.Abs(amount)

	symbol := f.printer.Sprint(currency.Symbol(f.unit))
	value := f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))

	if f.pattern.symbolFirst {
		return sign + symbol + f.pattern.sep + value
	}
	return sign + value + f.pattern.sep + symbol
}

func (f Formatter) roundsToZero(amount float64) bool {
	return math.Round(math.Abs(amount)*math.Pow10(f.scale)) == 0
}
