// Package locale negotiates the response language and holds the translated
// strings shown alongside quiz views.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/p-n-ai/pai-quiz/internal/quiz"
)

// Message keys.
const (
	KeyTrue           = "label.true"
	KeyFalse          = "label.false"
	KeyNextQuestion   = "action.next"
	KeyShowResults    = "action.results"
	KeySoundOn        = "action.sound_on"
	KeySoundOff       = "action.sound_off"
	KeyCorrect        = "feedback.correct"
	KeyIncorrect      = "feedback.incorrect"
	KeyLoadFailed     = "error.load_failed"
	KeyQuizNotFound   = "error.quiz_not_found"
	KeyEmptyQuiz      = "error.empty_quiz"
	KeyCourseNotFound = "error.course_not_found"
	KeyScore          = "summary.score"
)

var supported = []language.Tag{language.Arabic, language.English}

var tierKeys = map[quiz.Tier]string{
	quiz.TierExcellent:   "tier.excellent",
	quiz.TierVeryGood:    "tier.very_good",
	quiz.TierGood:        "tier.good",
	quiz.TierNeedsReview: "tier.needs_review",
}

var messages = map[language.Tag]map[string]string{
	language.Arabic: {
		KeyTrue:                        "✓ صح",
		KeyFalse:                       "✗ خطأ",
		KeyNextQuestion:                "السؤال التالي",
		KeyShowResults:                 "عرض النتيجة",
		KeySoundOn:                     "تفعيل الصوت",
		KeySoundOff:                    "تعطيل الصوت",
		KeyCorrect:                     "✓ إجابة صحيحة!",
		KeyIncorrect:                   "✗ إجابة خاطئة. الإجابة الصحيحة: %s",
		KeyLoadFailed:                  "حدث خطأ أثناء تحميل الاختبار",
		KeyQuizNotFound:                "لم يتم العثور على الاختبار",
		KeyEmptyQuiz:                   "لا توجد أسئلة في هذا الاختبار",
		KeyCourseNotFound:              "المادة غير موجودة",
		KeyScore:                       "%d من %d",
		tierKeys[quiz.TierExcellent]:   "ممتاز! 🎉",
		tierKeys[quiz.TierVeryGood]:    "جيد جداً! 👏",
		tierKeys[quiz.TierGood]:        "جيد! 👍",
		tierKeys[quiz.TierNeedsReview]: "يحتاج إلى مزيد من المراجعة 📚",
	},
	language.English: {
		KeyTrue:                        "✓ True",
		KeyFalse:                       "✗ False",
		KeyNextQuestion:                "Next question",
		KeyShowResults:                 "Show results",
		KeySoundOn:                     "Enable sound",
		KeySoundOff:                    "Disable sound",
		KeyCorrect:                     "✓ Correct!",
		KeyIncorrect:                   "✗ Wrong. The correct answer is: %s",
		KeyLoadFailed:                  "Something went wrong while loading the quiz",
		KeyQuizNotFound:                "Quiz not found",
		KeyEmptyQuiz:                   "This quiz has no questions",
		KeyCourseNotFound:              "Course not found",
		KeyScore:                       "%d of %d",
		tierKeys[quiz.TierExcellent]:   "Excellent! 🎉",
		tierKeys[quiz.TierVeryGood]:    "Very good! 👏",
		tierKeys[quiz.TierGood]:        "Good! 👍",
		tierKeys[quiz.TierNeedsReview]: "Needs more review 📚",
	},
}

// Localizer picks a supported language for a request and formats messages
// in it.
type Localizer struct {
	fallback language.Tag
	tags     []language.Tag
	matcher  language.Matcher
	catalog  *catalog.Builder
}

// New builds a Localizer whose fallback is defaultLang, which must be one of
// the supported languages.
func New(defaultLang string) (*Localizer, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("parsing default language %q: %w", defaultLang, err)
	}
	base, _ := tag.Base()
	fallback, ok := supportedTag(base)
	if !ok {
		return nil, fmt.Errorf("unsupported default language: %s", defaultLang)
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for tag, msgs := range messages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("adding message %s/%s: %w", tag, key, err)
			}
		}
	}

	// The matcher's first tag wins on no match, so the fallback goes first.
	tags := []language.Tag{fallback}
	for _, t := range supported {
		if t != fallback {
			tags = append(tags, t)
		}
	}

	return &Localizer{
		fallback: fallback,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		catalog:  b,
	}, nil
}

func supportedTag(base language.Base) (language.Tag, bool) {
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			return t, true
		}
	}
	return language.Und, false
}

// Fallback returns the language used when negotiation finds no match.
func (l *Localizer) Fallback() language.Tag { return l.fallback }

// Negotiate picks the response language. An explicit override such as a
// ?lang= value wins over the Accept-Language header.
func (l *Localizer) Negotiate(override, acceptLanguage string) language.Tag {
	if override = strings.TrimSpace(override); override != "" {
		if tag, err := language.Parse(override); err == nil {
			base, _ := tag.Base()
			if t, ok := supportedTag(base); ok {
				return t
			}
		}
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return l.fallback
	}
	return l.tags[idx]
}

// Printer returns a message printer for tag.
func (l *Localizer) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(l.catalog))
}

// Text formats the message stored under key.
func (l *Localizer) Text(tag language.Tag, key string, args ...any) string {
	return l.Printer(tag).Sprintf(key, args...)
}

// Tier returns the result-screen message for tier.
func (l *Localizer) Tier(tag language.Tag, tier quiz.Tier) string {
	return l.Text(tag, tierKeys[tier])
}

// Dir returns the text direction of tag, "rtl" or "ltr".
func Dir(tag language.Tag) string {
	if base, _ := tag.Base(); base == language.MustParseBase("ar") {
		return "rtl"
	}
	return "ltr"
}
