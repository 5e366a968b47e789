package nlp

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// DialectMapping maps a dialect token to its standard-register equivalent.
// Mappings are kept ordered so replacement is deterministic; a word that
// appears in several dialects keeps the last mapping listed.
type DialectMapping struct {
	Dialect  string `json:"dialect"`
	Standard string `json:"standard"`
}

// SynonymGroup expands a base term into lexical variants appended to the
// query to broaden recall.
type SynonymGroup struct {
	Base     string   `json:"base"`
	Synonyms []string `json:"synonyms"`
}

// RuleSet holds the linguistic lookup tables used by the normalizer, the
// scope classifier, and the unanswered-question detector. The set can be
// loaded from a JSON file so coverage is extendable without recompilation.
type RuleSet struct {
	DialectMappings     []DialectMapping `json:"dialect_mappings"`
	Synonyms            []SynonymGroup   `json:"synonyms"`
	Greetings           []string         `json:"greetings"`
	DomainTerms         []string         `json:"domain_terms"`
	ContentTerms        []string         `json:"content_terms"`
	CulturalTerms       []string         `json:"cultural_terms"`
	ConversationTerms   []string         `json:"conversation_terms"`
	ReferenceWords      []string         `json:"reference_words"`
	CannotAnswerPhrases []string         `json:"cannot_answer_phrases"`
}

// LoadRules reads a rule set from a JSON file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return &rules, nil
}

var (
	rulesOnce sync.Once
	rulesPath string
	rules     *RuleSet
)

// SetRulesPath points Rules at an external rule file. Must be called before
// the first Rules call; the resolved set is invalidated only by process
// restart.
func SetRulesPath(path string) {
	rulesPath = path
}

// Rules returns the process-wide rule set, loading the configured file on
// first use and falling back to the compiled-in defaults.
func Rules() *RuleSet {
	rulesOnce.Do(func() {
		if rulesPath != "" {
			if loaded, err := LoadRules(rulesPath); err == nil {
				rules = loaded
				return
			}
		}
		rules = DefaultRules()
	})
	return rules
}

// DefaultRules returns the compiled-in tables covering Levantine, Gulf,
// Egyptian, Maghrebi and Iraqi dialect forms plus the magazine's domain
// vocabulary.
func DefaultRules() *RuleSet {
	return &RuleSet{
		DialectMappings: []DialectMapping{
			// Levantine
			{"شو", "ما"}, {"كيفك", "كيف حالك"}, {"شلون", "كيف"},
			{"وين", "أين"}, {"ليش", "لماذا"}, {"هيك", "هكذا"}, {"هون", "هنا"},
			{"كتير", "كثير"}, {"شوي", "قليلاً"}, {"مش", "ليس"},
			// Gulf
			{"وش", "ما"}, {"زين", "جيد"}, {"حلو", "جميل"}, {"طيب", "جيد"}, {"ماشي", "ممتاز"},
			// Egyptian
			{"إيه", "ما"}, {"إزاي", "كيف"}, {"فين", "أين"}, {"إمتى", "متى"},
			{"ليه", "لماذا"}, {"كده", "هكذا"},
			// Maghrebi
			{"اش", "ما"}, {"كيفاش", "كيف"}, {"علاش", "لماذا"}, {"هكا", "هكذا"},
			// Iraqi and common
			{"إيش", "ما"},
			{"عندك", "لديك"}, {"عندي", "لدي"}, {"عنده", "لديه"}, {"عندها", "لديها"},
			{"عندنا", "لدينا"}, {"عندكم", "لديكم"}, {"عندهم", "لديهم"},
		},
		Synonyms: []SynonymGroup{
			{"مقالات", []string{"مقال", "مقالة", "مقالات جديدة", "مقالات حديثة"}},
			{"أحدث", []string{"جديد", "حديث", "مؤخر", "أخير"}},
			{"أخبار", []string{"أخبار جديدة", "أخبار حديثة"}},
			{"ما هي", []string{"ما هو", "أخبرني عن", "أريد معرفة", "أريد أن أعرف"}},
			{"كيف", []string{"كيفية", "كيف يمكن", "كيف أستطيع"}},
			{"متى", []string{"في أي وقت", "متى كان", "متى حدث"}},
			{"أين", []string{"في أي مكان", "أين يمكن", "أين أجد"}},
			{"ثقافة", []string{"ثقافي", "ثقافية", "ثقافات"}},
			{"أدب", []string{"أدبي", "أدبية", "أدباء", "كتاب"}},
			{"شعر", []string{"شعري", "شعرية", "شعراء", "قصائد"}},
			{"فن", []string{"فني", "فنية", "فنانين", "فنون"}},
			{"نقد", []string{"نقدي", "نقدية", "نقاد", "تحليل"}},
			{"اليوم", []string{"هذا اليوم", "اليوم الحالي"}},
			{"هذا الأسبوع", []string{"الأسبوع الحالي", "خلال الأسبوع"}},
			{"هذا الشهر", []string{"الشهر الحالي", "خلال الشهر"}},
			{"هذا العام", []string{"العام الحالي", "خلال العام"}},
		},
		Greetings: []string{
			"مرحبا", "أهلا", "السلام", "السلام عليكم", "مرحبا بك",
			"مرحبا وسهلا", "أهلا وسهلا", "أهلا بك",
			"صباح الخير", "مساء الخير", "مساء النور",
			"كيف حالك", "كيف أنت", "كيف الحال", "أخبارك",
			"كيفك", "أخبارك إيه", "أخبارك كيف", "أخبارك شلون",
			"ماذا تفعل", "ما عملك", "ما الذي تفعله",
			"شو تعمل", "شو تسوي", "شو عم تعمل",
			"إيش تعمل", "إيش تسوي", "إيش عم تعمل",
			"شكرا", "شكرا لك", "متشكر", "متشكرة",
			"شكرا جزيلا", "شكرا كثير", "شكرا كتير",
			"الله يعطيك العافية", "الله يبارك فيك",
			"من أنت", "ما اسمك", "من تكون",
			"شو اسمك", "إيش اسمك", "شو انت",
			"من انت", "إيش انت", "شو هويتك",
			"ماذا تعرف", "ماذا تفهم", "ما قدراتك",
			"شو تعرف", "إيش تعرف", "شو تقدر",
			"إيش تقدر", "شو تعرف تعمل", "إيش تعرف تعمل",
		},
		DomainTerms: []string{
			"دوحة", "doha", "مجلة", "magazine", "مجلة الدوحة", "doha magazine",
			"ثقافي", "cultural", "أدبي", "literary", "ثقافة", "culture", "أدب", "literature",
		},
		ContentTerms: []string{
			"مقالات", "articles", "مقال", "article", "أحدث", "latest", "جديد", "new",
			"حديث", "recent", "مؤخر", "recently", "محتوى", "content", "نشر", "published",
			"أخبار", "news", "موضوع", "topic", "مواضيع", "topics",
		},
		CulturalTerms: []string{
			"شعر", "poetry", "شاعر", "poet", "رواية", "novel", "قصة", "story",
			"فن", "art", "فنان", "artist", "كتاب", "book", "كاتب", "writer",
			"نقد", "criticism", "ناقد", "critic", "دراسة", "study", "بحث", "research",
		},
		ConversationTerms: []string{
			"مرحبا", "hello", "أهلا", "hi", "كيف حالك", "how are you",
			"ماذا تفعل", "what do you do", "من أنت", "who are you",
		},
		ReferenceWords: []string{
			"هو", "هي", "هذا", "هذه", "ذلك", "تلك", "نفس",
			"he", "she", "it", "they", "that", "this", "those",
			"same", "also", "too", "more", "other",
		},
		CannotAnswerPhrases: []string{
			"عذراً، لا أجد معلومات",
			"لا أستطيع الإجابة",
			"لا توجد معلومات",
			"غير متوفر",
			"لا يوجد",
			"عذراً، لا أجد معلومات كافية في محتوى مجلة الدوحة",
		},
	}
}
