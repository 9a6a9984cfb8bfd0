package i18n

import (
	"strings"
	"sync"

	"github.com/jeandeaual/go-locale"
	"go.uber.org/zap"
)

var (
	mu   sync.RWMutex
	lang = "en"
)

var translations = map[string]map[string]string{
	"Increase": {
		"pt": "Aumentar",
		"es": "Aumentar",
		"ru": "Больше",
	},
	"Decrease": {
		"pt": "Diminuir",
		"es": "Disminuir",
		"ru": "Меньше",
	},
	"Reset": {
		"pt": "Resetar",
		"es": "Reiniciar",
		"ru": "Сброс",
	},
	"Auto": {
		"pt": "Automático",
		"es": "Automático",
		"ru": "Авто",
	},
	"Badge Counter": {
		"pt": "Contador de Emblemas",
		"es": "Contador de Insignias",
		"ru": "Счётчик значков",
	},
}

// Init selects the label language. A non-empty forced language wins;
// otherwise the first system locale decides, falling back to english.
func Init(forced string, log *zap.Logger) {
	if forced = strings.TrimSpace(forced); forced != "" {
		log.Info("language forced by configuration", zap.String("lang", forced))
		setLang(forced)
		return
	}

	userLocales, err := locale.GetLocales()
	if err != nil {
		log.Info("could not get user locale, defaulting to english", zap.Error(err))
		setLang("en")
		return
	}
	if len(userLocales) == 0 {
		log.Info("no user locale detected, defaulting to english")
		setLang("en")
		return
	}

	log.Debug("detected user locale", zap.String("locale", userLocales[0]))
	setLang(fromLocale(userLocales[0]))
	log.Info("language set", zap.String("lang", GetLang()))
}

func fromLocale(l string) string {
	switch {
	case strings.HasPrefix(l, "pt"):
		return "pt"
	case strings.HasPrefix(l, "es"):
		return "es"
	case strings.HasPrefix(l, "ru"):
		return "ru"
	default:
		return "en"
	}
}

func setLang(l string) {
	mu.Lock()
	lang = l
	mu.Unlock()
}

// T translates key into the selected language, returning key itself when
// no translation exists.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if translated, ok := translations[key][lang]; ok {
		return translated
	}
	return key
}

func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}
