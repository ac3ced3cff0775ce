package gateway

import "github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"

// overloadMessages is the degraded reply shown when every candidate failed,
// in each language the site ships.
var overloadMessages = map[string]string{
	prompt.LangEnglish:       "⚠️ **System Overload:** All my AI models are currently busy. Please try again in 30 seconds.",
	prompt.LangSpanish:       "⚠️ **Sistema Saturado:** Mis servidores neuronales están al máximo de capacidad. Por favor intenta de nuevo en 30 segundos.",
	prompt.LangFrench:        "⚠️ **Système surchargé :** Tous mes modèles d'IA sont occupés pour le moment. Veuillez réessayer dans 30 secondes.",
	prompt.LangGerman:        "⚠️ **System überlastet:** Alle meine KI-Modelle sind gerade ausgelastet. Bitte versuchen Sie es in 30 Sekunden erneut.",
	prompt.LangPortuguese:    "⚠️ **Sistema Sobrecarregado:** Todos os meus modelos de IA estão ocupados no momento. Por favor, tente novamente em 30 segundos.",
	prompt.LangLuxembourgish: "⚠️ **System iwwerlaascht:** All meng KI-Modeller si grad beschäftegt. Probéiert w.e.g. an 30 Sekonnen nach eng Kéier.",
}

func overloadMessage(language string) string {
	if msg, ok := overloadMessages[language]; ok {
		return msg
	}
	return overloadMessages[prompt.LangEnglish]
}
