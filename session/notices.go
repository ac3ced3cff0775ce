package session

import "github.com/yoyocubano/weddings-events-luxembourg-libre/prompt"

// Conversation-level notices in each site language. These are appended to
// history in place of an assistant reply when something degrades softly.
type notices struct {
	Greeting      string
	Timeout       string
	HighTraffic   string
	GenericError  string
	SubmitSuccess string
	SubmitFailure string
}

var noticesByLanguage = map[string]notices{
	prompt.LangEnglish: {
		Greeting:      "Hello! I'm Rebeca, the virtual event coordinator. How can I help you plan your event?",
		Timeout:       "Response timed out. Please try again.",
		HighTraffic:   "⏳ High traffic. Please wait a few seconds.",
		GenericError:  "Sorry, something went wrong. Please try again.",
		SubmitSuccess: "✅ Inquiry sent successfully! We will contact you soon.",
		SubmitFailure: "❌ Failed to send. Please try the contact form.",
	},
	prompt.LangSpanish: {
		Greeting:      "¡Hola! Soy Rebeca, la coordinadora virtual de eventos. ¿Cómo puedo ayudarte a planear tu evento?",
		Timeout:       "La respuesta tarda demasiado. Intenta de nuevo.",
		HighTraffic:   "⏳ Estoy recibiendo muchas consultas. Por favor, espera unos segundos.",
		GenericError:  "Lo siento, algo salió mal. Intenta de nuevo.",
		SubmitSuccess: "✅ ¡Solicitud enviada con éxito! Te contactaremos pronto.",
		SubmitFailure: "❌ No se pudo enviar. Por favor usa el formulario de contacto.",
	},
	prompt.LangFrench: {
		Greeting:      "Bonjour ! Je suis Rebeca, la coordinatrice d'événements virtuelle. Comment puis-je vous aider à planifier votre événement ?",
		Timeout:       "La réponse prend trop de temps. Veuillez réessayer.",
		HighTraffic:   "⏳ Trafic élevé. Veuillez patienter quelques secondes.",
		GenericError:  "Désolée, une erreur s'est produite. Veuillez réessayer.",
		SubmitSuccess: "✅ Demande envoyée avec succès ! Nous vous contacterons bientôt.",
		SubmitFailure: "❌ Échec de l'envoi. Veuillez utiliser le formulaire de contact.",
	},
	prompt.LangGerman: {
		Greeting:      "Hallo! Ich bin Rebeca, die virtuelle Eventkoordinatorin. Wie kann ich Ihnen bei der Planung Ihres Events helfen?",
		Timeout:       "Die Antwort dauert zu lange. Bitte versuchen Sie es erneut.",
		HighTraffic:   "⏳ Hohes Aufkommen. Bitte warten Sie einige Sekunden.",
		GenericError:  "Entschuldigung, etwas ist schiefgelaufen. Bitte versuchen Sie es erneut.",
		SubmitSuccess: "✅ Anfrage erfolgreich gesendet! Wir melden uns bald bei Ihnen.",
		SubmitFailure: "❌ Senden fehlgeschlagen. Bitte nutzen Sie das Kontaktformular.",
	},
	prompt.LangPortuguese: {
		Greeting:      "Olá! Sou a Rebeca, a coordenadora virtual de eventos. Como posso ajudar a planear o seu evento?",
		Timeout:       "A resposta demorou demasiado. Por favor, tente novamente.",
		HighTraffic:   "⏳ Muito tráfego. Por favor, aguarde alguns segundos.",
		GenericError:  "Desculpe, algo correu mal. Por favor, tente novamente.",
		SubmitSuccess: "✅ Pedido enviado com sucesso! Entraremos em contacto em breve.",
		SubmitFailure: "❌ Falha no envio. Por favor, use o formulário de contacto.",
	},
	prompt.LangLuxembourgish: {
		Greeting:      "Moien! Ech sinn d'Rebeca, déi virtuell Eventkoordinatrice. Wéi kann ech Iech bei der Planung vun Ärem Event hëllefen?",
		Timeout:       "D'Äntwert dauert ze laang. Probéiert w.e.g. nach eng Kéier.",
		HighTraffic:   "⏳ Vill Traffic. Waart w.e.g. e puer Sekonnen.",
		GenericError:  "Pardon, eppes ass schifgaang. Probéiert w.e.g. nach eng Kéier.",
		SubmitSuccess: "✅ Ufro erfollegräich geschéckt! Mir mellen eis geschwënn.",
		SubmitFailure: "❌ Schécke feelgeschloen. Benotzt w.e.g. de Kontaktformulaire.",
	},
}

func noticesFor(tag string) notices {
	return noticesByLanguage[prompt.ResolveLanguage(tag)]
}
