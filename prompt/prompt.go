// Package prompt assembles the model input for one inference call: the
// Rebeca persona and business policy, a language-pinning directive and the
// conversation transcript. Everything here is a pure transformation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/yoyocubano/weddings-events-luxembourg-libre/models"
)

// systemPrompt is the fixed persona and business policy. The privacy block
// is deliberate: the assistant may only ever hand out the public office
// contacts, never a team member's private details.
const systemPrompt = `
You are "Rebeca" - the Event Coordinator for "WE Weddings & Events Luxembourg".
You are calm, professional, and very knowledgeable.

**CORE DIRECTIVES:**
1. **Multilingual:** Use the language specified (English, Spanish, French, German, Portuguese, Luxembourgish).
2. **Data Privacy (CRITICAL):**
   - NEVER share private contact info (private cell, home address) of team members (Joan, Abel, Yusmel).
   - Only share the public office number (+352 621 430 283) or email (info@weddingslux.com).
   - If asked for "Abel's number", politely direct them to the office line or contact form.
3. **Lead Gathering:**
   - Your goal is to be helpful but also to SECURE A BOOKING or INQUIRY.
   - If the user seems interested, casually ask for their "Name" and "Event Date".
   - If they provide enough info (Name, Email, Event Type), OFFER to submit the inquiry for them.
   - To submit, output this JSON block ONLY (no markdown): [[SUBMIT_INQUIRY: {"name": "...", "email": "...", "eventType": "wedding|corporate|...", "message": "..."}]]
4. **Transparency & Honesty:**
   - **Identity:** You are "Rebeca AI", a **Virtual Assistant** designed to help organize information for the human team.
   - **Honesty:** If asked if you are AI, say YES. Explain that you are connecting them with your **human colleagues** (Joan, Abel, Yusmel) to ensure the best service.
   - **Conciseness:** Keep answers **short, concise, and direct**. Avoid long paragraphs.
   - **Role:** You gather details so the human team can take over seamlessly.

**TONE:** Warm, reassuring, "Luxury Service".
`

// The six languages the site ships. Resolution is by tag prefix so that
// regional variants ("fr-FR", "pt-BR") map onto the base language.
const (
	LangEnglish       = "English"
	LangSpanish       = "Spanish"
	LangFrench        = "French"
	LangGerman        = "German"
	LangPortuguese    = "Portuguese"
	LangLuxembourgish = "Luxembourgish"
)

var langPrefixes = []struct {
	prefix string
	name   string
}{
	{"es", LangSpanish},
	{"fr", LangFrench},
	{"de", LangGerman},
	{"pt", LangPortuguese},
	{"lb", LangLuxembourgish},
}

// ResolveLanguage maps a client locale tag onto exactly one of the six
// supported language names. Unknown or empty tags resolve to English.
func ResolveLanguage(tag string) string {
	for _, lp := range langPrefixes {
		if strings.HasPrefix(tag, lp.prefix) {
			return lp.name
		}
	}
	return LangEnglish
}

// Artifact is the provider-agnostic model input. Single-shot providers
// consume Flatten(), chat-completions providers consume Chat().
type Artifact struct {
	System   string
	Language string
	Tag      string
	Messages []models.Message
}

// Build produces the artifact for one request. Deterministic: the same
// transcript and tag always yield the same artifact.
func Build(messages []models.Message, tag string) Artifact {
	lang := ResolveLanguage(tag)
	system := systemPrompt + fmt.Sprintf(`
*** CRITICAL INSTRUCTION ***
The user is speaking in %s (Browsing Language: %s).
YOU MUST REPLY IN %s ONLY.
Do not switch languages unless explicitly asked.
**************************
`, lang, tag, lang)

	return Artifact{
		System:   system,
		Language: lang,
		Tag:      tag,
		Messages: messages,
	}
}

// Flatten renders the artifact as one transcript string for providers that
// take a single text block per call.
func (a Artifact) Flatten() string {
	var b strings.Builder
	b.WriteString(a.System)
	b.WriteString("\nConversation History:\n")
	for _, msg := range a.Messages {
		speaker := "Assistant"
		if msg.Role == models.RoleUser {
			speaker = "User"
		}
		fmt.Fprintf(&b, "%s (%s): %s\n", speaker, a.Language, msg.Content)
	}
	fmt.Fprintf(&b, "Assistant (%s):", a.Language)
	return b.String()
}

// Chat renders the artifact as a role-tagged message array with the system
// directive injected first.
func (a Artifact) Chat() []models.Message {
	out := make([]models.Message, 0, len(a.Messages)+1)
	out = append(out, models.Message{Role: "system", Content: a.System})
	out = append(out, a.Messages...)
	return out
}
