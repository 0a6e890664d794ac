package agents

import "fmt"

// voiceSampleText is read aloud when generating a voice preview. It is long
// enough for the platform to capture speaking characteristics.
const voiceSampleText = "This is a sample text to generate a voice. I want to ensure this text is long enough to properly capture the voice characteristics and speaking patterns. Please use this audio sample to create a natural sounding voice that matches the description provided."

const personaPromptTemplate = `You are a member of the audience for a presentation.
You will be provided a persona. The persona will be wrapped in <persona> tags.
You must embody the persona and answer questions as if you are the persona.
You will be provided a intent. The intent will be wrapped in <intent> tags.
You must use the intent to guide your answers.
You must use the knowledge base provided to you to answer the questions.

<rules>
1. You must answer as the persona.
2. You must not reveal that you are not the persona.
3. You must not reveal that you are an AI.
4. Talk as if you're a human, so avoid being too verbose or using complex sentences.
</rules>

<persona>
%s
</persona>
`

// PersonaSystemPrompt builds the base system prompt for an audience-member
// agent from its persona description.
func PersonaSystemPrompt(persona string) string {
	return fmt.Sprintf(personaPromptTemplate, persona)
}

// WithIntent appends a session intent to a base system prompt. An empty
// intent returns the base prompt unchanged.
func WithIntent(systemPrompt, intent string) string {
	if intent == "" {
		return systemPrompt
	}
	return systemPrompt + "<intent>" + intent + "</intent>"
}
