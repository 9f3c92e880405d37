package services

import (
	"fmt"
	"strings"
)

const historyBeginningSentinel = "This is the beginning of the conversation."

func isEnglish(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "" || lang == "en" || strings.HasPrefix(lang, "en-")
}

func buildRankingPrompt(req RankRequest) string {
	var b strings.Builder

	// Layer 1: Role
	b.WriteString("You are an AI assistant. Your primary task is to respond to a user's query by first simulating how several different AI model personas would answer, ensuring these simulations are contextually relevant to the provided conversation history, and then analyzing and ranking these simulated responses.\n\n")

	// Layer 2: Query
	b.WriteString(fmt.Sprintf("User's Current Text Query: %q\n", req.UserPromptText))
	if req.UserPromptImageDataURI != "" {
		b.WriteString("The user has also provided the image attached to this request.\n")
	}
	b.WriteString("\n")

	// Layer 3: History
	if req.ConversationHistory != "" {
		b.WriteString("Conversation History (for context, use this to understand follow-up questions and maintain relevance):\n")
		b.WriteString(req.ConversationHistory)
		b.WriteString("\n\n")
	} else {
		b.WriteString(historyBeginningSentinel + "\n\n")
	}

	// Layer 4: Language
	languageRule := "Craft responses in English."
	if req.InputLanguage != "" {
		b.WriteString(fmt.Sprintf("The user has indicated their query is primarily in language code: %s. When simulating responses, please try to provide responses in this language if the model persona would naturally do so and is proficient. If not, or if the language code indicates English (e.g., \"en-US\", \"en-GB\"), respond in English.\n\n", req.InputLanguage))
		if !isEnglish(req.InputLanguage) {
			languageRule = fmt.Sprintf("Craft responses in the language indicated by '%s' if appropriate for the model persona and query context. Otherwise, use English.", req.InputLanguage)
		}
	} else {
		b.WriteString("The user's query is in English. Please provide simulated responses in English.\n\n")
	}

	b.WriteString("Important Note: You do not have access to real-time information like the current date or time. If the user asks for such information, please state that you cannot provide it.\n\n")

	// Layer 5: Personas
	names := make([]string, 0, len(req.Personas))
	b.WriteString("You need to simulate responses for the following model personas:\n")
	for _, p := range req.Personas {
		b.WriteString(fmt.Sprintf("- Model Persona: %s\n", p.ModelDisplayName))
		names = append(names, fmt.Sprintf("%q", p.ModelDisplayName))
	}
	b.WriteString("\n")

	example := "ExampleModelX"
	if len(req.Personas) > 0 {
		example = req.Personas[0].ModelDisplayName
	}

	// Layer 6: Instructions
	b.WriteString("Instructions:\n")
	b.WriteString("1. Simulate Responses: For each model persona listed above, generate a concise, helpful, and distinct response to the user's query. Each simulated response MUST take into account the conversation history (if provided) so it is a logical continuation of the dialogue, as well as the current query and any attached image.\n")
	b.WriteString("   - The persona should generally avoid self-referential statements about its own name, unless it is natural for the context of the query and the conversation history.\n")
	b.WriteString("   - " + languageRule + "\n")
	b.WriteString("   - If the user asks for the current date or time, each responseText should clearly state that this information is not available.\n")
	b.WriteString("2. Analyze and Rank: Critically evaluate each simulated response. Assign an accuracy score (a number between 0.0 and 1.0, where 1.0 is most accurate/relevant) based on its quality, relevance to the user's query (including any image and the full conversation history), and helpfulness.\n")
	b.WriteString("3. Format Output: Your complete output MUST be a single JSON array. Each object in the array represents one simulated model and includes:\n")
	b.WriteString(fmt.Sprintf("   - modelName: The display name of the model persona (e.g., %q).\n", example))
	b.WriteString("   - responseText: The text of the response you generated for this model persona.\n")
	b.WriteString("   - accuracy: The numerical accuracy score (0.0-1.0) you assigned.\n\n")

	b.WriteString(`Example of a single object in the output array:
{"modelName": "ExampleModelY", "responseText": "This is a simulated response from ExampleModelY, continuing the previous conversation if relevant.", "accuracy": 0.90}
`)
	b.WriteString(fmt.Sprintf("\nGenerate the JSON array. This array MUST contain one entry for EACH of the model personas specified (%s). Ensure the accuracy score is a number between 0.0 and 1.0.\n", strings.Join(names, ", ")))

	return b.String()
}

func buildTranscriptionPrompt() string {
	return "You are an audio transcription service. Your task is to transcribe the provided audio accurately.\n" +
		"Return ONLY the transcribed text. Do not add any conversational phrases, greetings, or explanations.\n" +
		"Respond with a JSON object of the form {\"transcribedText\": \"...\"}.\n\n" +
		"Audio for transcription is attached."
}
