package models

// PersonaSpec is a labeled response style the ranking call simulates.
type PersonaSpec struct {
	ID               string `json:"id"`
	ModelDisplayName string `json:"model_display_name"`
}

// DefaultPersonas returns the persona table used by the chat service.
func DefaultPersonas() []PersonaSpec {
	return []PersonaSpec{
		{ID: "deepseek-r1", ModelDisplayName: "Deepseek"},
		{ID: "qwq-32b", ModelDisplayName: "Qwen"},
		{ID: "gemma-2-9b-cpt-sahabatai-instruct", ModelDisplayName: "Gemma"},
		{ID: "llama-3.3-nemotron-super-49b-v1", ModelDisplayName: "Llama"},
	}
}
